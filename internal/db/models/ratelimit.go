// SPDX-License-Identifier: AGPL-3.0-or-later
// dect-nr-plus-l2core - A DECT NR+ layer-2 MAC protocol engine
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package models

import (
	"time"

	"gorm.io/gorm"
)

// Ratelimit backs the diagnostics API's per-client-IP rate limiter, the
// same durable-store shape the rest of this module uses for contact and
// radio-capability records rather than an in-memory limiter that resets on
// restart.
type Ratelimit struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Hits      int64     `json:"hits"`
	Timestamp time.Time `json:"timestamp"`
}

func FindRatelimitByKey(db *gorm.DB, key string) (*Ratelimit, error) {
	var ratelimit Ratelimit
	if err := db.Where("key = ?", key).First(&ratelimit).Error; err != nil {
		return nil, err
	}
	return &ratelimit, nil
}

func RatelimitKeyExists(db *gorm.DB, key string) (bool, error) {
	var count int64
	if err := db.Model(&Ratelimit{}).
		Where("key = ?", key).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
