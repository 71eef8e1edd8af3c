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

import "time"

// ContactRecord persists the durable half of an association: the identity
// and last known state of a peer radio device, surviving process restarts
// so a PT does not have to rediscover every FT it has already associated
// with, and an FT does not lose retry/missed-beacon counters on a crash.
type ContactRecord struct {
	NetworkID          uint32 `gorm:"primaryKey;autoIncrement:false"`
	ShortRadioDeviceID uint32 `gorm:"primaryKey;autoIncrement:false"`
	LongRadioDeviceID  uint32

	PTState string
	FTState string

	RetryCount    int
	MissedBeacons int

	LastSeen time.Time
}

func (ContactRecord) TableName() string {
	return "contacts"
}
