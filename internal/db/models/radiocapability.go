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

// RadioCapabilityRecord caches the RD_Capability_IE payload advertised by a
// peer during association. The IE's field layout is optional-heavy and
// deployment-specific, so the raw MMIE body is stored as-is rather than
// decomposed into columns; callers re-decode it with the mmie package.
type RadioCapabilityRecord struct {
	NetworkID          uint32 `gorm:"primaryKey;autoIncrement:false"`
	ShortRadioDeviceID uint32 `gorm:"primaryKey;autoIncrement:false"`

	RawCapability []byte

	UpdatedAt time.Time
}

func (RadioCapabilityRecord) TableName() string {
	return "radio_capabilities"
}
