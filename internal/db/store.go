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

package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/contact"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/db/models"
)

// SaveContact upserts the durable half of one association so it survives a
// process restart. The composite (NetworkID, ShortRadioDeviceID) primary
// key makes repeated saves of the same peer an update, not a new row.
func SaveContact(db *gorm.DB, networkID uint32, c *contact.Contact) error {
	rec := models.ContactRecord{
		NetworkID:          networkID,
		ShortRadioDeviceID: c.Identity.ShortRadioDeviceID,
		LongRadioDeviceID:  c.Identity.LongRadioDeviceID,
		PTState:            c.PTState.String(),
		FTState:            c.FTState.String(),
		RetryCount:         c.RetryCount(),
		MissedBeacons:      c.MissedBeacons(),
		LastSeen:           time.Now(),
	}
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
		return fmt.Errorf("db: saving contact %#x: %w", rec.ShortRadioDeviceID, err)
	}
	return nil
}

// LoadContacts returns every persisted contact record for networkID, for
// re-seeding the in-memory registry at startup.
func LoadContacts(db *gorm.DB, networkID uint32) ([]models.ContactRecord, error) {
	var recs []models.ContactRecord
	if err := db.Where("network_id = ?", networkID).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("db: loading contacts: %w", err)
	}
	return recs, nil
}

// DeleteContact removes a released association's record.
func DeleteContact(db *gorm.DB, networkID, shortRadioDeviceID uint32) error {
	err := db.Where("network_id = ? AND short_radio_device_id = ?", networkID, shortRadioDeviceID).
		Delete(&models.ContactRecord{}).Error
	if err != nil {
		return fmt.Errorf("db: deleting contact %#x: %w", shortRadioDeviceID, err)
	}
	return nil
}

// SaveRadioCapability caches the raw RD_Capability_IE body a peer
// advertised, so its capability is known again after a restart without
// waiting for the next advertisement.
func SaveRadioCapability(db *gorm.DB, networkID, shortRadioDeviceID uint32, raw []byte) error {
	rec := models.RadioCapabilityRecord{
		NetworkID:          networkID,
		ShortRadioDeviceID: shortRadioDeviceID,
		RawCapability:      append([]byte(nil), raw...),
		UpdatedAt:          time.Now(),
	}
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
		return fmt.Errorf("db: saving radio capability for %#x: %w", shortRadioDeviceID, err)
	}
	return nil
}

// LoadRadioCapability returns the cached raw RD_Capability_IE body for one
// peer, or (nil, nil) when none has been advertised yet.
func LoadRadioCapability(db *gorm.DB, networkID, shortRadioDeviceID uint32) ([]byte, error) {
	var rec models.RadioCapabilityRecord
	err := db.Where("network_id = ? AND short_radio_device_id = ?", networkID, shortRadioDeviceID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db: loading radio capability for %#x: %w", shortRadioDeviceID, err)
	}
	return rec.RawCapability, nil
}
