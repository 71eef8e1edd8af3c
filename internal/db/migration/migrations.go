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

//nolint:golint,wrapcheck
package migration

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/db/models"
)

// Migrate brings the schema up to date. Since the schema has no legacy
// generation to carry forward, InitSchema creates the current tables
// directly for a fresh database; gormigrate still records a migration
// version so future schema changes can be expressed as incremental steps
// below without touching already-deployed databases.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// room for future incremental migrations
	})

	m.InitSchema(func(tx *gorm.DB) error {
		return tx.AutoMigrate(&models.ContactRecord{}, &models.RadioCapabilityRecord{}, &models.Ratelimit{})
	})

	if err := m.Migrate(); err != nil {
		return err
	}

	return nil
}
