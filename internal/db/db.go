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
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/config"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/db/migration"
)

// MakeDB opens the contact/radio-capability store according to cfg.Database
// and migrates it to the current schema. An empty cfg.Database.Database with
// the sqlite driver opens an in-memory database, used by tests.
func MakeDB(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Metrics.OTLPEndpoint != "" {
		if err := db.Use(otelgorm.NewPlugin()); err != nil {
			return nil, fmt.Errorf("failed to trace database: %w", err)
		}
	}

	if err := migration.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(runtime.GOMAXPROCS(0))
	const connsPerCPU = 10
	sqlDB.SetMaxOpenConns(runtime.GOMAXPROCS(0) * connsPerCPU)
	const maxIdleTime = 10 * time.Minute
	sqlDB.SetConnMaxIdleTime(maxIdleTime)

	slog.Info("Database ready", "driver", cfg.Database.Driver)

	return db, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.Database.Driver {
	case config.DatabaseDriverSQLite:
		return sqlite.Open(cfg.Database.Database), nil
	case config.DatabaseDriverPostgres:
		return postgres.Open(dsn(cfg, "")), nil
	case config.DatabaseDriverMySQL:
		return mysql.Open(dsn(cfg, "parseTime=true")), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}
}

// dsn builds a key=value DSN from the Database section plus any extra
// parameters, appending defaultExtra first so ExtraParameters can override it.
func dsn(cfg *config.Config, defaultExtra string) string {
	parts := []string{
		fmt.Sprintf("host=%s", cfg.Database.Host),
		fmt.Sprintf("port=%d", cfg.Database.Port),
		fmt.Sprintf("user=%s", cfg.Database.User),
		fmt.Sprintf("password=%s", cfg.Database.Password),
		fmt.Sprintf("dbname=%s", cfg.Database.Database),
	}
	if defaultExtra != "" {
		parts = append(parts, defaultExtra)
	}
	parts = append(parts, cfg.Database.ExtraParameters...)
	return strings.Join(parts, " ")
}
