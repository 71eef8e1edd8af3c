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

// Package ratelimit provides a gorm-backed store for github.com/JGLTechnologies/gin-rate-limit,
// persisting hit counts across restarts the same way the rest of the
// diagnostics surface persists its state.
package ratelimit

import (
	"log/slog"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/db/models"
)

type GORMStore struct {
	db    *gorm.DB
	rate  time.Duration
	limit uint
}

type GORMOptions struct {
	DB    *gorm.DB
	Rate  time.Duration
	Limit uint
}

func NewGORMStore(options *GORMOptions) *GORMStore {
	return &GORMStore{
		db:    options.DB,
		rate:  options.Rate,
		limit: options.Limit,
	}
}

func (s *GORMStore) Limit(key string, _ *gin.Context) (ret ratelimit.Info) {
	ret.Limit = s.limit

	exists, err := models.RatelimitKeyExists(s.db, key)
	if err != nil {
		slog.Error("ratelimit: checking key existence", "error", err)
		exists = false
	}

	rl := &models.Ratelimit{Key: key}
	if !exists {
		rl.Hits = 0
		rl.Timestamp = time.Now()
	} else {
		rl, err = models.FindRatelimitByKey(s.db, key)
		if err != nil {
			slog.Error("ratelimit: finding key", "error", err)
		}
	}

	ret.ResetTime = time.Now().Add(s.rate - time.Since(rl.Timestamp))

	if rl.Timestamp.Add(s.rate).Before(time.Now()) {
		rl.Hits = 0
	}

	if rl.Hits >= int64(s.limit) {
		ret.RateLimited = true
		ret.RemainingHits = 0
	} else {
		rl.Timestamp = time.Now()
		rl.Hits++
		ret.RemainingHits = s.limit - uint(rl.Hits)
	}

	if err := s.db.Save(rl).Error; err != nil {
		slog.Error("ratelimit: saving entry", "error", err)
	}

	return ret
}
