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

// Package controllers implements the read-only diagnostics API: build
// version/health, and a snapshot of firmware state (contacts, HARQ pool
// occupancy) useful to an operator without exposing any control surface.
package controllers

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/sdk"
)

// GETVersion reports the running build's version and commit.
func GETVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": sdk.Version,
		"commit":  sdk.GitCommit,
	})
}

// GETPing is a trivial liveness probe independent of firmware readiness.
func GETPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ping": "pong"})
}

// GETHealthz reports whether the firmware instance has finished its
// one-shot startup (WorkStartImminent) and is processing PHY callbacks.
func GETHealthz(c *gin.Context) {
	ready, ok := c.MustGet("Ready").(*atomic.Bool)
	if !ok || !ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
