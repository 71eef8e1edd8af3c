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

package diag

import (
	"github.com/gin-gonic/gin"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/diag/controllers"
)

// applyRoutes wires the read-only diagnostics surface: liveness/readiness
// probes plus a snapshot of firmware state. There is no write path and
// therefore no session/auth layer.
func applyRoutes(router *gin.Engine, rl gin.HandlerFunc) {
	router.GET("/healthz", controllers.GETHealthz)
	router.GET("/ping", controllers.GETPing)

	v1 := router.Group("/api/v1")
	v1.Use(rl)
	v1.GET("/version", controllers.GETVersion)
	v1.GET("/contacts", controllers.GETContacts)
	v1.GET("/harq", controllers.GETHARQ)
	v1.GET("/snapshot", controllers.GETSnapshot)
	router.GET("/ws/events", controllers.GETEvents)
}
