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

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/pubsub"
)

// PubSubProvider injects ps into the gin context under "PubSub" so the
// live-events websocket handler can subscribe without constructing its own
// client. ps may be nil when the caller has no pubsub backend wired.
func PubSubProvider(ps pubsub.PubSub) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ps != nil {
			c.Set("PubSub", ps)
		}
		c.Next()
	}
}
