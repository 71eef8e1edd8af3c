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

package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/pubsub"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/tpoint"
)

const wsBufferSize = 1024

var eventsUpgrader = websocket.Upgrader{
	HandshakeTimeout: 0,
	ReadBufferSize:   wsBufferSize,
	WriteBufferSize:  wsBufferSize,
	// Same-origin only: this is an operator-facing diagnostics surface with
	// no session/auth layer. A nil CheckOrigin makes gorilla accept requests
	// without an Origin header or whose Origin host equals the request Host.
	CheckOrigin:       nil,
	EnableCompression: true,
}

// GETEvents upgrades to a websocket and relays every message published to
// tpoint.EventTopic: a live tail of decoded MMIEs, one JSON object per
// frame, until the client disconnects.
func GETEvents(c *gin.Context) {
	v, _ := c.Get("PubSub")
	ps, ok := v.(pubsub.PubSub)
	if !ok || ps == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event bus unavailable"})
		return
	}

	conn, err := eventsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("diag: failed to upgrade websocket", "error", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("diag: closing websocket", "error", err)
		}
	}()

	sub := ps.Subscribe(tpoint.EventTopic)
	defer func() {
		if err := sub.Close(); err != nil {
			slog.Debug("diag: closing event subscription", "error", err)
		}
	}()

	for msg := range sub.Channel() {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
