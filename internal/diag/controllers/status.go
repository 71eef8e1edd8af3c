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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/contact"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/harq"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/tpoint"
)

// contactView is the JSON-facing projection of a Contact, deliberately not
// the Contact struct itself so association internals stay free to change
// without breaking the diagnostics wire format.
type contactView struct {
	NetworkID          uint32 `json:"networkId"`
	LongRadioDeviceID  uint32 `json:"longRadioDeviceId"`
	ShortRadioDeviceID uint32 `json:"shortRadioDeviceId"`
	PTState            string `json:"ptState,omitempty"`
	FTState            string `json:"ftState,omitempty"`
}

// GETContacts lists every contact currently registered with the firmware
// instance associated with this request.
func GETContacts(c *gin.Context) {
	inst := mustFirmware(c)
	if inst == nil {
		return
	}

	views := make([]contactView, 0, inst.Contacts.Len())
	inst.Contacts.Range(func(ct *contact.Contact) bool {
		views = append(views, contactView{
			NetworkID:          ct.Identity.NetworkID,
			LongRadioDeviceID:  ct.Identity.LongRadioDeviceID,
			ShortRadioDeviceID: ct.Identity.ShortRadioDeviceID,
			PTState:            ct.PTState.String(),
			FTState:            ct.FTState.String(),
		})
		return true
	})

	c.JSON(http.StatusOK, gin.H{"contacts": views})
}

type harqPoolView struct {
	Reserved int `json:"reserved"`
	Total    int `json:"total"`
}

// GETHARQ reports TX/RX HARQ process pool occupancy, the operator-facing
// signal for HARQ exhaustion: a pool sitting
// at Reserved==Total means new transmissions/receptions are being dropped.
func GETHARQ(c *gin.Context) {
	inst := mustFirmware(c)
	if inst == nil {
		return
	}

	view := func(p *harq.Pool) harqPoolView {
		return harqPoolView{Reserved: p.NofReserved(), Total: p.Len()}
	}

	c.JSON(http.StatusOK, gin.H{
		"tx": view(inst.HARQTx),
		"rx": view(inst.HARQRx),
	})
}

func mustFirmware(c *gin.Context) *tpoint.Instance {
	inst, ok := c.MustGet("Firmware").(*tpoint.Instance)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "firmware instance unavailable"})
		return nil
	}
	return inst
}
