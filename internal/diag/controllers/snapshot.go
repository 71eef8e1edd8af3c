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
	"github.com/maxpenner/dect-nr-plus-l2core/internal/diag/snapshot"
)

// GETSnapshot exports every registered contact as an xz-compressed msgp
// blob, for an operator to attach to a bug report without DB access.
func GETSnapshot(c *gin.Context) {
	inst := mustFirmware(c)
	if inst == nil {
		return
	}

	contacts := make([]snapshot.Contact, 0, inst.Contacts.Len())
	inst.Contacts.Range(func(ct *contact.Contact) bool {
		contacts = append(contacts, snapshot.Contact{
			NetworkID:          ct.Identity.NetworkID,
			LongRadioDeviceID:  ct.Identity.LongRadioDeviceID,
			ShortRadioDeviceID: ct.Identity.ShortRadioDeviceID,
			PTState:            ct.PTState.String(),
			FTState:            ct.FTState.String(),
			RetryCount:         int64(ct.RetryCount()),
			MissedBeacons:      int64(ct.MissedBeacons()),
		})
		return true
	})

	blob, err := snapshot.Export(contacts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export snapshot"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="contacts.msgp.xz"`)
	c.Data(http.StatusOK, "application/x-xz", blob)
}
