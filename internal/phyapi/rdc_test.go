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

package phyapi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/phyapi"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/plcf"
)

func testRDC() phyapi.RDC {
	return phyapi.RDC{UMin: 1, BMin: 1, ZMin: 2048, MaxAntennaTx: 2, MaxAntennaRx: 2, MaxTBSizeByte: 1024}
}

func TestRDCValidateRejectsSmallZ(t *testing.T) {
	rdc := testRDC()
	def := phyapi.PacketSizesDef{
		Mu: 1, B: 1, PacketLengthType: plcf.PacketLengthTypeSubslots,
		PacketLength: 1, MCSIndex: 0, Z: 1024,
	}
	assert.Error(t, rdc.Validate(def))
}

func TestRDCBoundHARQBufferByteCapsRequest(t *testing.T) {
	rdc := testRDC()
	bounded := rdc.BoundHARQBufferByte(10_000_000)
	assert.LessOrEqual(t, bounded, rdc.MaxTBSizeByte*rdc.ZMin)
}
