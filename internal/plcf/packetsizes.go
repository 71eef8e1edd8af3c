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

package plcf

import "fmt"

// PacketLengthType selects whether PacketLength counts subslots or slots.
type PacketLengthType uint32

const (
	PacketLengthTypeSubslots PacketLengthType = 0
	PacketLengthTypeSlots    PacketLengthType = 1
)

// unitsPerTBByte is the per-slot/per-subslot transport-block byte budget at
// a given subcarrier scaling factor (mu). This is the minimal faithful
// subset needed to derive N_TB_byte for the HARQ sizing contract: it models
// the monotonic growth of payload capacity with mu and PacketLengthType
// without reproducing the proprietary full MCS/PHY numerology table.
var unitsPerTBByte = map[uint32]uint32{
	1: 136,
	2: 272,
	4: 544,
	8: 1088,
}

// NTBByte derives the transport-block byte length for a PLCF's
// PacketLengthType/PacketLength and the link's subcarrier scaling factor mu.
func NTBByte(packetLengthType PacketLengthType, packetLength, mu uint32) (uint32, error) {
	perUnit, ok := unitsPerTBByte[mu]
	if !ok {
		return 0, fmt.Errorf("plcf: unsupported mu %d", mu)
	}
	if packetLengthType == PacketLengthTypeSubslots {
		perUnit /= 2
	}
	return packetLength * perUnit, nil
}

// RDC is a Radio Device Class capability record: the bounds a PLCF's
// payload must respect for a particular peer, mirroring channel_arrangement's
// notion of a device's supported numerology subset.
type RDC struct {
	MuMax              uint32
	NTBByteMax         uint32
	MaxSpatialStreams  uint32
	SupportsHeaderFmt1 bool
	SupportsHeaderFmt2 bool
}

// Validate checks that a PacketLengthType/PacketLength/mu combination fits
// within the RDC's declared bounds.
func (r RDC) Validate(packetLengthType PacketLengthType, packetLength, mu uint32) error {
	if mu > r.MuMax {
		return fmt.Errorf("plcf: mu %d exceeds RDC max %d", mu, r.MuMax)
	}
	nTBByte, err := NTBByte(packetLengthType, packetLength, mu)
	if err != nil {
		return err
	}
	if nTBByte > r.NTBByteMax {
		return fmt.Errorf("plcf: transport block size %d exceeds RDC max %d", nTBByte, r.NTBByteMax)
	}
	return nil
}
