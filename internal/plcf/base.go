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

// Package plcf implements the Physical Layer Control Field codec: the four
// PLCF variants carried at the start of every MAC PDU, the transmit-power
// lookup table and spatial-stream encoding they share, and the feedback-info
// sub-variants nested inside the Type2 formats.
package plcf

import (
	"fmt"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/bitfield"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/identity"
)

// TxPowerTable is Table 6.2.1-3a: Transmit Power, indexed by the 4-bit
// TransmitPower field.
var TxPowerTable = [16]int32{
	-40, -30, -20, -16, -12, -8, -4, 0, 4, 7, 10, 13, 16, 19, 21, 23,
}

// nSSCodedLUT maps a spatial-stream count to its 2-bit coded value.
// Index 1,2,4,8 -> 0,1,2,3 respectively (indices in between are unused).
var nSSCodedLUT = [9]uint32{0, 0, 1, 0, 2, 0, 0, 0, 3}

// nSSCodedLUTRev maps the 2-bit coded value back to a spatial-stream count.
var nSSCodedLUTRev = [4]uint32{1, 2, 4, 8}

// EncodeNSS returns the 2-bit coded value for a spatial-stream count of 1,
// 2, 4 or 8. A device always encodes
// the smallest valid code for its configured stream count, so N_SS=1 always
// yields 0 even when the device supports more antennas.
func EncodeNSS(nSS uint32) (uint32, error) {
	if nSS == 0 || int(nSS) >= len(nSSCodedLUT) || nSS&(nSS-1) != 0 {
		return 0, fmt.Errorf("plcf: spatial stream count %d out of range", nSS)
	}
	return nSSCodedLUT[nSS], nil
}

// DecodeNSS returns the spatial-stream count for a 2-bit coded value.
func DecodeNSS(coded uint32) uint32 {
	return nSSCodedLUTRev[coded&0b11]
}

// Base carries the three fields common to every PLCF variant, packed into
// the first byte: HeaderFormat (3 bits), PacketLengthType (1 bit) and
// PacketLength_m1 (4 bits).
type Base struct {
	HeaderFormat     uint32
	PacketLengthType uint32
	PacketLengthM1   uint32
}

// SetPacketLength stores packetLength (>=1) as PacketLengthM1.
func (b *Base) SetPacketLength(packetLength uint32) {
	b.PacketLengthM1 = packetLength - 1
}

// PacketLength returns the actual packet length, undoing SetPacketLength.
func (b *Base) PacketLength() uint32 {
	return b.PacketLengthM1 + 1
}

// IsValid checks the three common fields' bit widths.
func (b Base) IsValid() bool {
	if b.HeaderFormat > uint32(bitfield.BitmaskLSB(3)) {
		return false
	}
	if b.PacketLengthType > 1 {
		return false
	}
	if b.PacketLengthM1 > uint32(bitfield.BitmaskLSB(4)) {
		return false
	}
	return true
}

func (b Base) pack(dst []byte) {
	dst[0] = byte(b.HeaderFormat<<5) | byte(b.PacketLengthType<<4) | byte(b.PacketLengthM1)
}

func (b *Base) unpack(src []byte) {
	b.HeaderFormat = uint32(src[0] >> 5)
	b.PacketLengthType = uint32(src[0]>>4) & 0b1
	b.PacketLengthM1 = uint32(src[0]) & 0b1111
}

// TransmitPowerDBm returns the dBm value for a coded TransmitPower field.
func TransmitPowerDBm(transmitPower uint32) (int32, error) {
	if int(transmitPower) >= len(TxPowerTable) {
		return 0, fmt.Errorf("plcf: transmit power code %d out of range", transmitPower)
	}
	return TxPowerTable[transmitPower], nil
}

// SetTransmitPower returns the smallest coded TransmitPower value whose
// table entry is at least dBm, clamping to the table's last entry if dBm is
// above its maximum.
func SetTransmitPower(dBm int32) uint32 {
	for i, v := range TxPowerTable {
		if v >= dBm {
			return uint32(i)
		}
	}
	return uint32(len(TxPowerTable) - 1)
}

func checkShortNetworkID(v uint32) bool  { return identity.IsValidShortNetworkID(v) }
func checkShortRadioDeviceID(v uint32) bool { return identity.IsValidShortRadioDeviceID(v) }
