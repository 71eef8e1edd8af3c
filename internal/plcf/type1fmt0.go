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

import (
	"fmt"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/bitfield"
)

// Type1Fmt0 is the 5-byte PLCF used for the shortest unicast transmissions.
// Table 6.2.1-1 defines no field for the number of spatial streams (always
// 1) or redundancy version (always 0).
type Type1Fmt0 struct {
	Base

	ShortNetworkID      uint32
	TransmitterIdentity uint32
	TransmitPower       uint32
	Reserved            uint32
	DFMCS               uint32
}

// PackedSize is the wire size of a Type1Fmt0 PLCF in bytes.
const Type1Fmt0PackedSize = 5

// NSS is always 1 for this header format.
func (t Type1Fmt0) NSS() uint32 { return 1 }

// DFRedundancyVersion is always 0 for this header format.
func (t Type1Fmt0) DFRedundancyVersion() uint32 { return 0 }

// Type returns the PLCF type code (1).
func (t Type1Fmt0) Type() uint32 { return 1 }

// IsValid checks every field's range.
func (t Type1Fmt0) IsValid() bool {
	if t.HeaderFormat != 0 {
		return false
	}
	if !checkShortNetworkID(t.ShortNetworkID) {
		return false
	}
	if !checkShortRadioDeviceID(t.TransmitterIdentity) {
		return false
	}
	if t.TransmitPower > uint32(bitfield.BitmaskLSB(4)) {
		return false
	}
	if t.Reserved != 0 {
		return false
	}
	if t.DFMCS > uint32(bitfield.BitmaskLSB(3)) {
		return false
	}
	return true
}

// Pack writes the PLCF into dst, which must be at least Type1Fmt0PackedSize bytes.
func (t Type1Fmt0) Pack(dst []byte) error {
	if len(dst) < Type1Fmt0PackedSize {
		return fmt.Errorf("plcf: Type1Fmt0 destination too small")
	}
	if !t.IsValid() {
		return fmt.Errorf("plcf: Type1Fmt0 invalid field values")
	}

	t.Base.pack(dst)
	dst[1] = byte(t.ShortNetworkID)
	dst[2] = byte(t.TransmitterIdentity >> 8)
	dst[3] = byte(t.TransmitterIdentity)
	dst[4] = byte(t.TransmitPower<<4) | byte(t.Reserved<<3) | byte(t.DFMCS)
	return nil
}

// Unpack reads a PLCF from src, validating every field.
func (t *Type1Fmt0) Unpack(src []byte) error {
	if len(src) < Type1Fmt0PackedSize {
		return fmt.Errorf("plcf: Type1Fmt0 source too small")
	}

	t.Base.unpack(src)
	t.ShortNetworkID = uint32(src[1])
	t.TransmitterIdentity = uint32(src[2])<<8 | uint32(src[3])
	t.TransmitPower = uint32(src[4]>>4) & 0b1111
	t.Reserved = uint32(src[4]>>3) & 0b1
	t.DFMCS = uint32(src[4]) & 0b111

	if !t.IsValid() {
		return fmt.Errorf("plcf: Type1Fmt0 decoded invalid field values")
	}
	return nil
}
