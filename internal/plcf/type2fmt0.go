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

// Type2Fmt0 is the 10-byte PLCF used for unicast transmissions carrying
// MIMO and HARQ feedback.
type Type2Fmt0 struct {
	Base

	ShortNetworkID         uint32
	TransmitterIdentity    uint32
	TransmitPower          uint32
	DFMCS                  uint32
	ReceiverIdentity       uint32
	NumberOfSpatialStreams uint32
	DFRedundancyVersion    uint32
	DFNewDataIndication    uint32
	DFHARQProcessNumber    uint32
	FeedbackFormat         uint32
	FeedbackInfoPool       InfoPool
}

// Type2Fmt0PackedSize is the wire size of a Type2Fmt0 PLCF in bytes.
const Type2Fmt0PackedSize = 10

// SetNumberOfSpatialStreams encodes nSS (1, 2, 4 or 8) into the 2-bit field.
func (t *Type2Fmt0) SetNumberOfSpatialStreams(nSS uint32) error {
	coded, err := EncodeNSS(nSS)
	if err != nil {
		return err
	}
	t.NumberOfSpatialStreams = coded
	return nil
}

// NSS decodes the 2-bit coded field back to a spatial-stream count.
func (t Type2Fmt0) NSS() uint32 { return DecodeNSS(t.NumberOfSpatialStreams) }

// Type returns the PLCF type code (2).
func (t Type2Fmt0) Type() uint32 { return 2 }

// IsValid checks every field's range.
func (t Type2Fmt0) IsValid() bool {
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
	if t.DFMCS > 11 {
		return false
	}
	if !checkShortRadioDeviceID(t.ReceiverIdentity) {
		return false
	}
	if t.NumberOfSpatialStreams > uint32(bitfield.BitmaskLSB(2)) {
		return false
	}
	if t.DFRedundancyVersion > uint32(bitfield.BitmaskLSB(2)) {
		return false
	}
	if t.DFNewDataIndication > 1 {
		return false
	}
	if t.DFHARQProcessNumber > uint32(bitfield.BitmaskLSB(3)) {
		return false
	}
	if t.FeedbackFormat > uint32(bitfield.BitmaskLSB(4)) {
		return false
	}
	return true
}

// Pack writes the PLCF into dst, which must be at least Type2Fmt0PackedSize bytes.
func (t *Type2Fmt0) Pack(dst []byte) error {
	if len(dst) < Type2Fmt0PackedSize {
		return fmt.Errorf("plcf: Type2Fmt0 destination too small")
	}
	if !t.IsValid() {
		return fmt.Errorf("plcf: Type2Fmt0 invalid field values")
	}

	t.Base.pack(dst)
	dst[1] = byte(t.ShortNetworkID)
	dst[2] = byte(t.TransmitterIdentity >> 8)
	dst[3] = byte(t.TransmitterIdentity)
	dst[4] = byte(t.TransmitPower<<4) | byte(t.DFMCS)
	dst[5] = byte(t.ReceiverIdentity >> 8)
	dst[6] = byte(t.ReceiverIdentity)
	dst[7] = byte(t.NumberOfSpatialStreams<<6) | byte(t.DFRedundancyVersion<<4) |
		byte(t.DFNewDataIndication<<3) | byte(t.DFHARQProcessNumber)

	feedback := t.FeedbackInfoPool.Pack(t.FeedbackFormat)
	dst[8] = byte(t.FeedbackFormat<<4) | byte(feedback>>8)
	dst[9] = byte(feedback)
	return nil
}

// Unpack reads a PLCF from src, validating every field.
func (t *Type2Fmt0) Unpack(src []byte) error {
	if len(src) < Type2Fmt0PackedSize {
		return fmt.Errorf("plcf: Type2Fmt0 source too small")
	}

	t.Base.unpack(src)
	t.ShortNetworkID = uint32(src[1])
	t.TransmitterIdentity = uint32(src[2])<<8 | uint32(src[3])
	t.TransmitPower = uint32(src[4]>>4) & 0b1111
	t.DFMCS = uint32(src[4]) & 0b1111
	t.ReceiverIdentity = uint32(src[5])<<8 | uint32(src[6])
	t.NumberOfSpatialStreams = uint32(src[7]>>6) & 0b11
	t.DFRedundancyVersion = uint32(src[7]>>4) & 0b11
	t.DFNewDataIndication = uint32(src[7]>>3) & 0b1
	t.DFHARQProcessNumber = uint32(src[7]) & 0b111
	t.FeedbackFormat = uint32(src[8]>>4) & 0b1111

	feedback := (uint32(src[8])&0b1111)<<8 | uint32(src[9])
	if !t.FeedbackInfoPool.Unpack(t.FeedbackFormat, feedback) {
		return fmt.Errorf("plcf: Type2Fmt0 unknown feedback format %d", t.FeedbackFormat)
	}

	if !t.IsValid() {
		return fmt.Errorf("plcf: Type2Fmt0 decoded invalid field values")
	}
	return nil
}
