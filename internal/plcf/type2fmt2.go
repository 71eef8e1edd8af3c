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

// NextScheduledPacketSTF indicates the length of the STF of the next
// scheduled packet, carried by the Type2Fmt2 project extension PLCF.
type NextScheduledPacketSTF uint32

const (
	NextScheduledPacketSTFFull              NextScheduledPacketSTF = 0
	NextScheduledPacketSTFShortenedOneSymbol NextScheduledPacketSTF = 1
	NextScheduledPacketSTFNone               NextScheduledPacketSTF = 2
	nextScheduledPacketSTFUpper              NextScheduledPacketSTF = 3
	NextScheduledPacketSTFNotDefined         NextScheduledPacketSTF = 0xFFFFFFFF
)

// Type2Fmt2 is the 10-byte project-extension PLCF (plcf_22 in the original
// implementation): HeaderFormat 2, carrying scheduling hints for the next
// packet instead of a redundancy version/HARQ process number.
type Type2Fmt2 struct {
	Base

	TransmitterIdentity uint32

	DL                         bool
	ForwardDespiteCRCError     bool
	NextScheduledPacketSTF     NextScheduledPacketSTF
	NextScheduledPacketHasPLCF bool
	NumberOfSpatialStreams     uint32

	FeedbackFormat   uint32
	FeedbackInfoPool InfoPool
}

// Type2Fmt2PackedSize is the wire size of a Type2Fmt2 PLCF in bytes.
const Type2Fmt2PackedSize = 10

// SetNumberOfSpatialStreams encodes nSS (1, 2, 4 or 8) into the 2-bit field.
func (t *Type2Fmt2) SetNumberOfSpatialStreams(nSS uint32) error {
	coded, err := EncodeNSS(nSS)
	if err != nil {
		return err
	}
	t.NumberOfSpatialStreams = coded
	return nil
}

// NSS decodes the 2-bit coded field back to a spatial-stream count.
func (t Type2Fmt2) NSS() uint32 { return DecodeNSS(t.NumberOfSpatialStreams) }

// DFRedundancyVersion is always 0; this PLCF variant carries no HARQ
// retransmission state.
func (t Type2Fmt2) DFRedundancyVersion() uint32 { return 0 }

// Type returns the PLCF type code (2).
func (t Type2Fmt2) Type() uint32 { return 2 }

// IsValid checks every field's range.
func (t Type2Fmt2) IsValid() bool {
	if t.HeaderFormat != 2 {
		return false
	}
	if !checkShortRadioDeviceID(t.TransmitterIdentity) {
		return false
	}
	if t.NextScheduledPacketSTF >= nextScheduledPacketSTFUpper {
		return false
	}
	if t.NumberOfSpatialStreams > uint32(bitfield.BitmaskLSB(2)) {
		return false
	}
	if t.FeedbackFormat > uint32(bitfield.BitmaskLSB(4)) {
		return false
	}
	return true
}

func boolToBit(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Pack writes the PLCF into dst, which must be at least Type2Fmt2PackedSize bytes.
func (t *Type2Fmt2) Pack(dst []byte) error {
	if len(dst) < Type2Fmt2PackedSize {
		return fmt.Errorf("plcf: Type2Fmt2 destination too small")
	}
	if !t.IsValid() {
		return fmt.Errorf("plcf: Type2Fmt2 invalid field values")
	}

	t.Base.pack(dst)
	dst[1] = byte(t.TransmitterIdentity >> 8)
	dst[2] = byte(t.TransmitterIdentity)
	dst[3] = boolToBit(t.DL)<<7 |
		boolToBit(t.ForwardDespiteCRCError)<<6 |
		byte(t.NextScheduledPacketSTF)<<4 |
		boolToBit(t.NextScheduledPacketHasPLCF)<<3 |
		byte(t.NumberOfSpatialStreams)<<1

	feedback := t.FeedbackInfoPool.Pack(t.FeedbackFormat)
	dst[4] = byte(t.FeedbackFormat<<4) | byte(feedback>>8)
	dst[5] = byte(feedback)
	for i := 6; i < Type2Fmt2PackedSize; i++ {
		dst[i] = 0
	}
	return nil
}

// Unpack reads a PLCF from src, validating every field.
func (t *Type2Fmt2) Unpack(src []byte) error {
	if len(src) < Type2Fmt2PackedSize {
		return fmt.Errorf("plcf: Type2Fmt2 source too small")
	}

	t.Base.unpack(src)
	t.TransmitterIdentity = uint32(src[1])<<8 | uint32(src[2])
	t.DL = src[3]&0x80 != 0
	t.ForwardDespiteCRCError = src[3]&0x40 != 0
	t.NextScheduledPacketSTF = NextScheduledPacketSTF((src[3] >> 4) & 0b11)
	t.NextScheduledPacketHasPLCF = src[3]&0x08 != 0
	t.NumberOfSpatialStreams = uint32(src[3]>>1) & 0b11
	t.FeedbackFormat = uint32(src[4]>>4) & 0b1111

	feedback := (uint32(src[4])&0b1111)<<8 | uint32(src[5])
	if !t.FeedbackInfoPool.Unpack(t.FeedbackFormat, feedback) {
		return fmt.Errorf("plcf: Type2Fmt2 unknown feedback format %d", t.FeedbackFormat)
	}

	if !t.IsValid() {
		return fmt.Errorf("plcf: Type2Fmt2 decoded invalid field values")
	}
	return nil
}
