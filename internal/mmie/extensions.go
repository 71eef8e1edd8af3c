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

package mmie

import "fmt"

// PowerTargetIE is a project extension outside the ETSI tables: a
// single-byte signed AGC correction, in dB, that the Steady-state handler
// applies to local TX power.
type PowerTargetIE struct {
	PowerTargetDB int8
}

func (p *PowerTargetIE) IEType() IEType { return IETypePowerTargetIE }

func (p *PowerTargetIE) PackedSize() uint32 { return 1 }

func (p *PowerTargetIE) muxHeader() MuxHeader {
	return MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypePowerTargetIE}
}

func (p *PowerTargetIE) PackedSizeOfMMHSDU() uint32 {
	return p.muxHeader().PackedSize() + p.PackedSize()
}

func (p *PowerTargetIE) Pack(dst []byte) error {
	if uint32(len(dst)) < p.PackedSize() {
		return fmt.Errorf("mmie: power target ie destination too small")
	}
	dst[0] = byte(p.PowerTargetDB)
	return nil
}

func (p *PowerTargetIE) Unpack(src []byte) error {
	if uint32(len(src)) < p.PackedSize() {
		return fmt.Errorf("mmie: power target ie source too small")
	}
	p.PowerTargetDB = int8(src[0])
	return nil
}

func (p *PowerTargetIE) PackMMHSDU(dst []byte) error {
	mh := p.muxHeader()
	if err := mh.Pack(dst); err != nil {
		return err
	}
	return p.Pack(dst[mh.PackedSize():])
}

// TimeAnnounceIE is a project extension carrying the absolute sample time of
// the next PPX/PPS rising edge, seeding the receiver's pulse-per-second
// alignment.
type TimeAnnounceIE struct {
	NextPPSEdgeTime64 int64
}

func (t *TimeAnnounceIE) IEType() IEType { return IETypeTimeAnnounceIE }

func (t *TimeAnnounceIE) PackedSize() uint32 { return 8 }

func (t *TimeAnnounceIE) muxHeader() MuxHeader {
	return MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeTimeAnnounceIE}
}

func (t *TimeAnnounceIE) PackedSizeOfMMHSDU() uint32 {
	return t.muxHeader().PackedSize() + t.PackedSize()
}

func (t *TimeAnnounceIE) Pack(dst []byte) error {
	if uint32(len(dst)) < t.PackedSize() {
		return fmt.Errorf("mmie: time announce ie destination too small")
	}
	v := uint64(t.NextPPSEdgeTime64)
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (56 - 8*i))
	}
	return nil
}

func (t *TimeAnnounceIE) Unpack(src []byte) error {
	if uint32(len(src)) < t.PackedSize() {
		return fmt.Errorf("mmie: time announce ie source too small")
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(src[i])
	}
	t.NextPPSEdgeTime64 = int64(v)
	return nil
}

func (t *TimeAnnounceIE) PackMMHSDU(dst []byte) error {
	mh := t.muxHeader()
	if err := mh.Pack(dst); err != nil {
		return err
	}
	return t.Pack(dst[mh.PackedSize():])
}

// ForwardToIE is a project extension used by an FT to tell a PT which other
// peer (by Short RD ID) a subsequent user-plane-data IE should be relayed
// to, supporting the simple star-relay forwarding the simulator exercises.
type ForwardToIE struct {
	ShortRDID uint32
}

func (f *ForwardToIE) IEType() IEType { return IETypeForwardToIE }

func (f *ForwardToIE) PackedSize() uint32 { return 2 }

func (f *ForwardToIE) muxHeader() MuxHeader {
	return MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeForwardToIE}
}

func (f *ForwardToIE) PackedSizeOfMMHSDU() uint32 {
	return f.muxHeader().PackedSize() + f.PackedSize()
}

func (f *ForwardToIE) Pack(dst []byte) error {
	if uint32(len(dst)) < f.PackedSize() {
		return fmt.Errorf("mmie: forward to ie destination too small")
	}
	if f.ShortRDID > 0xFFFF {
		return fmt.Errorf("mmie: forward to ie short rd id out of range")
	}
	dst[0] = byte(f.ShortRDID >> 8)
	dst[1] = byte(f.ShortRDID)
	return nil
}

func (f *ForwardToIE) Unpack(src []byte) error {
	if uint32(len(src)) < f.PackedSize() {
		return fmt.Errorf("mmie: forward to ie source too small")
	}
	f.ShortRDID = uint32(src[0])<<8 | uint32(src[1])
	return nil
}

func (f *ForwardToIE) PackMMHSDU(dst []byte) error {
	mh := f.muxHeader()
	if err := mh.Pack(dst); err != nil {
		return err
	}
	return f.Pack(dst[mh.PackedSize():])
}
