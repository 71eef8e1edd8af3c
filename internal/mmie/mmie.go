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

// MMIE is implemented by every MAC message/information element: every
// concrete type carries its own mux header and knows how to size and pack
// itself together with that header.
type MMIE interface {
	IEType() IEType
	PackedSizeOfMMHSDU() uint32
	PackMMHSDU(dst []byte) error
}

// Packing is implemented by MMIE types with a fixed, self-describing packed
// size: the mux header carries MacExtNoLengthField and the
// payload size is derivable without reading ahead.
type Packing interface {
	MMIE
	PackedSize() uint32
	Pack(dst []byte) error
	Unpack(src []byte) error
}

// PackingPeeking is implemented by MMIE types whose packed size depends on
// fields inside the payload itself and must be discovered by peeking at a
// prefix of it before the rest can be read.
type PackingPeeking interface {
	Packing
	PackedSizeMinToPeek() uint32
	PackedSizeByPeeking(src []byte) (uint32, error)
}

// MuDepending is implemented by MMIE types whose packed layout depends on
// the subcarrier scaling factor mu, such as ClusterBeaconMessage's
// Frame Offset field.
type MuDepending interface {
	SetMu(mu uint32)
}

// Flowing is implemented by MMIE types whose length is carried externally in
// the mux header's length field rather than self-described:
// higher-layer signalling and user-plane data flows.
type Flowing interface {
	MMIE
	FlowID() uint32
	SetFlowID(id uint32)
	SetDataSize(n uint32)
	DataSize() uint32
	Pack(dst []byte) error
	Unpack(src []byte) error
}

// packMuxHeaderAndCopy is the shared helper every concrete flowing/packing
// type uses to prefix its mux header onto a payload it has already packed
// into payload.
func packMuxHeaderAndCopy(dst []byte, mh MuxHeader, payload []byte) error {
	hdrSize := mh.PackedSize()
	if uint32(len(dst)) < hdrSize+uint32(len(payload)) {
		return fmt.Errorf("mmie: destination too small for mux header plus payload")
	}
	if err := mh.Pack(dst); err != nil {
		return err
	}
	copy(dst[hdrSize:], payload)
	return nil
}

// Opaque is a catch-all MMIE carrying an undecoded payload. It is used for
// the few IE types that the engine frames and routes but does not give
// field-level semantics (escape, IE type extension, additional MAC
// messages): the mux header already establishes a reliable length, so
// round-tripping raw bytes is sufficient for forwarding and logging.
type Opaque struct {
	Type    IEType
	Payload []byte
}

func (o *Opaque) IEType() IEType { return o.Type }

func (o *Opaque) PackedSizeOfMMHSDU() uint32 {
	mh := MuxHeader{MacExt: MacExtLengthField16, IEType: o.Type, Length: uint32(len(o.Payload))}
	if len(o.Payload) <= 255 {
		mh.MacExt = MacExtLengthField8
	}
	return mh.PackedSize() + uint32(len(o.Payload))
}

func (o *Opaque) PackMMHSDU(dst []byte) error {
	mh := MuxHeader{MacExt: MacExtLengthField16, IEType: o.Type, Length: uint32(len(o.Payload))}
	if len(o.Payload) <= 255 {
		mh.MacExt = MacExtLengthField8
	}
	return packMuxHeaderAndCopy(dst, mh, o.Payload)
}

func (o *Opaque) DataSize() uint32     { return uint32(len(o.Payload)) }
func (o *Opaque) SetDataSize(n uint32) { o.Payload = make([]byte, n) }
func (o *Opaque) FlowID() uint32       { return 0 }
func (o *Opaque) SetFlowID(uint32)     {}

func (o *Opaque) Pack(dst []byte) error {
	if uint32(len(dst)) < o.DataSize() {
		return fmt.Errorf("mmie: opaque destination too small")
	}
	copy(dst, o.Payload)
	return nil
}

func (o *Opaque) Unpack(src []byte) error {
	if uint32(len(src)) < o.DataSize() {
		return fmt.Errorf("mmie: opaque source too small")
	}
	o.Payload = append(o.Payload[:0], src[:o.DataSize()]...)
	return nil
}
