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

package machdr

import (
	"fmt"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/bitfield"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/identity"
)

// CommonHeader is implemented by every MAC common header body variant.
type CommonHeader interface {
	PackedSize() uint32
	Pack(dst []byte) error
	Unpack(src []byte) error
	IsValid() bool
}

// DataMACPDUHeader is the 2-byte common header for HeaderTypeDataMACPDU.
type DataMACPDUHeader struct {
	Reserved       uint32
	Reset          uint32
	SequenceNumber uint32
}

func (h DataMACPDUHeader) PackedSize() uint32 { return 2 }

func (h DataMACPDUHeader) IsValid() bool {
	if h.Reserved != 0 {
		return false
	}
	if h.Reset > 1 {
		return false
	}
	if h.SequenceNumber > uint32(bitfield.BitmaskLSB(12)) {
		return false
	}
	return true
}

func (h DataMACPDUHeader) Pack(dst []byte) error {
	if len(dst) < 2 {
		return fmt.Errorf("machdr: DataMACPDUHeader destination too small")
	}
	if !h.IsValid() {
		return fmt.Errorf("machdr: DataMACPDUHeader invalid field values")
	}
	dst[0] = byte(h.Reserved<<5) | byte(h.Reset<<4) | byte(h.SequenceNumber>>8)
	dst[1] = byte(h.SequenceNumber)
	return nil
}

func (h *DataMACPDUHeader) Unpack(src []byte) error {
	if len(src) < 2 {
		return fmt.Errorf("machdr: DataMACPDUHeader source too small")
	}
	h.Reserved = uint32(src[0]>>5) & 0b111
	h.Reset = uint32(src[0]>>4) & 0b1
	h.SequenceNumber = uint32(src[0]&0b1111)<<8 + uint32(src[1])
	if !h.IsValid() {
		return fmt.Errorf("machdr: DataMACPDUHeader decoded invalid field values")
	}
	return nil
}

// BeaconHeader is the 7-byte common header for HeaderTypeBeacon.
type BeaconHeader struct {
	NetworkID3LSB       uint32
	TransmitterAddress  uint32
}

func (h BeaconHeader) PackedSize() uint32 { return 7 }

func (h BeaconHeader) IsValid() bool {
	if h.NetworkID3LSB > uint32(bitfield.BitmaskLSB(24)) {
		return false
	}
	return identity.IsValidLongRadioDeviceID(h.TransmitterAddress)
}

func (h *BeaconHeader) SetNetworkID3LSB(networkID uint32) {
	h.NetworkID3LSB = networkID & uint32(bitfield.BitmaskLSB(24))
}

func (h BeaconHeader) Pack(dst []byte) error {
	if len(dst) < 7 {
		return fmt.Errorf("machdr: BeaconHeader destination too small")
	}
	if !h.IsValid() {
		return fmt.Errorf("machdr: BeaconHeader invalid field values")
	}
	dst[0] = byte(h.NetworkID3LSB >> 16)
	dst[1] = byte(h.NetworkID3LSB >> 8)
	dst[2] = byte(h.NetworkID3LSB)
	dst[3] = byte(h.TransmitterAddress >> 24)
	dst[4] = byte(h.TransmitterAddress >> 16)
	dst[5] = byte(h.TransmitterAddress >> 8)
	dst[6] = byte(h.TransmitterAddress)
	return nil
}

func (h *BeaconHeader) Unpack(src []byte) error {
	if len(src) < 7 {
		return fmt.Errorf("machdr: BeaconHeader source too small")
	}
	h.NetworkID3LSB = uint32(src[0])<<16 | uint32(src[1])<<8 | uint32(src[2])
	h.TransmitterAddress = uint32(src[3])<<24 | uint32(src[4])<<16 | uint32(src[5])<<8 | uint32(src[6])
	if !h.IsValid() {
		return fmt.Errorf("machdr: BeaconHeader decoded invalid field values")
	}
	return nil
}

// UnicastHeader is the 10-byte common header for HeaderTypeUnicast.
type UnicastHeader struct {
	Reserved           uint32
	Reset              uint32
	SequenceNumber     uint32
	ReceiverAddress    uint32
	TransmitterAddress uint32
}

func (h UnicastHeader) PackedSize() uint32 { return 10 }

func (h UnicastHeader) IsValid() bool {
	if h.Reserved != 0 {
		return false
	}
	if h.Reset > 1 {
		return false
	}
	if h.SequenceNumber > uint32(bitfield.BitmaskLSB(12)) {
		return false
	}
	if !identity.IsValidLongRadioDeviceID(h.TransmitterAddress) {
		return false
	}
	return identity.IsValidLongRadioDeviceID(h.ReceiverAddress)
}

func (h UnicastHeader) Pack(dst []byte) error {
	if len(dst) < 10 {
		return fmt.Errorf("machdr: UnicastHeader destination too small")
	}
	if !h.IsValid() {
		return fmt.Errorf("machdr: UnicastHeader invalid field values")
	}
	dst[0] = byte(h.Reserved<<5) | byte(h.Reset<<4) | byte(h.SequenceNumber>>8)
	dst[1] = byte(h.SequenceNumber)
	dst[2] = byte(h.ReceiverAddress >> 24)
	dst[3] = byte(h.ReceiverAddress >> 16)
	dst[4] = byte(h.ReceiverAddress >> 8)
	dst[5] = byte(h.ReceiverAddress)
	dst[6] = byte(h.TransmitterAddress >> 24)
	dst[7] = byte(h.TransmitterAddress >> 16)
	dst[8] = byte(h.TransmitterAddress >> 8)
	dst[9] = byte(h.TransmitterAddress)
	return nil
}

func (h *UnicastHeader) Unpack(src []byte) error {
	if len(src) < 10 {
		return fmt.Errorf("machdr: UnicastHeader source too small")
	}
	h.Reserved = uint32(src[0]>>5) & 0b111
	h.Reset = uint32(src[0]>>4) & 0b1
	h.SequenceNumber = uint32(src[0]&0b1111)<<8 + uint32(src[1])
	h.ReceiverAddress = uint32(src[2])<<24 | uint32(src[3])<<16 | uint32(src[4])<<8 | uint32(src[5])
	h.TransmitterAddress = uint32(src[6])<<24 | uint32(src[7])<<16 | uint32(src[8])<<8 | uint32(src[9])
	if !h.IsValid() {
		return fmt.Errorf("machdr: UnicastHeader decoded invalid field values")
	}
	return nil
}

// RDBroadcastingHeader is the 6-byte common header for HeaderTypeRDBroadcast.
type RDBroadcastingHeader struct {
	Reserved           uint32
	Reset              uint32
	SequenceNumber     uint32
	TransmitterAddress uint32
}

func (h RDBroadcastingHeader) PackedSize() uint32 { return 6 }

func (h RDBroadcastingHeader) IsValid() bool {
	if h.Reserved != 0 {
		return false
	}
	if h.Reset > 1 {
		return false
	}
	if h.SequenceNumber > uint32(bitfield.BitmaskLSB(12)) {
		return false
	}
	return identity.IsValidLongRadioDeviceID(h.TransmitterAddress)
}

func (h RDBroadcastingHeader) Pack(dst []byte) error {
	if len(dst) < 6 {
		return fmt.Errorf("machdr: RDBroadcastingHeader destination too small")
	}
	if !h.IsValid() {
		return fmt.Errorf("machdr: RDBroadcastingHeader invalid field values")
	}
	dst[0] = byte(h.Reserved<<5) | byte(h.Reset<<4) | byte(h.SequenceNumber>>8)
	dst[1] = byte(h.SequenceNumber)
	dst[2] = byte(h.TransmitterAddress >> 24)
	dst[3] = byte(h.TransmitterAddress >> 16)
	dst[4] = byte(h.TransmitterAddress >> 8)
	dst[5] = byte(h.TransmitterAddress)
	return nil
}

func (h *RDBroadcastingHeader) Unpack(src []byte) error {
	if len(src) < 6 {
		return fmt.Errorf("machdr: RDBroadcastingHeader source too small")
	}
	h.Reserved = uint32(src[0]>>5) & 0b111
	h.Reset = uint32(src[0]>>4) & 0b1
	h.SequenceNumber = uint32(src[0]&0b1111)<<8 + uint32(src[1])
	h.TransmitterAddress = uint32(src[2])<<24 | uint32(src[3])<<16 | uint32(src[4])<<8 | uint32(src[5])
	if !h.IsValid() {
		return fmt.Errorf("machdr: RDBroadcastingHeader decoded invalid field values")
	}
	return nil
}

// EmptyHeader is the zero-byte common header for HeaderTypeMCHEmpty.
type EmptyHeader struct{}

func (h EmptyHeader) PackedSize() uint32        { return 0 }
func (h EmptyHeader) IsValid() bool             { return true }
func (h EmptyHeader) Pack(dst []byte) error     { return nil }
func (h *EmptyHeader) Unpack(src []byte) error  { return nil }

// ForType returns a zero-valued CommonHeader of the variant selected by ht,
// or nil for a header type with no common-header body (Escape) or an
// undefined value.
func ForType(ht HeaderType) CommonHeader {
	switch ht {
	case HeaderTypeDataMACPDU:
		return &DataMACPDUHeader{}
	case HeaderTypeBeacon:
		return &BeaconHeader{}
	case HeaderTypeUnicast:
		return &UnicastHeader{}
	case HeaderTypeRDBroadcast:
		return &RDBroadcastingHeader{}
	case HeaderTypeMCHEmpty:
		return &EmptyHeader{}
	default:
		return nil
	}
}
