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

// Package mmie implements the MAC multiplexing header and the MAC
// Message/Information Element (MMIE) codec: a tagged-union encoding of every
// MMIE type the MAC layer can carry, plus a pool of preallocated typed
// instances so decoding a PDU never allocates per IE.
package mmie

import (
	"fmt"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/bitfield"
)

// MacExt selects how a MAC multiplexing header encodes its length field
// (Table 6.3.4-1).
type MacExt uint32

const (
	MacExtNotDefined    MacExt = 0xFFFFFFFF
	MacExtNoLengthField MacExt = 0 // self-contained
	MacExtLengthField8  MacExt = 1 // up to 2 + 255 bytes
	MacExtLengthField16 MacExt = 2 // up to 3 + 65535 bytes
	MacExtLengthField1  MacExt = 3 // 1 or 2 bytes
)

// IEType is the IE type field encoding for MacExt 0/1/2 (Table 6.3.4-2).
type IEType uint32

const (
	IETypeNotDefined                       IEType = 0xFFFFFFFF
	IETypePaddingIE                        IEType = 0b0
	IETypeHigherLayerSignallingFlow1       IEType = 0b1
	IETypeHigherLayerSignallingFlow2       IEType = 0b10
	IETypeUserPlaneDataFlow1               IEType = 0b11
	IETypeUserPlaneDataFlow2               IEType = 0b100
	IETypeUserPlaneDataFlow3               IEType = 0b101
	IETypeUserPlaneDataFlow4               IEType = 0b110
	IETypeNetworkBeaconMessage             IEType = 0b1000
	IETypeClusterBeaconMessage             IEType = 0b1001
	IETypeAssociationRequestMessage        IEType = 0b1010
	IETypeAssociationResponseMessage       IEType = 0b1011
	IETypeAssociationReleaseMessage        IEType = 0b1100
	IETypeReconfigurationRequestMessage    IEType = 0b1101
	IETypeReconfigurationResponseMessage   IEType = 0b1110
	IETypeAdditionalMACMessages            IEType = 0b1111
	IETypeSecurityInfoIE                   IEType = 0b10000
	IETypeRouteInfoIE                      IEType = 0b10001
	IETypeResourceAllocationIE             IEType = 0b10010
	IETypeRandomAccessResourceIE           IEType = 0b10011
	IETypeRDCapabilityIE                   IEType = 0b10100
	IETypeNeighbouringIE                   IEType = 0b10101
	IETypeBroadcastIndicationIE            IEType = 0b10110
	IETypeGroupAssignmentIE                IEType = 0b10111
	IETypeLoadInfoIE                       IEType = 0b11000
	IETypeMeasurementReportIE              IEType = 0b11001
	IETypeEscape                           IEType = 0b111110
	IETypeIETypeExtension                  IEType = 0b111111
	// Project extensions: not part of the ETSI standard.
	IETypeForwardToIE    IEType = 0b11100
	IETypePowerTargetIE  IEType = 0b11101
	IETypeTimeAnnounceIE IEType = 0b11110
)

func ieTypeExt00011Valid(v IEType) bool {
	switch v {
	case IETypePaddingIE, IETypeHigherLayerSignallingFlow1, IETypeHigherLayerSignallingFlow2,
		IETypeUserPlaneDataFlow1, IETypeUserPlaneDataFlow2, IETypeUserPlaneDataFlow3, IETypeUserPlaneDataFlow4,
		IETypeNetworkBeaconMessage, IETypeClusterBeaconMessage, IETypeAssociationRequestMessage,
		IETypeAssociationResponseMessage, IETypeAssociationReleaseMessage, IETypeReconfigurationRequestMessage,
		IETypeReconfigurationResponseMessage, IETypeAdditionalMACMessages, IETypeSecurityInfoIE,
		IETypeRouteInfoIE, IETypeResourceAllocationIE, IETypeRandomAccessResourceIE, IETypeRDCapabilityIE,
		IETypeNeighbouringIE, IETypeBroadcastIndicationIE, IETypeGroupAssignmentIE, IETypeLoadInfoIE,
		IETypeMeasurementReportIE, IETypeEscape, IETypeIETypeExtension,
		IETypeForwardToIE, IETypePowerTargetIE, IETypeTimeAnnounceIE:
		return true
	default:
		return false
	}
}

func ieTypeFromCoded00_01_10(v uint32) IEType {
	t := IEType(v)
	if ieTypeExt00011Valid(t) {
		return t
	}
	return IETypeNotDefined
}

// IETypeLen0 is the IE type field encoding for MacExt 3 (1-bit length field)
// when that bit is 0 (Table 6.3.4-3).
type IETypeLen0 uint32

const (
	IETypeLen0NotDefined           IETypeLen0 = 0xFFFFFFFF
	IETypeLen0PaddingIE            IETypeLen0 = 0
	IETypeLen0ConfigurationRequest IETypeLen0 = 0b1
	IETypeLen0MACSecurityInfoIE    IETypeLen0 = 0b10000
	IETypeLen0Escape               IETypeLen0 = 0b11110
)

func ieTypeLen0FromCoded(v uint32) IETypeLen0 {
	switch IETypeLen0(v) {
	case IETypeLen0PaddingIE, IETypeLen0ConfigurationRequest, IETypeLen0MACSecurityInfoIE, IETypeLen0Escape:
		return IETypeLen0(v)
	default:
		return IETypeLen0NotDefined
	}
}

// IETypeLen1 is the IE type field encoding for MacExt 3 (1-bit length field)
// when that bit is 1 (Table 6.3.4-4).
type IETypeLen1 uint32

const (
	IETypeLen1NotDefined          IETypeLen1 = 0xFFFFFFFF
	IETypeLen1PaddingIE           IETypeLen1 = 0
	IETypeLen1RadioDeviceStatusIE IETypeLen1 = 0b1
	IETypeLen1Escape              IETypeLen1 = 0b11110
)

func ieTypeLen1FromCoded(v uint32) IETypeLen1 {
	switch IETypeLen1(v) {
	case IETypeLen1PaddingIE, IETypeLen1RadioDeviceStatusIE, IETypeLen1Escape:
		return IETypeLen1(v)
	default:
		return IETypeLen1NotDefined
	}
}

func macExtFromCoded(v uint32) MacExt {
	if v <= 3 {
		return MacExt(v)
	}
	return MacExtNotDefined
}

// MuxHeader is the MAC multiplexing header that precedes every MMIE in a
// MAC PDU; it carries the MAC extension field, a type-specific IE type
// field, and an optional length field.
type MuxHeader struct {
	MacExt MacExt

	IEType     IEType
	IETypeLen0 IETypeLen0
	IETypeLen1 IETypeLen1

	// Length is the payload length in bytes when MacExt selects an 8- or
	// 16-bit length field, or 0/1 when MacExt selects the 1-bit field.
	Length uint32
}

// PackedSizeMinToPeek is the number of bytes needed to determine a mux
// header's full packed size: just the first byte.
const PackedSizeMinToPeek = 1

// IsValid validates the field combination against Tables 6.3.4-1..4.
func (m MuxHeader) IsValid() bool {
	switch m.MacExt {
	case MacExtLengthField1:
		switch m.Length {
		case 0:
			return m.IETypeLen0 != IETypeLen0NotDefined
		case 1:
			return m.IETypeLen1 != IETypeLen1NotDefined
		default:
			return false
		}
	case MacExtLengthField8:
		if m.Length > uint32(bitfield.BitmaskLSB(8)) {
			return false
		}
		return m.IEType != IETypeNotDefined
	case MacExtLengthField16:
		if m.Length > uint32(bitfield.BitmaskLSB(16)) {
			return false
		}
		return m.IEType != IETypeNotDefined
	case MacExtNoLengthField:
		return m.IEType != IETypeNotDefined
	default:
		return false
	}
}

// PackedSize returns the full wire size of the mux header (not including
// the MMIE payload that follows it).
func (m MuxHeader) PackedSize() uint32 {
	switch m.MacExt {
	case MacExtLengthField8:
		return PackedSizeMinToPeek + 1
	case MacExtLengthField16:
		return PackedSizeMinToPeek + 2
	default:
		return PackedSizeMinToPeek
	}
}

// Pack writes the mux header into dst, which must be at least PackedSize() bytes.
func (m MuxHeader) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: mux header invalid field combination")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: mux header destination too small")
	}

	dst[0] = byte(m.MacExt) << 6

	switch m.MacExt {
	case MacExtLengthField1:
		dst[0] |= byte(m.Length) << 5
		if m.Length != 0 {
			dst[0] |= byte(m.IETypeLen1)
		} else {
			dst[0] |= byte(m.IETypeLen0)
		}
	case MacExtNoLengthField:
		dst[0] |= byte(m.IEType)
	case MacExtLengthField8:
		dst[0] |= byte(m.IEType)
		dst[1] = byte(m.Length)
	case MacExtLengthField16:
		dst[0] |= byte(m.IEType)
		dst[1] = byte(m.Length >> 8)
		dst[2] = byte(m.Length)
	}
	return nil
}

// UnpackMacExtIEType decodes only the first byte: MacExt and the IE type
// field. The length field (for the 8/16-bit cases) must still be read with
// UnpackLength once enough bytes are available; decoding a header is a
// two-step unpack.
func (m *MuxHeader) UnpackMacExtIEType(b0 byte) {
	m.MacExt = macExtFromCoded(uint32(b0 >> 6))

	switch m.MacExt {
	case MacExtNoLengthField, MacExtLengthField8, MacExtLengthField16:
		m.IEType = ieTypeFromCoded00_01_10(uint32(b0) & uint32(bitfield.BitmaskLSB(6)))
	case MacExtLengthField1:
		length := uint32(b0>>5) & 1
		m.Length = length
		code := uint32(b0) & uint32(bitfield.BitmaskLSB(5))
		if length == 0 {
			m.IETypeLen0 = ieTypeLen0FromCoded(code)
		} else {
			m.IETypeLen1 = ieTypeLen1FromCoded(code)
		}
	}
}

// UnpackLength reads the length field once MacExt is known and enough bytes
// of the mux header are available. src must start at the mux header's first
// byte.
func (m *MuxHeader) UnpackLength(src []byte) error {
	switch m.MacExt {
	case MacExtNoLengthField, MacExtLengthField1:
		return nil
	case MacExtLengthField8:
		if len(src) < 2 {
			return fmt.Errorf("mmie: mux header source too small for 8-bit length")
		}
		m.Length = uint32(src[1])
		return nil
	case MacExtLengthField16:
		if len(src) < 3 {
			return fmt.Errorf("mmie: mux header source too small for 16-bit length")
		}
		m.Length = uint32(src[1])<<8 | uint32(src[2])
		return nil
	default:
		return fmt.Errorf("mmie: mux header mac_ext not valid")
	}
}

// ResolvedIEType normalizes the three parallel IE-type fields into a single
// value usable as a pool/activation-table lookup key.
func (m MuxHeader) ResolvedIEType() uint32 {
	switch m.MacExt {
	case MacExtLengthField1:
		if m.Length == 0 {
			return uint32(m.IETypeLen0) | lenBitTag0
		}
		return uint32(m.IETypeLen1) | lenBitTag1
	default:
		return uint32(m.IEType)
	}
}

// Tag bits keep the Len0/Len1 code spaces (which overlap numerically with
// the 00/01/10 code space) distinguishable when used as a single lookup key.
const (
	lenBitTag0 = 1 << 16
	lenBitTag1 = 2 << 16
)
