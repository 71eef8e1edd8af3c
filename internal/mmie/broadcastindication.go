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

// BcastIndicationType is the INDICATION TYPE field of Table 6.4.3.7-1.
type BcastIndicationType uint32

const (
	BcastIndicationTypeNotDefined           BcastIndicationType = 0xFFFFFFFF
	BcastIndicationTypePaging               BcastIndicationType = 0
	BcastIndicationTypeRandomAccessResponse BcastIndicationType = 1
)

func bcastIndicationTypeFromCoded(v uint32) BcastIndicationType {
	if v <= uint32(BcastIndicationTypeRandomAccessResponse) {
		return BcastIndicationType(v)
	}
	return BcastIndicationTypeNotDefined
}

// BcastIDType is the ID TYPE field: whether RD ID carries a short or long
// radio device ID.
type BcastIDType uint32

const (
	BcastIDTypeNotDefined BcastIDType = 0xFFFFFFFF
	BcastIDTypeShortRDID  BcastIDType = 0
	BcastIDTypeLongRDID   BcastIDType = 1
)

func bcastIDTypeFromCoded(v uint32) BcastIDType {
	if v <= uint32(BcastIDTypeLongRDID) {
		return BcastIDType(v)
	}
	return BcastIDTypeNotDefined
}

// BcastAckNack is the ACK/NACK field, present for random access responses.
type BcastAckNack uint32

const (
	BcastAckNackNotDefined BcastAckNack = 0xFFFFFFFF
	BcastNack              BcastAckNack = 0
	BcastAck               BcastAckNack = 1
)

// BcastFeedbackType is the FEEDBACK field selecting what the MCS OR MIMO
// FEEDBACK octet carries.
type BcastFeedbackType uint32

const (
	BcastFeedbackNotDefined   BcastFeedbackType = 0xFFFFFFFF
	BcastFeedbackNone         BcastFeedbackType = 0
	BcastFeedbackMCS          BcastFeedbackType = 1
	BcastFeedbackMIMO2Antenna BcastFeedbackType = 2
	BcastFeedbackMIMO4Antenna BcastFeedbackType = 3
)

func bcastFeedbackTypeFromCoded(v uint32) BcastFeedbackType {
	if v <= uint32(BcastFeedbackMIMO4Antenna) {
		return BcastFeedbackType(v)
	}
	return BcastFeedbackNotDefined
}

// BcastChannelQuality is the channel quality of Table 6.2.2-3; coded value
// 0 (out of range) is reserved here, 1..12 map to MCS 0..11.
type BcastChannelQuality uint32

const (
	BcastChannelQualityNotDefined BcastChannelQuality = 0xFFFFFFFF
	BcastChannelQualityMCS0       BcastChannelQuality = 1
	BcastChannelQualityMCS11      BcastChannelQuality = 12
)

func bcastChannelQualityFromCoded(v uint32) BcastChannelQuality {
	if v >= uint32(BcastChannelQualityMCS0) && v <= uint32(BcastChannelQualityMCS11) {
		return BcastChannelQuality(v)
	}
	return BcastChannelQualityNotDefined
}

// BcastNofLayers is the MIMO layer count of the MCS OR MIMO FEEDBACK octet.
type BcastNofLayers uint32

const (
	BcastNofLayersNotDefined BcastNofLayers = 0xFFFFFFFF
	BcastSingleLayer         BcastNofLayers = 0
	BcastDualLayer           BcastNofLayers = 1
	BcastFourLayers          BcastNofLayers = 2
)

func bcastNofLayersFromCoded(v uint32) BcastNofLayers {
	if v <= uint32(BcastFourLayers) {
		return BcastNofLayers(v)
	}
	return BcastNofLayersNotDefined
}

// Codebook index bounds of ETSI TS 103 636-3 Tables 6.3.4-1..5.
const (
	cbiMax2AntennasSingleLayer = 5
	cbiMax2AntennasDualLayer   = 2
	cbiMax4AntennasSingleLayer = 27
	cbiMax4AntennasDualLayer   = 21
	cbiMax4AntennasFourLayers  = 4
)

// BcastMIMOFeedback is the MIMO variant of the MCS OR MIMO FEEDBACK octet.
type BcastMIMOFeedback struct {
	NofLayers     BcastNofLayers
	CodebookIndex uint32
}

// BroadcastIndicationIE is the Broadcast Indication IE of clause 6.4.3.7:
// the FT pages a PT or answers its random access attempt, optionally
// attaching MCS or MIMO feedback. Exactly one of ChannelQuality and
// MIMOFeedback is set when Feedback selects that variant.
type BroadcastIndicationIE struct {
	IndicationType              BcastIndicationType
	IDType                      BcastIDType
	AckNack                     BcastAckNack
	Feedback                    BcastFeedbackType
	ResourceAllocationIEFollows bool
	RDID                        uint32
	ChannelQuality              BcastChannelQuality
	MIMOFeedback                *BcastMIMOFeedback
}

func (m *BroadcastIndicationIE) IEType() IEType { return IETypeBroadcastIndicationIE }

func (m *BroadcastIndicationIE) IsValid() bool {
	if m.IndicationType == BcastIndicationTypeNotDefined || m.IDType == BcastIDTypeNotDefined {
		return false
	}
	if m.IDType == BcastIDTypeShortRDID && m.RDID > 0xFFFF {
		return false
	}
	if m.IndicationType != BcastIndicationTypeRandomAccessResponse {
		return true
	}

	// random access responses address the PT by short RD ID and always
	// carry the ACK/NACK and FEEDBACK fields
	if m.IDType != BcastIDTypeShortRDID || m.AckNack == BcastAckNackNotDefined {
		return false
	}

	switch m.Feedback {
	case BcastFeedbackNone:
		return true
	case BcastFeedbackMCS:
		return m.ChannelQuality != BcastChannelQualityNotDefined
	case BcastFeedbackMIMO2Antenna:
		if m.MIMOFeedback == nil {
			return false
		}
		switch m.MIMOFeedback.NofLayers {
		case BcastSingleLayer:
			return m.MIMOFeedback.CodebookIndex <= cbiMax2AntennasSingleLayer
		case BcastDualLayer:
			return m.MIMOFeedback.CodebookIndex <= cbiMax2AntennasDualLayer
		default:
			return false
		}
	case BcastFeedbackMIMO4Antenna:
		if m.MIMOFeedback == nil {
			return false
		}
		switch m.MIMOFeedback.NofLayers {
		case BcastSingleLayer:
			return m.MIMOFeedback.CodebookIndex <= cbiMax4AntennasSingleLayer
		case BcastDualLayer:
			return m.MIMOFeedback.CodebookIndex <= cbiMax4AntennasDualLayer
		case BcastFourLayers:
			return m.MIMOFeedback.CodebookIndex <= cbiMax4AntennasFourLayers
		default:
			return false
		}
	default:
		return false
	}
}

func (m *BroadcastIndicationIE) PackedSize() uint32 {
	size := uint32(5)
	if m.IDType == BcastIDTypeShortRDID {
		size = 3
	}
	if m.IndicationType == BcastIndicationTypeRandomAccessResponse && m.Feedback != BcastFeedbackNone {
		size++
	}
	return size
}

func (m *BroadcastIndicationIE) PackedSizeMinToPeek() uint32 { return 1 }

func (m *BroadcastIndicationIE) PackedSizeByPeeking(src []byte) (uint32, error) {
	if len(src) < 1 {
		return 0, fmt.Errorf("mmie: broadcast indication ie peek needs 1 byte")
	}
	if bcastIndicationTypeFromCoded(uint32(src[0]>>5)) == BcastIndicationTypeNotDefined {
		return 0, ErrNonreservedFieldSetToReserved
	}

	size := uint32(5)
	if (src[0]>>4)&1 == uint8(BcastIDTypeShortRDID) {
		size = 3
	}
	if src[0]>>5 == uint8(BcastIndicationTypeRandomAccessResponse) && (src[0]>>1)&0b11 != uint8(BcastFeedbackNone) {
		size++
	}
	return size, nil
}

func (m *BroadcastIndicationIE) PackedSizeOfMMHSDU() uint32 {
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeBroadcastIndicationIE}
	return mh.PackedSize() + m.PackedSize()
}

func (m *BroadcastIndicationIE) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeBroadcastIndicationIE}
	return packMuxHeaderAndCopy(dst, mh, payload)
}

func (m *BroadcastIndicationIE) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: broadcast indication ie invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: broadcast indication ie destination too small")
	}

	dst[0] = byte(m.IndicationType) << 5
	dst[0] |= byte(m.IDType) << 4
	dst[0] |= boolToBit(m.ResourceAllocationIEFollows)

	offset := uint32(5)
	if m.IDType == BcastIDTypeShortRDID {
		dst[1] = byte(m.RDID >> 8)
		dst[2] = byte(m.RDID)
		offset = 3
	} else {
		dst[1] = byte(m.RDID >> 24)
		dst[2] = byte(m.RDID >> 16)
		dst[3] = byte(m.RDID >> 8)
		dst[4] = byte(m.RDID)
	}

	if m.IndicationType != BcastIndicationTypeRandomAccessResponse {
		return nil
	}

	dst[0] |= byte(m.AckNack) << 3
	dst[0] |= byte(m.Feedback) << 1

	switch m.Feedback {
	case BcastFeedbackMCS:
		dst[offset] = byte(m.ChannelQuality)
	case BcastFeedbackMIMO2Antenna:
		dst[offset] = byte(m.MIMOFeedback.NofLayers) << 3
		dst[offset] |= byte(m.MIMOFeedback.CodebookIndex)
	case BcastFeedbackMIMO4Antenna:
		dst[offset] = byte(m.MIMOFeedback.NofLayers) << 6
		dst[offset] |= byte(m.MIMOFeedback.CodebookIndex)
	}
	return nil
}

func (m *BroadcastIndicationIE) Unpack(src []byte) error {
	size, err := m.PackedSizeByPeeking(src)
	if err != nil {
		return err
	}
	if uint32(len(src)) < size {
		return fmt.Errorf("mmie: broadcast indication ie source too small")
	}

	*m = BroadcastIndicationIE{
		AckNack:        BcastAckNackNotDefined,
		Feedback:       BcastFeedbackNotDefined,
		ChannelQuality: BcastChannelQualityNotDefined,
	}

	m.IndicationType = bcastIndicationTypeFromCoded(uint32(src[0] >> 5))
	m.IDType = bcastIDTypeFromCoded(uint32(src[0]>>4) & 1)
	m.ResourceAllocationIEFollows = src[0]&1 == 1

	offset := uint32(5)
	if m.IDType == BcastIDTypeShortRDID {
		m.RDID = uint32(src[1])<<8 | uint32(src[2])
		offset = 3
	} else {
		m.RDID = uint32(src[1])<<24 | uint32(src[2])<<16 | uint32(src[3])<<8 | uint32(src[4])
	}

	if m.IndicationType == BcastIndicationTypeRandomAccessResponse {
		m.AckNack = BcastAckNack((src[0] >> 3) & 1)
		m.Feedback = bcastFeedbackTypeFromCoded(uint32(src[0]>>1) & 0b11)

		switch m.Feedback {
		case BcastFeedbackMCS:
			m.ChannelQuality = bcastChannelQualityFromCoded(uint32(src[offset]) & 0xF)
		case BcastFeedbackMIMO2Antenna:
			m.MIMOFeedback = &BcastMIMOFeedback{
				NofLayers:     bcastNofLayersFromCoded(uint32(src[offset]>>3) & 1),
				CodebookIndex: uint32(src[offset]) & 0b111,
			}
		case BcastFeedbackMIMO4Antenna:
			m.MIMOFeedback = &BcastMIMOFeedback{
				NofLayers:     bcastNofLayersFromCoded(uint32(src[offset] >> 6)),
				CodebookIndex: uint32(src[offset]) & 0x3F,
			}
		}
	}

	if !m.IsValid() {
		return fmt.Errorf("mmie: broadcast indication ie decoded invalid field values")
	}
	return nil
}
