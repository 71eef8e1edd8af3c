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

// LoadInfoChannelLoad carries the two optional channel occupancy
// percentages of the Load Info IE.
type LoadInfoChannelLoad struct {
	PercentageSubslotsFree uint32
	PercentageSubslotsBusy uint32
}

// LoadInfoIE is the Load Info IE of clause 6.4.3.10: the FT's association
// and traffic load, used by PTs when choosing which FT to associate with.
// MaxAssoc16Bit selects whether MAX NUMBER ASSOCIATED RDS occupies one or
// two octets.
type LoadInfoIE struct {
	MaxAssoc16Bit         bool
	RDPTLoadPercentage    *uint32
	RachLoadPercentage    *uint32
	ChannelLoad           *LoadInfoChannelLoad
	TrafficLoadPercentage uint32
	MaxNofAssociatedRD    uint32
	RDFTLoadPercentage    uint32
}

func (m *LoadInfoIE) IEType() IEType { return IETypeLoadInfoIE }

func (m *LoadInfoIE) IsValid() bool {
	if m.RDPTLoadPercentage != nil && *m.RDPTLoadPercentage > 0xFF {
		return false
	}
	if m.RachLoadPercentage != nil && *m.RachLoadPercentage > 0xFF {
		return false
	}
	if m.ChannelLoad != nil {
		if m.ChannelLoad.PercentageSubslotsFree > 0xFF || m.ChannelLoad.PercentageSubslotsBusy > 0xFF {
			return false
		}
	}
	if m.TrafficLoadPercentage > 0xFF {
		return false
	}
	maxAssoc := uint32(0xFF)
	if m.MaxAssoc16Bit {
		maxAssoc = 0xFFFF
	}
	return m.MaxNofAssociatedRD <= maxAssoc && m.RDFTLoadPercentage <= 0xFF
}

func (m *LoadInfoIE) PackedSize() uint32 {
	size := uint32(4)
	if m.MaxAssoc16Bit {
		size = 5
	}
	if m.RDPTLoadPercentage != nil {
		size++
	}
	if m.RachLoadPercentage != nil {
		size++
	}
	if m.ChannelLoad != nil {
		size += 2
	}
	return size
}

func (m *LoadInfoIE) PackedSizeMinToPeek() uint32 { return 1 }

func (m *LoadInfoIE) PackedSizeByPeeking(src []byte) (uint32, error) {
	if len(src) < 1 {
		return 0, fmt.Errorf("mmie: load info ie peek needs 1 byte")
	}
	size := uint32(4)
	if (src[0]>>3)&1 == 1 {
		size = 5
	}
	size += uint32(src[0]>>2) & 1
	size += uint32(src[0]>>1) & 1
	size += uint32(src[0]&1) * 2
	return size, nil
}

func (m *LoadInfoIE) PackedSizeOfMMHSDU() uint32 {
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeLoadInfoIE}
	return mh.PackedSize() + m.PackedSize()
}

func (m *LoadInfoIE) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeLoadInfoIE}
	return packMuxHeaderAndCopy(dst, mh, payload)
}

func (m *LoadInfoIE) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: load info ie invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: load info ie destination too small")
	}

	dst[0] = boolToBit(m.MaxAssoc16Bit) << 3
	dst[0] |= boolToBit(m.RDPTLoadPercentage != nil) << 2
	dst[0] |= boolToBit(m.RachLoadPercentage != nil) << 1
	dst[0] |= boolToBit(m.ChannelLoad != nil)

	dst[1] = byte(m.TrafficLoadPercentage)

	offset := uint32(3)
	if m.MaxAssoc16Bit {
		dst[2] = byte(m.MaxNofAssociatedRD >> 8)
		dst[3] = byte(m.MaxNofAssociatedRD)
		offset = 4
	} else {
		dst[2] = byte(m.MaxNofAssociatedRD)
	}

	dst[offset] = byte(m.RDFTLoadPercentage)
	offset++

	if m.RDPTLoadPercentage != nil {
		dst[offset] = byte(*m.RDPTLoadPercentage)
		offset++
	}
	if m.RachLoadPercentage != nil {
		dst[offset] = byte(*m.RachLoadPercentage)
		offset++
	}
	if m.ChannelLoad != nil {
		dst[offset] = byte(m.ChannelLoad.PercentageSubslotsFree)
		dst[offset+1] = byte(m.ChannelLoad.PercentageSubslotsBusy)
	}
	return nil
}

func (m *LoadInfoIE) Unpack(src []byte) error {
	size, err := m.PackedSizeByPeeking(src)
	if err != nil {
		return err
	}
	if uint32(len(src)) < size {
		return fmt.Errorf("mmie: load info ie source too small")
	}

	*m = LoadInfoIE{}

	m.MaxAssoc16Bit = (src[0]>>3)&1 == 1
	m.TrafficLoadPercentage = uint32(src[1])

	offset := uint32(3)
	if m.MaxAssoc16Bit {
		m.MaxNofAssociatedRD = uint32(src[2])<<8 | uint32(src[3])
		offset = 4
	} else {
		m.MaxNofAssociatedRD = uint32(src[2])
	}

	m.RDFTLoadPercentage = uint32(src[offset])
	offset++

	if (src[0]>>2)&1 == 1 {
		v := uint32(src[offset])
		m.RDPTLoadPercentage = &v
		offset++
	}
	if (src[0]>>1)&1 == 1 {
		v := uint32(src[offset])
		m.RachLoadPercentage = &v
		offset++
	}
	if src[0]&1 == 1 {
		m.ChannelLoad = &LoadInfoChannelLoad{
			PercentageSubslotsFree: uint32(src[offset]),
			PercentageSubslotsBusy: uint32(src[offset+1]),
		}
	}
	return nil
}
