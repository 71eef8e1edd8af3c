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

// RachCWMin is the CW Min Sig field of Table 6.4.3.4-1, coding the minimum
// contention window {0, 8, 16, .., 56}.
type RachCWMin uint32

const (
	RachCWMinNotDefined RachCWMin = 0xFFFFFFFF
	RachCWMin0          RachCWMin = 0
	RachCWMin8          RachCWMin = 1
	RachCWMin16         RachCWMin = 2
	RachCWMin24         RachCWMin = 3
	RachCWMin32         RachCWMin = 4
	RachCWMin40         RachCWMin = 5
	RachCWMin48         RachCWMin = 6
	RachCWMin56         RachCWMin = 7
)

func rachCWMinFromCoded(v uint32) RachCWMin {
	if v <= uint32(RachCWMin56) {
		return RachCWMin(v)
	}
	return RachCWMinNotDefined
}

// RachCWMax is the CW Max Sig field, coding the maximum contention window
// {0, 256, 512, .., 1792}.
type RachCWMax uint32

const (
	RachCWMaxNotDefined RachCWMax = 0xFFFFFFFF
	RachCWMax0          RachCWMax = 0
	RachCWMax256        RachCWMax = 1
	RachCWMax512        RachCWMax = 2
	RachCWMax768        RachCWMax = 3
	RachCWMax1024       RachCWMax = 4
	RachCWMax1280       RachCWMax = 5
	RachCWMax1536       RachCWMax = 6
	RachCWMax1792       RachCWMax = 7
)

func rachCWMaxFromCoded(v uint32) RachCWMax {
	if v <= uint32(RachCWMax1792) {
		return RachCWMax(v)
	}
	return RachCWMaxNotDefined
}

// RachDectDelay is the DECT Delay bit: when the RACH response window opens.
type RachDectDelay uint32

const (
	RachDelayResponseAfter3Subslots RachDectDelay = 0
	RachDelayResponseAfterHalfFrame RachDectDelay = 1
)

// RachRepeatInfo carries the Repetition and Validity fields when the RACH
// allocation repeats. The allow-specific variant of the Repeat field does
// not exist for RACH resources.
type RachRepeatInfo struct {
	RepeatType ResourceAllocRepeatType
	Repetition uint32
	Validity   uint32
}

// RandomAccessResourceIE is the Random Access Resource IE of clause
// 6.4.3.4: where and how PTs may contend for uplink access. Like the
// Resource Allocation IE its Start Subslot field width depends on mu.
type RandomAccessResourceIE struct {
	RepeatInfo           *RachRepeatInfo
	SFNOffset            *uint32
	Channel              *uint32
	Channel2             *uint32
	Allocation           ResourceAllocation
	MaxRachLengthType    ResourceAllocLengthType
	MaxRachLength        uint32
	CWMin                RachCWMin
	DectDelay            RachDectDelay
	ResponseWindowLength uint32
	CWMax                RachCWMax

	mu uint32
}

func (m *RandomAccessResourceIE) IEType() IEType { return IETypeRandomAccessResourceIE }

// SetMu sets the subcarrier scaling factor that determines the Start
// Subslot field width.
func (m *RandomAccessResourceIE) SetMu(mu uint32) { m.mu = mu }

func (m *RandomAccessResourceIE) startSubslotBytes() uint32 {
	if m.mu <= 4 {
		return 1
	}
	return 2
}

func (m *RandomAccessResourceIE) IsValid() bool {
	if m.RepeatInfo != nil {
		if m.RepeatInfo.Repetition == 0 || m.RepeatInfo.Repetition > 0xFF || m.RepeatInfo.Validity > 0xFF {
			return false
		}
	}
	if m.SFNOffset != nil && *m.SFNOffset > 0xFF {
		return false
	}
	if m.Channel != nil && !isAbsoluteChannelNumberInRange(*m.Channel) {
		return false
	}
	if m.Channel2 != nil && !isAbsoluteChannelNumberInRange(*m.Channel2) {
		return false
	}
	maxStart := uint32(0xFF)
	if m.mu > 4 {
		maxStart = 0xFFFF
	}
	if m.Allocation.StartSubslot > maxStart || m.Allocation.Length > 0x7F {
		return false
	}
	return m.MaxRachLength <= 0xF && m.CWMin != RachCWMinNotDefined &&
		m.ResponseWindowLength <= 0xF && m.CWMax != RachCWMaxNotDefined
}

func (m *RandomAccessResourceIE) PackedSize() uint32 {
	size := uint32(4) + m.startSubslotBytes()
	if m.RepeatInfo != nil {
		size += 2
	}
	if m.SFNOffset != nil {
		size++
	}
	if m.Channel != nil {
		size += 2
	}
	if m.Channel2 != nil {
		size += 2
	}
	return size
}

func (m *RandomAccessResourceIE) PackedSizeMinToPeek() uint32 { return 1 }

func (m *RandomAccessResourceIE) PackedSizeByPeeking(src []byte) (uint32, error) {
	if len(src) < 1 {
		return 0, fmt.Errorf("mmie: random access resource ie peek needs 1 byte")
	}

	size := uint32(4) + m.startSubslotBytes()

	switch (src[0] >> 3) & 0b11 {
	case repeatSingleAllocation:
	case repeatFollowingFrames, repeatFollowingSubslots:
		size += 2
	default:
		return 0, ErrNonreservedFieldSetToReserved
	}

	size += uint32(src[0]>>2) & 1
	size += (uint32(src[0]>>1) & 1) * 2
	size += uint32(src[0]&1) * 2
	return size, nil
}

func (m *RandomAccessResourceIE) PackedSizeOfMMHSDU() uint32 {
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeRandomAccessResourceIE}
	return mh.PackedSize() + m.PackedSize()
}

func (m *RandomAccessResourceIE) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeRandomAccessResourceIE}
	return packMuxHeaderAndCopy(dst, mh, payload)
}

func (m *RandomAccessResourceIE) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: random access resource ie invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: random access resource ie destination too small")
	}

	dst[0] = boolToBit(m.SFNOffset != nil) << 2
	dst[0] |= boolToBit(m.Channel != nil) << 1
	dst[0] |= boolToBit(m.Channel2 != nil)

	n := m.startSubslotBytes()
	if n == 2 {
		dst[1] = byte(m.Allocation.StartSubslot >> 8)
		dst[2] = byte(m.Allocation.StartSubslot)
	} else {
		dst[1] = byte(m.Allocation.StartSubslot)
	}
	offset := 1 + n

	dst[offset] = byte(m.Allocation.LengthType) << 7
	dst[offset] |= byte(m.Allocation.Length)
	offset++

	dst[offset] = byte(m.MaxRachLengthType) << 7
	dst[offset] |= byte(m.MaxRachLength) << 3
	dst[offset] |= byte(m.CWMin)
	offset++

	dst[offset] = byte(m.DectDelay) << 7
	dst[offset] |= byte(m.ResponseWindowLength) << 3
	dst[offset] |= byte(m.CWMax)
	offset++

	if m.RepeatInfo == nil {
		dst[0] |= repeatSingleAllocation << 3
	} else {
		if m.RepeatInfo.RepeatType == ResourceAllocRepeatInFollowingFrames {
			dst[0] |= repeatFollowingFrames << 3
		} else {
			dst[0] |= repeatFollowingSubslots << 3
		}
		dst[offset] = byte(m.RepeatInfo.Repetition)
		dst[offset+1] = byte(m.RepeatInfo.Validity)
		offset += 2
	}

	if m.SFNOffset != nil {
		dst[offset] = byte(*m.SFNOffset)
		offset++
	}
	if m.Channel != nil {
		dst[offset] = byte(*m.Channel >> 8)
		dst[offset+1] = byte(*m.Channel)
		offset += 2
	}
	if m.Channel2 != nil {
		dst[offset] = byte(*m.Channel2 >> 8)
		dst[offset+1] = byte(*m.Channel2)
	}
	return nil
}

func (m *RandomAccessResourceIE) Unpack(src []byte) error {
	size, err := m.PackedSizeByPeeking(src)
	if err != nil {
		return err
	}
	if uint32(len(src)) < size {
		return fmt.Errorf("mmie: random access resource ie source too small")
	}

	mu := m.mu
	*m = RandomAccessResourceIE{mu: mu}

	n := m.startSubslotBytes()
	if n == 2 {
		m.Allocation.StartSubslot = uint32(src[1])<<8 | uint32(src[2])
	} else {
		m.Allocation.StartSubslot = uint32(src[1])
	}
	offset := 1 + n

	m.Allocation.LengthType = ResourceAllocLengthType(src[offset] >> 7)
	m.Allocation.Length = uint32(src[offset]) & 0x7F
	offset++

	m.MaxRachLengthType = ResourceAllocLengthType(src[offset] >> 7)
	m.MaxRachLength = uint32(src[offset]>>3) & 0xF
	m.CWMin = rachCWMinFromCoded(uint32(src[offset]) & 0b111)
	offset++

	m.DectDelay = RachDectDelay(src[offset] >> 7)
	m.ResponseWindowLength = uint32(src[offset]>>3) & 0xF
	m.CWMax = rachCWMaxFromCoded(uint32(src[offset]) & 0b111)
	offset++

	switch (src[0] >> 3) & 0b11 {
	case repeatSingleAllocation:
	case repeatFollowingFrames, repeatFollowingSubslots:
		info := RachRepeatInfo{
			RepeatType: ResourceAllocRepeatInFollowingFrames,
			Repetition: uint32(src[offset]),
			Validity:   uint32(src[offset+1]),
		}
		if (src[0]>>3)&0b11 == repeatFollowingSubslots {
			info.RepeatType = ResourceAllocRepeatInFollowingSubslots
		}
		m.RepeatInfo = &info
		offset += 2
	default:
		return ErrNonreservedFieldSetToReserved
	}

	if (src[0]>>2)&1 == 1 {
		v := uint32(src[offset])
		m.SFNOffset = &v
		offset++
	}
	if (src[0]>>1)&1 == 1 {
		v := (uint32(src[offset])&0x1F)<<8 | uint32(src[offset+1])
		m.Channel = &v
		offset += 2
	}
	if src[0]&1 == 1 {
		v := (uint32(src[offset])&0x1F)<<8 | uint32(src[offset+1])
		m.Channel2 = &v
	}

	if !m.IsValid() {
		return fmt.Errorf("mmie: random access resource ie decoded invalid field values")
	}
	return nil
}
