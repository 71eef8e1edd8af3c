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

// ResourceAllocLengthType is the Length Type bit shared by the resource
// allocation and RACH resource IEs (Table 6.4.3.3-1).
type ResourceAllocLengthType uint32

const (
	ResourceAllocLengthInSubslots ResourceAllocLengthType = 0
	ResourceAllocLengthInSlots    ResourceAllocLengthType = 1
)

// ResourceAllocRepeatType distinguishes the two repeated-allocation
// encodings of the Repeat field.
type ResourceAllocRepeatType uint32

const (
	ResourceAllocRepeatInFollowingFrames   ResourceAllocRepeatType = 0
	ResourceAllocRepeatInFollowingSubslots ResourceAllocRepeatType = 1
)

// ResourceAllocation is one direction's allocation: first subslot, length
// type and length. The Start Subslot field is 8 bits for mu <= 4 and 16
// bits otherwise.
type ResourceAllocation struct {
	StartSubslot uint32
	LengthType   ResourceAllocLengthType
	Length       uint32
}

// ResourceAllocRepeatInfo carries the Repetition and Validity fields when
// the Repeat field selects a repeated allocation.
type ResourceAllocRepeatInfo struct {
	RepeatType                     ResourceAllocRepeatType
	AllowSpecificRepeatedResources bool
	Repetition                     uint32
	Validity                       uint32
}

// DectScheduledResourceFailure is the dectScheduledResourceFailure timer of
// Table 6.4.3.3-2. Coded values 0, 1 and 12..15 are reserved.
type DectScheduledResourceFailure uint32

const (
	DectScheduledResourceFailureNotDefined DectScheduledResourceFailure = 0xFFFFFFFF
	DectScheduledResourceFailure20ms       DectScheduledResourceFailure = 2
	DectScheduledResourceFailure50ms       DectScheduledResourceFailure = 3
	DectScheduledResourceFailure100ms      DectScheduledResourceFailure = 4
	DectScheduledResourceFailure200ms      DectScheduledResourceFailure = 5
	DectScheduledResourceFailure500ms      DectScheduledResourceFailure = 6
	DectScheduledResourceFailure1000ms     DectScheduledResourceFailure = 7
	DectScheduledResourceFailure1500ms     DectScheduledResourceFailure = 8
	DectScheduledResourceFailure3000ms     DectScheduledResourceFailure = 9
	DectScheduledResourceFailure4000ms     DectScheduledResourceFailure = 10
	DectScheduledResourceFailure5000ms     DectScheduledResourceFailure = 11
)

func dectScheduledResourceFailureFromCoded(v uint32) DectScheduledResourceFailure {
	if v >= uint32(DectScheduledResourceFailure20ms) && v <= uint32(DectScheduledResourceFailure5000ms) {
		return DectScheduledResourceFailure(v)
	}
	return DectScheduledResourceFailureNotDefined
}

// Repeat field codes of Table 6.4.3.3-1.
const (
	repeatSingleAllocation             = 0
	repeatFollowingFrames              = 1
	repeatFollowingSubslots            = 2
	repeatFollowingFramesAllowSpecific = 3
	repeatFollowingSubslotsAllowSpec   = 4
)

// ResourceAllocationIE is the Resource Allocation IE of clause 6.4.3.3: the
// FT's grant of scheduled DL/UL resources to one PT. An IE with neither
// direction present releases all previously scheduled resources. Its Start
// Subslot field width depends on mu, so SetMu must be called before
// Pack/Unpack when mu > 4.
type ResourceAllocationIE struct {
	AllocationDL                 *ResourceAllocation
	AllocationUL                 *ResourceAllocation
	IsAdditionalAllocation       bool
	ShortRDID                    *uint32
	RepeatInfo                   *ResourceAllocRepeatInfo
	SFNOffset                    *uint32
	Channel                      *uint32
	DectScheduledResourceFailure *DectScheduledResourceFailure

	mu uint32
}

func (m *ResourceAllocationIE) IEType() IEType { return IETypeResourceAllocationIE }

// SetMu sets the subcarrier scaling factor that determines the Start
// Subslot field width.
func (m *ResourceAllocationIE) SetMu(mu uint32) { m.mu = mu }

func (m *ResourceAllocationIE) startSubslotBytes() uint32 {
	if m.mu <= 4 {
		return 1
	}
	return 2
}

func (m *ResourceAllocationIE) allocationValid(a *ResourceAllocation) bool {
	maxStart := uint32(0xFF)
	if m.mu > 4 {
		maxStart = 0xFFFF
	}
	return a.StartSubslot <= maxStart && a.Length <= 0x7F
}

func (m *ResourceAllocationIE) IsValid() bool {
	// releasing all scheduled resources carries no other fields
	if m.AllocationDL == nil && m.AllocationUL == nil {
		return true
	}
	if m.AllocationDL != nil && !m.allocationValid(m.AllocationDL) {
		return false
	}
	if m.AllocationUL != nil && !m.allocationValid(m.AllocationUL) {
		return false
	}
	if m.ShortRDID != nil && *m.ShortRDID > 0xFFFF {
		return false
	}
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
	if m.DectScheduledResourceFailure != nil && *m.DectScheduledResourceFailure == DectScheduledResourceFailureNotDefined {
		return false
	}
	return true
}

func (m *ResourceAllocationIE) PackedSize() uint32 {
	if m.AllocationDL == nil && m.AllocationUL == nil {
		return 1
	}

	size := uint32(2) + m.startSubslotBytes() + 1
	if m.AllocationDL != nil && m.AllocationUL != nil {
		size += m.startSubslotBytes() + 1
	}
	if m.ShortRDID != nil {
		size += 2
	}
	if m.RepeatInfo != nil {
		size += 2
	}
	if m.SFNOffset != nil {
		size++
	}
	if m.Channel != nil {
		size += 2
	}
	if m.DectScheduledResourceFailure != nil {
		size++
	}
	return size
}

func (m *ResourceAllocationIE) PackedSizeMinToPeek() uint32 { return 2 }

func (m *ResourceAllocationIE) PackedSizeByPeeking(src []byte) (uint32, error) {
	if uint32(len(src)) < m.PackedSizeMinToPeek() {
		return 0, fmt.Errorf("mmie: resource allocation ie peek needs 2 bytes")
	}

	var size uint32
	switch src[0] >> 6 {
	case 0b00:
		return 1, nil
	case 0b01, 0b10:
		size = 2 + m.startSubslotBytes() + 1
	case 0b11:
		size = 2 + 2*(m.startSubslotBytes()+1)
	}

	if (src[0]>>4)&1 == 1 {
		size += 2
	}

	switch (src[0] >> 1) & 0b111 {
	case repeatSingleAllocation:
	case repeatFollowingFrames, repeatFollowingSubslots,
		repeatFollowingFramesAllowSpecific, repeatFollowingSubslotsAllowSpec:
		size += 2
	default:
		return 0, ErrNonreservedFieldSetToReserved
	}

	size += uint32(src[0] & 1)
	size += uint32(src[1]>>7) * 2
	size += uint32(src[1]>>6) & 1
	return size, nil
}

func (m *ResourceAllocationIE) PackedSizeOfMMHSDU() uint32 {
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeResourceAllocationIE}
	return mh.PackedSize() + m.PackedSize()
}

func (m *ResourceAllocationIE) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeResourceAllocationIE}
	return packMuxHeaderAndCopy(dst, mh, payload)
}

func (m *ResourceAllocationIE) repeatCode() byte {
	if m.RepeatInfo == nil {
		return repeatSingleAllocation
	}
	if m.RepeatInfo.RepeatType == ResourceAllocRepeatInFollowingFrames {
		if m.RepeatInfo.AllowSpecificRepeatedResources {
			return repeatFollowingFramesAllowSpecific
		}
		return repeatFollowingFrames
	}
	if m.RepeatInfo.AllowSpecificRepeatedResources {
		return repeatFollowingSubslotsAllowSpec
	}
	return repeatFollowingSubslots
}

func (m *ResourceAllocationIE) packAllocation(dst []byte, a *ResourceAllocation) uint32 {
	n := m.startSubslotBytes()
	if n == 2 {
		dst[0] = byte(a.StartSubslot >> 8)
		dst[1] = byte(a.StartSubslot)
	} else {
		dst[0] = byte(a.StartSubslot)
	}
	dst[n] = byte(a.LengthType) << 7
	dst[n] |= byte(a.Length)
	return n + 1
}

func (m *ResourceAllocationIE) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: resource allocation ie invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: resource allocation ie destination too small")
	}

	dst[0] = boolToBit(m.AllocationUL != nil) << 7
	dst[0] |= boolToBit(m.AllocationDL != nil) << 6

	if dst[0] == 0 {
		return nil
	}

	dst[0] |= boolToBit(m.IsAdditionalAllocation) << 5
	dst[0] |= boolToBit(m.ShortRDID != nil) << 4
	dst[0] |= m.repeatCode() << 1
	dst[0] |= boolToBit(m.SFNOffset != nil)

	dst[1] = boolToBit(m.Channel != nil) << 7
	dst[1] |= boolToBit(m.DectScheduledResourceFailure != nil) << 6

	offset := uint32(2)
	if m.AllocationDL != nil {
		offset += m.packAllocation(dst[offset:], m.AllocationDL)
	}
	if m.AllocationUL != nil {
		offset += m.packAllocation(dst[offset:], m.AllocationUL)
	}
	if m.ShortRDID != nil {
		dst[offset] = byte(*m.ShortRDID >> 8)
		dst[offset+1] = byte(*m.ShortRDID)
		offset += 2
	}
	if m.RepeatInfo != nil {
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
	if m.DectScheduledResourceFailure != nil {
		dst[offset] = byte(*m.DectScheduledResourceFailure)
	}
	return nil
}

func (m *ResourceAllocationIE) unpackAllocation(src []byte) (ResourceAllocation, uint32) {
	var a ResourceAllocation
	n := m.startSubslotBytes()
	if n == 2 {
		a.StartSubslot = uint32(src[0])<<8 | uint32(src[1])
	} else {
		a.StartSubslot = uint32(src[0])
	}
	a.LengthType = ResourceAllocLengthType(src[n] >> 7)
	a.Length = uint32(src[n]) & 0x7F
	return a, n + 1
}

func (m *ResourceAllocationIE) Unpack(src []byte) error {
	if len(src) < 1 {
		return fmt.Errorf("mmie: resource allocation ie source too small")
	}

	mu := m.mu
	*m = ResourceAllocationIE{mu: mu}

	// allocation type 00 releases all scheduled resources; no other field
	// follows, not even the channel/RLF flag octet
	if src[0]>>6 == 0 {
		return nil
	}

	size, err := m.PackedSizeByPeeking(src)
	if err != nil {
		return err
	}
	if uint32(len(src)) < size {
		return fmt.Errorf("mmie: resource allocation ie source too small")
	}

	offset := uint32(2)
	if (src[0]>>6)&1 == 1 {
		a, n := m.unpackAllocation(src[offset:])
		m.AllocationDL = &a
		offset += n
	}
	if (src[0]>>7)&1 == 1 {
		a, n := m.unpackAllocation(src[offset:])
		m.AllocationUL = &a
		offset += n
	}

	m.IsAdditionalAllocation = (src[0]>>5)&1 == 1

	if (src[0]>>4)&1 == 1 {
		v := uint32(src[offset])<<8 | uint32(src[offset+1])
		m.ShortRDID = &v
		offset += 2
	}

	switch (src[0] >> 1) & 0b111 {
	case repeatSingleAllocation:
	case repeatFollowingFrames, repeatFollowingSubslots,
		repeatFollowingFramesAllowSpecific, repeatFollowingSubslotsAllowSpec:
		code := (src[0] >> 1) & 0b111
		info := ResourceAllocRepeatInfo{
			RepeatType:                     ResourceAllocRepeatInFollowingFrames,
			AllowSpecificRepeatedResources: code == repeatFollowingFramesAllowSpecific || code == repeatFollowingSubslotsAllowSpec,
			Repetition:                     uint32(src[offset]),
			Validity:                       uint32(src[offset+1]),
		}
		if code == repeatFollowingSubslots || code == repeatFollowingSubslotsAllowSpec {
			info.RepeatType = ResourceAllocRepeatInFollowingSubslots
		}
		m.RepeatInfo = &info
		offset += 2
	default:
		return ErrNonreservedFieldSetToReserved
	}

	if src[0]&1 == 1 {
		v := uint32(src[offset])
		m.SFNOffset = &v
		offset++
	}
	if src[1]>>7 == 1 {
		v := (uint32(src[offset])<<8 | uint32(src[offset+1])) & 0x1FFF
		m.Channel = &v
		offset += 2
	}
	if (src[1]>>6)&1 == 1 {
		v := dectScheduledResourceFailureFromCoded(uint32(src[offset]) & 0xf)
		m.DectScheduledResourceFailure = &v
	}

	if !m.IsValid() {
		return fmt.Errorf("mmie: resource allocation ie decoded invalid field values")
	}
	return nil
}
