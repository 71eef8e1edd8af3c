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

// GroupResourceDirection is the DIRECT bit of one resource assignment
// (Table 6.4.3.9-1).
type GroupResourceDirection uint32

const (
	GroupResourceDirectionAsPreassigned GroupResourceDirection = 0
	GroupResourceDirectionInverted      GroupResourceDirection = 1
)

// GroupResourceAssignment is one DIRECT/RESOURCE TAG pair.
type GroupResourceAssignment struct {
	Direct      GroupResourceDirection
	ResourceTag uint32
}

// GroupAssignmentIE is the Group Assignment IE of clause 6.4.3.9: it maps a
// group of PTs onto preassigned resource tags. Its length is carried in the
// mux header's 8-bit length field, so the assignment count is whatever the
// framed body holds beyond the first octet.
type GroupAssignmentIE struct {
	Single              bool
	GroupID             uint32
	ResourceAssignments []GroupResourceAssignment
}

func (m *GroupAssignmentIE) IEType() IEType { return IETypeGroupAssignmentIE }

func (m *GroupAssignmentIE) IsValid() bool {
	if m.Single && len(m.ResourceAssignments) != 1 {
		return false
	}
	if !m.Single && len(m.ResourceAssignments) < 2 {
		return false
	}
	if m.GroupID > 0x7F {
		return false
	}
	for _, a := range m.ResourceAssignments {
		if a.Direct > GroupResourceDirectionInverted || a.ResourceTag > 0x7F {
			return false
		}
	}
	return true
}

func (m *GroupAssignmentIE) PackedSize() uint32 {
	return 1 + uint32(len(m.ResourceAssignments))
}

func (m *GroupAssignmentIE) muxHeader() MuxHeader {
	return MuxHeader{MacExt: MacExtLengthField8, IEType: IETypeGroupAssignmentIE, Length: m.PackedSize()}
}

func (m *GroupAssignmentIE) PackedSizeOfMMHSDU() uint32 {
	return m.muxHeader().PackedSize() + m.PackedSize()
}

func (m *GroupAssignmentIE) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	return packMuxHeaderAndCopy(dst, m.muxHeader(), payload)
}

func (m *GroupAssignmentIE) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: group assignment ie invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: group assignment ie destination too small")
	}

	dst[0] = boolToBit(m.Single) << 7
	dst[0] |= byte(m.GroupID)

	for i, a := range m.ResourceAssignments {
		dst[1+i] = byte(a.Direct) << 7
		dst[1+i] |= byte(a.ResourceTag)
	}
	return nil
}

// Unpack decodes src, whose length must be exactly the body length the mux
// header framed: every octet beyond the first is one resource assignment.
func (m *GroupAssignmentIE) Unpack(src []byte) error {
	if len(src) < 1 {
		return fmt.Errorf("mmie: group assignment ie source too small")
	}

	*m = GroupAssignmentIE{}

	m.Single = src[0]>>7 == 1
	m.GroupID = uint32(src[0]) & 0x7F

	for _, b := range src[1:] {
		m.ResourceAssignments = append(m.ResourceAssignments, GroupResourceAssignment{
			Direct:      GroupResourceDirection(b >> 7),
			ResourceTag: uint32(b) & 0x7F,
		})
	}

	if !m.IsValid() {
		return fmt.Errorf("mmie: group assignment ie decoded invalid field values")
	}
	return nil
}
