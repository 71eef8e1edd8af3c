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

// RouteInfoIE is the Route Info IE of clause 6.4.3.2: sink address, route
// cost and application sequence number, advertised by mesh-capable devices.
// This engine does not route; it only frames the IE bit-exactly so peers
// that do can be interoperated with.
type RouteInfoIE struct {
	SinkAddress               uint32
	RouteCost                 uint32
	ApplicationSequenceNumber uint32
}

func (m *RouteInfoIE) IEType() IEType { return IETypeRouteInfoIE }

func (m *RouteInfoIE) IsValid() bool {
	return m.RouteCost <= 0xFF && m.ApplicationSequenceNumber <= 0xFF
}

func (m *RouteInfoIE) PackedSize() uint32 { return 6 }

func (m *RouteInfoIE) PackedSizeOfMMHSDU() uint32 {
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeRouteInfoIE}
	return mh.PackedSize() + m.PackedSize()
}

func (m *RouteInfoIE) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeRouteInfoIE}
	return packMuxHeaderAndCopy(dst, mh, payload)
}

func (m *RouteInfoIE) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: route info ie invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: route info ie destination too small")
	}

	dst[0] = byte(m.SinkAddress >> 24)
	dst[1] = byte(m.SinkAddress >> 16)
	dst[2] = byte(m.SinkAddress >> 8)
	dst[3] = byte(m.SinkAddress)
	dst[4] = byte(m.RouteCost)
	dst[5] = byte(m.ApplicationSequenceNumber)
	return nil
}

func (m *RouteInfoIE) Unpack(src []byte) error {
	if uint32(len(src)) < m.PackedSize() {
		return fmt.Errorf("mmie: route info ie source too small")
	}

	*m = RouteInfoIE{}

	m.SinkAddress = uint32(src[0])<<24 | uint32(src[1])<<16 | uint32(src[2])<<8 | uint32(src[3])
	m.RouteCost = uint32(src[4])
	m.ApplicationSequenceNumber = uint32(src[5])
	return nil
}
