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

// NeighbouringRadioDeviceClass is the optional MU/BETA block a Neighbouring
// IE can attach to the reported neighbour.
type NeighbouringRadioDeviceClass struct {
	Mu   RDCapSubcarrierWidth
	Beta RDCapDFTSize
}

// NeighbouringIE is the Neighbouring IE of clause 6.4.3.6: a measurement of
// one neighbouring FT, reported by a PT so the FT can coordinate channel
// selection.
type NeighbouringIE struct {
	ShortRDID              uint32
	RadioDeviceClass       *NeighbouringRadioDeviceClass
	MeasurementResultSNR   *uint32
	MeasurementResultRSSI2 *uint32
	HasPowerConstraints    bool
	NextClusterChannel     *uint32
	TimeToNext             *uint32
	NetworkBeaconPeriod    NetworkBeaconPeriod
	ClusterBeaconPeriod    ClusterBeaconPeriod
}

func (m *NeighbouringIE) IEType() IEType { return IETypeNeighbouringIE }

func (m *NeighbouringIE) IsValid() bool {
	if m.ShortRDID > 0xFFFF {
		return false
	}
	if m.RadioDeviceClass != nil {
		if m.RadioDeviceClass.Mu == RDCapSubcarrierWidthNotDefined ||
			m.RadioDeviceClass.Beta == RDCapDFTSizeNotDefined {
			return false
		}
	}
	if m.MeasurementResultSNR != nil && *m.MeasurementResultSNR > 0xFF {
		return false
	}
	if m.MeasurementResultRSSI2 != nil && *m.MeasurementResultRSSI2 > 0xFF {
		return false
	}
	if m.NextClusterChannel != nil && !isAbsoluteChannelNumberInRange(*m.NextClusterChannel) {
		return false
	}
	return m.NetworkBeaconPeriod != NetworkBeaconPeriodNotDefined &&
		m.ClusterBeaconPeriod != ClusterBeaconPeriodNotDefined
}

func (m *NeighbouringIE) PackedSize() uint32 {
	size := uint32(4)
	if m.RadioDeviceClass != nil {
		size++
	}
	if m.MeasurementResultSNR != nil {
		size++
	}
	if m.MeasurementResultRSSI2 != nil {
		size++
	}
	if m.NextClusterChannel != nil {
		size += 2
	}
	if m.TimeToNext != nil {
		size += 4
	}
	return size
}

func (m *NeighbouringIE) PackedSizeMinToPeek() uint32 { return 3 }

func (m *NeighbouringIE) PackedSizeByPeeking(src []byte) (uint32, error) {
	if uint32(len(src)) < m.PackedSizeMinToPeek() {
		return 0, fmt.Errorf("mmie: neighbouring ie peek needs 3 bytes")
	}
	size := uint32(4)
	size += uint32(src[2]>>5) & 1
	size += uint32(src[2]>>4) & 1
	size += uint32(src[2]>>3) & 1
	size += (uint32(src[2]>>1) & 1) * 2
	size += uint32(src[2]&1) * 4
	return size, nil
}

func (m *NeighbouringIE) PackedSizeOfMMHSDU() uint32 {
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeNeighbouringIE}
	return mh.PackedSize() + m.PackedSize()
}

func (m *NeighbouringIE) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeNeighbouringIE}
	return packMuxHeaderAndCopy(dst, mh, payload)
}

func (m *NeighbouringIE) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: neighbouring ie invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: neighbouring ie destination too small")
	}

	dst[0] = byte(m.ShortRDID >> 8)
	dst[1] = byte(m.ShortRDID)

	dst[2] = boolToBit(m.RadioDeviceClass != nil) << 5
	dst[2] |= boolToBit(m.MeasurementResultSNR != nil) << 4
	dst[2] |= boolToBit(m.MeasurementResultRSSI2 != nil) << 3
	dst[2] |= boolToBit(m.HasPowerConstraints) << 2
	dst[2] |= boolToBit(m.NextClusterChannel != nil) << 1
	dst[2] |= boolToBit(m.TimeToNext != nil)

	dst[3] = byte(m.NetworkBeaconPeriod) << 4
	dst[3] |= byte(m.ClusterBeaconPeriod)

	offset := uint32(4)
	if m.NextClusterChannel != nil {
		dst[offset] = byte(*m.NextClusterChannel >> 8)
		dst[offset+1] = byte(*m.NextClusterChannel)
		offset += 2
	}
	if m.TimeToNext != nil {
		dst[offset] = byte(*m.TimeToNext >> 24)
		dst[offset+1] = byte(*m.TimeToNext >> 16)
		dst[offset+2] = byte(*m.TimeToNext >> 8)
		dst[offset+3] = byte(*m.TimeToNext)
		offset += 4
	}
	if m.MeasurementResultRSSI2 != nil {
		dst[offset] = byte(*m.MeasurementResultRSSI2)
		offset++
	}
	if m.MeasurementResultSNR != nil {
		dst[offset] = byte(*m.MeasurementResultSNR)
		offset++
	}
	if m.RadioDeviceClass != nil {
		dst[offset] = byte(m.RadioDeviceClass.Mu) << 5
		dst[offset] |= byte(m.RadioDeviceClass.Beta) << 1
	}
	return nil
}

func (m *NeighbouringIE) Unpack(src []byte) error {
	size, err := m.PackedSizeByPeeking(src)
	if err != nil {
		return err
	}
	if uint32(len(src)) < size {
		return fmt.Errorf("mmie: neighbouring ie source too small")
	}

	*m = NeighbouringIE{}

	m.ShortRDID = uint32(src[0])<<8 | uint32(src[1])
	m.HasPowerConstraints = (src[2]>>2)&1 == 1

	m.NetworkBeaconPeriod = networkBeaconPeriodFromCoded(uint32(src[3] >> 4))
	m.ClusterBeaconPeriod = clusterBeaconPeriodFromCoded(uint32(src[3]) & 0xF)

	offset := uint32(4)
	if (src[2]>>1)&1 == 1 {
		v := (uint32(src[offset])&0x1F)<<8 | uint32(src[offset+1])
		m.NextClusterChannel = &v
		offset += 2
	}
	if src[2]&1 == 1 {
		v := uint32(src[offset])<<24 | uint32(src[offset+1])<<16 |
			uint32(src[offset+2])<<8 | uint32(src[offset+3])
		m.TimeToNext = &v
		offset += 4
	}
	if (src[2]>>3)&1 == 1 {
		v := uint32(src[offset])
		m.MeasurementResultRSSI2 = &v
		offset++
	}
	if (src[2]>>4)&1 == 1 {
		v := uint32(src[offset])
		m.MeasurementResultSNR = &v
		offset++
	}
	if (src[2]>>5)&1 == 1 {
		m.RadioDeviceClass = &NeighbouringRadioDeviceClass{
			Mu:   rdCapSubcarrierWidthFromCoded(uint32(src[offset]>>5) & 0b111),
			Beta: rdCapDFTSizeFromCoded(uint32(src[offset]>>1) & 0xF),
		}
	}

	if !m.IsValid() {
		return fmt.Errorf("mmie: neighbouring ie decoded invalid field values")
	}
	return nil
}
