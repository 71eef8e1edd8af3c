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

// MeasurementResultSource is the RACH bit of Table 6.4.3.12-1: which DL
// reception the reported measurements were taken from.
type MeasurementResultSource uint32

const (
	MeasurementSourceScheduledResources MeasurementResultSource = 0
	MeasurementSourceRachResponse       MeasurementResultSource = 1
)

// MeasurementReportIE is the Measurement Report IE of clause 6.4.3.12: a
// PT's downlink quality measurements, each optional.
type MeasurementReportIE struct {
	MeasurementResultSNR     *uint32
	MeasurementResultRSSI2   *uint32
	MeasurementResultRSSI1   *uint32
	MeasurementResultTxCount *uint32
	Rach                     MeasurementResultSource
}

func (m *MeasurementReportIE) IEType() IEType { return IETypeMeasurementReportIE }

func (m *MeasurementReportIE) IsValid() bool {
	for _, v := range []*uint32{m.MeasurementResultSNR, m.MeasurementResultRSSI2, m.MeasurementResultRSSI1, m.MeasurementResultTxCount} {
		if v != nil && *v > 0xFF {
			return false
		}
	}
	return m.Rach <= MeasurementSourceRachResponse
}

func (m *MeasurementReportIE) PackedSize() uint32 {
	size := uint32(1)
	for _, v := range []*uint32{m.MeasurementResultSNR, m.MeasurementResultRSSI2, m.MeasurementResultRSSI1, m.MeasurementResultTxCount} {
		if v != nil {
			size++
		}
	}
	return size
}

func (m *MeasurementReportIE) PackedSizeMinToPeek() uint32 { return 1 }

func (m *MeasurementReportIE) PackedSizeByPeeking(src []byte) (uint32, error) {
	if len(src) < 1 {
		return 0, fmt.Errorf("mmie: measurement report ie peek needs 1 byte")
	}
	size := uint32(1)
	size += uint32(src[0]>>4) & 1
	size += uint32(src[0]>>3) & 1
	size += uint32(src[0]>>2) & 1
	size += uint32(src[0]>>1) & 1
	return size, nil
}

func (m *MeasurementReportIE) PackedSizeOfMMHSDU() uint32 {
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeMeasurementReportIE}
	return mh.PackedSize() + m.PackedSize()
}

func (m *MeasurementReportIE) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeMeasurementReportIE}
	return packMuxHeaderAndCopy(dst, mh, payload)
}

func (m *MeasurementReportIE) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: measurement report ie invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: measurement report ie destination too small")
	}

	dst[0] = boolToBit(m.MeasurementResultSNR != nil) << 4
	dst[0] |= boolToBit(m.MeasurementResultRSSI2 != nil) << 3
	dst[0] |= boolToBit(m.MeasurementResultRSSI1 != nil) << 2
	dst[0] |= boolToBit(m.MeasurementResultTxCount != nil) << 1
	dst[0] |= byte(m.Rach)

	offset := uint32(1)
	for _, v := range []*uint32{m.MeasurementResultSNR, m.MeasurementResultRSSI2, m.MeasurementResultRSSI1, m.MeasurementResultTxCount} {
		if v == nil {
			continue
		}
		dst[offset] = byte(*v)
		offset++
	}
	return nil
}

func (m *MeasurementReportIE) Unpack(src []byte) error {
	size, err := m.PackedSizeByPeeking(src)
	if err != nil {
		return err
	}
	if uint32(len(src)) < size {
		return fmt.Errorf("mmie: measurement report ie source too small")
	}

	*m = MeasurementReportIE{}

	m.Rach = MeasurementResultSource(src[0] & 1)

	offset := uint32(1)
	targets := []struct {
		bit  uint
		dest **uint32
	}{
		{4, &m.MeasurementResultSNR},
		{3, &m.MeasurementResultRSSI2},
		{2, &m.MeasurementResultRSSI1},
		{1, &m.MeasurementResultTxCount},
	}
	for _, t := range targets {
		if (src[0]>>t.bit)&1 != 1 {
			continue
		}
		v := uint32(src[offset])
		*t.dest = &v
		offset++
	}
	return nil
}
