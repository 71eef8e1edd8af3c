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

// CountToTrigger is the Count To Trigger field of Table 6.4.2.3-1.
type CountToTrigger uint32

const (
	CountToTriggerNotDefined CountToTrigger = 0xFFFFFFFF
	CountToTrigger1          CountToTrigger = 0
	CountToTrigger2          CountToTrigger = 1
	CountToTrigger3          CountToTrigger = 2
	CountToTrigger4          CountToTrigger = 3
	CountToTrigger5          CountToTrigger = 4
	CountToTrigger6          CountToTrigger = 5
	CountToTrigger7          CountToTrigger = 6
	CountToTrigger8          CountToTrigger = 7
	CountToTrigger9          CountToTrigger = 8
	CountToTrigger10         CountToTrigger = 9
	CountToTrigger16         CountToTrigger = 10
	CountToTrigger32         CountToTrigger = 11
	CountToTrigger64         CountToTrigger = 12
	CountToTrigger128        CountToTrigger = 13
	CountToTrigger256        CountToTrigger = 14
	CountToTrigger512        CountToTrigger = 15
)

func countToTriggerFromCoded(v uint32) CountToTrigger {
	if v <= uint32(CountToTrigger512) {
		return CountToTrigger(v)
	}
	return CountToTriggerNotDefined
}

// QualityThreshold is the Rel Quality / Min Quality field of Table 6.4.2.3-1,
// shared between the two thresholds the cluster beacon message carries.
type QualityThreshold uint32

const (
	QualityThresholdNotDefined QualityThreshold = 0xFFFFFFFF
	QualityThresholdMinus70dB  QualityThreshold = 0
	QualityThresholdMinus75dB  QualityThreshold = 1
	QualityThresholdMinus80dB  QualityThreshold = 2
	QualityThresholdMinus85dB  QualityThreshold = 3
)

func qualityThresholdFromCoded(v uint32) QualityThreshold {
	if v <= uint32(QualityThresholdMinus85dB) {
		return QualityThreshold(v)
	}
	return QualityThresholdNotDefined
}

// ClusterBeaconMessage is the cluster beacon message of clause 6.4.2.3. Its
// Frame Offset field's width depends on the subcarrier scaling factor mu
// so SetMu must be called before Pack/Unpack if mu is
// something other than the default of 1.
type ClusterBeaconMessage struct {
	SystemFrameNumber    uint32
	ClustersMaxTxPower   *uint32
	HasPowerConstraints  bool
	FrameOffset          *uint32
	NextClusterChannel   *uint32
	TimeToNext           *uint32
	NetworkBeaconPeriod  NetworkBeaconPeriod
	ClusterBeaconPeriod  ClusterBeaconPeriod
	CountToTrigger       CountToTrigger
	RelQuality           QualityThreshold
	MinQuality           QualityThreshold

	mu uint32
}

// SetMu sets the subcarrier scaling factor that determines whether
// FrameOffset packs into 1 or 2 bytes. The zero value behaves like mu<=4.
func (m *ClusterBeaconMessage) SetMu(mu uint32) { m.mu = mu }

func (m *ClusterBeaconMessage) frameOffsetSize() uint32 {
	if m.mu <= 4 {
		return 1
	}
	return 2
}

func (m *ClusterBeaconMessage) IEType() IEType { return IETypeClusterBeaconMessage }

func (m *ClusterBeaconMessage) muxHeader() MuxHeader {
	return MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeClusterBeaconMessage}
}

func (m *ClusterBeaconMessage) IsValid() bool {
	if m.SystemFrameNumber > 0xFF {
		return false
	}
	if m.ClustersMaxTxPower != nil {
		if _, ok := ClustersMaxTxPowerFromCoded(*m.ClustersMaxTxPower); !ok {
			return false
		}
	}
	if m.NextClusterChannel != nil && !isAbsoluteChannelNumberInRange(*m.NextClusterChannel) {
		return false
	}
	if m.NetworkBeaconPeriod == NetworkBeaconPeriodNotDefined {
		return false
	}
	if m.ClusterBeaconPeriod == ClusterBeaconPeriodNotDefined {
		return false
	}
	if m.CountToTrigger == CountToTriggerNotDefined {
		return false
	}
	if m.RelQuality == QualityThresholdNotDefined || m.MinQuality == QualityThresholdNotDefined {
		return false
	}
	return true
}

func (m *ClusterBeaconMessage) PackedSize() uint32 {
	size := uint32(4)
	if m.ClustersMaxTxPower != nil {
		size++
	}
	if m.FrameOffset != nil {
		size += m.frameOffsetSize()
	}
	if m.NextClusterChannel != nil {
		size += 2
	}
	if m.TimeToNext != nil {
		size += 4
	}
	return size
}

func (m *ClusterBeaconMessage) PackedSizeMinToPeek() uint32 { return 2 }

func (m *ClusterBeaconMessage) PackedSizeByPeeking(src []byte) (uint32, error) {
	if len(src) < 2 {
		return 0, fmt.Errorf("mmie: cluster beacon message peek needs 2 bytes")
	}
	length := uint32(4)
	length += (uint32(src[1]>>4) & 1)
	length += (uint32(src[1]>>2) & 1) * m.frameOffsetSize()
	length += (uint32(src[1]>>1) & 1) * 2
	length += (uint32(src[1]) & 1) * 4
	return length, nil
}

func (m *ClusterBeaconMessage) PackedSizeOfMMHSDU() uint32 {
	return m.muxHeader().PackedSize() + m.PackedSize()
}

func (m *ClusterBeaconMessage) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	return packMuxHeaderAndCopy(dst, m.muxHeader(), payload)
}

func (m *ClusterBeaconMessage) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: cluster beacon message invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: cluster beacon message destination too small")
	}

	dst[0] = byte(m.SystemFrameNumber)

	dst[1] = boolToBit(m.ClustersMaxTxPower != nil) << 4
	dst[1] |= boolToBit(m.HasPowerConstraints) << 3
	dst[1] |= boolToBit(m.FrameOffset != nil) << 2
	dst[1] |= boolToBit(m.NextClusterChannel != nil) << 1
	dst[1] |= boolToBit(m.TimeToNext != nil)

	dst[2] = byte(m.NetworkBeaconPeriod) << 4
	dst[2] |= byte(m.ClusterBeaconPeriod)

	dst[3] = byte(m.CountToTrigger) << 4
	dst[3] |= byte(m.RelQuality) << 2
	dst[3] |= byte(m.MinQuality)

	offset := 4
	if m.ClustersMaxTxPower != nil {
		dst[offset] = byte(*m.ClustersMaxTxPower)
		offset++
	}
	if m.FrameOffset != nil {
		if m.frameOffsetSize() == 1 {
			dst[offset] = byte(*m.FrameOffset)
			offset++
		} else {
			dst[offset] = byte(*m.FrameOffset >> 8)
			dst[offset+1] = byte(*m.FrameOffset)
			offset += 2
		}
	}
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
	return nil
}

func (m *ClusterBeaconMessage) Unpack(src []byte) error {
	size, err := m.PackedSizeByPeeking(src)
	if err != nil {
		return err
	}
	if uint32(len(src)) < size {
		return fmt.Errorf("mmie: cluster beacon message source too small")
	}

	mu := m.mu
	*m = ClusterBeaconMessage{mu: mu}

	hasTxPower := (src[1]>>4)&1 == 1
	m.HasPowerConstraints = (src[1]>>3)&1 == 1
	hasFrameOffset := (src[1]>>2)&1 == 1
	hasNextChannel := (src[1]>>1)&1 == 1
	hasTimeToNext := src[1]&1 == 1

	m.SystemFrameNumber = uint32(src[0])
	m.NetworkBeaconPeriod = networkBeaconPeriodFromCoded(uint32(src[2] >> 4))
	m.ClusterBeaconPeriod = clusterBeaconPeriodFromCoded(uint32(src[2]) & 0b1111)
	m.CountToTrigger = countToTriggerFromCoded(uint32(src[3] >> 4))
	m.RelQuality = qualityThresholdFromCoded(uint32(src[3]>>2) & 0b11)
	m.MinQuality = qualityThresholdFromCoded(uint32(src[3]) & 0b11)

	offset := 4
	if hasTxPower {
		v := uint32(src[offset]) & 0b1111
		m.ClustersMaxTxPower = &v
		offset++
	}
	if hasFrameOffset {
		if m.frameOffsetSize() == 1 {
			v := uint32(src[offset])
			m.FrameOffset = &v
			offset++
		} else {
			v := uint32(src[offset])<<8 | uint32(src[offset+1])
			m.FrameOffset = &v
			offset += 2
		}
	}
	if hasNextChannel {
		v := (uint32(src[offset]) & 0b11111) << 8
		v |= uint32(src[offset+1])
		m.NextClusterChannel = &v
		offset += 2
	}
	if hasTimeToNext {
		v := uint32(src[offset])<<24 | uint32(src[offset+1])<<16 | uint32(src[offset+2])<<8 | uint32(src[offset+3])
		m.TimeToNext = &v
		offset += 4
	}

	if !m.IsValid() {
		return fmt.Errorf("mmie: cluster beacon message decoded invalid field values")
	}
	return nil
}
