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

// NetworkBeaconPeriod is the Network Beacon Period field of Table 6.4.2.2-1.
type NetworkBeaconPeriod uint32

const (
	NetworkBeaconPeriodNotDefined NetworkBeaconPeriod = 0xFFFFFFFF
	NetworkBeaconPeriod50ms       NetworkBeaconPeriod = 0
	NetworkBeaconPeriod100ms      NetworkBeaconPeriod = 1
	NetworkBeaconPeriod500ms      NetworkBeaconPeriod = 2
	NetworkBeaconPeriod1000ms     NetworkBeaconPeriod = 3
	NetworkBeaconPeriod1500ms     NetworkBeaconPeriod = 4
	NetworkBeaconPeriod2000ms     NetworkBeaconPeriod = 5
	NetworkBeaconPeriod4000ms     NetworkBeaconPeriod = 6
)

func networkBeaconPeriodFromCoded(v uint32) NetworkBeaconPeriod {
	if v <= uint32(NetworkBeaconPeriod4000ms) {
		return NetworkBeaconPeriod(v)
	}
	return NetworkBeaconPeriodNotDefined
}

// ClusterBeaconPeriod is the Cluster Beacon Period field of Table 6.4.2.2-1.
type ClusterBeaconPeriod uint32

const (
	ClusterBeaconPeriodNotDefined ClusterBeaconPeriod = 0xFFFFFFFF
	ClusterBeaconPeriod10ms       ClusterBeaconPeriod = 0
	ClusterBeaconPeriod50ms       ClusterBeaconPeriod = 1
	ClusterBeaconPeriod100ms      ClusterBeaconPeriod = 2
	ClusterBeaconPeriod500ms      ClusterBeaconPeriod = 3
	ClusterBeaconPeriod1000ms     ClusterBeaconPeriod = 4
	ClusterBeaconPeriod1500ms     ClusterBeaconPeriod = 5
	ClusterBeaconPeriod2000ms     ClusterBeaconPeriod = 6
	ClusterBeaconPeriod4000ms     ClusterBeaconPeriod = 7
	ClusterBeaconPeriod8000ms     ClusterBeaconPeriod = 8
	ClusterBeaconPeriod16000ms    ClusterBeaconPeriod = 9
	ClusterBeaconPeriod32000ms    ClusterBeaconPeriod = 10
)

func clusterBeaconPeriodFromCoded(v uint32) ClusterBeaconPeriod {
	if v <= uint32(ClusterBeaconPeriod32000ms) {
		return ClusterBeaconPeriod(v)
	}
	return ClusterBeaconPeriodNotDefined
}

// clustersMaxTxPowerTable is Table 6.2.1-3b, indexed by coded value minus 3.
var clustersMaxTxPowerTable = [13]int32{-13, -6, -3, 0, 3, 6, 10, 14, 19, 23, 26, 29, 32}

// ClustersMaxTxPowerFromCoded returns the coded value unchanged when it lies
// in its valid range (3..15), or false if v falls outside it.
func ClustersMaxTxPowerFromCoded(v uint32) (uint32, bool) {
	if v >= 3 && v <= 15 {
		return v, true
	}
	return 0, false
}

// ClustersMaxTxPowerToDBm converts a coded Clusters Max TX Power value to dBm.
func ClustersMaxTxPowerToDBm(coded uint32) int32 {
	return clustersMaxTxPowerTable[coded-3]
}

const absoluteChannelNumberMax = 0x1FFF // 13-bit field

func isAbsoluteChannelNumberInRange(v uint32) bool { return v <= absoluteChannelNumberMax }

// NetworkBeaconMessage is the network beacon message of clause 6.4.2.2. Its
// packed size depends on which optional channel/power fields are present,
// so it must be peeked before it can be fully unpacked.
type NetworkBeaconMessage struct {
	ClustersMaxTxPower    *uint32
	HasPowerConstraints   bool
	CurrentClusterChannel *uint32
	NetworkBeaconChannel0 *uint32
	NetworkBeaconChannel1 *uint32
	NetworkBeaconChannel2 *uint32
	NetworkBeaconPeriod   NetworkBeaconPeriod
	ClusterBeaconPeriod   ClusterBeaconPeriod
	NextClusterChannel    uint32
	TimeToNext            uint32
}

func (m *NetworkBeaconMessage) IEType() IEType { return IETypeNetworkBeaconMessage }

func (m *NetworkBeaconMessage) IsValid() bool {
	if m.ClustersMaxTxPower != nil {
		if _, ok := ClustersMaxTxPowerFromCoded(*m.ClustersMaxTxPower); !ok {
			return false
		}
	}
	for _, ch := range []*uint32{m.CurrentClusterChannel, m.NetworkBeaconChannel0, m.NetworkBeaconChannel1, m.NetworkBeaconChannel2} {
		if ch != nil && !isAbsoluteChannelNumberInRange(*ch) {
			return false
		}
	}
	if m.NetworkBeaconPeriod == NetworkBeaconPeriodNotDefined {
		return false
	}
	if m.ClusterBeaconPeriod == ClusterBeaconPeriodNotDefined {
		return false
	}
	return isAbsoluteChannelNumberInRange(m.NextClusterChannel)
}

func (m *NetworkBeaconMessage) PackedSize() uint32 {
	size := uint32(8)
	if m.ClustersMaxTxPower != nil {
		size++
	}
	for _, ch := range []*uint32{m.CurrentClusterChannel, m.NetworkBeaconChannel0, m.NetworkBeaconChannel1, m.NetworkBeaconChannel2} {
		if ch != nil {
			size += 2
		}
	}
	return size
}

func (m *NetworkBeaconMessage) PackedSizeMinToPeek() uint32 { return 1 }

func (m *NetworkBeaconMessage) PackedSizeByPeeking(src []byte) (uint32, error) {
	if len(src) < 1 {
		return 0, fmt.Errorf("mmie: network beacon message peek needs 1 byte")
	}
	length := uint32(8)
	length += uint32(src[0]>>4) & 1
	length += (uint32(src[0]>>2) & 1) * 2
	length += (uint32(src[0]) & 0b11) * 2
	return length, nil
}

func (m *NetworkBeaconMessage) PackedSizeOfMMHSDU() uint32 {
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeNetworkBeaconMessage}
	return mh.PackedSize() + m.PackedSize()
}

func (m *NetworkBeaconMessage) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeNetworkBeaconMessage}
	return packMuxHeaderAndCopy(dst, mh, payload)
}

func (m *NetworkBeaconMessage) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: network beacon message invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: network beacon message destination too small")
	}

	nChannels := uint32(0)
	for _, ch := range []*uint32{m.NetworkBeaconChannel0, m.NetworkBeaconChannel1, m.NetworkBeaconChannel2} {
		if ch != nil {
			nChannels++
		}
	}

	dst[0] = boolToBit(m.ClustersMaxTxPower != nil) << 4
	dst[0] |= boolToBit(m.HasPowerConstraints) << 3
	dst[0] |= boolToBit(m.CurrentClusterChannel != nil) << 2
	dst[0] |= byte(nChannels)

	dst[1] = byte(m.NetworkBeaconPeriod) << 4
	dst[1] |= byte(m.ClusterBeaconPeriod)

	dst[2] = byte(m.NextClusterChannel >> 8)
	dst[3] = byte(m.NextClusterChannel)

	dst[4] = byte(m.TimeToNext >> 24)
	dst[5] = byte(m.TimeToNext >> 16)
	dst[6] = byte(m.TimeToNext >> 8)
	dst[7] = byte(m.TimeToNext)

	offset := 8
	if m.ClustersMaxTxPower != nil {
		dst[offset] = byte(*m.ClustersMaxTxPower)
		offset++
	}
	for _, ch := range []*uint32{m.CurrentClusterChannel, m.NetworkBeaconChannel0, m.NetworkBeaconChannel1, m.NetworkBeaconChannel2} {
		if ch == nil {
			continue
		}
		dst[offset] = byte(*ch >> 8)
		dst[offset+1] = byte(*ch)
		offset += 2
	}
	return nil
}

func (m *NetworkBeaconMessage) Unpack(src []byte) error {
	size, err := m.PackedSizeByPeeking(src)
	if err != nil {
		return err
	}
	if uint32(len(src)) < size {
		return fmt.Errorf("mmie: network beacon message source too small")
	}

	*m = NetworkBeaconMessage{}

	txPower := (src[0]>>4)&1 == 1
	m.HasPowerConstraints = (src[0]>>3)&1 == 1
	current := (src[0]>>2)&1 == 1

	nChannels := int(src[0] & 0b11)

	m.NetworkBeaconPeriod = networkBeaconPeriodFromCoded(uint32(src[1] >> 4))
	m.ClusterBeaconPeriod = clusterBeaconPeriodFromCoded(uint32(src[1]) & 0b1111)

	m.NextClusterChannel = uint32(src[3]) | (uint32(src[2])&0b11111)<<8
	m.TimeToNext = uint32(src[4])<<24 | uint32(src[5])<<16 | uint32(src[6])<<8 | uint32(src[7])

	offset := 8
	if txPower {
		v := uint32(src[offset]) & 0b1111
		m.ClustersMaxTxPower = &v
		offset++
	}
	if current {
		v := uint32(src[offset+1]) | (uint32(src[offset])&0b11111)<<8
		m.CurrentClusterChannel = &v
		offset += 2
	}
	targets := []**uint32{&m.NetworkBeaconChannel0, &m.NetworkBeaconChannel1, &m.NetworkBeaconChannel2}
	for i := 0; i < nChannels; i++ {
		v := uint32(src[offset+1]) | (uint32(src[offset])&0b11111)<<8
		*targets[i] = &v
		offset += 2
	}

	if !m.IsValid() {
		return fmt.Errorf("mmie: network beacon message decoded invalid field values")
	}
	return nil
}
