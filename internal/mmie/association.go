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

import (
	"fmt"
	"sort"
)

// AssocSetupCause is the Setup Cause field of Table 6.4.2.4-2.
type AssocSetupCause uint32

const (
	AssocSetupCauseNotDefined             AssocSetupCause = 0xFFFFFFFF
	AssocSetupCauseInitial                AssocSetupCause = 0
	AssocSetupCauseNewSetOfFlowsRequested AssocSetupCause = 1
	AssocSetupCauseMobility               AssocSetupCause = 2
	AssocSetupCauseErrorOccurred          AssocSetupCause = 3
	AssocSetupCauseOwnOperatingChannelChanged AssocSetupCause = 4
	AssocSetupCauseOperatingModeChanged   AssocSetupCause = 5
	AssocSetupCauseOther                 AssocSetupCause = 6
)

func assocSetupCauseFromCoded(v uint32) AssocSetupCause {
	if v <= uint32(AssocSetupCauseOther) {
		return AssocSetupCause(v)
	}
	return AssocSetupCauseNotDefined
}

// MaxHARQRetransmissionDelay is the MAX HARQ RE-TX / MAX HARQ RE-RX field of
// Table 6.4.2.4-1.
type MaxHARQRetransmissionDelay uint32

const (
	MaxHARQRetransmissionDelayNotDefined MaxHARQRetransmissionDelay = 0xFFFFFFFF
	MaxHARQRetransmissionDelay105us      MaxHARQRetransmissionDelay = 0
	MaxHARQRetransmissionDelay200us      MaxHARQRetransmissionDelay = 1
	MaxHARQRetransmissionDelay400us      MaxHARQRetransmissionDelay = 2
	MaxHARQRetransmissionDelay800us      MaxHARQRetransmissionDelay = 3
	MaxHARQRetransmissionDelay1ms        MaxHARQRetransmissionDelay = 4
	MaxHARQRetransmissionDelay2ms        MaxHARQRetransmissionDelay = 5
	MaxHARQRetransmissionDelay4ms        MaxHARQRetransmissionDelay = 6
	MaxHARQRetransmissionDelay6ms        MaxHARQRetransmissionDelay = 7
	MaxHARQRetransmissionDelay8ms        MaxHARQRetransmissionDelay = 8
	MaxHARQRetransmissionDelay10ms       MaxHARQRetransmissionDelay = 9
	MaxHARQRetransmissionDelay20ms       MaxHARQRetransmissionDelay = 10
	MaxHARQRetransmissionDelay30ms       MaxHARQRetransmissionDelay = 11
	MaxHARQRetransmissionDelay40ms       MaxHARQRetransmissionDelay = 12
	MaxHARQRetransmissionDelay50ms       MaxHARQRetransmissionDelay = 13
	MaxHARQRetransmissionDelay60ms       MaxHARQRetransmissionDelay = 14
	MaxHARQRetransmissionDelay70ms       MaxHARQRetransmissionDelay = 15
	MaxHARQRetransmissionDelay80ms       MaxHARQRetransmissionDelay = 16
	MaxHARQRetransmissionDelay90ms       MaxHARQRetransmissionDelay = 17
	MaxHARQRetransmissionDelay100ms      MaxHARQRetransmissionDelay = 18
	MaxHARQRetransmissionDelay120ms      MaxHARQRetransmissionDelay = 19
	MaxHARQRetransmissionDelay140ms      MaxHARQRetransmissionDelay = 20
	MaxHARQRetransmissionDelay160ms      MaxHARQRetransmissionDelay = 21
	MaxHARQRetransmissionDelay180ms      MaxHARQRetransmissionDelay = 22
	MaxHARQRetransmissionDelay200ms      MaxHARQRetransmissionDelay = 23
	MaxHARQRetransmissionDelay240ms      MaxHARQRetransmissionDelay = 24
	MaxHARQRetransmissionDelay280ms      MaxHARQRetransmissionDelay = 25
	MaxHARQRetransmissionDelay320ms      MaxHARQRetransmissionDelay = 26
	MaxHARQRetransmissionDelay360ms      MaxHARQRetransmissionDelay = 27
	MaxHARQRetransmissionDelay400ms      MaxHARQRetransmissionDelay = 28
	MaxHARQRetransmissionDelay450ms      MaxHARQRetransmissionDelay = 29
	MaxHARQRetransmissionDelay500ms      MaxHARQRetransmissionDelay = 30
)

func maxHARQRetransmissionDelayFromCoded(v uint32) MaxHARQRetransmissionDelay {
	if v <= uint32(MaxHARQRetransmissionDelay500ms) {
		return MaxHARQRetransmissionDelay(v)
	}
	return MaxHARQRetransmissionDelayNotDefined
}

// AssocFlowID is the flow ID of Table 6.3.4-2, reused by both the
// association request and response messages. 0 is a reserved lower bound,
// not itself a valid flow ID.
type AssocFlowID uint32

const (
	AssocFlowIDNotDefined              AssocFlowID = 0xFFFFFFFF
	AssocFlowIDHigherLayerSignalling1  AssocFlowID = 1
	AssocFlowIDHigherLayerSignalling2  AssocFlowID = 2
	AssocFlowIDUserPlaneData1          AssocFlowID = 3
	AssocFlowIDUserPlaneData2          AssocFlowID = 4
	AssocFlowIDUserPlaneData3          AssocFlowID = 5
	AssocFlowIDUserPlaneData4          AssocFlowID = 6
)

func assocFlowIDFromCoded(v uint32) AssocFlowID {
	if v >= uint32(AssocFlowIDHigherLayerSignalling1) && v <= uint32(AssocFlowIDUserPlaneData4) {
		return AssocFlowID(v)
	}
	return AssocFlowIDNotDefined
}

func assocFlowIDsValid(ids []AssocFlowID) bool {
	for _, id := range ids {
		if id == AssocFlowIDNotDefined {
			return false
		}
	}
	return true
}

func sortedFlowIDs(ids []AssocFlowID) []AssocFlowID {
	sorted := append([]AssocFlowID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// FTConfiguration carries the beacon-scheduling fields an association
// request includes when the requesting RD intends to operate in FT mode.
type FTConfiguration struct {
	NetworkBeaconPeriod NetworkBeaconPeriod
	ClusterBeaconPeriod ClusterBeaconPeriod
	NextClusterChannel  uint32
	TimeToNext          uint32
}

// HARQConfig is one direction's HARQ process count and retransmission
// delay bound.
type HARQConfig struct {
	NHARQProcesses             uint32
	MaxHARQRetransmissionDelay MaxHARQRetransmissionDelay
}

// HARQConfigTxRx bundles the TX and RX HARQ configuration fields shared
// between the association request and response messages.
type HARQConfigTxRx struct {
	TX HARQConfig
	RX HARQConfig
}

func (c HARQConfig) isValid() bool {
	return c.NHARQProcesses <= 0b111 && c.MaxHARQRetransmissionDelay != MaxHARQRetransmissionDelayNotDefined
}

func packHARQConfig(c HARQConfig) byte {
	return byte(c.NHARQProcesses<<5) | byte(c.MaxHARQRetransmissionDelay)
}

func unpackHARQConfig(b byte) HARQConfig {
	return HARQConfig{
		NHARQProcesses:             uint32(b >> 5),
		MaxHARQRetransmissionDelay: maxHARQRetransmissionDelayFromCoded(uint32(b) & 0b11111),
	}
}

// AssociationRequestMessage is the association request message of clause
// 6.4.2.4, sent by a PT entering Association to request service from an FT.
type AssociationRequestMessage struct {
	SetupCause            AssocSetupCause
	FlowIDs               []AssocFlowID
	HasPowerConstraints   bool
	FTConfiguration       *FTConfiguration
	CurrentClusterChannel *uint32
	HARQConfiguration     HARQConfigTxRx
}

func (m *AssociationRequestMessage) IEType() IEType { return IETypeAssociationRequestMessage }

func (m *AssociationRequestMessage) muxHeader() MuxHeader {
	return MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeAssociationRequestMessage}
}

func (m *AssociationRequestMessage) IsValid() bool {
	if m.SetupCause == AssocSetupCauseNotDefined {
		return false
	}
	if len(m.FlowIDs) == 0 || !assocFlowIDsValid(m.FlowIDs) {
		return false
	}
	if m.FTConfiguration != nil {
		ft := m.FTConfiguration
		if ft.NetworkBeaconPeriod == NetworkBeaconPeriodNotDefined || ft.ClusterBeaconPeriod == ClusterBeaconPeriodNotDefined {
			return false
		}
		if !isAbsoluteChannelNumberInRange(ft.NextClusterChannel) {
			return false
		}
	}
	if m.CurrentClusterChannel != nil && !isAbsoluteChannelNumberInRange(*m.CurrentClusterChannel) {
		return false
	}
	return m.HARQConfiguration.TX.isValid() && m.HARQConfiguration.RX.isValid()
}

func (m *AssociationRequestMessage) PackedSize() uint32 {
	size := uint32(4) + uint32(len(m.FlowIDs))
	if m.FTConfiguration != nil {
		size += 7
	}
	if m.CurrentClusterChannel != nil {
		size += 2
	}
	return size
}

func (m *AssociationRequestMessage) PackedSizeMinToPeek() uint32 { return 2 }

func (m *AssociationRequestMessage) PackedSizeByPeeking(src []byte) (uint32, error) {
	if len(src) < 2 {
		return 0, fmt.Errorf("mmie: association request message peek needs 2 bytes")
	}
	nFlows := uint32(src[0]>>2) & 0b111
	if nFlows == 0b111 {
		return 0, fmt.Errorf("mmie: association request message flow count field reserved")
	}
	size := uint32(4) + nFlows
	size += (uint32(src[0]) & 1) * 7
	size += (uint32(src[1]>>7) & 1) * 2
	return size, nil
}

func (m *AssociationRequestMessage) PackedSizeOfMMHSDU() uint32 {
	return m.muxHeader().PackedSize() + m.PackedSize()
}

func (m *AssociationRequestMessage) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	return packMuxHeaderAndCopy(dst, m.muxHeader(), payload)
}

func (m *AssociationRequestMessage) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: association request message invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: association request message destination too small")
	}

	flowIDs := sortedFlowIDs(m.FlowIDs)

	dst[0] = byte(m.SetupCause) << 5
	dst[0] |= byte(len(flowIDs)) << 2
	dst[0] |= boolToBit(m.HasPowerConstraints) << 1
	dst[0] |= boolToBit(m.FTConfiguration != nil)

	dst[1] = boolToBit(m.CurrentClusterChannel != nil) << 7

	dst[2] = packHARQConfig(m.HARQConfiguration.TX)
	dst[3] = packHARQConfig(m.HARQConfiguration.RX)

	offset := 4
	for _, id := range flowIDs {
		dst[offset] = byte(id)
		offset++
	}

	if m.FTConfiguration != nil {
		ft := m.FTConfiguration
		dst[offset] = byte(ft.NetworkBeaconPeriod) << 4
		dst[offset] |= byte(ft.ClusterBeaconPeriod)
		offset++
		dst[offset] = byte(ft.NextClusterChannel >> 8)
		dst[offset+1] = byte(ft.NextClusterChannel)
		offset += 2
		dst[offset] = byte(ft.TimeToNext >> 24)
		dst[offset+1] = byte(ft.TimeToNext >> 16)
		dst[offset+2] = byte(ft.TimeToNext >> 8)
		dst[offset+3] = byte(ft.TimeToNext)
		offset += 4
	}

	if m.CurrentClusterChannel != nil {
		dst[offset] = byte(*m.CurrentClusterChannel >> 8)
		dst[offset+1] = byte(*m.CurrentClusterChannel)
		offset += 2
	}
	return nil
}

func (m *AssociationRequestMessage) Unpack(src []byte) error {
	size, err := m.PackedSizeByPeeking(src)
	if err != nil {
		return err
	}
	if uint32(len(src)) < size {
		return fmt.Errorf("mmie: association request message source too small")
	}

	*m = AssociationRequestMessage{}

	m.SetupCause = assocSetupCauseFromCoded(uint32(src[0] >> 5))
	nFlows := uint32(src[0]>>2) & 0b111
	m.HasPowerConstraints = src[0]&0b10 != 0
	isFT := src[0]&1 != 0
	current := src[1]>>7 == 1

	m.HARQConfiguration.TX = unpackHARQConfig(src[2])
	m.HARQConfiguration.RX = unpackHARQConfig(src[3])

	offset := 4
	m.FlowIDs = make([]AssocFlowID, 0, nFlows)
	for n := uint32(0); n < nFlows; n++ {
		flowID := uint32(src[offset]) & 0b111111
		m.FlowIDs = append(m.FlowIDs, assocFlowIDFromCoded(flowID))
		offset++
	}

	if isFT {
		ft := &FTConfiguration{}
		ft.NetworkBeaconPeriod = networkBeaconPeriodFromCoded(uint32(src[offset] >> 4))
		ft.ClusterBeaconPeriod = clusterBeaconPeriodFromCoded(uint32(src[offset]) & 0b1111)
		offset++
		ft.NextClusterChannel = (uint32(src[offset]) & 0b11111) << 8
		ft.NextClusterChannel |= uint32(src[offset+1])
		offset += 2
		ft.TimeToNext = uint32(src[offset])<<24 | uint32(src[offset+1])<<16 | uint32(src[offset+2])<<8 | uint32(src[offset+3])
		offset += 4
		m.FTConfiguration = ft
	}

	if current {
		v := (uint32(src[offset]) & 0b11111) << 8
		v |= uint32(src[offset+1])
		m.CurrentClusterChannel = &v
		offset += 2
	}

	if !m.IsValid() {
		return fmt.Errorf("mmie: association request message decoded invalid field values")
	}
	return nil
}

// AssocRejectCause is the Reject Cause field of Table 6.4.2.5-2.
type AssocRejectCause uint32

const (
	AssocRejectCauseNotDefined                  AssocRejectCause = 0xFFFFFFFF
	AssocRejectCauseRadioCapacityNotSufficient  AssocRejectCause = 0
	AssocRejectCauseHWCapacityNotSufficient     AssocRejectCause = 1
	AssocRejectCauseConflictingShortRDID        AssocRejectCause = 2
	AssocRejectCauseAssociationRequestNotSecure AssocRejectCause = 3
	AssocRejectCauseOther                       AssocRejectCause = 4
)

func assocRejectCauseFromCoded(v uint32) AssocRejectCause {
	if v <= uint32(AssocRejectCauseOther) {
		return AssocRejectCause(v)
	}
	return AssocRejectCauseNotDefined
}

// AssocRejectTime is the Reject Time field of Table 6.4.2.5-2.
type AssocRejectTime uint32

const (
	AssocRejectTimeNotDefined AssocRejectTime = 0xFFFFFFFF
	AssocRejectTime0s         AssocRejectTime = 0
	AssocRejectTime5s         AssocRejectTime = 1
	AssocRejectTime10s        AssocRejectTime = 2
	AssocRejectTime30s        AssocRejectTime = 3
	AssocRejectTime60s        AssocRejectTime = 4
	AssocRejectTime120s       AssocRejectTime = 5
	AssocRejectTime180s       AssocRejectTime = 6
	AssocRejectTime300s       AssocRejectTime = 7
	AssocRejectTime600s       AssocRejectTime = 8
)

func assocRejectTimeFromCoded(v uint32) AssocRejectTime {
	if v <= uint32(AssocRejectTime600s) {
		return AssocRejectTime(v)
	}
	return AssocRejectTimeNotDefined
}

// NofFlowsAccepted is the field interpretation of the 3-bit flow count in
// an accepted association response: 0 and 7 are sentinels (none/as
// requested), any other value is read directly as the number of Flow ID
// fields that follow.
type NofFlowsAccepted uint32

const (
	NofFlowsAcceptedNotDefined  NofFlowsAccepted = 0xFFFFFFFF
	NofFlowsAcceptedNone        NofFlowsAccepted = 0
	NofFlowsAcceptedAsIncluded  NofFlowsAccepted = 1
	NofFlowsAcceptedAsRequested NofFlowsAccepted = 0b111
)

// RejectInfo carries the cause/time pair of a rejected association.
type RejectInfo struct {
	Cause AssocRejectCause
	Time  AssocRejectTime
}

// GroupInfo carries the optional group-addressing fields of an accepted
// association response.
type GroupInfo struct {
	GroupID     uint32
	ResourceTag uint32
}

// AssociationResponseMessage is the association response message of clause
// 6.4.2.5, sent by an FT to accept or reject a pending association request.
type AssociationResponseMessage struct {
	RejectInfo        *RejectInfo
	HARQConfiguration *HARQConfigTxRx
	NofFlowsAccepted  NofFlowsAccepted
	FlowIDs           []AssocFlowID
	GroupInfo         *GroupInfo
	TXPower           bool
}

func (m *AssociationResponseMessage) IEType() IEType { return IETypeAssociationResponseMessage }

func (m *AssociationResponseMessage) muxHeader() MuxHeader {
	return MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeAssociationResponseMessage}
}

func (m *AssociationResponseMessage) IsValid() bool {
	if m.RejectInfo != nil {
		return m.RejectInfo.Cause != AssocRejectCauseNotDefined && m.RejectInfo.Time != AssocRejectTimeNotDefined
	}

	if m.HARQConfiguration != nil {
		if !m.HARQConfiguration.TX.isValid() || !m.HARQConfiguration.RX.isValid() {
			return false
		}
	}

	if m.NofFlowsAccepted == NofFlowsAcceptedNotDefined {
		return false
	}
	if m.NofFlowsAccepted == NofFlowsAcceptedAsIncluded && len(m.FlowIDs) == 0 {
		return false
	}
	if !assocFlowIDsValid(m.FlowIDs) {
		return false
	}

	if m.GroupInfo != nil {
		if m.GroupInfo.GroupID > 0b1111111 || m.GroupInfo.ResourceTag > 0b1111111 {
			return false
		}
	}
	return true
}

func (m *AssociationResponseMessage) PackedSize() uint32 {
	if m.RejectInfo != nil {
		return 2
	}
	size := uint32(1)
	if m.HARQConfiguration != nil {
		size += 2
	}
	size += uint32(len(m.FlowIDs))
	if m.GroupInfo != nil {
		size += 2
	}
	return size
}

func (m *AssociationResponseMessage) PackedSizeMinToPeek() uint32 { return 1 }

func (m *AssociationResponseMessage) PackedSizeByPeeking(src []byte) (uint32, error) {
	if len(src) < 1 {
		return 0, fmt.Errorf("mmie: association response message peek needs 1 byte")
	}
	if src[0]>>7 == 0 {
		return 2, nil
	}
	size := uint32(1)
	size += (uint32(src[0]>>5) & 1) * 2
	nFlows := uint32(src[0]>>2) & 0b111
	if nFlows != uint32(NofFlowsAcceptedAsRequested) {
		size += nFlows
	}
	size += (uint32(src[0]>>1) & 1) * 2
	return size, nil
}

func (m *AssociationResponseMessage) PackedSizeOfMMHSDU() uint32 {
	return m.muxHeader().PackedSize() + m.PackedSize()
}

func (m *AssociationResponseMessage) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	return packMuxHeaderAndCopy(dst, m.muxHeader(), payload)
}

func (m *AssociationResponseMessage) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: association response message invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: association response message destination too small")
	}

	if m.RejectInfo != nil {
		dst[0] = 0
		dst[1] = byte(m.RejectInfo.Cause) << 4
		dst[1] |= byte(m.RejectInfo.Time)
		return nil
	}

	flowIDs := sortedFlowIDs(m.FlowIDs)

	flowField := uint32(m.NofFlowsAccepted)
	if m.NofFlowsAccepted == NofFlowsAcceptedAsIncluded {
		flowField = uint32(len(flowIDs))
	}

	dst[0] = 1 << 7
	dst[0] |= boolToBit(m.HARQConfiguration != nil) << 5
	dst[0] |= byte(flowField) << 2
	dst[0] |= boolToBit(m.GroupInfo != nil) << 1
	dst[0] |= boolToBit(m.TXPower)

	offset := 1
	if m.HARQConfiguration != nil {
		dst[offset] = packHARQConfig(m.HARQConfiguration.RX)
		offset++
		dst[offset] = packHARQConfig(m.HARQConfiguration.TX)
		offset++
	}
	for _, id := range flowIDs {
		dst[offset] = byte(id)
		offset++
	}
	if m.GroupInfo != nil {
		dst[offset] = byte(m.GroupInfo.GroupID)
		dst[offset+1] = byte(m.GroupInfo.ResourceTag)
		offset += 2
	}
	return nil
}

func (m *AssociationResponseMessage) Unpack(src []byte) error {
	size, err := m.PackedSizeByPeeking(src)
	if err != nil {
		return err
	}
	if uint32(len(src)) < size {
		return fmt.Errorf("mmie: association response message source too small")
	}

	*m = AssociationResponseMessage{}

	if src[0]>>7 == 0 {
		m.RejectInfo = &RejectInfo{
			Cause: assocRejectCauseFromCoded(uint32(src[1] >> 4)),
			Time:  assocRejectTimeFromCoded(uint32(src[1]) & 0xF),
		}
		if !m.IsValid() {
			return fmt.Errorf("mmie: association response message decoded invalid field values")
		}
		return nil
	}

	offset := 1
	if (src[0]>>5)&1 == 1 {
		rx := unpackHARQConfig(src[offset])
		offset++
		tx := unpackHARQConfig(src[offset])
		offset++
		m.HARQConfiguration = &HARQConfigTxRx{TX: tx, RX: rx}
	}

	nFlows := uint32(src[0]>>2) & 0b111
	switch nFlows {
	case uint32(NofFlowsAcceptedNone):
		m.NofFlowsAccepted = NofFlowsAcceptedNone
	case uint32(NofFlowsAcceptedAsRequested):
		m.NofFlowsAccepted = NofFlowsAcceptedAsRequested
	default:
		m.NofFlowsAccepted = NofFlowsAcceptedAsIncluded
		m.FlowIDs = make([]AssocFlowID, 0, nFlows)
		for n := uint32(0); n < nFlows; n++ {
			flowID := uint32(src[offset]) & 0b111111
			m.FlowIDs = append(m.FlowIDs, assocFlowIDFromCoded(flowID))
			offset++
		}
	}

	if (src[0]>>1)&1 == 1 {
		m.GroupInfo = &GroupInfo{
			GroupID:     uint32(src[offset]) & 0b1111111,
			ResourceTag: uint32(src[offset+1]) & 0b1111111,
		}
		offset += 2
	}

	m.TXPower = src[0]&1 == 1

	if !m.IsValid() {
		return fmt.Errorf("mmie: association response message decoded invalid field values")
	}
	return nil
}

// AssocReleaseCause is the Release Cause field of Table 6.4.2.6-1.
type AssocReleaseCause uint32

const (
	AssocReleaseCauseNotDefined                  AssocReleaseCause = 0xFFFFFFFF
	AssocReleaseCauseConnectionTermination       AssocReleaseCause = 0
	AssocReleaseCauseMobility                     AssocReleaseCause = 1
	AssocReleaseCauseLongInactivity               AssocReleaseCause = 2
	AssocReleaseCauseIncompatibleConfiguration    AssocReleaseCause = 3
	AssocReleaseCauseNoSufficientHWMemoryResource AssocReleaseCause = 4
	AssocReleaseCauseNoSufficientRadioResources   AssocReleaseCause = 5
	AssocReleaseCauseBadRadioQuality               AssocReleaseCause = 6
	AssocReleaseCauseSecurityError                 AssocReleaseCause = 7
	AssocReleaseCauseOtherError                    AssocReleaseCause = 8
	AssocReleaseCauseOtherReason                   AssocReleaseCause = 9
)

func assocReleaseCauseFromCoded(v uint32) AssocReleaseCause {
	if v <= uint32(AssocReleaseCauseOtherReason) {
		return AssocReleaseCause(v)
	}
	return AssocReleaseCauseNotDefined
}

// AssociationReleaseMessage is the association release message of clause
// 6.4.2.6, ending an association from either side.
type AssociationReleaseMessage struct {
	ReleaseCause AssocReleaseCause
}

func (m *AssociationReleaseMessage) IEType() IEType { return IETypeAssociationReleaseMessage }

func (m *AssociationReleaseMessage) muxHeader() MuxHeader {
	return MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeAssociationReleaseMessage}
}

func (m *AssociationReleaseMessage) IsValid() bool {
	return m.ReleaseCause != AssocReleaseCauseNotDefined
}

func (m *AssociationReleaseMessage) PackedSize() uint32 { return 1 }

func (m *AssociationReleaseMessage) PackedSizeOfMMHSDU() uint32 {
	return m.muxHeader().PackedSize() + m.PackedSize()
}

func (m *AssociationReleaseMessage) PackMMHSDU(dst []byte) error {
	mh := m.muxHeader()
	if err := mh.Pack(dst); err != nil {
		return err
	}
	return m.Pack(dst[mh.PackedSize():])
}

func (m *AssociationReleaseMessage) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: association release message invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: association release message destination too small")
	}
	dst[0] = byte(m.ReleaseCause) << 4
	return nil
}

func (m *AssociationReleaseMessage) Unpack(src []byte) error {
	if uint32(len(src)) < m.PackedSize() {
		return fmt.Errorf("mmie: association release message source too small")
	}
	m.ReleaseCause = assocReleaseCauseFromCoded(uint32(src[0] >> 4))
	if !m.IsValid() {
		return fmt.Errorf("mmie: association release message decoded invalid field values")
	}
	return nil
}
