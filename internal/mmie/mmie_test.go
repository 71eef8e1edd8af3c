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

package mmie_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/mmie"
)

func TestMuxHeaderRoundTripLengthField8(t *testing.T) {
	mh := mmie.MuxHeader{MacExt: mmie.MacExtLengthField8, IEType: mmie.IETypeUserPlaneDataFlow1, Length: 42}
	require.True(t, mh.IsValid())

	buf := make([]byte, mh.PackedSize())
	require.NoError(t, mh.Pack(buf))

	var got mmie.MuxHeader
	got.UnpackMacExtIEType(buf[0])
	require.NoError(t, got.UnpackLength(buf))
	require.Equal(t, mh, got)
}

func TestMuxHeaderRoundTripLengthField1(t *testing.T) {
	mh := mmie.MuxHeader{MacExt: mmie.MacExtLengthField1, Length: 1, IETypeLen1: mmie.IETypeLen1RadioDeviceStatusIE}
	require.True(t, mh.IsValid())

	buf := make([]byte, mh.PackedSize())
	require.NoError(t, mh.Pack(buf))

	var got mmie.MuxHeader
	got.UnpackMacExtIEType(buf[0])
	require.Equal(t, mh, got)
}

func TestPaddingIERoundTrip(t *testing.T) {
	p := &mmie.PaddingIE{}
	require.NoError(t, p.SetNofPaddingBytes(10))
	buf := make([]byte, p.PackedSizeOfMMHSDU())
	require.NoError(t, p.PackMMHSDU(buf))
	require.Equal(t, uint32(10), p.PackedSizeOfMMHSDU())
}

func TestPaddingIERejectsTooLarge(t *testing.T) {
	p := &mmie.PaddingIE{}
	require.Error(t, p.SetNofPaddingBytes(mmie.NPaddingBytesMax+1))
}

func TestFlowDataRoundTrip(t *testing.T) {
	flow, err := mmie.NewUserPlaneData(3)
	require.NoError(t, err)
	require.Equal(t, uint32(3), flow.FlowID())

	flow.Payload = []byte{1, 2, 3, 4, 5}
	buf := make([]byte, flow.PackedSizeOfMMHSDU())
	require.NoError(t, flow.PackMMHSDU(buf))

	got := &mmie.FlowData{Type: mmie.IETypeUserPlaneDataFlow3}
	got.SetDataSize(5)
	mh := mmie.MuxHeader{MacExt: mmie.MacExtLengthField8, IEType: mmie.IETypeUserPlaneDataFlow3, Length: 5}
	require.NoError(t, got.Unpack(buf[mh.PackedSize():]))
	require.Equal(t, flow.Payload, got.Payload)
}

func TestNetworkBeaconMessageRoundTripWithOptionals(t *testing.T) {
	txPower := uint32(5)
	channel := uint32(120)
	m := &mmie.NetworkBeaconMessage{
		ClustersMaxTxPower:    &txPower,
		HasPowerConstraints:   true,
		CurrentClusterChannel: &channel,
		NetworkBeaconPeriod:   mmie.NetworkBeaconPeriod1000ms,
		ClusterBeaconPeriod:   mmie.ClusterBeaconPeriod500ms,
		NextClusterChannel:    55,
		TimeToNext:            1000,
	}
	require.True(t, m.IsValid())

	buf := make([]byte, m.PackedSize())
	require.NoError(t, m.Pack(buf))

	var got mmie.NetworkBeaconMessage
	require.NoError(t, got.Unpack(buf))
	require.Equal(t, *m.ClustersMaxTxPower, *got.ClustersMaxTxPower)
	require.Equal(t, *m.CurrentClusterChannel, *got.CurrentClusterChannel)
	require.Nil(t, got.NetworkBeaconChannel0)
	require.Equal(t, m.NextClusterChannel, got.NextClusterChannel)
	require.Equal(t, m.TimeToNext, got.TimeToNext)
}

func TestNetworkBeaconMessageRoundTripStructurallyIdentical(t *testing.T) {
	txPower := uint32(3)
	channel := uint32(88)
	m := &mmie.NetworkBeaconMessage{
		ClustersMaxTxPower:    &txPower,
		HasPowerConstraints:   true,
		CurrentClusterChannel: &channel,
		NetworkBeaconPeriod:   mmie.NetworkBeaconPeriod2000ms,
		ClusterBeaconPeriod:   mmie.ClusterBeaconPeriod100ms,
		NextClusterChannel:    12,
		TimeToNext:            500,
	}
	require.True(t, m.IsValid())

	buf := make([]byte, m.PackedSize())
	require.NoError(t, m.Pack(buf))

	var got mmie.NetworkBeaconMessage
	require.NoError(t, got.Unpack(buf))

	// cmp.Diff dereferences the optional *uint32 fields and reports exactly
	// which one diverges, which is more useful here than a flat
	// require.Equal failure across a struct this wide.
	if diff := cmp.Diff(m, &got); diff != "" {
		t.Errorf("network beacon message round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAssociationRequestMessageRoundTripWithFTConfiguration(t *testing.T) {
	channel := uint32(77)
	m := &mmie.AssociationRequestMessage{
		SetupCause:          mmie.AssocSetupCauseInitial,
		FlowIDs:             []mmie.AssocFlowID{mmie.AssocFlowIDHigherLayerSignalling1, mmie.AssocFlowIDUserPlaneData1},
		HasPowerConstraints: true,
		FTConfiguration: &mmie.FTConfiguration{
			NetworkBeaconPeriod: mmie.NetworkBeaconPeriod1000ms,
			ClusterBeaconPeriod: mmie.ClusterBeaconPeriod500ms,
			NextClusterChannel:  42,
			TimeToNext:          1500,
		},
		CurrentClusterChannel: &channel,
		HARQConfiguration: mmie.HARQConfigTxRx{
			TX: mmie.HARQConfig{NHARQProcesses: 3, MaxHARQRetransmissionDelay: mmie.MaxHARQRetransmissionDelay20ms},
			RX: mmie.HARQConfig{NHARQProcesses: 2, MaxHARQRetransmissionDelay: mmie.MaxHARQRetransmissionDelay40ms},
		},
	}
	require.True(t, m.IsValid())

	buf := make([]byte, m.PackedSize())
	require.NoError(t, m.Pack(buf))

	peeked, err := m.PackedSizeByPeeking(buf)
	require.NoError(t, err)
	require.Equal(t, m.PackedSize(), peeked)

	var got mmie.AssociationRequestMessage
	require.NoError(t, got.Unpack(buf))
	if diff := cmp.Diff(m, &got); diff != "" {
		t.Errorf("association request message round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAssociationRequestMessageRoundTripMinimal(t *testing.T) {
	m := &mmie.AssociationRequestMessage{
		SetupCause: mmie.AssocSetupCauseMobility,
		FlowIDs:    []mmie.AssocFlowID{mmie.AssocFlowIDUserPlaneData4},
		HARQConfiguration: mmie.HARQConfigTxRx{
			TX: mmie.HARQConfig{NHARQProcesses: 1, MaxHARQRetransmissionDelay: mmie.MaxHARQRetransmissionDelay105us},
			RX: mmie.HARQConfig{NHARQProcesses: 1, MaxHARQRetransmissionDelay: mmie.MaxHARQRetransmissionDelay105us},
		},
	}
	require.True(t, m.IsValid())

	buf := make([]byte, m.PackedSize())
	require.NoError(t, m.Pack(buf))

	var got mmie.AssociationRequestMessage
	require.NoError(t, got.Unpack(buf))
	require.Equal(t, m.FlowIDs, got.FlowIDs)
	require.Nil(t, got.FTConfiguration)
	require.Nil(t, got.CurrentClusterChannel)
}

func TestAssociationResponseMessageRoundTripAccepted(t *testing.T) {
	m := &mmie.AssociationResponseMessage{
		HARQConfiguration: &mmie.HARQConfigTxRx{
			TX: mmie.HARQConfig{NHARQProcesses: 4, MaxHARQRetransmissionDelay: mmie.MaxHARQRetransmissionDelay60ms},
			RX: mmie.HARQConfig{NHARQProcesses: 2, MaxHARQRetransmissionDelay: mmie.MaxHARQRetransmissionDelay30ms},
		},
		NofFlowsAccepted: mmie.NofFlowsAcceptedAsIncluded,
		FlowIDs:          []mmie.AssocFlowID{mmie.AssocFlowIDUserPlaneData1, mmie.AssocFlowIDUserPlaneData2},
		GroupInfo:        &mmie.GroupInfo{GroupID: 5, ResourceTag: 9},
		TXPower:          true,
	}
	require.True(t, m.IsValid())

	buf := make([]byte, m.PackedSize())
	require.NoError(t, m.Pack(buf))

	peeked, err := m.PackedSizeByPeeking(buf)
	require.NoError(t, err)
	require.Equal(t, m.PackedSize(), peeked)

	var got mmie.AssociationResponseMessage
	require.NoError(t, got.Unpack(buf))
	if diff := cmp.Diff(m, &got); diff != "" {
		t.Errorf("association response message round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAssociationResponseMessageRoundTripRejected(t *testing.T) {
	m := &mmie.AssociationResponseMessage{
		RejectInfo: &mmie.RejectInfo{
			Cause: mmie.AssocRejectCauseHWCapacityNotSufficient,
			Time:  mmie.AssocRejectTime60s,
		},
	}
	require.True(t, m.IsValid())

	buf := make([]byte, m.PackedSize())
	require.NoError(t, m.Pack(buf))
	require.Equal(t, uint32(2), m.PackedSize())

	peeked, err := m.PackedSizeByPeeking(buf)
	require.NoError(t, err)
	require.Equal(t, uint32(2), peeked)

	var got mmie.AssociationResponseMessage
	require.NoError(t, got.Unpack(buf))
	require.Equal(t, m.RejectInfo, got.RejectInfo)
}

func TestAssociationReleaseMessageRoundTrip(t *testing.T) {
	m := &mmie.AssociationReleaseMessage{ReleaseCause: mmie.AssocReleaseCauseLongInactivity}
	require.True(t, m.IsValid())

	buf := make([]byte, m.PackedSize())
	require.NoError(t, m.Pack(buf))

	var got mmie.AssociationReleaseMessage
	require.NoError(t, got.Unpack(buf))
	require.Equal(t, m.ReleaseCause, got.ReleaseCause)
}

func TestClusterBeaconMessageRoundTripWithOptionals(t *testing.T) {
	txPower := uint32(10)
	frameOffset := uint32(200)
	nextChannel := uint32(33)
	timeToNext := uint32(900)
	m := &mmie.ClusterBeaconMessage{
		SystemFrameNumber:   120,
		ClustersMaxTxPower:  &txPower,
		HasPowerConstraints: true,
		FrameOffset:         &frameOffset,
		NextClusterChannel:  &nextChannel,
		TimeToNext:          &timeToNext,
		NetworkBeaconPeriod: mmie.NetworkBeaconPeriod1500ms,
		ClusterBeaconPeriod: mmie.ClusterBeaconPeriod1000ms,
		CountToTrigger:      mmie.CountToTrigger32,
		RelQuality:          mmie.QualityThresholdMinus75dB,
		MinQuality:          mmie.QualityThresholdMinus85dB,
	}
	m.SetMu(1)
	require.True(t, m.IsValid())

	buf := make([]byte, m.PackedSize())
	require.NoError(t, m.Pack(buf))

	peeked, err := m.PackedSizeByPeeking(buf)
	require.NoError(t, err)
	require.Equal(t, m.PackedSize(), peeked)

	got := &mmie.ClusterBeaconMessage{}
	got.SetMu(1)
	require.NoError(t, got.Unpack(buf))
	if diff := cmp.Diff(m, got, cmp.AllowUnexported(mmie.ClusterBeaconMessage{})); diff != "" {
		t.Errorf("cluster beacon message round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestClusterBeaconMessageFrameOffsetWidensForHighMu(t *testing.T) {
	frameOffset := uint32(500)
	m := &mmie.ClusterBeaconMessage{
		SystemFrameNumber:   1,
		FrameOffset:         &frameOffset,
		NetworkBeaconPeriod: mmie.NetworkBeaconPeriod50ms,
		ClusterBeaconPeriod: mmie.ClusterBeaconPeriod10ms,
		CountToTrigger:      mmie.CountToTrigger1,
		RelQuality:          mmie.QualityThresholdMinus70dB,
		MinQuality:          mmie.QualityThresholdMinus70dB,
	}
	m.SetMu(8)
	require.True(t, m.IsValid())
	require.Equal(t, uint32(6), m.PackedSize()) // 4 fixed + 2-byte frame offset at mu=8

	buf := make([]byte, m.PackedSize())
	require.NoError(t, m.Pack(buf))

	got := &mmie.ClusterBeaconMessage{}
	got.SetMu(8)
	require.NoError(t, got.Unpack(buf))
	require.Equal(t, *m.FrameOffset, *got.FrameOffset)
}

func TestActiveSetDefaultsRejectUnknownIEType(t *testing.T) {
	a := mmie.DefaultActiveSet()
	require.True(t, a.IsActive(mmie.MuxHeader{MacExt: mmie.MacExtLengthField8, IEType: mmie.IETypeUserPlaneDataFlow1}))
	require.True(t, a.IsActive(mmie.MuxHeader{MacExt: mmie.MacExtNoLengthField, IEType: mmie.IETypeRDCapabilityIE}))
	require.False(t, a.IsActive(mmie.MuxHeader{MacExt: mmie.MacExtNoLengthField, IEType: mmie.IETypeEscape}))
}

func TestPoolFallsBackToOpaque(t *testing.T) {
	pool := mmie.NewPool(2)
	got, err := pool.Get(mmie.IETypeEscape, 0)
	require.NoError(t, err)
	require.IsType(t, &mmie.Opaque{}, got)

	beacon, err := pool.Get(mmie.IETypeNetworkBeaconMessage, 0)
	require.NoError(t, err)
	require.IsType(t, &mmie.NetworkBeaconMessage{}, beacon)
}
