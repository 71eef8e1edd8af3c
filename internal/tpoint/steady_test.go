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

package tpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/appbridge"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/contact"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/identity"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/macpdu"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/mmie"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/tpoint"
)

type recordingSink struct {
	connIdx  int
	datagram []byte
}

func (s *recordingSink) WriteDatagram(connIdx int, datagram []byte) error {
	s.connIdx = connIdx
	s.datagram = append([]byte(nil), datagram...)
	return nil
}

func TestDispatchSteadyAppliesPowerTargetAndTimeAnnounce(t *testing.T) {
	inst := newTestInstance()
	result := &macpdu.Result{IEs: []macpdu.DecodedIE{
		{MMIE: &mmie.PowerTargetIE{PowerTargetDB: -3}},
		{MMIE: &mmie.TimeAnnounceIE{NextPPSEdgeTime64: 123456}},
	}}

	inst.DispatchSteady(result, nil)

	assert.Equal(t, int8(-3), inst.AGC.TxPowerOffsetDB)
	assert.Equal(t, int64(123456), inst.NextPPSEdgeTime64())
}

func TestDispatchSteadyForwardsUserPlaneData(t *testing.T) {
	inst := newTestInstance()
	sink := &recordingSink{}
	client := appbridge.NewClient(appbridge.DefaultNDatagram, appbridge.DefaultNDatagramMaxByte, nil, sink)

	flow, err := mmie.NewUserPlaneData(1)
	require.NoError(t, err)
	flow.Payload = []byte{0xDE, 0xAD, 0xBE, 0xEF}

	result := &macpdu.Result{IEs: []macpdu.DecodedIE{{MMIE: flow}}}
	inst.DispatchSteady(result, client)

	require.Equal(t, int64(1), client.Pending())
	n, err := client.ForwardPending([]int{0})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, sink.datagram)
}

func TestDispatchSteadySkipsOpaqueWithoutAborting(t *testing.T) {
	inst := newTestInstance()
	result := &macpdu.Result{IEs: []macpdu.DecodedIE{
		{MMIE: &mmie.Opaque{Type: 0x1F}},
		{MMIE: &mmie.PowerTargetIE{PowerTargetDB: 5}},
	}}

	assert.NotPanics(t, func() { inst.DispatchSteady(result, nil) })
	assert.Equal(t, int8(5), inst.AGC.TxPowerOffsetDB)
}

func TestDispatchSteadyRoutesForwardToTarget(t *testing.T) {
	inst := newTestInstance()
	sink := &recordingSink{}
	client := appbridge.NewClient(appbridge.DefaultNDatagram, appbridge.DefaultNDatagramMaxByte, nil, sink)

	flow, err := mmie.NewUserPlaneData(1)
	require.NoError(t, err)
	flow.Payload = []byte{0x01}

	result := &macpdu.Result{IEs: []macpdu.DecodedIE{
		{MMIE: &mmie.ForwardToIE{ShortRDID: 7}},
		{MMIE: flow},
	}}
	inst.DispatchSteady(result, client)

	_, err = client.ForwardPending([]int{7})
	require.NoError(t, err)
	assert.Equal(t, 7, sink.connIdx)
}

func newPTInstanceWithContact(t *testing.T) *tpoint.Instance {
	t.Helper()
	inst := tpoint.New(tpoint.Config{
		Role:          tpoint.RolePT,
		NetworkID:     1,
		HARQProcesses: 2,
		HARQALenMax:   100,
		HARQZ:         256,
	})
	id, err := identity.New(1, 0x000001BC, 0x01BD)
	require.NoError(t, err)
	inst.Contact = contact.New(id, nil, contact.DefaultAssociationConfig())
	return inst
}

func TestDispatchSteadyClusterBeaconUpdatesPTClock(t *testing.T) {
	inst := newPTInstanceWithContact(t)
	require.Nil(t, inst.PLL)

	beacon := &mmie.ClusterBeaconMessage{
		SystemFrameNumber:   5,
		NetworkBeaconPeriod: mmie.NetworkBeaconPeriod1000ms,
		ClusterBeaconPeriod: mmie.ClusterBeaconPeriod100ms,
	}
	result := &macpdu.Result{IEs: []macpdu.DecodedIE{{MMIE: beacon}}}
	inst.DispatchSteady(result, nil)

	assert.NotNil(t, inst.PLL)
}

func TestDispatchSteadyCachesRDCapabilityOnContact(t *testing.T) {
	inst := newPTInstanceWithContact(t)

	capability := &mmie.RDCapabilityIE{Release: mmie.RDCapRelease1}
	result := &macpdu.Result{IEs: []macpdu.DecodedIE{{MMIE: capability}}}
	inst.DispatchSteady(result, nil)

	require.NotNil(t, inst.Contact.Capability)
	assert.Equal(t, mmie.RDCapRelease1, inst.Contact.Capability.Release)
}

func TestDispatchSteadyResourceAllocationRebuildsAndClearsSchedule(t *testing.T) {
	inst := newPTInstanceWithContact(t)

	grant := &mmie.ResourceAllocationIE{
		AllocationUL: &mmie.ResourceAllocation{StartSubslot: 40, Length: 4},
	}
	inst.DispatchSteady(&macpdu.Result{IEs: []macpdu.DecodedIE{{MMIE: grant}}}, nil)
	require.NotNil(t, inst.Contact.AllocationPT)

	release := &mmie.ResourceAllocationIE{}
	inst.DispatchSteady(&macpdu.Result{IEs: []macpdu.DecodedIE{{MMIE: release}}}, nil)
	assert.Nil(t, inst.Contact.AllocationPT)
}
