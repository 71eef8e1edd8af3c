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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/contact"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/identity"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/macpdu"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/mmie"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/tpoint"
)

// fakeCoordination is an in-memory CoordinationStore double.
type fakeCoordination struct {
	values map[string][]byte
	ttls   map[string]time.Duration
}

func newFakeCoordination() *fakeCoordination {
	return &fakeCoordination{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCoordination) Has(_ context.Context, key string) (bool, error) {
	_, ok := f.values[key]
	return ok, nil
}

func (f *fakeCoordination) Set(_ context.Context, key string, value []byte) error {
	f.values[key] = value
	return nil
}

func (f *fakeCoordination) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.ttls[key] = ttl
	return nil
}

// fakeContactStore records persistence calls.
type fakeContactStore struct {
	savedContacts     []uint32
	savedCapabilities map[uint32][]byte
	deleted           []uint32
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{savedCapabilities: map[uint32][]byte{}}
}

func (f *fakeContactStore) SaveContact(_ uint32, c *contact.Contact) error {
	f.savedContacts = append(f.savedContacts, c.Identity.ShortRadioDeviceID)
	return nil
}

func (f *fakeContactStore) DeleteContact(_, shortRadioDeviceID uint32) error {
	f.deleted = append(f.deleted, shortRadioDeviceID)
	return nil
}

func (f *fakeContactStore) SaveRadioCapability(_, shortRadioDeviceID uint32, raw []byte) error {
	f.savedCapabilities[shortRadioDeviceID] = append([]byte(nil), raw...)
	return nil
}

func newInstanceWithShortID(role tpoint.Role, shortID uint32) *tpoint.Instance {
	return tpoint.New(tpoint.Config{
		Role:          role,
		NetworkID:     1,
		ShortRDID:     shortID,
		HARQProcesses: 2,
		HARQALenMax:   100,
		HARQZ:         256,
	})
}

func TestClaimLocalIdentityReportsClashAcrossInstances(t *testing.T) {
	store := newFakeCoordination()
	ctx := context.Background()

	first := newInstanceWithShortID(tpoint.RoleFT, 0x01BD)
	first.SetCoordination(store)
	clash, err := first.ClaimLocalIdentity(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, clash)

	second := newInstanceWithShortID(tpoint.RoleFT, 0x01BD)
	second.SetCoordination(store)
	clash, err = second.ClaimLocalIdentity(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, clash, "same short RD ID on a second live instance must be reported")

	other := newInstanceWithShortID(tpoint.RoleFT, 0x01BE)
	other.SetCoordination(store)
	clash, err = other.ClaimLocalIdentity(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, clash)
}

func TestPublishAssociationStateWritesTTLKey(t *testing.T) {
	store := newFakeCoordination()
	inst := newInstanceWithShortID(tpoint.RoleFT, 0x01BD)
	inst.SetCoordination(store)

	id, err := identity.New(1, 0x00000456, 0x0457)
	require.NoError(t, err)
	c := contact.New(id, nil, contact.DefaultAssociationConfig())
	c.OnAssociationRequestReceived(true, contact.RejectCauseNone)

	require.NoError(t, inst.PublishAssociationState(context.Background(), c, time.Minute))

	require.Len(t, store.values, 1)
	for key, value := range store.values {
		assert.Contains(t, key, "assoc:")
		assert.Equal(t, "steady", string(value))
		assert.Equal(t, time.Minute, store.ttls[key])
	}
}

func TestDispatchSteadyPersistsCapability(t *testing.T) {
	inst := newPTInstanceWithContact(t)
	store := newFakeContactStore()
	inst.SetContactStore(store)

	phy := mmie.RDCapPhyCapability{
		PowerClass:        mmie.RDCapPowerClass1,
		MaxNssForRx:       mmie.RDCapNofSpatialStreams1,
		RxForTxDiversity:  mmie.RDCapNofTxAntennas1,
		MaxMCS:            mmie.RDCapMaxMCS7,
		SoftBufferSize:    mmie.RDCapSoftBufferSize25344,
		NofHarqProcesses:  mmie.RDCapNofHarqProcesses4,
		HarqFeedbackDelay: mmie.RDCapHarqFeedbackDelay2,
	}
	phy.SetRxGain(0)
	capability := &mmie.RDCapabilityIE{
		Release:        mmie.RDCapRelease1,
		OperatingModes: mmie.RDCapOperatingModeFT,
		MacSecurity:    mmie.RDCapMacSecurityNotSupported,
		DLCServiceType: mmie.RDCapDLCServiceType0,
		PhyCapability:  phy,
	}
	require.True(t, capability.IsValid())

	inst.DispatchSteady(&macpdu.Result{IEs: []macpdu.DecodedIE{{MMIE: capability}}}, nil)

	raw, ok := store.savedCapabilities[inst.Contact.Identity.ShortRadioDeviceID]
	require.True(t, ok)

	var got mmie.RDCapabilityIE
	require.NoError(t, got.Unpack(raw))
	assert.Equal(t, mmie.RDCapRelease1, got.Release)
}

func TestDispatchSteadyAssociationReleaseDeletesPersistedContact(t *testing.T) {
	inst := newPTInstanceWithContact(t)
	store := newFakeContactStore()
	inst.SetContactStore(store)

	inst.DispatchSteady(&macpdu.Result{IEs: []macpdu.DecodedIE{{MMIE: &mmie.AssociationReleaseMessage{}}}}, nil)

	require.Len(t, store.deleted, 1)
	assert.Equal(t, inst.Contact.Identity.ShortRadioDeviceID, store.deleted[0])
	assert.Equal(t, contact.PTStateDiscover, inst.Contact.PTState)
}
