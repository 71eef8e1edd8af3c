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

package contact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/contact"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/identity"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/mmie"
)

func testIdentity(t *testing.T, shortRD uint32) identity.Identity {
	t.Helper()
	id, err := identity.New(1, 100, shortRD)
	require.NoError(t, err)
	return id
}

func TestFeedbackPlanRotates(t *testing.T) {
	p := contact.NewFeedbackPlan([]uint32{1, 3, 5})

	f, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, uint32(1), f)

	f, _ = p.Next()
	assert.Equal(t, uint32(3), f)
	f, _ = p.Next()
	assert.Equal(t, uint32(5), f)
	f, _ = p.Next()
	assert.Equal(t, uint32(1), f)
}

func TestFeedbackPlanEmpty(t *testing.T) {
	p := contact.NewFeedbackPlan(nil)
	_, ok := p.Next()
	assert.False(t, ok)
}

func TestPTAssociationSucceeds(t *testing.T) {
	c := contact.New(testIdentity(t, 10), []uint32{0}, contact.DefaultAssociationConfig())
	require.Equal(t, contact.PTStateDiscover, c.PTState)

	req := c.OnAssociationRequestSent()
	assert.Equal(t, contact.PTStateAssociate, c.PTState)
	require.True(t, req.IsValid())
	assert.Equal(t, mmie.AssocSetupCauseInitial, req.SetupCause)
	assert.Equal(t, []mmie.AssocFlowID{mmie.AssocFlowIDUserPlaneData1}, req.FlowIDs)

	packed := make([]byte, req.PackedSize())
	require.NoError(t, req.Pack(packed))

	c.OnAssociationResponse(true, contact.RejectCauseNone)
	assert.Equal(t, contact.PTStateSteady, c.PTState)
	assert.Equal(t, 0, c.RetryCount())
}

func TestPTAssociationGivesUpAfterMaxRetries(t *testing.T) {
	cfg := contact.AssociationConfig{MaxRetries: 2, MissedBeaconMax: 8}
	c := contact.New(testIdentity(t, 10), nil, cfg)

	c.OnAssociationRequestSent()
	c.OnAssociationResponse(false, contact.RejectCauseNotSecure)
	assert.Equal(t, contact.PTStateAssociate, c.PTState)
	assert.Equal(t, 1, c.RetryCount())

	c.OnAssociationResponse(false, contact.RejectCauseConflictingShortRDID)
	assert.Equal(t, contact.PTStateDiscover, c.PTState)
	assert.Equal(t, 0, c.RetryCount())
}

func TestPTFallsBackToDiscoverOnMissedBeacons(t *testing.T) {
	cfg := contact.AssociationConfig{MaxRetries: 5, MissedBeaconMax: 3}
	c := contact.New(testIdentity(t, 10), nil, cfg)
	c.PTState = contact.PTStateSteady

	c.OnBeaconMissed()
	c.OnBeaconMissed()
	assert.Equal(t, contact.PTStateSteady, c.PTState)

	c.OnBeaconMissed()
	assert.Equal(t, contact.PTStateDiscover, c.PTState)
	assert.Equal(t, 0, c.MissedBeacons())

	c.PTState = contact.PTStateSteady
	c.OnBeaconMissed()
	c.OnBeaconReceived()
	assert.Equal(t, 0, c.MissedBeacons())
}

func TestFTAcceptsAssociation(t *testing.T) {
	c := contact.New(testIdentity(t, 10), nil, contact.DefaultAssociationConfig())
	c.OnAssociationRequestReceived(true, contact.RejectCauseNone)
	assert.Equal(t, contact.FTStateSteady, c.FTState)
}

func TestFTRejectsAssociation(t *testing.T) {
	c := contact.New(testIdentity(t, 10), nil, contact.DefaultAssociationConfig())
	c.OnAssociationRequestReceived(false, contact.RejectCauseResourceExhausted)
	assert.Equal(t, contact.FTStateResource, c.FTState)
	assert.Equal(t, contact.RejectCauseResourceExhausted, c.RejectCause())
}

func TestRegistryAddGetRemove(t *testing.T) {
	r := contact.NewRegistry()
	c := contact.New(testIdentity(t, 42), nil, contact.DefaultAssociationConfig())
	r.Add(c)

	got, ok := r.Get(42)
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.Equal(t, 1, r.Len())

	_, err := r.MustGet(7)
	assert.Error(t, err)

	r.Remove(42)
	_, ok = r.Get(42)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestAuthTagRoundTrip(t *testing.T) {
	secret := []byte("shared-secret")
	nonce := []byte("association-nonce")

	tag := contact.DeriveAuthTag(secret, nonce)
	assert.True(t, contact.VerifyAuthTag(secret, nonce, tag))
	assert.False(t, contact.VerifyAuthTag(secret, []byte("other-nonce"), tag))
}
