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

package contact

import (
	"github.com/maxpenner/dect-nr-plus-l2core/internal/identity"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/mmie"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/phyapi"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/schedule"
)

// Contact is one peer relationship, held by either an FT (one Contact per
// associated PT) or a PT (exactly one Contact, its serving FT).
type Contact struct {
	Identity identity.Identity

	PTState PTState
	FTState FTState

	FeedbackPlan *FeedbackPlan

	// AllocationPT is the peer's slot layout relative to the FT's beacons,
	// nil until resources have been granted.
	AllocationPT *schedule.UnicastSchedule

	// SyncReport and MIMOCSI are the last known receive quality and
	// channel state for this peer, refreshed on every decoded packet.
	SyncReport phyapi.SyncReport
	MIMOCSI    phyapi.MIMOReport

	// Capability is the peer's most recently advertised RD Capability IE,
	// nil until one has been received.
	Capability *mmie.RDCapabilityIE

	// ConnIdxIngress/ConnIdxEgress are this peer's connection indices into
	// the application bridge's server and client halves.
	ConnIdxIngress int
	ConnIdxEgress  int

	retryCount     int
	missedBeacons  int
	rejectCause    RejectCause
	associationCfg AssociationConfig
}

// New creates a contact in its initial association state: PTState is
// Discover and FTState is Resource, the zero values of both.
func New(id identity.Identity, feedbackFormats []uint32, cfg AssociationConfig) *Contact {
	return &Contact{
		Identity:       id,
		FeedbackPlan:   NewFeedbackPlan(feedbackFormats),
		associationCfg: cfg,
	}
}

// Restore rebuilds a contact from persisted state: identity, the two
// lifecycle states and the retry/missed-beacon counters a restart would
// otherwise reset to zero.
func Restore(id identity.Identity, ptState PTState, ftState FTState, retryCount, missedBeacons int, cfg AssociationConfig) *Contact {
	c := New(id, nil, cfg)
	c.PTState = ptState
	c.FTState = ftState
	c.retryCount = retryCount
	c.missedBeacons = missedBeacons
	return c
}

// OnAssociationRequestSent transitions a PT contact from Discover to
// Associate and builds the association_request message to transmit,
// carrying the setup cause, requested flows, and HARQ configuration from
// associationCfg.
func (c *Contact) OnAssociationRequestSent() *mmie.AssociationRequestMessage {
	if c.PTState == PTStateDiscover {
		c.PTState = PTStateAssociate
	}
	return &mmie.AssociationRequestMessage{
		SetupCause:          c.associationCfg.SetupCause,
		FlowIDs:             append([]mmie.AssocFlowID(nil), c.associationCfg.FlowIDs...),
		HasPowerConstraints: c.associationCfg.HasPowerConstraints,
		HARQConfiguration:   c.associationCfg.HARQConfiguration,
	}
}

// OnAssociationResponse applies the FT's response to an in-flight
// association_request. accepted=false applies cause and either retries
// (incrementing retryCount) or gives up and returns to Discover once
// retryCount reaches MaxRetries.
func (c *Contact) OnAssociationResponse(accepted bool, cause RejectCause) {
	if accepted {
		c.PTState = PTStateSteady
		c.retryCount = 0
		c.missedBeacons = 0
		c.rejectCause = RejectCauseNone
		return
	}
	c.rejectCause = cause
	c.retryCount++
	if c.retryCount >= c.associationCfg.MaxRetries {
		c.PTState = PTStateDiscover
		c.retryCount = 0
	}
}

// OnBeaconMissed records one missed beacon, dropping the PT contact back to
// Discover once MissedBeaconMax consecutive misses have accumulated.
func (c *Contact) OnBeaconMissed() {
	c.missedBeacons++
	if c.missedBeacons >= c.associationCfg.MissedBeaconMax {
		c.PTState = PTStateDiscover
		c.missedBeacons = 0
	}
}

// OnBeaconReceived resets the missed-beacon counter.
func (c *Contact) OnBeaconReceived() {
	c.missedBeacons = 0
}

// OnAssociationReleaseSent moves a PT contact to Dissociate.
func (c *Contact) OnAssociationReleaseSent() {
	c.PTState = PTStateDissociate
}

// RetryCount reports how many consecutive association_request attempts
// have failed since the last success or reset.
func (c *Contact) RetryCount() int { return c.retryCount }

// MissedBeacons reports the current consecutive missed-beacon count.
func (c *Contact) MissedBeacons() int { return c.missedBeacons }

// RejectCause reports the cause of the most recent association rejection.
func (c *Contact) RejectCause() RejectCause { return c.rejectCause }

// FT-side transitions.

// OnAssociationRequestReceived accepts or rejects an incoming request while
// the FT contact is in Resource state, moving it to Steady on acceptance.
func (c *Contact) OnAssociationRequestReceived(accept bool, cause RejectCause) {
	if accept {
		c.FTState = FTStateSteady
		c.rejectCause = RejectCauseNone
		return
	}
	c.rejectCause = cause
}

// OnAssociationReleaseReceived moves an FT contact to Dissociation.
func (c *Contact) OnAssociationReleaseReceived() {
	c.FTState = FTStateDissociation
}
