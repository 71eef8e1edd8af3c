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

// Package contact implements the per-peer association state machine (both
// PT and FT sides), the contact registry, feedback-plan rotation, and the
// association authentication tag.
package contact

import "github.com/maxpenner/dect-nr-plus-l2core/internal/mmie"

// PTState enumerates the PT-side association lifecycle: Discover (scan
// channels for beacons), Associate (send association_request, expect
// association_response), Steady (regular beacon consumption, uplink data,
// feedback), Dissociate (send association_release, tear down locally).
type PTState int

const (
	PTStateDiscover PTState = iota
	PTStateAssociate
	PTStateSteady
	PTStateDissociate
)

func (s PTState) String() string {
	switch s {
	case PTStateDiscover:
		return "discover"
	case PTStateAssociate:
		return "associate"
	case PTStateSteady:
		return "steady"
	case PTStateDissociate:
		return "dissociate"
	default:
		return "unknown"
	}
}

// PTStateFromString is the inverse of String, used when restoring a
// persisted contact. Unrecognized values map to the initial Discover state
// so a stale record degrades to rediscovery rather than a bogus state.
func PTStateFromString(s string) PTState {
	switch s {
	case "associate":
		return PTStateAssociate
	case "steady":
		return PTStateSteady
	case "dissociate":
		return PTStateDissociate
	default:
		return PTStateDiscover
	}
}

// FTState enumerates the FT-side association lifecycle: Resource (advertise
// capacity, accept association_request and answer), Steady (transmit
// beacons, grant unicasts), Dissociation (stop accepting, drain, broadcast
// shutdown).
type FTState int

const (
	FTStateResource FTState = iota
	FTStateSteady
	FTStateDissociation
)

func (s FTState) String() string {
	switch s {
	case FTStateResource:
		return "resource"
	case FTStateSteady:
		return "steady"
	case FTStateDissociation:
		return "dissociation"
	default:
		return "unknown"
	}
}

// FTStateFromString is the inverse of String, used when restoring a
// persisted contact; unrecognized values map to the initial Resource state.
func FTStateFromString(s string) FTState {
	switch s {
	case "steady":
		return FTStateSteady
	case "dissociation":
		return FTStateDissociation
	default:
		return FTStateResource
	}
}

// RejectCause enumerates why an FT refused an association_request.
type RejectCause int

const (
	RejectCauseNone RejectCause = iota
	RejectCauseNotSecure
	RejectCauseConflictingShortRDID
	RejectCauseResourceExhausted
)

// AssociationConfig bounds the PT's association retry behavior and supplies
// the field values OnAssociationRequestSent packs into the association
// request it builds.
type AssociationConfig struct {
	MaxRetries      int
	MissedBeaconMax int // consecutive missed beacons before PT falls back to Discover

	SetupCause          mmie.AssocSetupCause
	FlowIDs             []mmie.AssocFlowID
	HasPowerConstraints bool
	HARQConfiguration   mmie.HARQConfigTxRx
}

// DefaultAssociationConfig mirrors values typical of a point-to-point
// firmware's steady-state operation: a handful of retries, a handful of
// missed beacons before giving up on the link, an initial association
// requesting a single user-plane-data flow with a modest HARQ process pool.
func DefaultAssociationConfig() AssociationConfig {
	return AssociationConfig{
		MaxRetries:      5,
		MissedBeaconMax: 8,
		SetupCause:      mmie.AssocSetupCauseInitial,
		FlowIDs:         []mmie.AssocFlowID{mmie.AssocFlowIDUserPlaneData1},
		HARQConfiguration: mmie.HARQConfigTxRx{
			TX: mmie.HARQConfig{NHARQProcesses: 2, MaxHARQRetransmissionDelay: mmie.MaxHARQRetransmissionDelay100ms},
			RX: mmie.HARQConfig{NHARQProcesses: 2, MaxHARQRetransmissionDelay: mmie.MaxHARQRetransmissionDelay100ms},
		},
	}
}
