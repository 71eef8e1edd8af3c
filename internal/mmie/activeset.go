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

// ActiveSet restricts which IE types the decoder accepts: an engine
// only needs to understand the subset of Table 6.3.4-2/3/4 its deployment
// actually uses, and anything else should abort decoding rather than be
// silently misinterpreted.
type ActiveSet struct {
	ieType     map[IEType]bool
	ieTypeLen0 map[IETypeLen0]bool
	ieTypeLen1 map[IETypeLen1]bool
}

// DefaultActiveSet activates every IE type the pool gives field-level
// semantics to: padding, both data flows, the beacon messages, the full
// association/reconfiguration lifecycle, the resource-management IEs, the
// short configuration-request/device-status IEs and the project-only
// power/time/forward extensions. Deployments that only ever exchange a
// subset can start from NewActiveSet and activate just that subset.
func DefaultActiveSet() *ActiveSet {
	a := NewActiveSet()
	a.ieType = map[IEType]bool{
		IETypePaddingIE:                      true,
		IETypeHigherLayerSignallingFlow1:     true,
		IETypeHigherLayerSignallingFlow2:     true,
		IETypeUserPlaneDataFlow1:             true,
		IETypeUserPlaneDataFlow2:             true,
		IETypeUserPlaneDataFlow3:             true,
		IETypeUserPlaneDataFlow4:             true,
		IETypeClusterBeaconMessage:           true,
		IETypeNetworkBeaconMessage:           true,
		IETypeAssociationRequestMessage:      true,
		IETypeAssociationResponseMessage:     true,
		IETypeAssociationReleaseMessage:      true,
		IETypeReconfigurationRequestMessage:  true,
		IETypeReconfigurationResponseMessage: true,
		IETypeSecurityInfoIE:                 true,
		IETypeRouteInfoIE:                    true,
		IETypeResourceAllocationIE:           true,
		IETypeRandomAccessResourceIE:         true,
		IETypeRDCapabilityIE:                 true,
		IETypeNeighbouringIE:                 true,
		IETypeBroadcastIndicationIE:          true,
		IETypeGroupAssignmentIE:              true,
		IETypeLoadInfoIE:                     true,
		IETypeMeasurementReportIE:            true,
		IETypePowerTargetIE:                  true,
		IETypeTimeAnnounceIE:                 true,
		IETypeForwardToIE:                    true,
	}
	a.ieTypeLen0 = map[IETypeLen0]bool{
		IETypeLen0PaddingIE:            true,
		IETypeLen0ConfigurationRequest: true,
	}
	a.ieTypeLen1 = map[IETypeLen1]bool{
		IETypeLen1PaddingIE:           true,
		IETypeLen1RadioDeviceStatusIE: true,
	}
	return a
}

// NewActiveSet returns an empty set; nothing decodes until activated.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{
		ieType:     map[IEType]bool{},
		ieTypeLen0: map[IETypeLen0]bool{},
		ieTypeLen1: map[IETypeLen1]bool{},
	}
}

// Activate adds iet to the set of accepted IE types (00/01/10 code space).
func (a *ActiveSet) Activate(iet IEType) { a.ieType[iet] = true }

// ActivateLen0 adds iet to the accepted short IEs with a zero-byte body.
func (a *ActiveSet) ActivateLen0(iet IETypeLen0) { a.ieTypeLen0[iet] = true }

// ActivateLen1 adds iet to the accepted short IEs with a one-byte body.
func (a *ActiveSet) ActivateLen1(iet IETypeLen1) { a.ieTypeLen1[iet] = true }

// IsActive reports whether the mux header's resolved IE type is one this
// engine is configured to decode.
func (a *ActiveSet) IsActive(mh MuxHeader) bool {
	switch mh.MacExt {
	case MacExtLengthField1:
		if mh.Length == 0 {
			return a.ieTypeLen0[mh.IETypeLen0]
		}
		return a.ieTypeLen1[mh.IETypeLen1]
	default:
		return a.ieType[mh.IEType]
	}
}
