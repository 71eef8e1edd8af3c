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

package tpoint

import (
	"encoding/json"
	"log/slog"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/appbridge"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/contact"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/macpdu"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/mmie"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/schedule"
)

// event is the JSON wire shape published to EventTopic: minimal and
// human-readable rather than a full MMIE dump, since its purpose is a
// live operator tail, not a replayable trace.
type event struct {
	IEType string `json:"ieType"`
	Bytes  int    `json:"bytes"`
}

func (inst *Instance) publishEvent(ieType string, size int) {
	if inst.events == nil {
		return
	}
	b, err := json.Marshal(event{IEType: ieType, Bytes: size})
	if err != nil {
		return
	}
	if err := inst.events.Publish(EventTopic, b); err != nil {
		slog.Debug("tpoint: publishing mmie event", "error", err)
	}
}

// AGC tracks the most recent TX power correction applied from a received
// Power-Target IE.
type AGC struct {
	TxPowerOffsetDB int8
}

// DispatchSteady is the per-PDC handling loop of the Steady state: on every
// successful PDC decode the receiver iterates the MMIE list and updates
// local state per expected variant. Unexpected or unknown MMIE types are
// logged and skipped; they never abort processing of the remaining list.
// It is wired in from WorkPDC once a Result has been decoded.
func (inst *Instance) DispatchSteady(result *macpdu.Result, appClient *appbridge.Client) {
	for _, ie := range result.IEs {
		switch v := ie.MMIE.(type) {
		case *mmie.NetworkBeaconMessage:
			inst.onNetworkBeacon(v)
			inst.publishEvent("NetworkBeaconMessage", 0)
		case *mmie.ClusterBeaconMessage:
			inst.onClusterBeacon(v)
			inst.publishEvent("ClusterBeaconMessage", int(v.PackedSize()))
		case *mmie.RDCapabilityIE:
			inst.onRDCapability(v)
			inst.publishEvent("RDCapabilityIE", int(v.PackedSize()))
		case *mmie.AssociationReleaseMessage:
			inst.onAssociationRelease(v)
			inst.publishEvent("AssociationReleaseMessage", int(v.PackedSize()))
		case *mmie.ResourceAllocationIE:
			inst.onResourceAllocation(v)
			inst.publishEvent("ResourceAllocationIE", int(v.PackedSize()))
		case *mmie.RadioDeviceStatusIE:
			if v.StatusFlag == mmie.RadioDeviceStatusFlagMemoryFull {
				slog.Warn("tpoint: peer reports memory full", "duration", v.Duration)
			}
			inst.publishEvent("RadioDeviceStatusIE", int(v.PackedSize()))
		case *mmie.MeasurementReportIE:
			inst.publishEvent("MeasurementReportIE", int(v.PackedSize()))
		case *mmie.NeighbouringIE:
			inst.publishEvent("NeighbouringIE", int(v.PackedSize()))
		case *mmie.LoadInfoIE:
			inst.publishEvent("LoadInfoIE", int(v.PackedSize()))
		case *mmie.PowerTargetIE:
			inst.onPowerTarget(v)
			inst.publishEvent("PowerTargetIE", int(v.PackedSize()))
		case *mmie.TimeAnnounceIE:
			inst.onTimeAnnounce(v)
			inst.publishEvent("TimeAnnounceIE", int(v.PackedSize()))
		case *mmie.ForwardToIE:
			// The next FlowData IE handled after this one is written to the
			// application bridge at connection index v.ShortRDID instead of
			// the default index 0; onUserData consumes and clears the target.
			inst.lastForwardTarget = v.ShortRDID
			inst.publishEvent("ForwardToIE", int(v.PackedSize()))
		case *mmie.FlowData:
			inst.onUserData(v, appClient)
			inst.publishEvent("FlowData", len(v.Payload))
		case *mmie.Opaque:
			slog.Debug("tpoint: skipping unmodeled MMIE", "ie_type", v.Type)
		default:
			slog.Debug("tpoint: skipping unknown MMIE variant")
		}
	}
}

// onNetworkBeacon handles a decoded Network Beacon Message on the PT: it
// creates the drift estimator on first reception and resets the contact's
// missed-beacon counter. No beacon time is fed into the estimator here.
func (inst *Instance) onNetworkBeacon(_ *mmie.NetworkBeaconMessage) {
	if inst.Role != RolePT {
		return
	}
	if inst.PLL == nil {
		inst.PLL = schedule.NewDriftEstimator(0)
	}
	if inst.Contact != nil {
		inst.Contact.OnBeaconReceived()
	}
}

// onClusterBeacon handles a decoded Cluster Beacon Message on the PT the same
// way: it creates the drift estimator on first reception and resets the
// contact's missed-beacon counter. No beacon time is fed into the estimator
// here.
func (inst *Instance) onClusterBeacon(_ *mmie.ClusterBeaconMessage) {
	if inst.Role != RolePT {
		return
	}
	if inst.PLL == nil {
		inst.PLL = schedule.NewDriftEstimator(0)
	}
	if inst.Contact != nil {
		inst.Contact.OnBeaconReceived()
	}
}

// onRDCapability caches the peer's advertised capability on its contact.
// Only the PT role has unambiguous peer context here; an FT learns
// capabilities during association, where the peer identity is explicit.
func (inst *Instance) onRDCapability(v *mmie.RDCapabilityIE) {
	if inst.Contact == nil {
		slog.Debug("tpoint: rd capability ie without contact context, ignoring")
		return
	}
	cached := *v
	inst.Contact.Capability = &cached

	if inst.contactStore == nil {
		return
	}
	raw := make([]byte, v.PackedSize())
	if err := v.Pack(raw); err != nil {
		slog.Debug("tpoint: repacking rd capability for persistence", "error", err)
		return
	}
	if err := inst.contactStore.SaveRadioCapability(inst.networkID, inst.Contact.Identity.ShortRadioDeviceID, raw); err != nil {
		slog.Warn("tpoint: persisting rd capability", "error", err)
	}
}

// onAssociationRelease tears the serving association down locally: the PT
// falls back to Discover, and the peer's durable record is removed since
// the association it described no longer exists.
func (inst *Instance) onAssociationRelease(_ *mmie.AssociationReleaseMessage) {
	if inst.Contact == nil {
		return
	}
	inst.Contact.OnAssociationReleaseReceived()
	if inst.Role == RolePT {
		inst.Contact.PTState = contact.PTStateDiscover
	}
	if inst.contactStore != nil {
		if err := inst.contactStore.DeleteContact(inst.networkID, inst.Contact.Identity.ShortRadioDeviceID); err != nil {
			slog.Warn("tpoint: deleting released contact", "error", err)
		}
	}
}

// onResourceAllocation rebuilds the PT's uplink/downlink slot layout from a
// granted (or revoked) resource allocation.
func (inst *Instance) onResourceAllocation(v *mmie.ResourceAllocationIE) {
	if inst.Contact == nil {
		return
	}
	if v.AllocationDL == nil && v.AllocationUL == nil {
		inst.Contact.AllocationPT = nil
		return
	}

	var allocations []schedule.Allocation
	if v.AllocationDL != nil {
		allocations = append(allocations, schedule.Allocation{
			Direction:     schedule.DirectionDownlink,
			OffsetSamples: int64(v.AllocationDL.StartSubslot),
		})
	}
	if v.AllocationUL != nil {
		allocations = append(allocations, schedule.Allocation{
			Direction:     schedule.DirectionUplink,
			OffsetSamples: int64(v.AllocationUL.StartSubslot),
		})
	}

	cycleStart := int64(0)
	if inst.PLL != nil {
		cycleStart = inst.PLL.LastBeaconTime()
	}
	inst.Contact.AllocationPT = schedule.NewUnicastSchedule(allocations, cycleStart, 0)
}

// onPowerTarget applies a received TX power correction to local AGC state.
func (inst *Instance) onPowerTarget(p *mmie.PowerTargetIE) {
	inst.AGC.TxPowerOffsetDB = p.PowerTargetDB
}

// onTimeAnnounce seeds the PPS/PPX rising-edge estimate used to align the
// local sample clock to the network's pulse-per-second source.
func (inst *Instance) onTimeAnnounce(t *mmie.TimeAnnounceIE) {
	inst.nextPPSEdgeTime64 = t.NextPPSEdgeTime64
}

// onUserData queues a received user-plane-data or higher-layer-signalling
// flow onto the application bridge's egress path.
func (inst *Instance) onUserData(f *mmie.FlowData, appClient *appbridge.Client) {
	if appClient == nil {
		return
	}
	const defaultConnIdx = 0
	connIdx := defaultConnIdx
	if inst.lastForwardTarget != 0 {
		connIdx = int(inst.lastForwardTarget) //nolint:gosec // bounded short RD id
		inst.lastForwardTarget = 0
	}
	if n := appClient.WriteNTO(connIdx, f.Payload); n == 0 && len(f.Payload) > 0 {
		slog.Warn("tpoint: egress queue full, dropping user-plane-data", "conn_idx", connIdx)
		return
	}
	appClient.TriggerForwardNTO(1)
}

// NextPPSEdgeTime64 returns the most recently announced PPS/PPX rising-edge
// sample time, or 0 if none has been received yet.
func (inst *Instance) NextPPSEdgeTime64() int64 { return inst.nextPPSEdgeTime64 }
