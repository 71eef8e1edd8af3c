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

// Package tpoint implements firmware orchestration: a single instance owns
// the HARQ pools, MMIE pool, contact registry, schedule, and the PHY-facing
// callback surface a transmission point (FT or PT) responds to.
package tpoint

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/appbridge"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/contact"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/harq"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/macpdu"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/metrics"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/mmie"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/phyapi"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/pubsub"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/schedule"
)

// tracer emits spans around MAC PDU decodes; with no tracer provider
// configured it is the otel no-op implementation.
var tracer = otel.Tracer("github.com/maxpenner/dect-nr-plus-l2core/internal/tpoint")

// Role distinguishes the two firmware personalities this package drives.
type Role int

const (
	RoleFT Role = iota
	RolePT
)

// IrregularReport is returned from every callback that wants to be woken
// again at a specific absolute sample time.
type IrregularReport struct {
	NextWakeTime64 int64
}

// MaclowPhy instructs the PHY whether to attempt a PDC decode following a
// PCC decode, and with which HARQ process.
type MaclowPhy struct {
	AttemptPDC bool
	HARQ       *harq.Process
	RV         uint32
}

// MacHighPhy is the uniform return type of every PHY-facing callback: a
// batch of transmissions to schedule plus the next wake request.
type MacHighPhy struct {
	TxDescriptors []phyapi.TxDescriptor
	Irregular     IrregularReport
}

// ApplicationReport carries one application-originated payload ready to be
// queued onto an outgoing unicast, handed in from the application bridge.
type ApplicationReport struct {
	DestinationShortRDID uint32
	Payload              []byte
}

// ChannelScanResult is one channel's observed activity from an optional
// background scan.
type ChannelScanResult struct {
	ChannelIndex uint32
	ActivityDBm  float64
}

// Instance is one firmware instance: the thing that owns state across the
// PHY-facing callbacks for either role.
type Instance struct {
	Role Role

	Contacts  *contact.Registry
	HARQTx    *harq.Pool
	HARQRx    *harq.Pool
	MMIEPool  *mmie.Pool
	ActiveSet *mmie.ActiveSet
	Decoder   *macpdu.Decoder

	Beacon  *schedule.BeaconClock
	Wheel   *schedule.Wheel
	Contact *contact.Contact // PT role only: the single serving FT contact

	// PLL is the PT's beacon-phase drift estimator, armed on first beacon
	// reception. Nil until then and always nil for an FT instance.
	PLL *schedule.DriftEstimator
	// AGC holds the most recently received TX power correction.
	AGC AGC

	// metrics, when non-nil, receives the MAC-core instrumentation
	// updates (beacon emission, PDU decode outcomes, HARQ occupancy).
	metrics *metrics.Metrics

	// contactStore, when non-nil, persists associations and advertised
	// capabilities across restarts; coordination, when non-nil, publishes
	// them to other live instances. See coordination.go.
	contactStore ContactStore
	coordination CoordinationStore

	// events, when non-nil, receives one published message per decoded
	// MMIE so an operator can tail live MAC traffic through the
	// diagnostics websocket. Nil by default; wire one with SetEventBus.
	events pubsub.PubSub

	networkID    uint32
	localShortRD uint32

	lastForwardTarget uint32 // set by a decoded Forward-To IE, consumed by the next FlowData IE
	nextPPSEdgeTime64 int64
	txOrderNext       uint64
}

// Config bundles the construction parameters for an Instance.
type Config struct {
	Role             Role
	NetworkID        uint32
	ShortRDID        uint32
	HARQProcesses    int
	HARQALenMax      uint32
	HARQZ            int
	BeaconPeriod     int64
	PrepareDuration  int64
	SamplesPerSecond int64
}

// New constructs an Instance with fresh HARQ pools, an empty contact
// registry, and the default MMIE active set. Beacon is left nil for PT
// instances; call ArmBeaconClock once PHY availability is known for FT
// instances.
func New(cfg Config) *Instance {
	z := uint32(cfg.HARQZ) //nolint:gosec // bounded by caller-supplied code block size
	pool := mmie.NewPool(4)
	activeSet := mmie.DefaultActiveSet()
	return &Instance{
		Role:         cfg.Role,
		Contacts:     contact.NewRegistry(),
		HARQTx:       harq.NewPool(cfg.HARQProcesses, cfg.HARQALenMax, z),
		HARQRx:       harq.NewPool(cfg.HARQProcesses, cfg.HARQALenMax, z),
		MMIEPool:     pool,
		ActiveSet:    activeSet,
		Decoder:      macpdu.NewDecoder(pool, activeSet),
		Wheel:        schedule.NewWheel(),
		networkID:    cfg.NetworkID,
		localShortRD: cfg.ShortRDID,
	}
}

// EventTopic is the pubsub topic DispatchSteady publishes decoded-MMIE
// notifications to.
const EventTopic = "mmie.events"

// SetEventBus wires ps as the publisher DispatchSteady notifies on every
// decoded MMIE, for the diagnostics websocket to relay live to operators.
// A nil Instance.events (the default) makes publishing a no-op.
func (inst *Instance) SetEventBus(ps pubsub.PubSub) { inst.events = ps }

// SetMetrics wires m as the Prometheus instrumentation sink. Nil (the
// default) disables instrumentation.
func (inst *Instance) SetMetrics(m *metrics.Metrics) { inst.metrics = m }

// ArmBeaconClock initializes the FT beacon clock once the PHY reports an
// initial sample time.
func (inst *Instance) ArmBeaconClock(phyAvailableTime, beaconPeriod, prepareDuration, samplesPerSecond, ppsOffset int64) {
	inst.Beacon = schedule.NewBeaconClock(phyAvailableTime, samplesPerSecond, beaconPeriod, prepareDuration, ppsOffset)
}

// WorkStartImminent is the one-shot callback fired once the PHY is about to
// become available, returning the first requested wake time.
func (inst *Instance) WorkStartImminent(startTime64 int64) IrregularReport {
	if inst.Role == RoleFT && inst.Beacon != nil {
		return IrregularReport{NextWakeTime64: inst.Beacon.NextWake()}
	}
	return IrregularReport{NextWakeTime64: startTime64}
}

// WorkRegular performs periodic housekeeping unrelated to a specific wake
// request: draining the timer wheel of anything due.
func (inst *Instance) WorkRegular(now int64) {
	inst.Wheel.Run(now)
}

// WorkIrregular is fired at the previously requested wake time. For an FT
// whose beacon comes due, it returns a beacon transmit descriptor and the
// next wake request.
func (inst *Instance) WorkIrregular(now int64) MacHighPhy {
	inst.Wheel.Run(now)

	if inst.Role != RoleFT || inst.Beacon == nil || !inst.Beacon.DueNow(now) {
		next := now
		if inst.Beacon != nil {
			next = inst.Beacon.NextWake()
		}
		return MacHighPhy{Irregular: IrregularReport{NextWakeTime64: next}}
	}

	txTime := inst.Beacon.Advance()
	if inst.metrics != nil {
		inst.metrics.IncrementBeaconsEmitted()
	}
	return MacHighPhy{
		Irregular: IrregularReport{NextWakeTime64: inst.Beacon.NextWake()},
		TxDescriptors: []phyapi.TxDescriptor{
			{BufferTxMeta: inst.nextBufferTxMeta(txTime)},
		},
	}
}

// nextBufferTxMeta stamps a descriptor with the next monotonically
// increasing TX order ID, the sequencing contract the radio TX thread
// relies on.
func (inst *Instance) nextBufferTxMeta(txTime64 int64) phyapi.BufferTxMeta {
	meta := phyapi.BufferTxMeta{
		TxOrderID:           inst.txOrderNext,
		TxTime64:            txTime64,
		TxOrderIDExpectNext: -1,
	}
	inst.txOrderNext++
	return meta
}

// WorkPCC processes a decoded PLCF, deciding whether the PHY should attempt
// a PDC decode and on which HARQ process. For the PT, a successfully
// decoded beacon PCC also feeds the drift estimator via the caller (the
// contact/schedule wiring lives in the caller since it needs the decoded
// cluster beacon message, not just the PCC report).
func (inst *Instance) WorkPCC(report phyapi.PCCReport) (MaclowPhy, error) {
	key := harq.AcquisitionKey{NetworkID: inst.networkID, PacketSizesDef: report.PacketSizesDef}
	proc, err := inst.HARQRx.Acquire(key, harq.ResetAndTerminate, true)
	if err != nil {
		slog.Warn("tpoint: dropping PDC attempt, rx harq pool exhausted", "error", err)
		return MaclowPhy{AttemptPDC: false}, nil
	}
	return MaclowPhy{AttemptPDC: true, HARQ: proc}, nil
}

// WorkPDC processes a successful PDC decode: decodes the MAC PDU from the
// HARQ process's a-buffer, finalizes the process, then runs the decoded IE
// list through DispatchSteady. appClient may be nil, in
// which case any decoded user-plane-data is dropped rather than forwarded.
func (inst *Instance) WorkPDC(proc *harq.Process, appClient *appbridge.Client) (*macpdu.Result, error) {
	defer inst.HARQRx.Finalize(proc)

	_, span := tracer.Start(context.Background(), "mac.pdu.decode")
	defer span.End()

	result := inst.Decoder.DecodeFull(proc.Buffer.A[:proc.Buffer.ACnt])
	if !result.ReachedValidFinalState {
		slog.Warn("tpoint: pdu decode reached premature abort, dispatching decoded prefix")
	}

	outcome := "ok"
	if !result.ReachedValidFinalState {
		outcome = "premature_abort"
	}
	span.SetAttributes(
		attribute.String("outcome", outcome),
		attribute.Int("n_ies", len(result.IEs)),
		attribute.Int("n_bytes", int(proc.Buffer.ACnt)),
	)

	if inst.metrics != nil {
		inst.metrics.RecordPDUDecode(outcome)
		inst.metrics.SetHARQReserved("rx", float64(inst.HARQRx.NofReserved()))
	}
	inst.DispatchSteady(result, appClient)
	return result, nil
}

// WorkPDCError releases the HARQ process on a failed PDC decode without
// attempting to decode the PDU.
func (inst *Instance) WorkPDCError(proc *harq.Process) {
	inst.HARQRx.Finalize(proc)
}

// WorkApplication checks that the report's destination contact is known and
// in Steady state, returning an error otherwise. It does not queue the
// payload or build a transmit descriptor.
func (inst *Instance) WorkApplication(report ApplicationReport) error {
	c, err := inst.Contacts.MustGet(report.DestinationShortRDID)
	if err != nil {
		return err
	}
	if c.FTState != contact.FTStateSteady && c.PTState != contact.PTStateSteady {
		return fmt.Errorf("tpoint: contact %#x not in steady state", report.DestinationShortRDID)
	}
	return nil
}

// WorkChannel records an optional background channel scan result, advisory
// input to channel selection rather than a required callback.
func (inst *Instance) WorkChannel(results []ChannelScanResult) {
	for _, r := range results {
		slog.Debug("tpoint: channel scan", "channel", r.ChannelIndex, "activity_dbm", r.ActivityDBm)
	}
}
