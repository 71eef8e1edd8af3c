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

// Package phyapi defines the narrow set of value objects and collaborator
// interfaces the MAC core exchanges with the PHY numerical kernel and the
// radio hardware abstraction. Neither is implemented here: this package
// only specifies the contract a PHY/radio collaborator must satisfy.
package phyapi

import (
	"github.com/maxpenner/dect-nr-plus-l2core/internal/plcf"
)

// PacketSizesDef carries the free parameters of one transmission: the
// values from which the PHY derives the transport-block byte count and from
// which the HARQ pool sizes its buffers.
type PacketSizesDef struct {
	Mu               uint32 // subcarrier scaling factor: 1, 2, 4 or 8
	B                uint32 // FFT factor
	PacketLengthType plcf.PacketLengthType
	PacketLength     uint32 // 1..16 units
	TxModeIndex      uint32
	MCSIndex         uint32 // 0..11
	Z                uint32 // code block size
}

// NTBByte derives the transport-block byte length implied by this value
// object, delegating to the PLCF package's packet-size table.
func (p PacketSizesDef) NTBByte() (uint32, error) {
	return plcf.NTBByte(p.PacketLengthType, p.PacketLength, p.Mu)
}

func (p PacketSizesDef) IsValid() bool {
	if p.Mu != 1 && p.Mu != 2 && p.Mu != 4 && p.Mu != 8 {
		return false
	}
	if p.PacketLength < 1 || p.PacketLength > 16 {
		return false
	}
	return p.MCSIndex <= 11
}

// SyncReport is produced by the PHY after acquiring time/frequency sync on
// a candidate signal: per-antenna RMS levels plus the fine peak time, both
// raw and corrected by the fractional sample timing offset.
type SyncReport struct {
	RMSArray                               []float32
	FinePeakTime64                         int64
	FinePeakTimeCorrectedBySTOFractional64 int64
	SNRdB                                  float64
}

// PCCReport is produced by the PHY after decoding a PLCF on the physical
// control channel.
type PCCReport struct {
	SyncReport
	PacketSizesDef PacketSizesDef
	PLCFBytes      []byte
}

// MIMOReport carries the PHY's channel-state estimate for a decoded PDC,
// consumed when choosing a codebook index and feedback format.
type MIMOReport struct {
	NofLayers     uint32
	CodebookIndex uint32
}

// PDCReport is produced by the PHY after decoding (or failing to decode)
// the physical data channel payload referenced by a prior PCCReport. The
// MAC PDU itself is read from the HARQ process's a-buffer, which the PHY
// fills before delivering the report.
type PDCReport struct {
	CRCStatus  bool
	SNRdB      float64
	MIMOReport MIMOReport
	HARQBuffer []byte
}

// TxMeta carries the PHY-facing transmit parameters of one descriptor.
type TxMeta struct {
	OptimalScalingDAC                    bool
	DACScale                             float32
	IQPhaseRad                           float32
	IQPhaseIncrementS2SPostResamplingRad float32
	GIPercentage                         uint32 // 0..100
}

// BufferTxMeta carries the ordering contract between a firmware and the
// radio TX thread: descriptors are transmitted in monotonic TxOrderID
// order, and a firmware may re-anchor the expected sequence by setting
// TxOrderIDExpectNext to a non-negative value.
type BufferTxMeta struct {
	TxOrderID           uint64
	TxTime64            int64
	TxOrderIDExpectNext int64 // negative: no override
}

// TxDescriptor instructs the PHY/radio to transmit prepared bytes at an
// absolute sample-count time. The HARQ process that owns TransportBlock
// stays reserved until the radio reports the descriptor transmitted; the
// materialized PLCF and transport-block buffers are the handed-over view
// of that process.
type TxDescriptor struct {
	PLCFBytes      []byte
	TransportBlock []byte
	PacketSizesDef PacketSizesDef
	CodebookIndex  uint32
	TxMeta         TxMeta
	BufferTxMeta   BufferTxMeta
}

// TminKind selects which minimum-lead-time figure GetTminSamples reports.
type TminKind int

const (
	TminFreq TminKind = iota
	TminGain
	TminTurnaround
)

// Radio is the hardware-abstraction surface the MAC core consumes:
// timed-command tuning, 0 dBFS power mapping, the sample clock and the
// 1 pps edge. USRP drivers and the simulator I/Q pipeline both implement
// it. The _tc setters apply at the previously set command time and return
// the value actually achieved by the hardware.
type Radio interface {
	SetCommandTime(time64 int64)
	SetFreqTC(hz float64) float64
	SetTxPowerAnt0dBFSTC(dBm float64) float64
	SetRxPowerAnt0dBFSTC(dBm float64, antennaIdx int) float64
	GetSampRate() int64
	PPSWaitForNext()
	PPSTimeBaseSecInOneSecond() int64
	GetTminSamples(kind TminKind) int64
}
