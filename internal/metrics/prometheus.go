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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	// MAC core metrics
	BeaconsEmittedTotal prometheus.Counter
	PDUsDecodedTotal    *prometheus.CounterVec
	MMIEsDecodedTotal   *prometheus.CounterVec
	HARQReserved        *prometheus.GaugeVec
	AssociationsTotal   *prometheus.CounterVec
	AppQueueDepth       *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	metrics := &Metrics{
		BeaconsEmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mac_beacons_emitted_total",
			Help: "The total number of beacon transmit descriptors emitted",
		}),
		PDUsDecodedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mac_pdus_decoded_total",
			Help: "The total number of MAC PDU decode attempts by outcome",
		}, []string{"outcome"}),
		MMIEsDecodedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mac_mmies_decoded_total",
			Help: "The total number of decoded MAC messages/IEs by type",
		}, []string{"ie_type"}),
		HARQReserved: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mac_harq_processes_reserved",
			Help: "The number of currently reserved HARQ processes per direction",
		}, []string{"direction"}),
		AssociationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mac_associations_total",
			Help: "The total number of association outcomes",
		}, []string{"outcome"}),
		AppQueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "app_bridge_queue_depth",
			Help: "The current number of datagrams queued in the application bridge",
		}, []string{"direction"}),
	}
	metrics.register()
	return metrics
}

func (m *Metrics) register() {
	prometheus.MustRegister(m.BeaconsEmittedTotal)
	prometheus.MustRegister(m.PDUsDecodedTotal)
	prometheus.MustRegister(m.MMIEsDecodedTotal)
	prometheus.MustRegister(m.HARQReserved)
	prometheus.MustRegister(m.AssociationsTotal)
	prometheus.MustRegister(m.AppQueueDepth)
}

// MAC core metrics methods
func (m *Metrics) IncrementBeaconsEmitted() {
	m.BeaconsEmittedTotal.Inc()
}

func (m *Metrics) RecordPDUDecode(outcome string) {
	m.PDUsDecodedTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordMMIEDecoded(ieType string) {
	m.MMIEsDecodedTotal.WithLabelValues(ieType).Inc()
}

func (m *Metrics) SetHARQReserved(direction string, count float64) {
	m.HARQReserved.WithLabelValues(direction).Set(count)
}

func (m *Metrics) RecordAssociation(outcome string) {
	m.AssociationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetAppQueueDepth(direction string, depth float64) {
	m.AppQueueDepth.WithLabelValues(direction).Set(depth)
}
