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

package appbridge

import "sync/atomic"

// IngressFilter inspects a candidate datagram before it is enqueued (e.g.
// checking IP version or UDP port), returning false to drop it.
type IngressFilter func(connIdx int, datagram []byte) bool

// Server is the ingress half of the application bridge: it owns one bounded
// queue per connection index and a PHY job-queue notifier incremented on
// every accepted datagram, so the firmware knows new data is available
// without polling the queues itself.
type Server struct {
	queue    *BoundedQueue
	filter   IngressFilter
	notifier atomic.Int64
}

// NewServer returns a Server with its own bounded queue. A nil filter
// accepts every datagram.
func NewServer(nDatagram, nDatagramMaxByte int, filter IngressFilter) *Server {
	if filter == nil {
		filter = func(int, []byte) bool { return true }
	}
	return &Server{queue: NewBoundedQueue(nDatagram, nDatagramMaxByte), filter: filter}
}

// Offer is called by the ingress polling loop once a datagram has been read
// into its local staging buffer. It applies the ingress filter and, if
// accepted, enqueues the datagram and increments the notifier. It returns
// whether the datagram was accepted and enqueued.
func (s *Server) Offer(connIdx int, datagram []byte) bool {
	if !s.filter(connIdx, datagram) {
		return false
	}
	if s.queue.WriteNTO(connIdx, datagram) == 0 {
		return false
	}
	s.notifier.Add(1)
	return true
}

// Drain removes and returns every datagram queued for connIdx, to be called
// by the firmware once it observes the notifier is non-zero.
func (s *Server) Drain(connIdx int) [][]byte {
	values := s.queue.Drain(connIdx)
	if len(values) > 0 {
		s.notifier.Add(-int64(len(values)))
	}
	return values
}

// PendingCount reports how many accepted datagrams are waiting across all
// connections: the PHY job-queue notifier the firmware consults.
func (s *Server) PendingCount() int64 {
	return s.notifier.Load()
}

// SetImpermeable stops the ingress queue accepting new datagrams while the
// already-accepted backlog drains, the first step of an orderly shutdown.
func (s *Server) SetImpermeable() {
	s.queue.SetImpermeable()
}
