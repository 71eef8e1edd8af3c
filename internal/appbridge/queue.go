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

// Package appbridge implements the two halves of the application bridge:
// a server that ingests datagrams from an external source into bounded
// per-connection queues, and a client that egresses queued datagrams to a
// per-connection sink.
package appbridge

import "sync"

// DefaultNDatagram and DefaultNDatagramMaxByte are conservative bounds:
// a handful of in-flight IP packets per connection rather than a general
// buffering layer.
const (
	DefaultNDatagram        = 32
	DefaultNDatagramMaxByte = 1500
)

// BoundedQueue is a fixed-capacity, multi-producer/single-consumer byte
// slice queue keyed by connection index, with non-blocking ("nto", no
// timeout) push/drain semantics: a full queue drops the write rather than
// blocking the caller.
type BoundedQueue struct {
	mu               sync.Mutex
	data             map[int][][]byte
	nDatagram        int
	nDatagramMaxByte int
	impermeable      bool
}

// NewBoundedQueue returns an empty queue bounded to nDatagram datagrams per
// connection, each at most nDatagramMaxByte bytes.
func NewBoundedQueue(nDatagram, nDatagramMaxByte int) *BoundedQueue {
	return &BoundedQueue{
		data:             make(map[int][][]byte),
		nDatagram:        nDatagram,
		nDatagramMaxByte: nDatagramMaxByte,
	}
}

// WriteNTO attempts to enqueue value for connIdx without blocking. It
// returns the number of bytes written: either len(value) on success, or 0
// if the connection's queue is full or value exceeds the maximum datagram
// size.
func (q *BoundedQueue) WriteNTO(connIdx int, value []byte) int {
	if len(value) > q.nDatagramMaxByte {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.impermeable || len(q.data[connIdx]) >= q.nDatagram {
		return 0
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	q.data[connIdx] = append(q.data[connIdx], cp)
	return len(value)
}

// ReadNTO pulls the oldest datagram queued for connIdx, if any, without
// blocking.
func (q *BoundedQueue) ReadNTO(connIdx int) ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	bucket := q.data[connIdx]
	if len(bucket) == 0 {
		return nil, false
	}
	v := bucket[0]
	remaining := bucket[1:]
	if len(remaining) == 0 {
		delete(q.data, connIdx)
	} else {
		q.data[connIdx] = remaining
	}
	return v, true
}

// Drain removes and returns every datagram queued for connIdx, for a
// bridge half that wants a full batch rather than one datagram at a time.
func (q *BoundedQueue) Drain(connIdx int) [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	values := q.data[connIdx]
	delete(q.data, connIdx)
	return values
}

// SetImpermeable atomically stops the queue accepting new datagrams.
// Everything already queued is still readable/drainable, so a shutdown can
// dispatch the pending work before the queue empties for good.
func (q *BoundedQueue) SetImpermeable() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.impermeable = true
}

// Len reports how many datagrams are currently queued for connIdx.
func (q *BoundedQueue) Len(connIdx int) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data[connIdx])
}
