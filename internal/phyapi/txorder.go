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

package phyapi

// TxOrderQueue enforces the descriptor sequencing contract between a
// firmware instance and the radio TX thread: descriptors are released for
// transmission in monotonically increasing TxOrderID order, and descriptors
// arriving ahead of the expected ID are held back until the gap fills. A
// descriptor whose BufferTxMeta.TxOrderIDExpectNext is non-negative
// re-anchors the expected sequence once it has been released.
type TxOrderQueue struct {
	expected uint64
	pending  map[uint64]TxDescriptor
}

// NewTxOrderQueue starts a queue expecting TxOrderID 0 first.
func NewTxOrderQueue() *TxOrderQueue {
	return &TxOrderQueue{pending: make(map[uint64]TxDescriptor)}
}

// Push hands a descriptor to the TX thread. It is held until every
// descriptor with a lower, still-expected TxOrderID has been released.
func (q *TxOrderQueue) Push(desc TxDescriptor) {
	q.pending[desc.BufferTxMeta.TxOrderID] = desc
}

// Ready pops every descriptor that is now in sequence, in transmit order.
// It returns nil while the expected ID has not arrived yet.
func (q *TxOrderQueue) Ready() []TxDescriptor {
	var out []TxDescriptor
	for {
		desc, ok := q.pending[q.expected]
		if !ok {
			return out
		}
		delete(q.pending, q.expected)
		out = append(out, desc)

		if next := desc.BufferTxMeta.TxOrderIDExpectNext; next >= 0 {
			q.expected = uint64(next)
		} else {
			q.expected++
		}
	}
}

// Expected reports the TxOrderID the queue will release next.
func (q *TxOrderQueue) Expected() uint64 { return q.expected }

// NofPending reports how many descriptors are held back waiting for the
// expected ID.
func (q *TxOrderQueue) NofPending() int { return len(q.pending) }
