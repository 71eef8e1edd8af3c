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

package phyapi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/phyapi"
)

func desc(orderID uint64, expectNext int64) phyapi.TxDescriptor {
	return phyapi.TxDescriptor{
		BufferTxMeta: phyapi.BufferTxMeta{
			TxOrderID:           orderID,
			TxOrderIDExpectNext: expectNext,
		},
	}
}

func TestTxOrderQueueReleasesInMonotonicOrder(t *testing.T) {
	q := phyapi.NewTxOrderQueue()

	q.Push(desc(2, -1))
	q.Push(desc(1, -1))
	assert.Nil(t, q.Ready())

	q.Push(desc(0, -1))
	out := q.Ready()
	require.Len(t, out, 3)
	for i, d := range out {
		assert.Equal(t, uint64(i), d.BufferTxMeta.TxOrderID)
	}
	assert.Zero(t, q.NofPending())
}

func TestTxOrderQueueHoldsBackAcrossGap(t *testing.T) {
	q := phyapi.NewTxOrderQueue()

	q.Push(desc(0, -1))
	require.Len(t, q.Ready(), 1)

	q.Push(desc(3, -1))
	assert.Nil(t, q.Ready())
	assert.Equal(t, uint64(1), q.Expected())
	assert.Equal(t, 1, q.NofPending())
}

func TestTxOrderQueueAdoptsExpectNextOverride(t *testing.T) {
	q := phyapi.NewTxOrderQueue()

	// descriptor 0 announces the firmware will skip to ID 5 next
	q.Push(desc(0, 5))
	require.Len(t, q.Ready(), 1)
	assert.Equal(t, uint64(5), q.Expected())

	// IDs 1..4 never arrive; 5 is released immediately
	q.Push(desc(5, -1))
	out := q.Ready()
	require.Len(t, out, 1)
	assert.Equal(t, uint64(5), out[0].BufferTxMeta.TxOrderID)
	assert.Equal(t, uint64(6), q.Expected())
}
