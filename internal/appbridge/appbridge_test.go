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

package appbridge_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/appbridge"
)

func TestBoundedQueueWriteReadNTO(t *testing.T) {
	q := appbridge.NewBoundedQueue(2, 8)

	assert.Equal(t, 3, q.WriteNTO(1, []byte{1, 2, 3}))
	assert.Equal(t, 1, q.WriteNTO(1, []byte{9}))
	assert.Equal(t, 0, q.WriteNTO(1, []byte{0}), "queue full, write should be dropped")

	v, ok := q.ReadNTO(1)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, v)
	assert.Equal(t, 1, q.Len(1))
}

func TestBoundedQueueRejectsOversizedDatagram(t *testing.T) {
	q := appbridge.NewBoundedQueue(2, 4)
	assert.Equal(t, 0, q.WriteNTO(1, []byte{1, 2, 3, 4, 5}))
}

func TestServerOfferAppliesFilterAndNotifies(t *testing.T) {
	s := appbridge.NewServer(4, 64, func(connIdx int, datagram []byte) bool {
		return len(datagram) > 0 && datagram[0] != 0xFF
	})

	accepted := s.Offer(1, []byte{0x01, 0x02})
	assert.True(t, accepted)
	assert.Equal(t, int64(1), s.PendingCount())

	rejected := s.Offer(1, []byte{0xFF})
	assert.False(t, rejected)
	assert.Equal(t, int64(1), s.PendingCount())

	drained := s.Drain(1)
	assert.Len(t, drained, 1)
	assert.Equal(t, int64(0), s.PendingCount())
}

type fakeSink struct {
	written []int
	failIdx int
}

func (f *fakeSink) WriteDatagram(connIdx int, _ []byte) error {
	if connIdx == f.failIdx {
		return errors.New("sink write failed")
	}
	f.written = append(f.written, connIdx)
	return nil
}

func TestClientForwardsTriggeredDatagrams(t *testing.T) {
	sink := &fakeSink{failIdx: -1}
	c := appbridge.NewClient(4, 64, nil, sink)

	require.Equal(t, 2, c.WriteNTO(1, []byte{1, 2}))
	require.Equal(t, 1, c.WriteNTO(2, []byte{9}))
	c.TriggerForwardNTO(2)

	n, err := c.ForwardPending([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []int{1, 2}, sink.written)
	assert.Equal(t, int64(0), c.Pending())
}

func TestClientForwardStopsOnSinkError(t *testing.T) {
	sink := &fakeSink{failIdx: 1}
	c := appbridge.NewClient(4, 64, nil, sink)
	c.WriteNTO(1, []byte{1})
	c.TriggerForwardNTO(1)

	_, err := c.ForwardPending([]int{1})
	assert.Error(t, err)
}

func TestClientEgressFilterDropsDatagram(t *testing.T) {
	sink := &fakeSink{failIdx: -1}
	c := appbridge.NewClient(4, 64, func(connIdx int, datagram []byte) bool {
		return false
	}, sink)
	c.WriteNTO(1, []byte{1})
	c.TriggerForwardNTO(1)

	n, err := c.ForwardPending([]int{1})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, sink.written)
}

func TestSetImpermeableStopsNewWritesButDrains(t *testing.T) {
	srv := appbridge.NewServer(4, 1500, nil)
	require.True(t, srv.Offer(0, []byte{1, 2, 3}))

	srv.SetImpermeable()
	require.False(t, srv.Offer(0, []byte{4, 5, 6}))

	drained := srv.Drain(0)
	require.Len(t, drained, 1)
	require.Equal(t, []byte{1, 2, 3}, drained[0])
	require.Equal(t, int64(0), srv.PendingCount())
}
