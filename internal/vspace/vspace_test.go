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

package vspace_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/vspace"
)

func TestSpaceWriteFansOutToRegisteredRX(t *testing.T) {
	s := vspace.New()
	s.RegisterTX(1, 1)
	s.RegisterRX(10, 1)
	s.RegisterRX(11, 1)

	require.NoError(t, s.WaitWritableNTO(1))
	pkt := vspace.Packet{Now64: 42, Antennas: [][]vspace.IQSample{{1, 2, 3}}}
	require.NoError(t, s.Write(1, pkt))

	for _, id := range []uint32{10, 11} {
		done := make(chan error, 1)
		go func(id uint32) { done <- s.WaitReadableNTO(id) }(id)
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatalf("rx %d never became readable", id)
		}
		got, err := s.Read(id)
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.Now64)
	}
}

func TestSpaceRejectsUnregisteredEndpoint(t *testing.T) {
	s := vspace.New()
	assert.Error(t, s.WaitWritableNTO(99))
	assert.Error(t, s.WaitReadableNTO(99))
	_, err := s.Read(99)
	assert.Error(t, err)
}

func TestSpaceReleaseWritableAllowsReuse(t *testing.T) {
	s := vspace.New()
	s.RegisterTX(1, 1)

	require.NoError(t, s.WaitWritableNTO(1))
	require.NoError(t, s.ReleaseWritable(1))
	require.NoError(t, s.WaitWritableNTO(1))
}

func TestPositionDistance(t *testing.T) {
	a := vspace.Position{X: 0, Y: 0, Z: 0}
	b := vspace.Position{X: 3, Y: 4, Z: 0}
	assert.InDelta(t, 5.0, a.Distance(b), 1e-9)
}

func TestTrajectoryStationary(t *testing.T) {
	tr := vspace.NewStationary(vspace.Position{X: 1, Y: 2, Z: 3})
	pos := tr.UpdatePosition(1_000_000, 123_456)
	assert.Equal(t, vspace.Position{X: 1, Y: 2, Z: 3}, pos)
}

func TestTrajectoryCircleStaysOnRadius(t *testing.T) {
	tr := vspace.NewCircle(vspace.Position{}, 1.0, 10.0)
	pos := tr.UpdatePosition(1_000_000, 500_000)
	dist := (vspace.Position{}).Distance(pos)
	assert.InDelta(t, 10.0, dist, 1e-6)
}
