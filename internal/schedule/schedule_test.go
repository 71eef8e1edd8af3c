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

package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/schedule"
)

func TestWheelRunsDueCallbacksInOrder(t *testing.T) {
	w := schedule.NewWheel()
	var order []int

	w.AddCallback(func(now int64) (int64, bool) {
		order = append(order, 2)
		return 0, false
	}, 200)
	w.AddCallback(func(now int64) (int64, bool) {
		order = append(order, 1)
		return 0, false
	}, 100)
	w.AddCallback(func(now int64) (int64, bool) {
		order = append(order, 3)
		return 0, false
	}, 300)

	n := w.Run(250)
	require.Equal(t, 2, n)
	assert.Equal(t, []int{1, 2}, order)
	require.Equal(t, 1, w.Len())

	next, ok := w.NextDue()
	require.True(t, ok)
	assert.Equal(t, int64(300), next)
}

func TestWheelReschedulesRepeatingCallback(t *testing.T) {
	w := schedule.NewWheel()
	fires := 0
	w.AddCallback(func(now int64) (int64, bool) {
		fires++
		return now + 100, fires < 3
	}, 100)

	w.Run(100)
	w.Run(200)
	w.Run(300)
	w.Run(400)

	assert.Equal(t, 3, fires)
	assert.Equal(t, 0, w.Len())
}

func TestWheelCancel(t *testing.T) {
	w := schedule.NewWheel()
	fired := false
	id := w.AddCallback(func(now int64) (int64, bool) {
		fired = true
		return 0, false
	}, 100)
	w.Cancel(id)
	w.Run(1000)
	assert.False(t, fired)
}

func TestBeaconClockAlignsToFullSecond(t *testing.T) {
	const samplesPerSecond = 1_000_000
	c := schedule.NewBeaconClock(1_234_567, samplesPerSecond, 10_000, 2_000, 0)
	assert.Equal(t, int64(2_000_000), c.Scheduled())
	assert.Equal(t, int64(2_000_000-2_000), c.NextWake())
}

func TestBeaconClockAdvancesByPeriod(t *testing.T) {
	c := schedule.NewBeaconClock(0, 1_000_000, 10_000, 2_000, 0)
	first := c.Advance()
	second := c.Advance()
	assert.Equal(t, second-first, int64(10_000))
}

func TestBeaconClockDueNow(t *testing.T) {
	c := schedule.NewBeaconClock(0, 1_000_000, 10_000, 2_000, 0)
	assert.False(t, c.DueNow(c.NextWake()-1))
	assert.True(t, c.DueNow(c.NextWake()))
	assert.True(t, c.DueNow(c.Scheduled()))
	assert.False(t, c.DueNow(c.Scheduled()+10_000))
}

func TestUnicastGetTxOpportunityWithinCycle(t *testing.T) {
	allocations := []schedule.Allocation{
		{Direction: schedule.DirectionDownlink, OffsetSamples: 500},
	}
	s := schedule.NewUnicastSchedule(allocations, 1_000, 10_000)

	txTime := s.GetTxOpportunity(schedule.DirectionDownlink, 1_000, 0)
	assert.Equal(t, int64(1_500), txTime)

	txTime = s.GetTxOpportunity(schedule.DirectionUplink, 1_000, 0)
	assert.Equal(t, schedule.NoOpportunity, txTime)
}

func TestUnicastGetTxOpportunityRespectsEarliestBound(t *testing.T) {
	allocations := []schedule.Allocation{
		{Direction: schedule.DirectionUplink, OffsetSamples: 100, PeriodSamples: 1_000},
	}
	s := schedule.NewUnicastSchedule(allocations, 0, 10_000)

	txTime := s.GetTxOpportunity(schedule.DirectionUplink, 0, 2_500)
	assert.Equal(t, int64(3_100), txTime)
}

func TestRunUnicastLoopRespectsMaxSimultaneous(t *testing.T) {
	contacts := []*schedule.UnicastSchedule{
		schedule.NewUnicastSchedule([]schedule.Allocation{{Direction: schedule.DirectionDownlink, OffsetSamples: 10}}, 0, 10_000),
		schedule.NewUnicastSchedule([]schedule.Allocation{{Direction: schedule.DirectionDownlink, OffsetSamples: 20}}, 0, 10_000),
		schedule.NewUnicastSchedule([]schedule.Allocation{{Direction: schedule.DirectionDownlink, OffsetSamples: 30}}, 0, 10_000),
	}

	var grantedIdx []int
	n := schedule.RunUnicastLoop(contacts, schedule.DirectionDownlink, 0, 0, 2, func(idx int, txTime64 int64) {
		grantedIdx = append(grantedIdx, idx)
	})

	assert.Equal(t, 2, n)
	assert.Equal(t, []int{0, 1}, grantedIdx)
}

func TestDriftEstimatorTracksOffset(t *testing.T) {
	d := schedule.NewDriftEstimator(4)
	d.Update(1_000_000, 1_000_000)
	d.Update(2_000_100, 1_000_000)

	assert.Equal(t, int64(2_000_100), d.LastBeaconTime())
	assert.Greater(t, d.DriftPpm(), 0.0)

	predicted := d.Predict(1_000_000)
	assert.Greater(t, predicted, int64(2_000_100)+1_000_000)
}
