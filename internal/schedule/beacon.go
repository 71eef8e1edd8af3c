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

package schedule

// Direction distinguishes the two halves of a unicast transmit opportunity.
type Direction int

const (
	DirectionDownlink Direction = iota
	DirectionUplink
)

// NoOpportunity is the sentinel GetTxOpportunity returns when no slot exists
// within the current beacon cycle.
const NoOpportunity int64 = -1

// BeaconClock tracks the FT's absolute beacon transmission schedule:
// beacon_time_scheduled is initialized at entry() to the first full-second
// sample boundary at or after PHY availability, then advanced by the beacon period
// on every beacon actually emitted.
type BeaconClock struct {
	samplesPerSecond int64
	periodSamples    int64
	prepareDuration  int64

	scheduled int64
}

// NewBeaconClock derives beacon_time_scheduled from the first sample time
// the PHY reported ready, the first full second boundary at or after it,
// optionally shifted by a measured PPS-to-full-second offset (samples,
// may be negative). periodSamples is the beacon period in samples
// (typically 10ms worth of samples); prepareDuration is how far ahead of
// beacon_time_scheduled the firmware wants its next wake-up.
func NewBeaconClock(phyAvailableTime, samplesPerSecond, periodSamples, prepareDuration, ppsOffset int64) *BeaconClock {
	firstFullSecond := ((phyAvailableTime + samplesPerSecond - 1) / samplesPerSecond) * samplesPerSecond
	return &BeaconClock{
		samplesPerSecond: samplesPerSecond,
		periodSamples:    periodSamples,
		prepareDuration:  prepareDuration,
		scheduled:        firstFullSecond + ppsOffset,
	}
}

// Scheduled returns the current beacon_time_scheduled.
func (c *BeaconClock) Scheduled() int64 { return c.scheduled }

// NextWake returns the absolute sample time the next irregular callback
// should be requested at: beacon_time_scheduled - prepare_duration.
func (c *BeaconClock) NextWake() int64 { return c.scheduled - c.prepareDuration }

// DueNow reports whether now has reached the lead time for the scheduled
// beacon: at or after NextWake and before one beacon period past
// beacon_time_scheduled has elapsed.
func (c *BeaconClock) DueNow(now int64) bool {
	return now >= c.NextWake() && now < c.scheduled+c.periodSamples
}

// Advance emits the current scheduled beacon time and moves
// beacon_time_scheduled forward by one period, to be called once per beacon
// actually transmitted.
func (c *BeaconClock) Advance() int64 {
	emitted := c.scheduled
	c.scheduled += c.periodSamples
	return emitted
}
