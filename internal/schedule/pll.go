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

// DriftEstimator is the PT's phase-locked-loop-style estimate of the FT's
// sample clock, updated on every received beacon PCC: it tracks the known
// beacon time and a smoothed drift rate so uplink times can be derived
// between beacons without waiting for the next one.
type DriftEstimator struct {
	gain int64 // denominator of the loop filter's proportional term, larger = slower

	lastBeaconTime   int64
	lastObservedTime int64
	driftPpm         float64 // smoothed (observed-expected)/period, in parts-per-million
	initialized      bool
}

// NewDriftEstimator returns an estimator with the given loop gain
// denominator (larger values smooth more aggressively, at the cost of
// slower convergence).
func NewDriftEstimator(gain int64) *DriftEstimator {
	if gain <= 0 {
		gain = 16
	}
	return &DriftEstimator{gain: gain}
}

// Update feeds one observed beacon arrival time (the PT's own sample clock
// reading of when the beacon PCC was decoded) and the FT's nominal beacon
// period, refining the drift estimate.
func (d *DriftEstimator) Update(observedTime, nominalPeriod int64) {
	if !d.initialized {
		d.lastBeaconTime = observedTime
		d.lastObservedTime = observedTime
		d.initialized = true
		return
	}
	expected := d.lastObservedTime + nominalPeriod
	errSamples := observedTime - expected
	d.driftPpm += float64(errSamples) / float64(d.gain)

	d.lastBeaconTime = observedTime
	d.lastObservedTime = observedTime
}

// Predict projects the FT's beacon time forward by delta samples of the
// PT's own local clock, applying the current drift correction.
func (d *DriftEstimator) Predict(delta int64) int64 {
	correction := int64(float64(delta) * d.driftPpm / 1e6)
	return d.lastBeaconTime + delta + correction
}

// LastBeaconTime returns the most recently observed beacon time.
func (d *DriftEstimator) LastBeaconTime() int64 { return d.lastBeaconTime }

// DriftPpm returns the current smoothed drift estimate in parts-per-million.
func (d *DriftEstimator) DriftPpm() float64 { return d.driftPpm }
