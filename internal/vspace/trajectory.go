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

package vspace

import "math"

type trajectoryShape int

const (
	trajectoryShapePoint trajectoryShape = iota
	trajectoryShapeCircle
	trajectoryShapeLineSegment
)

// Trajectory describes how a simulated radio's position evolves over
// sample-clock time: stationary, a circle, or a back-and-forth line
// segment.
type Trajectory struct {
	shape  trajectoryShape
	offset Position

	direction float64 // +1 or -1

	radius float64 // circle only

	lineLength   float64 // line segment only
	lineAngleRad float64 // line segment only

	periodSec float64
}

// NewStationary returns a trajectory fixed at offset.
func NewStationary(offset Position) Trajectory {
	return Trajectory{shape: trajectoryShapePoint, offset: offset}
}

// NewCircle returns a trajectory tracing a circle of the given radius
// (meters, 1..10000) centered on offset at the given signed speed
// (meters/sec, magnitude 0.01..100; sign selects direction of travel).
func NewCircle(offset Position, speed, radius float64) Trajectory {
	dir := 1.0
	if speed < 0 {
		dir = -1.0
	}
	speedAbs := math.Abs(speed)
	return Trajectory{
		shape:     trajectoryShapeCircle,
		offset:    offset,
		direction: dir,
		radius:    radius,
		periodSec: 2.0 * math.Pi * radius / speedAbs,
	}
}

// NewLineSegment returns a trajectory oscillating back and forth along a
// line of the given length (meters, 1..10000) at the given angle (radians)
// through offset, at the given signed speed.
func NewLineSegment(offset Position, speed, lineLength, lineAngleRad float64) Trajectory {
	dir := 1.0
	if speed < 0 {
		dir = -1.0
	}
	speedAbs := math.Abs(speed)
	return Trajectory{
		shape:        trajectoryShapeLineSegment,
		offset:       offset,
		direction:    dir,
		lineLength:   lineLength,
		lineAngleRad: lineAngleRad,
		periodSec:    2.0 * lineLength / speedAbs,
	}
}

// UpdatePosition derives the position at absolute sample time now64 given a
// sample rate in Hz.
func (t Trajectory) UpdatePosition(samplesPerSecond int64, now64 int64) Position {
	if t.shape == trajectoryShapePoint {
		return t.offset
	}

	periodSamples := int64(t.periodSec * float64(samplesPerSecond))
	if periodSamples <= 0 {
		return t.offset
	}
	phaseInPeriod := now64 % periodSamples
	phase01 := float64(phaseInPeriod) / float64(periodSamples)

	var pos Position
	switch t.shape {
	case trajectoryShapeCircle:
		pos.X = t.radius * math.Cos(2*math.Pi*phase01)
		pos.Y = t.radius * math.Sin(2*math.Pi*phase01)
	case trajectoryShapeLineSegment:
		var a float64
		if phase01 <= 0.5 {
			a = t.lineLength * phase01 / 0.5
		} else {
			a = t.lineLength * (1.0 - phase01) / 0.5
		}
		pos.X = a * math.Cos(t.lineAngleRad)
		pos.Y = a * math.Sin(t.lineAngleRad)
	}

	pos.X *= t.direction
	pos.Y *= t.direction
	pos.Z *= t.direction

	pos.X += t.offset.X
	pos.Y += t.offset.Y
	pos.Z += t.offset.Z

	return pos
}
