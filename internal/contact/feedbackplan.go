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

package contact

// FeedbackPlan rotates through a contact's configured PLCF feedback formats
// in order, one per unicast transmission: the firmware
// chooses a PLCF feedback format from the contact's feedback_plan (rotating
// through the list in order)".
type FeedbackPlan struct {
	formats []uint32
	next    int
}

// NewFeedbackPlan builds a plan rotating through formats in the given
// order. A nil or empty slice is valid; Next then always returns false.
func NewFeedbackPlan(formats []uint32) *FeedbackPlan {
	cp := make([]uint32, len(formats))
	copy(cp, formats)
	return &FeedbackPlan{formats: cp}
}

// Next returns the next feedback format in rotation and advances the plan.
// ok is false if the plan has no configured formats.
func (p *FeedbackPlan) Next() (format uint32, ok bool) {
	if len(p.formats) == 0 {
		return 0, false
	}
	f := p.formats[p.next]
	p.next = (p.next + 1) % len(p.formats)
	return f, true
}

// Reset rewinds the rotation to the first configured format.
func (p *FeedbackPlan) Reset() { p.next = 0 }

// Len reports how many formats are in the plan.
func (p *FeedbackPlan) Len() int { return len(p.formats) }
