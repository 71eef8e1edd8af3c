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

// Package schedule implements the sample-clock-accurate timers the MAC core
// uses for beacon transmission and unicast allocation: a callback timer
// wheel, the FT beacon clock, and per-contact transmit-opportunity
// resolution.
package schedule

import (
	"container/heap"
	"sync"
)

// Callback is a function run by the Wheel once its due time has passed. It
// returns the next absolute sample time it wants to fire at, and whether it
// should be rescheduled at all.
type Callback func(now int64) (next int64, again bool)

type wheelEntry struct {
	due int64
	fn  Callback
	id  uint64
}

type entryHeap []*wheelEntry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].due < h[j].due }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(*wheelEntry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Wheel is a monotonically ordered collection of callbacks keyed by absolute
// sample-count due time, the firmware's callback timer
// wheel: add_callback(fn, absolute_time, period), run(now) invokes every due
// callback in sorted order and callbacks may reschedule themselves.
type Wheel struct {
	mu      sync.Mutex
	entries entryHeap
	nextID  uint64
}

// NewWheel returns an empty timer wheel.
func NewWheel() *Wheel {
	w := &Wheel{}
	heap.Init(&w.entries)
	return w
}

// AddCallback inserts fn to fire once absolute sample time has passed. If fn
// returns again=true from Run, it is reinserted at the next time it reports.
func (w *Wheel) AddCallback(fn Callback, absoluteTime int64) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	id := w.nextID
	heap.Push(&w.entries, &wheelEntry{due: absoluteTime, fn: fn, id: id})
	return id
}

// Cancel removes a previously added callback by id, if it is still pending.
func (w *Wheel) Cancel(id uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, e := range w.entries {
		if e.id == id {
			heap.Remove(&w.entries, i)
			return
		}
	}
}

// Run invokes every callback due at or before now, in due-time order,
// reinserting those that ask to be rescheduled.
func (w *Wheel) Run(now int64) int {
	w.mu.Lock()
	var due []*wheelEntry
	for len(w.entries) > 0 && w.entries[0].due <= now {
		due = append(due, heap.Pop(&w.entries).(*wheelEntry))
	}
	w.mu.Unlock()

	for _, e := range due {
		next, again := e.fn(now)
		if again {
			w.mu.Lock()
			e.due = next
			heap.Push(&w.entries, e)
			w.mu.Unlock()
		}
	}
	return len(due)
}

// NextDue reports the due time of the earliest pending callback and whether
// any callback is pending at all.
func (w *Wheel) NextDue() (int64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.entries) == 0 {
		return 0, false
	}
	return w.entries[0].due, true
}

// Len reports how many callbacks are currently pending.
func (w *Wheel) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}
