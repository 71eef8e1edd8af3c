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

package harq

import (
	"fmt"
	"sync"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/phyapi"
)

// FinalizePolicy selects what happens to a process once the PHY has
// reported completion of its transmission or reception.
type FinalizePolicy int

const (
	// KeepForRetransmission retains the soft buffer and (for TX) the
	// serialized content so a redundancy-version retransmission can skip
	// recomputing systematic/parity bits.
	KeepForRetransmission FinalizePolicy = iota
	// ResetAndTerminate releases the process immediately.
	ResetAndTerminate
)

// AcquisitionKey identifies which logical transmission a process belongs
// to, used both to select a free process and to detect overlapping RX
// acquisitions for the same logical stream.
type AcquisitionKey struct {
	PLCFType       string
	NetworkID      uint32
	PacketSizesDef phyapi.PacketSizesDef
}

func (k AcquisitionKey) hash() (uint64, error) {
	return hashstructure.Hash(k, hashstructure.FormatV2, nil)
}

// Process is one HARQ process: a numbered buffer slot plus the bookkeeping
// needed to reserve, retain, or release it.
type Process struct {
	Number         uint32
	Buffer         *Buffer
	reserved       bool
	key            AcquisitionKey
	finalizePolicy FinalizePolicy
}

func (p *Process) Reserved() bool { return p.reserved }

// Pool is a small fixed-size array of HARQ processes (typically 4-8 per
// direction). TX and RX each get their own Pool.
type Pool struct {
	mu        sync.Mutex
	processes []*Process
	inFlight  *xsync.Map[uint64, uint32] // acquisition key hash -> process number, RX de-overlap
	aLenMax   uint32
	z         uint32
}

// NewPool preallocates n processes, each with buffers sized for a
// transport block of at most aLenMax bytes and a code block size of z.
func NewPool(n int, aLenMax, z uint32) *Pool {
	processes := make([]*Process, n)
	for i := range processes {
		processes[i] = &Process{Number: uint32(i), Buffer: NewBuffer(aLenMax, z)}
	}
	return &Pool{
		processes: processes,
		inFlight:  xsync.NewMap[uint64, uint32](),
		aLenMax:   aLenMax,
		z:         z,
	}
}

// Acquire reserves a free process for key, or returns an error if the pool
// is exhausted or (for a caller tracking de-overlap, typically RX) key is
// already in flight on another process.
func (p *Pool) Acquire(key AcquisitionKey, finalizePolicy FinalizePolicy, checkOverlap bool) (*Process, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if checkOverlap {
		h, err := key.hash()
		if err != nil {
			return nil, fmt.Errorf("harq: hashing acquisition key: %w", err)
		}
		if _, exists := p.inFlight.Load(h); exists {
			return nil, fmt.Errorf("harq: acquisition key already in flight")
		}
	}

	for _, proc := range p.processes {
		if proc.reserved {
			continue
		}
		proc.reserved = true
		proc.key = key
		proc.finalizePolicy = finalizePolicy
		proc.Buffer.Reset()

		if checkOverlap {
			h, _ := key.hash()
			p.inFlight.Store(h, proc.Number)
		}
		return proc, nil
	}
	return nil, fmt.Errorf("harq: process pool exhausted")
}

// Finalize releases or retains proc according to its declared finalize
// policy, to be called once the PHY reports completion.
func (p *Pool) Finalize(proc *Process) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h, err := proc.key.hash(); err == nil {
		p.inFlight.Delete(h)
	}

	if proc.finalizePolicy == KeepForRetransmission {
		return
	}
	proc.reserved = false
	proc.Buffer.Reset()
}

// Release unconditionally frees proc regardless of its finalize policy:
// the firmware calls this once a kept-for-retransmission process has been
// acknowledged and its cached buffers are no longer needed.
func (p *Pool) Release(proc *Process) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h, err := proc.key.hash(); err == nil {
		p.inFlight.Delete(h)
	}
	proc.reserved = false
	proc.Buffer.Reset()
}

// NofReserved reports how many processes are currently reserved.
func (p *Pool) NofReserved() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, proc := range p.processes {
		if proc.reserved {
			n++
		}
	}
	return n
}

// Len returns the total number of processes in the pool.
func (p *Pool) Len() int { return len(p.processes) }
