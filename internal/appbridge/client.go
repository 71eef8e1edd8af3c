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

package appbridge

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// AppPollWaitTimeout bounds how long the egress forwarding worker sleeps
// between empty polls before rechecking ctx: "a caller that holds a
// datagram-available signal and checks the shutdown flag no less often
// than APP_POLL_WAIT_TIMEOUT_MS."
const AppPollWaitTimeout = 50 * time.Millisecond

// EgressFilter inspects a datagram immediately before it is written to the
// physical sink, returning false to drop it.
type EgressFilter func(connIdx int, datagram []byte) bool

// Sink is the physical destination a Client forwards accepted datagrams to
// (a UDP socket or TUN device in production, a channel or buffer in tests).
type Sink interface {
	WriteDatagram(connIdx int, datagram []byte) error
}

// Client is the egress half of the application bridge: the firmware calls
// WriteNTO to queue outbound data and TriggerForwardNTO to signal new
// datagrams are ready; a forwarding worker drains the indicated count,
// applying the per-connection egress filter before handing datagrams to
// the sink.
type Client struct {
	queue     *BoundedQueue
	filter    EgressFilter
	sink      Sink
	triggered atomic.Int64
}

// NewClient returns a Client with its own bounded queue, writing accepted
// datagrams to sink. A nil filter accepts every datagram.
func NewClient(nDatagram, nDatagramMaxByte int, filter EgressFilter, sink Sink) *Client {
	if filter == nil {
		filter = func(int, []byte) bool { return true }
	}
	return &Client{queue: NewBoundedQueue(nDatagram, nDatagramMaxByte), filter: filter, sink: sink}
}

// WriteNTO is the firmware's non-blocking enqueue of one outbound datagram.
// It returns the number of bytes accepted, 0 if the queue for connIdx is
// full.
func (c *Client) WriteNTO(connIdx int, datagram []byte) int {
	return c.queue.WriteNTO(connIdx, datagram)
}

// TriggerForwardNTO signals that count new datagrams are ready to be
// forwarded, waking the forwarding worker's loop condition.
func (c *Client) TriggerForwardNTO(count int) {
	c.triggered.Add(int64(count))
}

// ForwardPending drains and forwards one datagram per non-empty connection
// queue, up to the currently triggered count: while the indicator counter
// is positive, iterate connections. It returns how many datagrams were
// actually written to the sink.
func (c *Client) ForwardPending(connIdxs []int) (int, error) {
	written := 0
	for _, idx := range connIdxs {
		if c.triggered.Load() <= 0 {
			break
		}
		datagram, ok := c.queue.ReadNTO(idx)
		if !ok {
			continue
		}
		c.triggered.Add(-1)
		if !c.filter(idx, datagram) {
			continue
		}
		if err := c.sink.WriteDatagram(idx, datagram); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// Pending reports the current triggered-but-not-yet-forwarded count.
func (c *Client) Pending() int64 {
	return c.triggered.Load()
}

// RunEgress is the busy-wait variant of the spec's forwarding worker: while
// the triggered counter is positive it drains and forwards against
// connIdxs, and whenever nothing is pending it sleeps for at most
// AppPollWaitTimeout before rechecking ctx, so shutdown is never blocked on
// an idle queue.
func (c *Client) RunEgress(ctx context.Context, connIdxs []int) {
	timer := time.NewTimer(AppPollWaitTimeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if c.Pending() <= 0 {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(AppPollWaitTimeout)
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			continue
		}

		if _, err := c.ForwardPending(connIdxs); err != nil {
			slog.Warn("appbridge: forwarding egress datagram", "error", err)
		}
	}
}
