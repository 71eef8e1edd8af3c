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
	"fmt"
	"log/slog"
)

// tunMaxDatagramByte bounds a single raw IP datagram read from a TUN
// device's staging buffer, matching udpMaxDatagramByte's role for the UDP
// backend.
const tunMaxDatagramByte = 1500

// TunDevice is the narrow collaborator interface behind which the actual
// TUN/TAP shim lives. This repo owns the queue/notify contract (Server/Client,
// BoundedQueue); raw device I/O (opening /dev/net/tun, configuring name,
// IPv4 address, netmask, MTU) is a collaborator implemented elsewhere and
// injected here.
type TunDevice interface {
	// ReadDatagram blocks until one raw IP datagram is available and copies
	// it into buf, returning the number of bytes written.
	ReadDatagram(buf []byte) (int, error)
	// WriteDatagram writes one raw IP datagram to the device.
	WriteDatagram(datagram []byte) error
	Close() error
}

// TunSource offers every datagram read from a single TunDevice to a Server,
// the TUN-backed counterpart to UDPSource. A TUN device carries one IP
// interface, so there is exactly one connection index (0) regardless of how
// many UDP-backed connections coexist in the same application bridge
// configuration.
type TunSource struct {
	dev TunDevice
}

// NewTunSource wraps an already-configured TUN device (name, IPv4 address,
// netmask, MTU applied by the caller) for ingress polling.
func NewTunSource(dev TunDevice) *TunSource {
	return &TunSource{dev: dev}
}

// Run reads datagrams from the TUN device and offers them to srv at
// connection index 0 until ctx is canceled.
func (s *TunSource) Run(ctx context.Context, srv *Server) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, tunMaxDatagramByte)
		for {
			if ctx.Err() != nil {
				return
			}
			n, err := s.dev.ReadDatagram(buf)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("appbridge: reading ingress tun datagram, swallowing", "error", err)
				continue
			}
			if !srv.Offer(0, buf[:n]) {
				slog.Debug("appbridge: dropped ingress tun datagram, queue full or rejected")
			}
		}
	}()
	<-ctx.Done()
	_ = s.dev.Close()
	<-done
}

// TunSink forwards decoded user-plane-data to a single TUN device,
// implementing the Client Sink interface. Only connIdx 0 is valid, matching
// TunSource's single-interface shape.
type TunSink struct {
	dev TunDevice
}

// NewTunSink wraps an already-configured TUN device for egress writes.
func NewTunSink(dev TunDevice) *TunSink {
	return &TunSink{dev: dev}
}

// WriteDatagram implements Sink.
func (s *TunSink) WriteDatagram(connIdx int, datagram []byte) error {
	if connIdx != 0 {
		return fmt.Errorf("appbridge: tun sink only serves conn_idx 0, got %d", connIdx)
	}
	if err := s.dev.WriteDatagram(datagram); err != nil {
		return fmt.Errorf("appbridge: writing egress tun datagram: %w", err)
	}
	return nil
}

// Close releases the underlying TUN device.
func (s *TunSink) Close() error {
	return s.dev.Close()
}
