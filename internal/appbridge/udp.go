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
	"net"
)

const udpMaxDatagramByte = 1500

// UDPSource listens on one UDP port per connection index (bound to
// INADDR_ANY) and offers every received datagram to a Server. A read error
// is logged and the loop keeps serving rather than tearing the listener
// down.
type UDPSource struct {
	conns []*net.UDPConn
}

// NewUDPSource binds nConn consecutive UDP ports starting at basePort, one
// per connection index, all on INADDR_ANY.
func NewUDPSource(basePort, nConn int) (*UDPSource, error) {
	src := &UDPSource{conns: make([]*net.UDPConn, nConn)}
	for i := 0; i < nConn; i++ {
		addr := &net.UDPAddr{Port: basePort + i}
		conn, err := net.ListenUDP("udp", addr)
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("appbridge: binding ingress port %d: %w", addr.Port, err)
		}
		src.conns[i] = conn
	}
	return src, nil
}

// Close releases every bound ingress port.
func (s *UDPSource) Close() error {
	var firstErr error
	for _, c := range s.conns {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Run reads datagrams from every bound port concurrently, offering each to
// srv, until ctx is canceled.
func (s *UDPSource) Run(ctx context.Context, srv *Server) {
	for i, conn := range s.conns {
		go s.readLoop(ctx, i, conn, srv)
	}
	<-ctx.Done()
	_ = s.Close()
}

func (s *UDPSource) readLoop(ctx context.Context, connIdx int, conn *net.UDPConn, srv *Server) {
	buf := make([]byte, udpMaxDatagramByte)
	for {
		if ctx.Err() != nil {
			return
		}
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("appbridge: reading ingress udp datagram, swallowing", "conn_idx", connIdx, "error", err)
			continue
		}
		if !srv.Offer(connIdx, buf[:n]) {
			slog.Debug("appbridge: dropped ingress datagram, queue full or rejected", "conn_idx", connIdx)
		}
	}
}

// UDPSink forwards decoded user-plane-data to one UDP destination port per
// connection index, implementing the Client Sink interface.
type UDPSink struct {
	conns []*net.UDPConn
}

// NewUDPSink dials nConn consecutive UDP destination ports starting at
// basePort on host, one per connection index.
func NewUDPSink(host string, basePort, nConn int) (*UDPSink, error) {
	sink := &UDPSink{conns: make([]*net.UDPConn, nConn)}
	for i := 0; i < nConn; i++ {
		addr := &net.UDPAddr{IP: net.ParseIP(host), Port: basePort + i}
		conn, err := net.DialUDP("udp", nil, addr)
		if err != nil {
			sink.Close()
			return nil, fmt.Errorf("appbridge: dialing egress port %d: %w", addr.Port, err)
		}
		sink.conns[i] = conn
	}
	return sink, nil
}

// Close releases every dialed egress connection.
func (s *UDPSink) Close() error {
	var firstErr error
	for _, c := range s.conns {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WriteDatagram implements Sink.
func (s *UDPSink) WriteDatagram(connIdx int, datagram []byte) error {
	if connIdx < 0 || connIdx >= len(s.conns) || s.conns[connIdx] == nil {
		return fmt.Errorf("appbridge: no egress connection bound for conn_idx %d", connIdx)
	}
	_, err := s.conns[connIdx].Write(datagram)
	if err != nil {
		return fmt.Errorf("appbridge: writing egress udp datagram: %w", err)
	}
	return nil
}
