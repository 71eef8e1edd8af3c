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

package appbridge_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/appbridge"
)

func freeUDPPort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	require.NoError(t, err)
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).Port
}

func TestUDPSourceOffersReceivedDatagramsToServer(t *testing.T) {
	port := freeUDPPort(t)
	src, err := appbridge.NewUDPSource(port, 1)
	require.NoError(t, err)

	srv := appbridge.NewServer(4, 64, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go src.Run(ctx, srv)
	defer cancel()

	conn, err := net.DialUDP("udp", nil, &net.UDPAddr{Port: port})
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte{0xAA, 0xBB})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return srv.PendingCount() == 1
	}, time.Second, 10*time.Millisecond)

	drained := srv.Drain(0)
	require.Len(t, drained, 1)
	assert.Equal(t, []byte{0xAA, 0xBB}, drained[0])
}

func TestUDPSinkWritesToDialedPort(t *testing.T) {
	port := freeUDPPort(t)
	listener, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	require.NoError(t, err)
	defer listener.Close()

	sink, err := appbridge.NewUDPSink("127.0.0.1", port, 1)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.WriteDatagram(0, []byte{0x01, 0x02, 0x03}))

	buf := make([]byte, 16)
	require.NoError(t, listener.SetReadDeadline(time.Now().Add(time.Second)))
	n, _, err := listener.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, buf[:n])
}

func TestUDPSinkRejectsUnknownConnIdx(t *testing.T) {
	sink, err := appbridge.NewUDPSink("127.0.0.1", freeUDPPort(t), 1)
	require.NoError(t, err)
	defer sink.Close()

	assert.Error(t, sink.WriteDatagram(5, []byte{0x00}))
}

func TestClientRunEgressForwardsUntilContextCanceled(t *testing.T) {
	sink := &fakeSink{failIdx: -1}
	c := appbridge.NewClient(4, 64, nil, sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.RunEgress(ctx, []int{0})
		close(done)
	}()

	require.Equal(t, 1, c.WriteNTO(0, []byte{0x42}))
	c.TriggerForwardNTO(1)

	require.Eventually(t, func() bool {
		return len(sink.written) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunEgress did not return after context cancellation")
	}
}
