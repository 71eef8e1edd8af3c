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

package machdr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/machdr"
)

func TestHeaderRoundTrip(t *testing.T) {
	src := machdr.Header{
		Version:    machdr.Version00,
		Security:   machdr.SecurityUsedNoIE,
		HeaderType: machdr.HeaderTypeUnicast,
	}
	buf := make([]byte, machdr.PackedSize)
	require.NoError(t, src.Pack(buf))

	var dst machdr.Header
	require.NoError(t, dst.Unpack(buf))
	require.Equal(t, src, dst)
}

func TestHeaderRejectsEscape(t *testing.T) {
	buf := []byte{0x0F}
	var dst machdr.Header
	require.Error(t, dst.Unpack(buf))
}

func TestCommonHeaderRoundTrips(t *testing.T) {
	unicast := &machdr.UnicastHeader{
		SequenceNumber:     0xABC,
		ReceiverAddress:    1234,
		TransmitterAddress: 5678,
	}
	buf := make([]byte, unicast.PackedSize())
	require.NoError(t, unicast.Pack(buf))

	got := &machdr.UnicastHeader{}
	require.NoError(t, got.Unpack(buf))
	require.Equal(t, unicast, got)

	beacon := &machdr.BeaconHeader{TransmitterAddress: 99}
	beacon.SetNetworkID3LSB(0xABCDEF12)
	buf2 := make([]byte, beacon.PackedSize())
	require.NoError(t, beacon.Pack(buf2))

	got2 := &machdr.BeaconHeader{}
	require.NoError(t, got2.Unpack(buf2))
	require.Equal(t, beacon.NetworkID3LSB, got2.NetworkID3LSB)
}

func TestForTypeReturnsMatchingVariant(t *testing.T) {
	require.IsType(t, &machdr.UnicastHeader{}, machdr.ForType(machdr.HeaderTypeUnicast))
	require.Nil(t, machdr.ForType(machdr.HeaderTypeEscape))
}
