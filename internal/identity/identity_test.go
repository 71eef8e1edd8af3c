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

package identity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/identity"
)

func TestNewRejectsReservedValues(t *testing.T) {
	_, err := identity.New(identity.NetworkIDReserved, 10, 10)
	require.Error(t, err)

	_, err = identity.New(1, identity.LongRadioDeviceIDBroadcast, 10)
	require.Error(t, err)

	_, err = identity.New(1, 10, identity.ShortRadioDeviceIDBroadcast)
	require.Error(t, err)
}

func TestNewDerivesShortNetworkID(t *testing.T) {
	id, err := identity.New(0x123456, 10, 20)
	require.NoError(t, err)
	require.Equal(t, uint32(0x56), id.ShortNetworkID)
}

func TestTableResolve(t *testing.T) {
	tbl := identity.NewTable()
	id, err := identity.New(1, 100, 7)
	require.NoError(t, err)

	tbl.Put(id)
	got, ok := tbl.Resolve(7)
	require.True(t, ok)
	require.Equal(t, uint32(100), got)

	tbl.Remove(7)
	_, ok = tbl.Resolve(7)
	require.False(t, ok)
}
