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

package snapshot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/diag/snapshot"
)

func TestContactRoundTripsThroughMsgp(t *testing.T) {
	c := snapshot.Contact{
		NetworkID: 1, LongRadioDeviceID: 100, ShortRadioDeviceID: 42,
		PTState: "Steady", FTState: "", RetryCount: 2, MissedBeacons: 1,
	}

	b, err := c.MarshalMsg(nil)
	require.NoError(t, err)

	var got snapshot.Contact
	rest, err := got.UnmarshalMsg(b)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, c, got)
}

func TestExportImportRoundTrip(t *testing.T) {
	contacts := []snapshot.Contact{
		{NetworkID: 1, ShortRadioDeviceID: 1, PTState: "Steady"},
		{NetworkID: 1, ShortRadioDeviceID: 2, FTState: "Steady"},
	}

	compressed, err := snapshot.Export(contacts)
	require.NoError(t, err)
	assert.NotEmpty(t, compressed)

	got, err := snapshot.Import(compressed)
	require.NoError(t, err)
	assert.Equal(t, contacts, got)
}

func TestImportRejectsCorruptData(t *testing.T) {
	_, err := snapshot.Import([]byte{0x00, 0x01, 0x02})
	assert.Error(t, err)
}
