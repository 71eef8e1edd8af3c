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

package bitfield_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/bitfield"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	cases := []struct {
		off, nbits uint
		v          uint64
	}{
		{0, 4, 0xB},
		{4, 4, 0x3},
		{0, 8, 0xFF},
		{3, 5, 0x15},
		{0, 12, 0xABC},
	}
	for _, c := range cases {
		buf := make([]byte, 4)
		bitfield.PackUpper(buf, c.off, c.nbits, c.v)
		got := bitfield.UnpackUpper(buf, c.off, c.nbits)
		require.Equal(t, c.v&bitfield.BitmaskLSB(c.nbits), got)
	}
}

func TestBitmasks(t *testing.T) {
	require.Equal(t, uint64(0x0F), bitfield.BitmaskLSB(4))
	require.Equal(t, uint64(0xF0), bitfield.BitmaskMSB(4, 8))
}

type testEnum uint32

const (
	testEnumNotDefined testEnum = 0xFFFFFFFF
	testEnumLower      testEnum = 0
	testEnumA          testEnum = 1
	testEnumUpper      testEnum = 2
)

func TestFromCodedValueAndIsValid(t *testing.T) {
	require.Equal(t, testEnumA, bitfield.FromCodedValue[testEnum](1, uint32(testEnumLower), uint32(testEnumUpper), uint32(testEnumNotDefined)))
	require.Equal(t, testEnumNotDefined, bitfield.FromCodedValue[testEnum](2, uint32(testEnumLower), uint32(testEnumUpper), uint32(testEnumNotDefined)))
	require.True(t, bitfield.IsValid(testEnumA, testEnumLower, testEnumUpper, testEnumNotDefined))
	require.False(t, bitfield.IsValid(testEnumNotDefined, testEnumLower, testEnumUpper, testEnumNotDefined))
	require.False(t, bitfield.IsValid(testEnumLower, testEnumLower, testEnumUpper, testEnumNotDefined))
}
