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

// Package identity implements the MAC architecture identity tuple shared by
// every PDU: a 32-bit Network ID (with an 8-bit derived Short Network ID),
// a 32-bit Long Radio Device ID and a 16-bit Short Radio Device ID.
package identity

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/bitfield"
)

const (
	// NetworkIDReserved is the sentinel that no real Network ID may use.
	NetworkIDReserved uint32 = 0

	// LongRadioDeviceIDReserved is the sentinel that no real Long RD ID may use.
	LongRadioDeviceIDReserved uint32 = 0
	// LongRadioDeviceIDBackend addresses the fixed network infrastructure side
	// of a cluster, distinct from any individual RD.
	LongRadioDeviceIDBackend uint32 = 0xFFFFFFFE
	// LongRadioDeviceIDBroadcast addresses every RD in a cluster.
	LongRadioDeviceIDBroadcast uint32 = 0xFFFFFFFF

	// ShortRadioDeviceIDReserved is the sentinel that no real Short RD ID may use.
	ShortRadioDeviceIDReserved uint32 = 0
	// ShortRadioDeviceIDBroadcast addresses every RD in a cluster using the
	// compressed 16-bit identifier.
	ShortRadioDeviceIDBroadcast uint32 = 0xFFFF
)

// Identity is the validated (NetworkID, LongRadioDeviceID, ShortRadioDeviceID)
// tuple every contact and PDU carries. ShortNetworkID is derived, not chosen.
type Identity struct {
	NetworkID      uint32
	ShortNetworkID uint32

	LongRadioDeviceID  uint32
	ShortRadioDeviceID uint32
}

// New validates and constructs an Identity. It returns an error rather than
// panicking since, unlike the C++ original's dectnrp_assert, malformed
// identities can arrive over the wire and must be rejected, not crash the
// process.
func New(networkID, longRadioDeviceID, shortRadioDeviceID uint32) (Identity, error) {
	if !IsValidNetworkID(networkID) {
		return Identity{}, fmt.Errorf("identity: network id %#x is reserved", networkID)
	}
	if longRadioDeviceID == LongRadioDeviceIDReserved ||
		longRadioDeviceID == LongRadioDeviceIDBackend ||
		longRadioDeviceID == LongRadioDeviceIDBroadcast {
		return Identity{}, fmt.Errorf("identity: long radio device id %#x is reserved", longRadioDeviceID)
	}
	if shortRadioDeviceID == ShortRadioDeviceIDReserved ||
		shortRadioDeviceID == ShortRadioDeviceIDBroadcast {
		return Identity{}, fmt.Errorf("identity: short radio device id %#x is reserved", shortRadioDeviceID)
	}
	if shortRadioDeviceID > uint32(bitfield.BitmaskLSB(16)) {
		return Identity{}, fmt.Errorf("identity: short radio device id %#x exceeds 16 bits", shortRadioDeviceID)
	}

	return Identity{
		NetworkID:          networkID,
		ShortNetworkID:     FullToShortNetworkID(networkID),
		LongRadioDeviceID:  longRadioDeviceID,
		ShortRadioDeviceID: shortRadioDeviceID,
	}, nil
}

// IsValidNetworkID reports whether networkID is usable, i.e. not the
// reserved sentinel.
func IsValidNetworkID(networkID uint32) bool {
	return networkID != NetworkIDReserved
}

// IsValidShortNetworkID reports whether shortNetworkID is usable: not
// reserved, and fits within 8 bits.
func IsValidShortNetworkID(shortNetworkID uint32) bool {
	if shortNetworkID == NetworkIDReserved {
		return false
	}
	return shortNetworkID <= uint32(bitfield.BitmaskLSB(8))
}

// IsValidLongRadioDeviceID reports whether longRadioDeviceID is usable.
func IsValidLongRadioDeviceID(longRadioDeviceID uint32) bool {
	return longRadioDeviceID != LongRadioDeviceIDReserved
}

// IsValidShortRadioDeviceID reports whether shortRadioDeviceID is usable.
func IsValidShortRadioDeviceID(shortRadioDeviceID uint32) bool {
	if shortRadioDeviceID == ShortRadioDeviceIDReserved {
		return false
	}
	return shortRadioDeviceID <= uint32(bitfield.BitmaskLSB(16))
}

// FullToShortNetworkID derives the 8-bit Short Network ID broadcast in
// beacons from the full 32-bit Network ID: the least significant byte.
func FullToShortNetworkID(networkID uint32) uint32 {
	return networkID & uint32(bitfield.BitmaskLSB(8))
}

// Table maps Short Radio Device IDs to Long Radio Device IDs for a cluster,
// so a received PDU carrying only the compressed address can be resolved to
// the full identity used for contact lookups. Safe for concurrent use.
type Table struct {
	shortToLong *xsync.Map[uint32, uint32]
}

// NewTable returns an empty Short-to-Long resolution table.
func NewTable() *Table {
	return &Table{shortToLong: xsync.NewMap[uint32, uint32]()}
}

// Put records the Short-to-Long mapping for id.
func (t *Table) Put(id Identity) {
	t.shortToLong.Store(id.ShortRadioDeviceID, id.LongRadioDeviceID)
}

// Remove drops any mapping for shortRadioDeviceID.
func (t *Table) Remove(shortRadioDeviceID uint32) {
	t.shortToLong.Delete(shortRadioDeviceID)
}

// Resolve returns the Long Radio Device ID registered for shortRadioDeviceID.
func (t *Table) Resolve(shortRadioDeviceID uint32) (uint32, bool) {
	return t.shortToLong.Load(shortRadioDeviceID)
}
