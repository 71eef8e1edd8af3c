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

package phyapi

import "fmt"

// RDC is the Radio Device Class value record: the capability envelope the
// firmware bounds HARQ buffer
// allocation against, and validates a chosen PacketSizesDef against before
// ever handing it to the PHY.
type RDC struct {
	UMin          uint32
	BMin          uint32
	ZMin          uint32
	MaxAntennaTx  uint32
	MaxAntennaRx  uint32
	MaxTBSizeByte uint32
}

// Validate reports whether def is permitted under this device class: its
// code block size must not undercut ZMin, and its derived transport block
// must fit within MaxTBSizeByte.
func (r RDC) Validate(def PacketSizesDef) error {
	if def.Z < r.ZMin {
		return fmt.Errorf("phyapi: packet sizes def Z=%d below device class minimum %d", def.Z, r.ZMin)
	}
	ntb, err := def.NTBByte()
	if err != nil {
		return fmt.Errorf("phyapi: deriving transport block size: %w", err)
	}
	if ntb > r.MaxTBSizeByte {
		return fmt.Errorf("phyapi: transport block size %d exceeds device class maximum %d", ntb, r.MaxTBSizeByte)
	}
	return nil
}

// BoundHARQBufferByte caps a requested HARQ soft-buffer allocation (bytes)
// at this device class's ceiling, so HARQ pools are sized by capability
// rather than by an unbounded config value.
func (r RDC) BoundHARQBufferByte(requested uint32) uint32 {
	ceiling := r.MaxTBSizeByte * r.ZMin
	if r.ZMin == 0 || ceiling < r.MaxTBSizeByte {
		ceiling = r.MaxTBSizeByte
	}
	if requested > ceiling {
		return ceiling
	}
	return requested
}
