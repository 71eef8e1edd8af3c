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

package mmie

import "errors"

// Structured peek failures. PackedSizeByPeeking returns one of these when
// the peeked prefix proves the body cannot be sized: the decoder treats any
// of them as grounds to stop demultiplexing the rest of the PDU.
var (
	ErrNonreservedFieldSetToReserved    = errors.New("mmie: nonreserved field set to reserved value")
	ErrNonreservedFieldSetToUnsupported = errors.New("mmie: nonreserved field set to unsupported value")
	ErrReservedFieldNotZero             = errors.New("mmie: reserved field not zero")
)
