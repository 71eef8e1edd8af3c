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

import "fmt"

// NPaddingBytesMax is the largest number of bytes a single padding IE can
// absorb: an 8-bit length field mux header (2 bytes) plus a 255-byte SDU.
const NPaddingBytesMax = 255 + 2

// PaddingIE fills unused space at the end of a MAC PDU. Unlike every other
// MMIE it sizes its own mux header rather than delegating to one of the
// three packing strategies, since the padding bytes it emits are zero
// content following directly after that header.
type PaddingIE struct {
	nofPaddingBytes uint32
}

// SetNofPaddingBytes sets the entire length of the padding IE including its
// mux header. N_bytes must not exceed NPaddingBytesMax.
func (p *PaddingIE) SetNofPaddingBytes(nBytes uint32) error {
	if nBytes > NPaddingBytesMax {
		return fmt.Errorf("mmie: padding IE exceeds %d bytes", NPaddingBytesMax)
	}
	p.nofPaddingBytes = nBytes
	return nil
}

func (p *PaddingIE) IEType() IEType { return IETypePaddingIE }

func (p *PaddingIE) PackedSizeOfMMHSDU() uint32 { return p.nofPaddingBytes }

func (p *PaddingIE) PackMMHSDU(dst []byte) error {
	if uint32(len(dst)) < p.nofPaddingBytes {
		return fmt.Errorf("mmie: padding IE destination too small")
	}

	switch {
	case p.nofPaddingBytes == 0:
		return nil
	case p.nofPaddingBytes == 1:
		mh := MuxHeader{MacExt: MacExtLengthField1, Length: 0, IETypeLen0: IETypeLen0PaddingIE}
		return mh.Pack(dst)
	case p.nofPaddingBytes == 2:
		mh := MuxHeader{MacExt: MacExtLengthField1, Length: 1, IETypeLen1: IETypeLen1PaddingIE}
		if err := mh.Pack(dst); err != nil {
			return err
		}
		dst[1] = 0
		return nil
	default:
		mh := MuxHeader{MacExt: MacExtLengthField8, IEType: IETypePaddingIE, Length: p.nofPaddingBytes - 2}
		if err := mh.Pack(dst); err != nil {
			return err
		}
		for i := mh.PackedSize(); i < p.nofPaddingBytes; i++ {
			dst[i] = 0
		}
		return nil
	}
}
