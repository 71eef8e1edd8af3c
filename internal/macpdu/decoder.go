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

// Package macpdu implements the streaming MAC PDU decoder: the state
// machine that walks a received HARQ buffer from its leading MAC header
// through every multiplexed MMIE until the buffer is exhausted or an
// unrecoverable framing error is found.
package macpdu

import (
	"fmt"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/machdr"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/mmie"
)

type state int

const (
	stateHeaderType state = iota
	stateCommonHeader
	stateMuxHeaderUnpackMacExtIEType
	stateMuxHeaderUnpackLengthOrFixedSize
	stateMessageIEPeek
	stateMessageIEUnpack
	statePDUCheckIfDone
	statePDUDone
	statePDUPrematureAbort
)

// DecodedIE pairs a decoded MMIE with the mux header that framed it.
type DecodedIE struct {
	MuxHeader mmie.MuxHeader
	MMIE      mmie.MMIE
}

// Decoder walks a single MAC PDU buffer: call SetConfiguration once per PDU,
// then Decode as many times as needed as more of the buffer becomes
// available. The decoder is reentrant: all of its working state lives on
// the struct, not on the call stack, so a PDU spanning several soft-combine
// deliveries decodes identically whether it is handed over in one call or
// in arbitrary byte-sized increments.
type Decoder struct {
	pool      *mmie.Pool
	activeSet *mmie.ActiveSet
	mu        uint32 // subcarrier scaling factor, passed to MMIEs whose layout depends on it

	a       []byte // the HARQ buffer, pre-allocated to aCntWTB bytes
	aCntWTB uint32 // total number of bytes the transport block will contain
	aCntR   uint32 // number of bytes already consumed from a

	st      state
	result  Result
	pending mmie.MuxHeader // working mux header of the IE currently being decoded

	pendingInstance mmie.MMIE // MMIE instance once resolved, nil until stateMessageIEPeek completes
	pendingLength   uint32    // payload length once resolved, valid once pendingInstance is set

	// nextIndex maps a resolved IE type to the next pool index to hand
	// out, so the i-th occurrence of a type within one PDU decodes into
	// the i-th preallocated instance instead of overwriting the first.
	nextIndex map[uint32]int
}

// NewDecoder builds a decoder bound to pool and activeSet.
func NewDecoder(pool *mmie.Pool, activeSet *mmie.ActiveSet) *Decoder {
	return &Decoder{pool: pool, activeSet: activeSet, mu: 1}
}

// SetMu sets the subcarrier scaling factor (1, 2, 4 or 8) used while
// decoding; some IE layouts widen their subslot fields above mu 4.
func (d *Decoder) SetMu(mu uint32) error {
	if mu != 1 && mu != 2 && mu != 4 && mu != 8 {
		return fmt.Errorf("macpdu: mu must be 1, 2, 4 or 8")
	}
	d.mu = mu
	return nil
}

// SetConfiguration resets the state machine to its initial state and must
// be called before the first Decode of a new MAC PDU. a is the start of
// the HARQ buffer the PDU will be soft-combined into and aCntWTB is the
// total number of bytes the transport block will eventually contain.
func (d *Decoder) SetConfiguration(a []byte, aCntWTB uint32) {
	d.a = a
	d.aCntWTB = aCntWTB
	d.aCntR = 0
	d.st = stateHeaderType
	d.result = Result{}
	d.pending = mmie.MuxHeader{}
	d.pendingInstance = nil
	d.pendingLength = 0
	d.nextIndex = make(map[uint32]int)
}

// Result is the outcome of decoding one MAC PDU.
type Result struct {
	HeaderType             machdr.Header
	CommonHeader           machdr.CommonHeader
	IEs                    []DecodedIE
	ReachedValidFinalState bool
}

// HasAnyData reports whether at least one multiplexed MMIE carries a
// non-padding payload.
func (r *Result) HasAnyData() bool {
	for _, ie := range r.IEs {
		if !isPaddingIEType(ie.MuxHeader) {
			return true
		}
	}
	return false
}

// NMMIE counts how many decoded IEs have the given type.
func (r *Result) NMMIE(iet mmie.IEType) int {
	n := 0
	for _, ie := range r.IEs {
		if ie.MuxHeader.IEType == iet {
			n++
		}
	}
	return n
}

func isPaddingIEType(mh mmie.MuxHeader) bool {
	switch mh.MacExt {
	case mmie.MacExtLengthField1:
		if mh.Length == 0 {
			return mh.IETypeLen0 == mmie.IETypeLen0PaddingIE
		}
		return mh.IETypeLen1 == mmie.IETypeLen1PaddingIE
	default:
		return mh.IEType == mmie.IETypePaddingIE
	}
}

// explicitLength returns the SDU length carried in the mux header itself,
// when one is present.
func explicitLength(mh mmie.MuxHeader) (uint32, bool) {
	switch mh.MacExt {
	case mmie.MacExtLengthField8, mmie.MacExtLengthField16, mmie.MacExtLengthField1:
		return mh.Length, true
	default:
		return 0, false
	}
}

// unpackInto dispatches to whichever concrete unpack strategy instance
// implements, flowing types first since Flowing needs its size set before
// Unpack is meaningful.
func unpackInto(instance mmie.MMIE, src []byte) error {
	switch v := instance.(type) {
	case mmie.Flowing:
		v.SetDataSize(uint32(len(src)))
		return v.Unpack(src)
	case mmie.Packing:
		return v.Unpack(src)
	default:
		return fmt.Errorf("macpdu: MMIE type does not implement a known unpack strategy")
	}
}

// require reports whether decoding the current state needs to wait for
// more bytes (wait) or has run into a genuine framing failure because need
// bytes would overrun the transport block's total declared size (exceeds).
// A caller must never treat wait as an error: it means decode() should
// simply be called again once more bytes of a have been written.
func (d *Decoder) require(aCntW, need uint32) (wait, exceeds bool) {
	if d.aCntR+need > d.aCntWTB {
		return false, true
	}
	if d.aCntR+need > aCntW {
		return true, false
	}
	return false, false
}

// HasReachedValidFinalState reports whether the state machine has fully
// consumed the transport block and settled into MAC_PDU_DONE or
// MAC_PDU_PREMATURE_ABORT.
func (d *Decoder) HasReachedValidFinalState() bool {
	return d.aCntR == d.aCntWTB && (d.st == statePDUDone || d.st == statePDUPrematureAbort)
}

// DecodeFull is a convenience wrapper for callers that always have the
// entire MAC PDU available up front: it configures the decoder with a as
// both the buffer and its total size, then decodes it in one call.
func (d *Decoder) DecodeFull(a []byte) *Result {
	d.SetConfiguration(a, uint32(len(a)))
	return d.Decode(uint32(len(a)))
}

// Decode advances the state machine as far as the aCntW bytes of a already
// written allow, returning the in-progress Result. Decode never signals a
// framing failure through an error return: a premature abort is recorded
// in the Result (ReachedValidFinalState stays false) and surfaces only
// through HasReachedValidFinalState/Result once the transport block is
// fully accounted for. Calling Decode again with a larger aCntW resumes
// exactly where the previous call left off, so a PDU fed in arbitrary
// byte-sized increments decodes to the same Result as one fed all at once.
func (d *Decoder) Decode(aCntW uint32) *Result {
	for {
		switch d.st {
		case stateHeaderType:
			wait, exceeds := d.require(aCntW, machdr.PackedSize)
			if exceeds {
				d.st = statePDUPrematureAbort
				continue
			}
			if wait {
				return &d.result
			}
			if err := d.result.HeaderType.Unpack(d.a[d.aCntR:]); err != nil {
				d.st = statePDUPrematureAbort
				continue
			}
			d.aCntR += machdr.PackedSize
			d.st = stateCommonHeader

		case stateCommonHeader:
			ch := machdr.ForType(d.result.HeaderType.HeaderType)
			if ch == nil {
				d.st = statePDUPrematureAbort
				continue
			}
			need := ch.PackedSize()
			wait, exceeds := d.require(aCntW, need)
			if exceeds {
				d.st = statePDUPrematureAbort
				continue
			}
			if wait {
				return &d.result
			}
			if err := ch.Unpack(d.a[d.aCntR : d.aCntR+need]); err != nil {
				d.st = statePDUPrematureAbort
				continue
			}
			d.result.CommonHeader = ch
			d.aCntR += need
			d.st = statePDUCheckIfDone

		case statePDUCheckIfDone:
			if d.aCntR == d.aCntWTB {
				d.st = statePDUDone
				continue
			}
			if d.aCntR > d.aCntWTB {
				d.st = statePDUPrematureAbort
				continue
			}
			d.st = stateMuxHeaderUnpackMacExtIEType

		case stateMuxHeaderUnpackMacExtIEType:
			wait, exceeds := d.require(aCntW, mmie.PackedSizeMinToPeek)
			if exceeds {
				d.st = statePDUPrematureAbort
				continue
			}
			if wait {
				return &d.result
			}
			var mh mmie.MuxHeader
			mh.UnpackMacExtIEType(d.a[d.aCntR])
			if mh.MacExt == mmie.MacExtNotDefined {
				d.st = statePDUPrematureAbort
				continue
			}
			// Quoting clause 6.4.3.8: upon detecting a padding IE, the
			// receiver can assume the rest of the MAC PDU, except the MIC,
			// is padding. Demultiplexing stops here rather than treating
			// padding as a decodable IE.
			if isPaddingIEType(mh) {
				d.st = statePDUPrematureAbort
				continue
			}
			d.pending = mh
			d.st = stateMuxHeaderUnpackLengthOrFixedSize

		case stateMuxHeaderUnpackLengthOrFixedSize:
			need := d.pending.PackedSize()
			wait, exceeds := d.require(aCntW, need)
			if exceeds {
				d.st = statePDUPrematureAbort
				continue
			}
			if wait {
				return &d.result
			}
			if err := d.pending.UnpackLength(d.a[d.aCntR:]); err != nil {
				d.st = statePDUPrematureAbort
				continue
			}
			if !d.activeSet.IsActive(d.pending) {
				d.st = statePDUPrematureAbort
				continue
			}
			d.aCntR += need
			d.st = stateMessageIEPeek

		case stateMessageIEPeek:
			key := d.pending.ResolvedIEType()
			instance, err := d.pool.GetForHeader(d.pending, d.nextIndex[key])
			if err != nil {
				d.st = statePDUPrematureAbort
				continue
			}
			if muDep, ok := instance.(mmie.MuDepending); ok {
				muDep.SetMu(d.mu)
			}

			if length, ok := explicitLength(d.pending); ok {
				d.pendingInstance = instance
				d.pendingLength = length
				d.st = stateMessageIEUnpack
				continue
			}

			peeker, isPeeking := instance.(mmie.PackingPeeking)
			if !isPeeking {
				packer, isPacking := instance.(mmie.Packing)
				if !isPacking {
					d.st = statePDUPrematureAbort
					continue
				}
				d.pendingInstance = instance
				d.pendingLength = packer.PackedSize()
				d.st = stateMessageIEUnpack
				continue
			}

			minToPeek := peeker.PackedSizeMinToPeek()
			wait, exceeds := d.require(aCntW, minToPeek)
			if exceeds {
				d.st = statePDUPrematureAbort
				continue
			}
			if wait {
				return &d.result
			}
			peeked, err := peeker.PackedSizeByPeeking(d.a[d.aCntR:])
			if err != nil {
				d.st = statePDUPrematureAbort
				continue
			}
			d.pendingInstance = instance
			d.pendingLength = peeked
			d.st = stateMessageIEUnpack

		case stateMessageIEUnpack:
			wait, exceeds := d.require(aCntW, d.pendingLength)
			if exceeds {
				d.st = statePDUPrematureAbort
				continue
			}
			if wait {
				return &d.result
			}
			if err := unpackInto(d.pendingInstance, d.a[d.aCntR:d.aCntR+d.pendingLength]); err != nil {
				d.st = statePDUPrematureAbort
				continue
			}
			d.result.IEs = append(d.result.IEs, DecodedIE{MuxHeader: d.pending, MMIE: d.pendingInstance})
			d.nextIndex[d.pending.ResolvedIEType()]++
			d.aCntR += d.pendingLength
			d.pendingInstance = nil
			d.pendingLength = 0
			d.st = statePDUCheckIfDone

		case statePDUDone:
			d.result.ReachedValidFinalState = true
			return &d.result

		case statePDUPrematureAbort:
			d.aCntR = aCntW
			return &d.result
		}
	}
}
