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

// Factory builds a fresh, zero-valued instance of one MMIE type.
type Factory func() MMIE

// Pool preallocates a fixed number of instances per IE type so that decoding
// a MAC PDU never allocates one on the hot path. Types not registered with
// NewPool fall back to Opaque, keyed by whatever IEType the mux header
// resolved to.
type Pool struct {
	elements     map[IEType][]MMIE
	elementsLen0 map[IETypeLen0][]MMIE
	elementsLen1 map[IETypeLen1][]MMIE
}

// defaultFactories lists the MMIE types this engine gives full field-level
// semantics to, in the registration order of Table 6.3.4-2. The remaining
// defined IE types (escape, IE type extension, additional MAC messages) are
// still framed and forwarded, just via Opaque rather than a dedicated
// struct.
var defaultFactories = map[IEType]Factory{
	IETypeHigherLayerSignallingFlow1:     func() MMIE { return &FlowData{Type: IETypeHigherLayerSignallingFlow1} },
	IETypeHigherLayerSignallingFlow2:     func() MMIE { return &FlowData{Type: IETypeHigherLayerSignallingFlow2} },
	IETypeUserPlaneDataFlow1:             func() MMIE { return &FlowData{Type: IETypeUserPlaneDataFlow1} },
	IETypeUserPlaneDataFlow2:             func() MMIE { return &FlowData{Type: IETypeUserPlaneDataFlow2} },
	IETypeUserPlaneDataFlow3:             func() MMIE { return &FlowData{Type: IETypeUserPlaneDataFlow3} },
	IETypeUserPlaneDataFlow4:             func() MMIE { return &FlowData{Type: IETypeUserPlaneDataFlow4} },
	IETypeNetworkBeaconMessage:           func() MMIE { return &NetworkBeaconMessage{} },
	IETypeClusterBeaconMessage:           func() MMIE { return &ClusterBeaconMessage{} },
	IETypeAssociationRequestMessage:      func() MMIE { return &AssociationRequestMessage{} },
	IETypeAssociationResponseMessage:     func() MMIE { return &AssociationResponseMessage{} },
	IETypeAssociationReleaseMessage:      func() MMIE { return &AssociationReleaseMessage{} },
	IETypeReconfigurationRequestMessage:  func() MMIE { return &ReconfigurationRequestMessage{} },
	IETypeReconfigurationResponseMessage: func() MMIE { return &ReconfigurationResponseMessage{} },
	IETypeSecurityInfoIE:                 func() MMIE { return &MacSecurityInfoIE{} },
	IETypeRouteInfoIE:                    func() MMIE { return &RouteInfoIE{} },
	IETypeResourceAllocationIE:           func() MMIE { return &ResourceAllocationIE{} },
	IETypeRandomAccessResourceIE:         func() MMIE { return &RandomAccessResourceIE{} },
	IETypeRDCapabilityIE:                 func() MMIE { return &RDCapabilityIE{} },
	IETypeNeighbouringIE:                 func() MMIE { return &NeighbouringIE{} },
	IETypeBroadcastIndicationIE:          func() MMIE { return &BroadcastIndicationIE{} },
	IETypeGroupAssignmentIE:              func() MMIE { return &GroupAssignmentIE{} },
	IETypeLoadInfoIE:                     func() MMIE { return &LoadInfoIE{} },
	IETypeMeasurementReportIE:            func() MMIE { return &MeasurementReportIE{} },
	IETypePowerTargetIE:                  func() MMIE { return &PowerTargetIE{} },
	IETypeTimeAnnounceIE:                 func() MMIE { return &TimeAnnounceIE{} },
	IETypeForwardToIE:                    func() MMIE { return &ForwardToIE{} },
}

// defaultFactoriesLen0/Len1 cover the short-IE code spaces of Tables
// 6.3.4-3 and 6.3.4-4 (MacExt 11).
var defaultFactoriesLen0 = map[IETypeLen0]Factory{
	IETypeLen0ConfigurationRequest: func() MMIE { return &ConfigurationRequestIE{} },
}

var defaultFactoriesLen1 = map[IETypeLen1]Factory{
	IETypeLen1RadioDeviceStatusIE: func() MMIE { return &RadioDeviceStatusIE{} },
}

// NewPool builds a pool with nPerType preallocated instances of every
// registered MMIE type.
func NewPool(nPerType int) *Pool {
	if nPerType < 1 {
		nPerType = 1
	}
	p := &Pool{
		elements:     make(map[IEType][]MMIE, len(defaultFactories)),
		elementsLen0: make(map[IETypeLen0][]MMIE, len(defaultFactoriesLen0)),
		elementsLen1: make(map[IETypeLen1][]MMIE, len(defaultFactoriesLen1)),
	}
	for iet, factory := range defaultFactories {
		p.elements[iet] = makeElements(factory, nPerType)
	}
	for iet, factory := range defaultFactoriesLen0 {
		p.elementsLen0[iet] = makeElements(factory, nPerType)
	}
	for iet, factory := range defaultFactoriesLen1 {
		p.elementsLen1[iet] = makeElements(factory, nPerType)
	}
	return p
}

func makeElements(factory Factory, n int) []MMIE {
	elems := make([]MMIE, n)
	for i := range elems {
		elems[i] = factory()
	}
	return elems
}

// Get retrieves the i-th preallocated instance of the MMIE registered for
// iet, or a freshly allocated Opaque if iet has no dedicated type.
func (p *Pool) Get(iet IEType, i int) (MMIE, error) {
	elems, ok := p.elements[iet]
	if !ok {
		return &Opaque{Type: iet}, nil
	}
	if i < 0 || i >= len(elems) {
		return nil, fmt.Errorf("mmie: pool index %d out of range for IE type %d", i, iet)
	}
	return elems[i], nil
}

// GetForHeader resolves the pool instance for a fully-unpacked mux header,
// covering the MacExt 11 short-IE code spaces that Get's 00/01/10 IEType
// key cannot address.
func (p *Pool) GetForHeader(mh MuxHeader, i int) (MMIE, error) {
	if mh.MacExt != MacExtLengthField1 {
		return p.Get(mh.IEType, i)
	}

	var elems []MMIE
	var ok bool
	if mh.Length == 0 {
		elems, ok = p.elementsLen0[mh.IETypeLen0]
	} else {
		elems, ok = p.elementsLen1[mh.IETypeLen1]
	}
	if !ok {
		return nil, fmt.Errorf("mmie: no pool registration for short IE type")
	}
	if i < 0 || i >= len(elems) {
		return nil, fmt.Errorf("mmie: pool index %d out of range for short IE type", i)
	}
	return elems[i], nil
}

// SetNofElements resizes the preallocation for iet to n instances: PDUs
// carrying more occurrences of one type than the default need the pool
// grown ahead of time, never on the decode path.
func (p *Pool) SetNofElements(iet IEType, n int) error {
	factory, ok := defaultFactories[iet]
	if !ok {
		return fmt.Errorf("mmie: no factory registered for IE type %d", iet)
	}
	if n < 1 {
		return fmt.Errorf("mmie: pool element count must be at least 1")
	}
	p.elements[iet] = makeElements(factory, n)
	return nil
}

// FillWithPaddingIEs writes exactly nBytes of padding IEs into dst,
// choosing the per-chunk encoding by the remaining byte count: the 1-byte
// and 2-byte short forms for the tail, the 8-bit-length form with a zeroed
// body otherwise.
func (p *Pool) FillWithPaddingIEs(dst []byte, nBytes uint32) error {
	if uint32(len(dst)) < nBytes {
		return fmt.Errorf("mmie: padding fill destination too small")
	}

	var pad PaddingIE
	offset := uint32(0)
	for offset < nBytes {
		chunk := nBytes - offset
		if chunk > NPaddingBytesMax {
			chunk = NPaddingBytesMax
		}
		if err := pad.SetNofPaddingBytes(chunk); err != nil {
			return err
		}
		if err := pad.PackMMHSDU(dst[offset : offset+chunk]); err != nil {
			return err
		}
		offset += chunk
	}
	return nil
}

// NofElements returns the total number of preallocated instances across
// every registered type.
func (p *Pool) NofElements() int {
	n := 0
	for _, elems := range p.elements {
		n += len(elems)
	}
	for _, elems := range p.elementsLen0 {
		n += len(elems)
	}
	for _, elems := range p.elementsLen1 {
		n += len(elems)
	}
	return n
}
