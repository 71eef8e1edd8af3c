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

// RadioResourceChange is the 2-bit Radio Resources field shared by the
// reconfiguration request and response messages. Coded value 3 is reserved.
type RadioResourceChange uint32

const (
	RadioResourceChangeNotDefined RadioResourceChange = 0xFFFFFFFF
	RadioResourceChangeNone       RadioResourceChange = 0
	RadioResourceChangeRelease    RadioResourceChange = 1
	RadioResourceChangeRenew      RadioResourceChange = 2
)

func radioResourceChangeFromCoded(v uint32) RadioResourceChange {
	if v <= uint32(RadioResourceChangeRenew) {
		return RadioResourceChange(v)
	}
	return RadioResourceChangeNotDefined
}

// ReconfigFlow is one setup/release flow entry of a reconfiguration
// message: the flow ID plus whether this entry releases it.
type ReconfigFlow struct {
	ID         AssocFlowID
	IsReleased bool
}

func reconfigFlowsValid(flows []ReconfigFlow) bool {
	for _, f := range flows {
		if f.ID == AssocFlowIDNotDefined {
			return false
		}
	}
	return true
}

func packReconfigFlows(dst []byte, flows []ReconfigFlow) {
	for i, f := range flows {
		dst[i] = boolToBit(f.IsReleased) << 7
		dst[i] |= byte(f.ID)
	}
}

func unpackReconfigFlows(src []byte, n uint32) []ReconfigFlow {
	flows := make([]ReconfigFlow, 0, n)
	for i := uint32(0); i < n; i++ {
		flows = append(flows, ReconfigFlow{
			ID:         assocFlowIDFromCoded(uint32(src[i]) & 0x3F),
			IsReleased: src[i]>>7 == 1,
		})
	}
	return flows
}

// ReconfigurationRequestMessage is the reconfiguration request of clause
// 6.4.2.5: a renegotiation of HARQ configuration and flow setup inside an
// existing association.
type ReconfigurationRequestMessage struct {
	HARQConfigTX          *HARQConfig
	HARQConfigRX          *HARQConfig
	RDCapabilityIEFollows bool
	Flows                 []ReconfigFlow
	RadioResourceChange   RadioResourceChange
}

func (m *ReconfigurationRequestMessage) IEType() IEType { return IETypeReconfigurationRequestMessage }

func (m *ReconfigurationRequestMessage) IsValid() bool {
	if m.HARQConfigTX != nil && !m.HARQConfigTX.isValid() {
		return false
	}
	if m.HARQConfigRX != nil && !m.HARQConfigRX.isValid() {
		return false
	}
	if len(m.Flows) > 6 || !reconfigFlowsValid(m.Flows) {
		return false
	}
	return m.RadioResourceChange != RadioResourceChangeNotDefined
}

func (m *ReconfigurationRequestMessage) PackedSize() uint32 {
	size := uint32(1)
	if m.HARQConfigTX != nil {
		size++
	}
	if m.HARQConfigRX != nil {
		size++
	}
	return size + uint32(len(m.Flows))
}

func (m *ReconfigurationRequestMessage) PackedSizeMinToPeek() uint32 { return 1 }

func (m *ReconfigurationRequestMessage) PackedSizeByPeeking(src []byte) (uint32, error) {
	if len(src) < 1 {
		return 0, fmt.Errorf("mmie: reconfiguration request message peek needs 1 byte")
	}
	size := uint32(1)
	size += uint32(src[0] >> 7)
	size += uint32(src[0]>>6) & 1

	nFlows := uint32(src[0]>>2) & 0b111
	if nFlows == 0b111 {
		return 0, ErrNonreservedFieldSetToReserved
	}
	return size + nFlows, nil
}

func (m *ReconfigurationRequestMessage) PackedSizeOfMMHSDU() uint32 {
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeReconfigurationRequestMessage}
	return mh.PackedSize() + m.PackedSize()
}

func (m *ReconfigurationRequestMessage) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeReconfigurationRequestMessage}
	return packMuxHeaderAndCopy(dst, mh, payload)
}

func (m *ReconfigurationRequestMessage) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: reconfiguration request message invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: reconfiguration request message destination too small")
	}

	dst[0] = boolToBit(m.HARQConfigTX != nil) << 7
	dst[0] |= boolToBit(m.HARQConfigRX != nil) << 6
	dst[0] |= boolToBit(m.RDCapabilityIEFollows) << 5
	dst[0] |= byte(len(m.Flows)) << 2
	dst[0] |= byte(m.RadioResourceChange)

	offset := uint32(1)
	if m.HARQConfigTX != nil {
		dst[offset] = packHARQConfig(*m.HARQConfigTX)
		offset++
	}
	if m.HARQConfigRX != nil {
		dst[offset] = packHARQConfig(*m.HARQConfigRX)
		offset++
	}
	packReconfigFlows(dst[offset:], m.Flows)
	return nil
}

func (m *ReconfigurationRequestMessage) Unpack(src []byte) error {
	size, err := m.PackedSizeByPeeking(src)
	if err != nil {
		return err
	}
	if uint32(len(src)) < size {
		return fmt.Errorf("mmie: reconfiguration request message source too small")
	}

	*m = ReconfigurationRequestMessage{}

	hasTX := src[0]>>7 == 1
	hasRX := (src[0]>>6)&1 == 1
	m.RDCapabilityIEFollows = (src[0]>>5)&1 == 1
	nFlows := uint32(src[0]>>2) & 0b111
	m.RadioResourceChange = radioResourceChangeFromCoded(uint32(src[0]) & 0b11)

	offset := uint32(1)
	if hasTX {
		c := unpackHARQConfig(src[offset])
		m.HARQConfigTX = &c
		offset++
	}
	if hasRX {
		c := unpackHARQConfig(src[offset])
		m.HARQConfigRX = &c
		offset++
	}
	if nFlows > 0 {
		m.Flows = unpackReconfigFlows(src[offset:], nFlows)
	}

	if !m.IsValid() {
		return fmt.Errorf("mmie: reconfiguration request message decoded invalid field values")
	}
	return nil
}

// ReconfigurationResponseMessage is the reconfiguration response of clause
// 6.4.2.6: the FT's answer to a reconfiguration request. NofFlowsAccepted
// reuses the association response's 3-bit encoding: flows are listed only
// when it is NofFlowsAcceptedAsIncluded.
type ReconfigurationResponseMessage struct {
	HARQConfigTX          *HARQConfig
	HARQConfigRX          *HARQConfig
	RDCapabilityIEFollows bool
	NofFlowsAccepted      NofFlowsAccepted
	RadioResourceChange   RadioResourceChange
	Flows                 []ReconfigFlow
}

func (m *ReconfigurationResponseMessage) IEType() IEType {
	return IETypeReconfigurationResponseMessage
}

func (m *ReconfigurationResponseMessage) IsValid() bool {
	if m.HARQConfigTX != nil && !m.HARQConfigTX.isValid() {
		return false
	}
	if m.HARQConfigRX != nil && !m.HARQConfigRX.isValid() {
		return false
	}
	switch m.NofFlowsAccepted {
	case NofFlowsAcceptedNone, NofFlowsAcceptedAsRequested:
	case NofFlowsAcceptedAsIncluded:
		if len(m.Flows) == 0 || len(m.Flows) > 6 {
			return false
		}
	default:
		return false
	}
	if !reconfigFlowsValid(m.Flows) {
		return false
	}
	return m.RadioResourceChange != RadioResourceChangeNotDefined
}

func (m *ReconfigurationResponseMessage) PackedSize() uint32 {
	size := uint32(1)
	if m.HARQConfigTX != nil {
		size++
	}
	if m.HARQConfigRX != nil {
		size++
	}
	if m.NofFlowsAccepted == NofFlowsAcceptedAsIncluded {
		size += uint32(len(m.Flows))
	}
	return size
}

func (m *ReconfigurationResponseMessage) PackedSizeMinToPeek() uint32 { return 1 }

func (m *ReconfigurationResponseMessage) PackedSizeByPeeking(src []byte) (uint32, error) {
	if len(src) < 1 {
		return 0, fmt.Errorf("mmie: reconfiguration response message peek needs 1 byte")
	}
	size := uint32(1)
	size += uint32(src[0] >> 7)
	size += uint32(src[0]>>6) & 1

	// the 3-bit field counts listed flows except for the none/as-requested
	// codes, which carry no flow octets
	if nFlows := uint32(src[0]>>2) & 0b111; nFlows < 0b111 {
		size += nFlows
	}
	return size, nil
}

func (m *ReconfigurationResponseMessage) PackedSizeOfMMHSDU() uint32 {
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeReconfigurationResponseMessage}
	return mh.PackedSize() + m.PackedSize()
}

func (m *ReconfigurationResponseMessage) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeReconfigurationResponseMessage}
	return packMuxHeaderAndCopy(dst, mh, payload)
}

func (m *ReconfigurationResponseMessage) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: reconfiguration response message invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: reconfiguration response message destination too small")
	}

	dst[0] = boolToBit(m.HARQConfigTX != nil) << 7
	dst[0] |= boolToBit(m.HARQConfigRX != nil) << 6
	dst[0] |= boolToBit(m.RDCapabilityIEFollows) << 5
	if m.NofFlowsAccepted == NofFlowsAcceptedAsIncluded {
		dst[0] |= byte(len(m.Flows)) << 2
	} else {
		dst[0] |= byte(m.NofFlowsAccepted) << 2
	}
	dst[0] |= byte(m.RadioResourceChange)

	offset := uint32(1)
	if m.HARQConfigTX != nil {
		dst[offset] = packHARQConfig(*m.HARQConfigTX)
		offset++
	}
	if m.HARQConfigRX != nil {
		dst[offset] = packHARQConfig(*m.HARQConfigRX)
		offset++
	}
	if m.NofFlowsAccepted == NofFlowsAcceptedAsIncluded {
		packReconfigFlows(dst[offset:], m.Flows)
	}
	return nil
}

func (m *ReconfigurationResponseMessage) Unpack(src []byte) error {
	size, err := m.PackedSizeByPeeking(src)
	if err != nil {
		return err
	}
	if uint32(len(src)) < size {
		return fmt.Errorf("mmie: reconfiguration response message source too small")
	}

	*m = ReconfigurationResponseMessage{}

	m.RDCapabilityIEFollows = (src[0]>>5)&1 == 1
	m.RadioResourceChange = radioResourceChangeFromCoded(uint32(src[0]) & 0b11)

	offset := uint32(1)
	if src[0]>>7 == 1 {
		c := unpackHARQConfig(src[offset])
		m.HARQConfigTX = &c
		offset++
	}
	if (src[0]>>6)&1 == 1 {
		c := unpackHARQConfig(src[offset])
		m.HARQConfigRX = &c
		offset++
	}

	switch nFlows := uint32(src[0]>>2) & 0b111; nFlows {
	case uint32(NofFlowsAcceptedNone), uint32(NofFlowsAcceptedAsRequested):
		m.NofFlowsAccepted = NofFlowsAccepted(nFlows)
	default:
		m.NofFlowsAccepted = NofFlowsAcceptedAsIncluded
		m.Flows = unpackReconfigFlows(src[offset:], nFlows)
	}

	if !m.IsValid() {
		return fmt.Errorf("mmie: reconfiguration response message decoded invalid field values")
	}
	return nil
}
