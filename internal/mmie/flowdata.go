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

// FlowData is the flowing MMIE shared by higher-layer signalling and the
// four user-plane data flows (Table 6.3.4-2): its length is not
// self-described but carried in the mux header's length field, and its IE
// type selects which logical flow it belongs to.
type FlowData struct {
	Type    IEType
	Payload []byte
}

// higherLayerFlows and userPlaneFlows map a flow_id (1 or 2 for signalling,
// 1-4 for user-plane data) onto the IE type that represents it.
var higherLayerFlows = [...]IEType{IETypeHigherLayerSignallingFlow1, IETypeHigherLayerSignallingFlow2}
var userPlaneFlows = [...]IEType{
	IETypeUserPlaneDataFlow1, IETypeUserPlaneDataFlow2, IETypeUserPlaneDataFlow3, IETypeUserPlaneDataFlow4,
}

func NewHigherLayerSignalling(flowID uint32) (*FlowData, error) {
	if flowID < 1 || flowID > uint32(len(higherLayerFlows)) {
		return nil, fmt.Errorf("mmie: higher-layer signalling flow id out of range")
	}
	return &FlowData{Type: higherLayerFlows[flowID-1]}, nil
}

func NewUserPlaneData(flowID uint32) (*FlowData, error) {
	if flowID < 1 || flowID > uint32(len(userPlaneFlows)) {
		return nil, fmt.Errorf("mmie: user-plane data flow id out of range")
	}
	return &FlowData{Type: userPlaneFlows[flowID-1]}, nil
}

func (f *FlowData) IEType() IEType { return f.Type }

func (f *FlowData) FlowID() uint32 {
	for i, t := range higherLayerFlows {
		if t == f.Type {
			return uint32(i + 1)
		}
	}
	for i, t := range userPlaneFlows {
		if t == f.Type {
			return uint32(i + 1)
		}
	}
	return 0
}

func (f *FlowData) SetFlowID(id uint32) {
	if f.Type == IETypeHigherLayerSignallingFlow1 || f.Type == IETypeHigherLayerSignallingFlow2 {
		if id >= 1 && id <= uint32(len(higherLayerFlows)) {
			f.Type = higherLayerFlows[id-1]
		}
		return
	}
	if id >= 1 && id <= uint32(len(userPlaneFlows)) {
		f.Type = userPlaneFlows[id-1]
	}
}

func (f *FlowData) DataSize() uint32     { return uint32(len(f.Payload)) }
func (f *FlowData) SetDataSize(n uint32) { f.Payload = make([]byte, n) }

func (f *FlowData) muxHeader() MuxHeader {
	mh := MuxHeader{MacExt: MacExtLengthField16, IEType: f.Type, Length: uint32(len(f.Payload))}
	if len(f.Payload) <= 255 {
		mh.MacExt = MacExtLengthField8
	}
	return mh
}

func (f *FlowData) PackedSizeOfMMHSDU() uint32 {
	mh := f.muxHeader()
	return mh.PackedSize() + uint32(len(f.Payload))
}

func (f *FlowData) PackMMHSDU(dst []byte) error {
	return packMuxHeaderAndCopy(dst, f.muxHeader(), f.Payload)
}

func (f *FlowData) Pack(dst []byte) error {
	if uint32(len(dst)) < f.DataSize() {
		return fmt.Errorf("mmie: flow data destination too small")
	}
	copy(dst, f.Payload)
	return nil
}

func (f *FlowData) Unpack(src []byte) error {
	if uint32(len(src)) < f.DataSize() {
		return fmt.Errorf("mmie: flow data source too small")
	}
	f.Payload = append(f.Payload[:0], src[:f.DataSize()]...)
	return nil
}
