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

// ConfigurationRequestIE is the Configuration Request IE: a bodyless short
// IE (MacExt 11, length bit 0) a PT sends to ask the FT to retransmit its
// configuration. All of its information is the mux header itself.
type ConfigurationRequestIE struct{}

func (c *ConfigurationRequestIE) IEType() IEType { return IETypeNotDefined }

func (c *ConfigurationRequestIE) IsValid() bool { return true }

func (c *ConfigurationRequestIE) PackedSize() uint32 { return 0 }

func (c *ConfigurationRequestIE) muxHeader() MuxHeader {
	return MuxHeader{MacExt: MacExtLengthField1, Length: 0, IETypeLen0: IETypeLen0ConfigurationRequest}
}

func (c *ConfigurationRequestIE) PackedSizeOfMMHSDU() uint32 {
	return c.muxHeader().PackedSize()
}

func (c *ConfigurationRequestIE) PackMMHSDU(dst []byte) error {
	return c.muxHeader().Pack(dst)
}

func (c *ConfigurationRequestIE) Pack(dst []byte) error { return nil }

func (c *ConfigurationRequestIE) Unpack(src []byte) error { return nil }

// RadioDeviceStatusFlag is the STATUS FLAG field of Table 6.4.3.13-1.
type RadioDeviceStatusFlag uint32

const (
	RadioDeviceStatusFlagNotDefined      RadioDeviceStatusFlag = 0xFFFFFFFF
	RadioDeviceStatusFlagMemoryFull      RadioDeviceStatusFlag = 1
	RadioDeviceStatusFlagNormalOperation RadioDeviceStatusFlag = 2
)

func radioDeviceStatusFlagFromCoded(v uint32) RadioDeviceStatusFlag {
	if v == uint32(RadioDeviceStatusFlagMemoryFull) || v == uint32(RadioDeviceStatusFlagNormalOperation) {
		return RadioDeviceStatusFlag(v)
	}
	return RadioDeviceStatusFlagNotDefined
}

// RadioDeviceStatusDuration is the DURATION field of Table 6.4.3.13-1.
type RadioDeviceStatusDuration uint32

const (
	RadioDeviceStatusDurationNotDefined RadioDeviceStatusDuration = 0xFFFFFFFF
	RadioDeviceStatusDuration50ms       RadioDeviceStatusDuration = 0
	RadioDeviceStatusDuration100ms      RadioDeviceStatusDuration = 1
	RadioDeviceStatusDuration200ms      RadioDeviceStatusDuration = 2
	RadioDeviceStatusDuration400ms      RadioDeviceStatusDuration = 3
	RadioDeviceStatusDuration600ms      RadioDeviceStatusDuration = 4
	RadioDeviceStatusDuration800ms      RadioDeviceStatusDuration = 5
	RadioDeviceStatusDuration1000ms     RadioDeviceStatusDuration = 6
	RadioDeviceStatusDuration1500ms     RadioDeviceStatusDuration = 7
	RadioDeviceStatusDuration2000ms     RadioDeviceStatusDuration = 8
	RadioDeviceStatusDuration3000ms     RadioDeviceStatusDuration = 9
	RadioDeviceStatusDuration4000ms     RadioDeviceStatusDuration = 10
	RadioDeviceStatusDurationUnknown    RadioDeviceStatusDuration = 11
)

func radioDeviceStatusDurationFromCoded(v uint32) RadioDeviceStatusDuration {
	if v <= uint32(RadioDeviceStatusDurationUnknown) {
		return RadioDeviceStatusDuration(v)
	}
	return RadioDeviceStatusDurationNotDefined
}

// RadioDeviceStatusIE is the Radio Device Status IE of clause 6.4.3.13: a
// one-byte short IE (MacExt 11, length bit 1) reporting an operational
// anomaly and its expected duration.
type RadioDeviceStatusIE struct {
	StatusFlag RadioDeviceStatusFlag
	Duration   RadioDeviceStatusDuration
}

func (m *RadioDeviceStatusIE) IEType() IEType { return IETypeNotDefined }

func (m *RadioDeviceStatusIE) IsValid() bool {
	return m.StatusFlag != RadioDeviceStatusFlagNotDefined &&
		m.Duration != RadioDeviceStatusDurationNotDefined
}

func (m *RadioDeviceStatusIE) PackedSize() uint32 { return 1 }

func (m *RadioDeviceStatusIE) muxHeader() MuxHeader {
	return MuxHeader{MacExt: MacExtLengthField1, Length: 1, IETypeLen1: IETypeLen1RadioDeviceStatusIE}
}

func (m *RadioDeviceStatusIE) PackedSizeOfMMHSDU() uint32 {
	return m.muxHeader().PackedSize() + m.PackedSize()
}

func (m *RadioDeviceStatusIE) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	return packMuxHeaderAndCopy(dst, m.muxHeader(), payload)
}

func (m *RadioDeviceStatusIE) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: radio device status ie invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: radio device status ie destination too small")
	}

	dst[0] = byte(m.StatusFlag) << 4
	dst[0] |= byte(m.Duration)
	return nil
}

func (m *RadioDeviceStatusIE) Unpack(src []byte) error {
	if uint32(len(src)) < m.PackedSize() {
		return fmt.Errorf("mmie: radio device status ie source too small")
	}

	*m = RadioDeviceStatusIE{}

	m.StatusFlag = radioDeviceStatusFlagFromCoded(uint32(src[0]>>4) & 0b11)
	m.Duration = radioDeviceStatusDurationFromCoded(uint32(src[0]) & 0xf)

	if !m.IsValid() {
		return fmt.Errorf("mmie: radio device status ie decoded invalid field values")
	}
	return nil
}
