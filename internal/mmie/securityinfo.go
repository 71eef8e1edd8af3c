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

// SecurityIVType is the Security IV Type field for security mode 1
// (Table 6.4.3.1-2).
type SecurityIVType uint32

const (
	SecurityIVTypeNotDefined            SecurityIVType = 0xFFFFFFFF
	SecurityIVTypeOneTimeHPC            SecurityIVType = 0
	SecurityIVTypeResynchronizingHPC    SecurityIVType = 1
	SecurityIVTypeOneTimeHPCWithRequest SecurityIVType = 2
)

func securityIVTypeFromCoded(v uint32) SecurityIVType {
	if v <= uint32(SecurityIVTypeOneTimeHPCWithRequest) {
		return SecurityIVType(v)
	}
	return SecurityIVTypeNotDefined
}

// securityInfoVersionMode1 is the only defined Version value (Table 6.4.3.1-1).
const securityInfoVersionMode1 = 0

// MacSecurityInfoIE is the MAC Security Info IE of clause 6.4.3.1: key
// index, IV type and the hyper packet counter that seeds the security IV.
// Carrying it does not imply this engine encrypts anything; ciphering
// itself is out of scope and the IE is forwarded to whoever owns the keys.
type MacSecurityInfoIE struct {
	KeyIndex       uint32
	SecurityIVType SecurityIVType
	HPC            uint32
}

func (m *MacSecurityInfoIE) IEType() IEType { return IETypeSecurityInfoIE }

func (m *MacSecurityInfoIE) IsValid() bool {
	return m.KeyIndex <= 0b11 && m.SecurityIVType != SecurityIVTypeNotDefined
}

func (m *MacSecurityInfoIE) PackedSize() uint32 { return 5 }

func (m *MacSecurityInfoIE) PackedSizeOfMMHSDU() uint32 {
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeSecurityInfoIE}
	return mh.PackedSize() + m.PackedSize()
}

func (m *MacSecurityInfoIE) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeSecurityInfoIE}
	return packMuxHeaderAndCopy(dst, mh, payload)
}

func (m *MacSecurityInfoIE) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: mac security info ie invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: mac security info ie destination too small")
	}

	dst[0] = securityInfoVersionMode1 << 6
	dst[0] |= byte(m.KeyIndex) << 4
	dst[0] |= byte(m.SecurityIVType)

	dst[1] = byte(m.HPC >> 24)
	dst[2] = byte(m.HPC >> 16)
	dst[3] = byte(m.HPC >> 8)
	dst[4] = byte(m.HPC)
	return nil
}

func (m *MacSecurityInfoIE) Unpack(src []byte) error {
	if uint32(len(src)) < m.PackedSize() {
		return fmt.Errorf("mmie: mac security info ie source too small")
	}

	*m = MacSecurityInfoIE{}

	if src[0]>>6 != securityInfoVersionMode1 {
		return fmt.Errorf("mmie: mac security info ie unsupported security mode")
	}

	m.KeyIndex = uint32(src[0]>>4) & 0b11
	m.SecurityIVType = securityIVTypeFromCoded(uint32(src[0]) & 0xf)
	m.HPC = uint32(src[1])<<24 | uint32(src[2])<<16 | uint32(src[3])<<8 | uint32(src[4])

	if !m.IsValid() {
		return fmt.Errorf("mmie: mac security info ie decoded invalid field values")
	}
	return nil
}
