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

// RDCapRelease is the RELEASE field of Table 6.4.3.5-1; coded value 0 is
// reserved.
type RDCapRelease uint32

const (
	RDCapReleaseNotDefined RDCapRelease = 0xFFFFFFFF
	RDCapRelease1          RDCapRelease = 1
	RDCapRelease2          RDCapRelease = 2
	RDCapRelease3          RDCapRelease = 3
	RDCapRelease4          RDCapRelease = 4
)

func rdCapReleaseFromCoded(v uint32) RDCapRelease {
	if v >= uint32(RDCapRelease1) && v <= uint32(RDCapRelease4) {
		return RDCapRelease(v)
	}
	return RDCapReleaseNotDefined
}

// RDCapOperatingMode is the OPERATING MODES field.
type RDCapOperatingMode uint32

const (
	RDCapOperatingModeNotDefined RDCapOperatingMode = 0xFFFFFFFF
	RDCapOperatingModePT         RDCapOperatingMode = 0
	RDCapOperatingModeFT         RDCapOperatingMode = 1
	RDCapOperatingModeFTAndPT    RDCapOperatingMode = 2
)

func rdCapOperatingModeFromCoded(v uint32) RDCapOperatingMode {
	if v <= uint32(RDCapOperatingModeFTAndPT) {
		return RDCapOperatingMode(v)
	}
	return RDCapOperatingModeNotDefined
}

// RDCapMacSecurity is the MAC SECURITY field.
type RDCapMacSecurity uint32

const (
	RDCapMacSecurityNotDefined   RDCapMacSecurity = 0xFFFFFFFF
	RDCapMacSecurityNotSupported RDCapMacSecurity = 0
	RDCapMacSecurityMode1        RDCapMacSecurity = 1
)

func rdCapMacSecurityFromCoded(v uint32) RDCapMacSecurity {
	if v <= uint32(RDCapMacSecurityMode1) {
		return RDCapMacSecurity(v)
	}
	return RDCapMacSecurityNotDefined
}

// RDCapDLCServiceType is the DLC SERVICE TYPE field.
type RDCapDLCServiceType uint32

const (
	RDCapDLCServiceTypeNotDefined RDCapDLCServiceType = 0xFFFFFFFF
	RDCapDLCServiceType0          RDCapDLCServiceType = 0
	RDCapDLCServiceType1          RDCapDLCServiceType = 1
	RDCapDLCServiceType2          RDCapDLCServiceType = 2
	RDCapDLCServiceTypes123       RDCapDLCServiceType = 3
	RDCapDLCServiceTypes0123      RDCapDLCServiceType = 4
)

func rdCapDLCServiceTypeFromCoded(v uint32) RDCapDLCServiceType {
	if v <= uint32(RDCapDLCServiceTypes0123) {
		return RDCapDLCServiceType(v)
	}
	return RDCapDLCServiceTypeNotDefined
}

// RDCapPowerClass is the RD POWER CLASS field.
type RDCapPowerClass uint32

const (
	RDCapPowerClassNotDefined RDCapPowerClass = 0xFFFFFFFF
	RDCapPowerClass1          RDCapPowerClass = 0
	RDCapPowerClass2          RDCapPowerClass = 1
	RDCapPowerClass3          RDCapPowerClass = 2
)

func rdCapPowerClassFromCoded(v uint32) RDCapPowerClass {
	if v <= uint32(RDCapPowerClass3) {
		return RDCapPowerClass(v)
	}
	return RDCapPowerClassNotDefined
}

// RDCapNofSpatialStreams is the MAX NSS FOR RX field, coding {1,2,4,8}.
type RDCapNofSpatialStreams uint32

const (
	RDCapNofSpatialStreamsNotDefined RDCapNofSpatialStreams = 0xFFFFFFFF
	RDCapNofSpatialStreams1          RDCapNofSpatialStreams = 0
	RDCapNofSpatialStreams2          RDCapNofSpatialStreams = 1
	RDCapNofSpatialStreams4          RDCapNofSpatialStreams = 2
	RDCapNofSpatialStreams8          RDCapNofSpatialStreams = 3
)

func rdCapNofSpatialStreamsFromCoded(v uint32) RDCapNofSpatialStreams {
	if v <= uint32(RDCapNofSpatialStreams8) {
		return RDCapNofSpatialStreams(v)
	}
	return RDCapNofSpatialStreamsNotDefined
}

// RDCapNofTxAntennas is the RX FOR TX DIVERSITY field, coding {1,2,4,8}.
type RDCapNofTxAntennas uint32

const (
	RDCapNofTxAntennasNotDefined RDCapNofTxAntennas = 0xFFFFFFFF
	RDCapNofTxAntennas1          RDCapNofTxAntennas = 0
	RDCapNofTxAntennas2          RDCapNofTxAntennas = 1
	RDCapNofTxAntennas4          RDCapNofTxAntennas = 2
	RDCapNofTxAntennas8          RDCapNofTxAntennas = 3
)

func rdCapNofTxAntennasFromCoded(v uint32) RDCapNofTxAntennas {
	if v <= uint32(RDCapNofTxAntennas8) {
		return RDCapNofTxAntennas(v)
	}
	return RDCapNofTxAntennasNotDefined
}

// RDCapMaxMCS is the MAX MCS field; coded value 0 means MCS 2.
type RDCapMaxMCS uint32

const (
	RDCapMaxMCSNotDefined RDCapMaxMCS = 0xFFFFFFFF
	RDCapMaxMCS2          RDCapMaxMCS = 0
	RDCapMaxMCS3          RDCapMaxMCS = 1
	RDCapMaxMCS4          RDCapMaxMCS = 2
	RDCapMaxMCS5          RDCapMaxMCS = 3
	RDCapMaxMCS6          RDCapMaxMCS = 4
	RDCapMaxMCS7          RDCapMaxMCS = 5
	RDCapMaxMCS8          RDCapMaxMCS = 6
	RDCapMaxMCS9          RDCapMaxMCS = 7
	RDCapMaxMCS10         RDCapMaxMCS = 8
	RDCapMaxMCS11         RDCapMaxMCS = 9
)

func rdCapMaxMCSFromCoded(v uint32) RDCapMaxMCS {
	if v <= uint32(RDCapMaxMCS11) {
		return RDCapMaxMCS(v)
	}
	return RDCapMaxMCSNotDefined
}

// RDCapSoftBufferSize is the SOFT-BUFFER SIZE field.
type RDCapSoftBufferSize uint32

const (
	RDCapSoftBufferSizeNotDefined RDCapSoftBufferSize = 0xFFFFFFFF
	RDCapSoftBufferSize16000      RDCapSoftBufferSize = 0
	RDCapSoftBufferSize25344      RDCapSoftBufferSize = 1
	RDCapSoftBufferSize32000      RDCapSoftBufferSize = 2
	RDCapSoftBufferSize64000      RDCapSoftBufferSize = 3
	RDCapSoftBufferSize128000     RDCapSoftBufferSize = 4
	RDCapSoftBufferSize256000     RDCapSoftBufferSize = 5
	RDCapSoftBufferSize512000     RDCapSoftBufferSize = 6
	RDCapSoftBufferSize1024000    RDCapSoftBufferSize = 7
	RDCapSoftBufferSize2048000    RDCapSoftBufferSize = 8
)

func rdCapSoftBufferSizeFromCoded(v uint32) RDCapSoftBufferSize {
	if v <= uint32(RDCapSoftBufferSize2048000) {
		return RDCapSoftBufferSize(v)
	}
	return RDCapSoftBufferSizeNotDefined
}

// RDCapNofHarqProcesses is the NUM. OF HARQ PROCESSES field, coding {1,2,4,8}.
type RDCapNofHarqProcesses uint32

const (
	RDCapNofHarqProcessesNotDefined RDCapNofHarqProcesses = 0xFFFFFFFF
	RDCapNofHarqProcesses1          RDCapNofHarqProcesses = 0
	RDCapNofHarqProcesses2          RDCapNofHarqProcesses = 1
	RDCapNofHarqProcesses4          RDCapNofHarqProcesses = 2
	RDCapNofHarqProcesses8          RDCapNofHarqProcesses = 3
)

func rdCapNofHarqProcessesFromCoded(v uint32) RDCapNofHarqProcesses {
	if v <= uint32(RDCapNofHarqProcesses8) {
		return RDCapNofHarqProcesses(v)
	}
	return RDCapNofHarqProcessesNotDefined
}

// RDCapHarqFeedbackDelay is the HARQ FEEDBACK DELAY field in subslots.
type RDCapHarqFeedbackDelay uint32

const (
	RDCapHarqFeedbackDelayNotDefined RDCapHarqFeedbackDelay = 0xFFFFFFFF
	RDCapHarqFeedbackDelay0          RDCapHarqFeedbackDelay = 0
	RDCapHarqFeedbackDelay1          RDCapHarqFeedbackDelay = 1
	RDCapHarqFeedbackDelay2          RDCapHarqFeedbackDelay = 2
	RDCapHarqFeedbackDelay3          RDCapHarqFeedbackDelay = 3
	RDCapHarqFeedbackDelay4          RDCapHarqFeedbackDelay = 4
	RDCapHarqFeedbackDelay5          RDCapHarqFeedbackDelay = 5
	RDCapHarqFeedbackDelay6          RDCapHarqFeedbackDelay = 6
)

func rdCapHarqFeedbackDelayFromCoded(v uint32) RDCapHarqFeedbackDelay {
	if v <= uint32(RDCapHarqFeedbackDelay6) {
		return RDCapHarqFeedbackDelay(v)
	}
	return RDCapHarqFeedbackDelayNotDefined
}

// RDCapSubcarrierWidth is the MU field of an additional PHY capability.
type RDCapSubcarrierWidth uint32

const (
	RDCapSubcarrierWidthNotDefined RDCapSubcarrierWidth = 0xFFFFFFFF
	RDCapSubcarrierWidth27kHz      RDCapSubcarrierWidth = 0
	RDCapSubcarrierWidth54kHz      RDCapSubcarrierWidth = 1
	RDCapSubcarrierWidth108kHz     RDCapSubcarrierWidth = 2
	RDCapSubcarrierWidth216kHz     RDCapSubcarrierWidth = 3
)

func rdCapSubcarrierWidthFromCoded(v uint32) RDCapSubcarrierWidth {
	if v <= uint32(RDCapSubcarrierWidth216kHz) {
		return RDCapSubcarrierWidth(v)
	}
	return RDCapSubcarrierWidthNotDefined
}

// RDCapDFTSize is the BETA field of an additional PHY capability.
type RDCapDFTSize uint32

const (
	RDCapDFTSizeNotDefined RDCapDFTSize = 0xFFFFFFFF
	RDCapDFTSize64         RDCapDFTSize = 0
	RDCapDFTSize128        RDCapDFTSize = 1
	RDCapDFTSize256        RDCapDFTSize = 2
	RDCapDFTSize512        RDCapDFTSize = 3
	RDCapDFTSize768        RDCapDFTSize = 4
	RDCapDFTSize1024       RDCapDFTSize = 5
)

func rdCapDFTSizeFromCoded(v uint32) RDCapDFTSize {
	if v <= uint32(RDCapDFTSize1024) {
		return RDCapDFTSize(v)
	}
	return RDCapDFTSizeNotDefined
}

// rdCapRxGainTable maps the RX GAIN field index to dB.
var rdCapRxGainTable = [9]int32{-10, -8, -6, -4, -2, 0, 2, 4, 6}

// RDCapPhyCapability is the per-numerology PHY capability block packed into
// four octets.
type RDCapPhyCapability struct {
	PowerClass        RDCapPowerClass
	MaxNssForRx       RDCapNofSpatialStreams
	RxForTxDiversity  RDCapNofTxAntennas
	RxGainIndex       uint32
	MaxMCS            RDCapMaxMCS
	SoftBufferSize    RDCapSoftBufferSize
	NofHarqProcesses  RDCapNofHarqProcesses
	HarqFeedbackDelay RDCapHarqFeedbackDelay
}

// SetRxGain selects the smallest RX GAIN index whose table value is at
// least rxGainDB.
func (c *RDCapPhyCapability) SetRxGain(rxGainDB int32) {
	for i, v := range rdCapRxGainTable {
		if v >= rxGainDB {
			c.RxGainIndex = uint32(i)
			return
		}
	}
	c.RxGainIndex = uint32(len(rdCapRxGainTable) - 1)
}

// RxGainDB returns the RX gain in dB, or false when the index is out of
// the table's range.
func (c *RDCapPhyCapability) RxGainDB() (int32, bool) {
	if c.RxGainIndex >= uint32(len(rdCapRxGainTable)) {
		return 0, false
	}
	return rdCapRxGainTable[c.RxGainIndex], true
}

func (c *RDCapPhyCapability) isValid() bool {
	_, rxGainOK := c.RxGainDB()
	return c.PowerClass != RDCapPowerClassNotDefined &&
		c.MaxNssForRx != RDCapNofSpatialStreamsNotDefined &&
		c.RxForTxDiversity != RDCapNofTxAntennasNotDefined &&
		rxGainOK &&
		c.MaxMCS != RDCapMaxMCSNotDefined &&
		c.SoftBufferSize != RDCapSoftBufferSizeNotDefined &&
		c.NofHarqProcesses != RDCapNofHarqProcessesNotDefined &&
		c.HarqFeedbackDelay != RDCapHarqFeedbackDelayNotDefined
}

// RDCapAdditionalPhyCapability extends a PHY capability block with the
// numerology it applies to.
type RDCapAdditionalPhyCapability struct {
	Mu   RDCapSubcarrierWidth
	Beta RDCapDFTSize
	RDCapPhyCapability
}

// RDCapabilityIE is the RD Capability IE of clause 6.4.3.5: the device's
// release, operating modes and PHY capability, plus up to seven additional
// capability blocks for further numerologies.
type RDCapabilityIE struct {
	Release                              RDCapRelease
	OperatingModes                       RDCapOperatingMode
	SupportsMeshSystemOperation          bool
	SupportsScheduledDataTransferService bool
	MacSecurity                          RDCapMacSecurity
	DLCServiceType                       RDCapDLCServiceType
	PhyCapability                        RDCapPhyCapability
	AdditionalPhyCapabilities            []RDCapAdditionalPhyCapability
}

func (m *RDCapabilityIE) IEType() IEType { return IETypeRDCapabilityIE }

func (m *RDCapabilityIE) IsValid() bool {
	if len(m.AdditionalPhyCapabilities) > 0b111 {
		return false
	}
	for i := range m.AdditionalPhyCapabilities {
		c := &m.AdditionalPhyCapabilities[i]
		if c.Mu == RDCapSubcarrierWidthNotDefined || c.Beta == RDCapDFTSizeNotDefined || !c.isValid() {
			return false
		}
	}
	return m.Release != RDCapReleaseNotDefined &&
		m.OperatingModes != RDCapOperatingModeNotDefined &&
		m.MacSecurity != RDCapMacSecurityNotDefined &&
		m.DLCServiceType != RDCapDLCServiceTypeNotDefined &&
		m.PhyCapability.isValid()
}

func (m *RDCapabilityIE) PackedSize() uint32 {
	return 7 + uint32(len(m.AdditionalPhyCapabilities))*5
}

func (m *RDCapabilityIE) PackedSizeMinToPeek() uint32 { return 1 }

func (m *RDCapabilityIE) PackedSizeByPeeking(src []byte) (uint32, error) {
	if len(src) < 1 {
		return 0, fmt.Errorf("mmie: rd capability ie peek needs 1 byte")
	}
	return 7 + uint32(src[0]>>5)*5, nil
}

func (m *RDCapabilityIE) PackedSizeOfMMHSDU() uint32 {
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeRDCapabilityIE}
	return mh.PackedSize() + m.PackedSize()
}

func (m *RDCapabilityIE) PackMMHSDU(dst []byte) error {
	payload := make([]byte, m.PackedSize())
	if err := m.Pack(payload); err != nil {
		return err
	}
	mh := MuxHeader{MacExt: MacExtNoLengthField, IEType: IETypeRDCapabilityIE}
	return packMuxHeaderAndCopy(dst, mh, payload)
}

func packPhyCapability(dst []byte, c *RDCapPhyCapability) {
	dst[0] = byte(c.PowerClass) << 4
	dst[0] |= byte(c.MaxNssForRx) << 2
	dst[0] |= byte(c.RxForTxDiversity)

	dst[1] = byte(c.RxGainIndex) << 4
	dst[1] |= byte(c.MaxMCS)

	dst[2] = byte(c.SoftBufferSize) << 4
	dst[2] |= byte(c.NofHarqProcesses) << 2

	dst[3] = byte(c.HarqFeedbackDelay) << 4
}

func unpackPhyCapability(src []byte, c *RDCapPhyCapability) {
	c.PowerClass = rdCapPowerClassFromCoded(uint32(src[0]>>4) & 0b111)
	c.MaxNssForRx = rdCapNofSpatialStreamsFromCoded(uint32(src[0]>>2) & 0b11)
	c.RxForTxDiversity = rdCapNofTxAntennasFromCoded(uint32(src[0]) & 0b11)

	c.RxGainIndex = uint32(src[1] >> 4)
	c.MaxMCS = rdCapMaxMCSFromCoded(uint32(src[1]) & 0xF)

	c.SoftBufferSize = rdCapSoftBufferSizeFromCoded(uint32(src[2] >> 4))
	c.NofHarqProcesses = rdCapNofHarqProcessesFromCoded(uint32(src[2]>>2) & 0b11)

	c.HarqFeedbackDelay = rdCapHarqFeedbackDelayFromCoded(uint32(src[3] >> 4))
}

func (m *RDCapabilityIE) Pack(dst []byte) error {
	if !m.IsValid() {
		return fmt.Errorf("mmie: rd capability ie invalid field values")
	}
	if uint32(len(dst)) < m.PackedSize() {
		return fmt.Errorf("mmie: rd capability ie destination too small")
	}

	dst[0] = byte(len(m.AdditionalPhyCapabilities)) << 5
	dst[0] |= byte(m.Release)

	dst[1] = byte(m.OperatingModes) << 2
	dst[1] |= boolToBit(m.SupportsMeshSystemOperation) << 1
	dst[1] |= boolToBit(m.SupportsScheduledDataTransferService)

	dst[2] = byte(m.MacSecurity) << 5
	dst[2] |= byte(m.DLCServiceType) << 2

	packPhyCapability(dst[3:], &m.PhyCapability)

	offset := uint32(7)
	for i := range m.AdditionalPhyCapabilities {
		c := &m.AdditionalPhyCapabilities[i]
		dst[offset] = byte(c.Mu) << 5
		dst[offset] |= byte(c.Beta) << 1
		offset++

		packPhyCapability(dst[offset:], &c.RDCapPhyCapability)
		offset += 4
	}
	return nil
}

func (m *RDCapabilityIE) Unpack(src []byte) error {
	size, err := m.PackedSizeByPeeking(src)
	if err != nil {
		return err
	}
	if uint32(len(src)) < size {
		return fmt.Errorf("mmie: rd capability ie source too small")
	}

	*m = RDCapabilityIE{}

	nAdditional := uint32(src[0] >> 5)
	m.Release = rdCapReleaseFromCoded(uint32(src[0]) & 0x1F)

	m.OperatingModes = rdCapOperatingModeFromCoded(uint32(src[1]>>2) & 0b11)
	m.SupportsMeshSystemOperation = (src[1]>>1)&1 == 1
	m.SupportsScheduledDataTransferService = src[1]&1 == 1

	m.MacSecurity = rdCapMacSecurityFromCoded(uint32(src[2] >> 5))
	m.DLCServiceType = rdCapDLCServiceTypeFromCoded(uint32(src[2]>>2) & 0b111)

	unpackPhyCapability(src[3:], &m.PhyCapability)

	offset := uint32(7)
	for i := uint32(0); i < nAdditional; i++ {
		var c RDCapAdditionalPhyCapability
		c.Mu = rdCapSubcarrierWidthFromCoded(uint32(src[offset] >> 5))
		c.Beta = rdCapDFTSizeFromCoded(uint32(src[offset]>>1) & 0xF)
		offset++

		unpackPhyCapability(src[offset:], &c.RDCapPhyCapability)
		offset += 4

		m.AdditionalPhyCapabilities = append(m.AdditionalPhyCapabilities, c)
	}

	if !m.IsValid() {
		return fmt.Errorf("mmie: rd capability ie decoded invalid field values")
	}
	return nil
}
