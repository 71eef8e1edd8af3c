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

// Package snapshot implements the binary export/import format behind the
// diagnostics snapshot endpoint: a msgp-encoded, xz-compressed dump of
// contact records, small enough to attach to a bug report without an
// operator needing DB access.
package snapshot

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tinylib/msgp/msgp"
	"github.com/ulikunitz/xz"
)

// Contact is the flattened, export-only projection of a contact record
// and its identity, hand-rolled to the msgp wire
// format as a fixed-order array rather than a field-name map so encode and
// decode stay in lockstep without needing generated code.
type Contact struct {
	NetworkID          uint32
	LongRadioDeviceID  uint32
	ShortRadioDeviceID uint32
	PTState            string
	FTState            string
	RetryCount         int64
	MissedBeacons      int64
}

// MarshalMsg appends the msgp encoding of c to b, implementing
// msgp.Marshaler by hand in the same array-of-fields shape `msgp -io
// false` would generate for a struct tagged `msg:",array"`.
func (c Contact) MarshalMsg(b []byte) ([]byte, error) {
	const nFields = 7
	o := msgp.AppendArrayHeader(b, nFields)
	o = msgp.AppendUint32(o, c.NetworkID)
	o = msgp.AppendUint32(o, c.LongRadioDeviceID)
	o = msgp.AppendUint32(o, c.ShortRadioDeviceID)
	o = msgp.AppendString(o, c.PTState)
	o = msgp.AppendString(o, c.FTState)
	o = msgp.AppendInt64(o, c.RetryCount)
	o = msgp.AppendInt64(o, c.MissedBeacons)
	return o, nil
}

// UnmarshalMsg reads one Contact from the head of b, implementing
// msgp.Unmarshaler by hand to match MarshalMsg's array encoding.
func (c *Contact) UnmarshalMsg(b []byte) ([]byte, error) {
	const nFields = 7
	sz, o, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return b, fmt.Errorf("snapshot: reading contact array header: %w", err)
	}
	if sz != nFields {
		return b, fmt.Errorf("snapshot: contact array has %d fields, want %d", sz, nFields)
	}
	if c.NetworkID, o, err = msgp.ReadUint32Bytes(o); err != nil {
		return b, fmt.Errorf("snapshot: reading network id: %w", err)
	}
	if c.LongRadioDeviceID, o, err = msgp.ReadUint32Bytes(o); err != nil {
		return b, fmt.Errorf("snapshot: reading long radio device id: %w", err)
	}
	if c.ShortRadioDeviceID, o, err = msgp.ReadUint32Bytes(o); err != nil {
		return b, fmt.Errorf("snapshot: reading short radio device id: %w", err)
	}
	if c.PTState, o, err = msgp.ReadStringBytes(o); err != nil {
		return b, fmt.Errorf("snapshot: reading pt state: %w", err)
	}
	if c.FTState, o, err = msgp.ReadStringBytes(o); err != nil {
		return b, fmt.Errorf("snapshot: reading ft state: %w", err)
	}
	if c.RetryCount, o, err = msgp.ReadInt64Bytes(o); err != nil {
		return b, fmt.Errorf("snapshot: reading retry count: %w", err)
	}
	if c.MissedBeacons, o, err = msgp.ReadInt64Bytes(o); err != nil {
		return b, fmt.Errorf("snapshot: reading missed beacons: %w", err)
	}
	return o, nil
}

// Export msgp-encodes every contact as a top-level array, then xz-compresses
// the result.
func Export(contacts []Contact) ([]byte, error) {
	o := msgp.AppendArrayHeader(nil, uint32(len(contacts))) //nolint:gosec // bounded by registry size
	for _, ct := range contacts {
		var err error
		o, err = ct.MarshalMsg(o)
		if err != nil {
			return nil, fmt.Errorf("snapshot: marshaling contact: %w", err)
		}
	}

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("snapshot: creating xz writer: %w", err)
	}
	if _, err := w.Write(o); err != nil {
		return nil, fmt.Errorf("snapshot: xz-compressing snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("snapshot: closing xz writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Import reverses Export: xz-decompresses then msgp-decodes the contact
// array.
func Import(compressed []byte) ([]Contact, error) {
	r, err := xz.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("snapshot: creating xz reader: %w", err)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: xz-decompressing snapshot: %w", err)
	}

	sz, o, err := msgp.ReadArrayHeaderBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("snapshot: reading snapshot array header: %w", err)
	}
	contacts := make([]Contact, sz)
	for i := range contacts {
		o, err = contacts[i].UnmarshalMsg(o)
		if err != nil {
			return nil, fmt.Errorf("snapshot: unmarshaling contact %d: %w", i, err)
		}
	}
	return contacts, nil
}
