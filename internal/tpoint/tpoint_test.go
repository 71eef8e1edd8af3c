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

package tpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/contact"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/identity"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/tpoint"
)

func newTestInstance() *tpoint.Instance {
	return tpoint.New(tpoint.Config{
		Role:          tpoint.RoleFT,
		NetworkID:     1,
		HARQProcesses: 2,
		HARQALenMax:   100,
		HARQZ:         256,
	})
}

func TestWorkStartImminentBeforeBeaconArmed(t *testing.T) {
	inst := newTestInstance()
	report := inst.WorkStartImminent(1000)
	assert.Equal(t, int64(1000), report.NextWakeTime64)
}

func TestWorkIrregularEmitsBeaconWhenDue(t *testing.T) {
	inst := newTestInstance()
	inst.ArmBeaconClock(0, 10_000, 2_000, 1_000_000, 0)

	report := inst.WorkIrregular(inst.Beacon.NextWake())
	require.Len(t, report.TxDescriptors, 1)
	assert.Equal(t, int64(0), report.TxDescriptors[0].BufferTxMeta.TxTime64)
	assert.Equal(t, uint64(0), report.TxDescriptors[0].BufferTxMeta.TxOrderID)
	assert.Equal(t, int64(10_000-2_000), report.Irregular.NextWakeTime64)
}

func TestWorkIrregularNoOpWhenNotDue(t *testing.T) {
	inst := newTestInstance()
	inst.ArmBeaconClock(0, 10_000, 2_000, 1_000_000, 0)

	report := inst.WorkIrregular(inst.Beacon.NextWake() - 1)
	assert.Empty(t, report.TxDescriptors)
}

func TestWorkApplicationRejectsUnknownContact(t *testing.T) {
	inst := newTestInstance()
	err := inst.WorkApplication(tpoint.ApplicationReport{DestinationShortRDID: 42})
	assert.Error(t, err)
}

func TestWorkApplicationAcceptsSteadyContact(t *testing.T) {
	inst := newTestInstance()
	id, err := identity.New(1, 100, 42)
	require.NoError(t, err)
	c := contact.New(id, nil, contact.DefaultAssociationConfig())
	c.OnAssociationRequestReceived(true, contact.RejectCauseNone)
	inst.Contacts.Add(c)

	err = inst.WorkApplication(tpoint.ApplicationReport{DestinationShortRDID: 42})
	assert.NoError(t, err)
}
