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

package tpoint

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/contact"
)

// Housekeeping runs wall-clock-scheduled maintenance that does not need
// sample-accurate timing: a beacon-miss review of the contact registry,
// contact persistence and the cross-instance coordination refresh, layered
// on top of the Instance's sample-accurate Wheel rather than replacing it.
type Housekeeping struct {
	scheduler gocron.Scheduler
	inst      *Instance
}

// NewHousekeeping creates a gocron scheduler bound to inst. Call Start to
// begin running jobs, Stop to tear it down.
func NewHousekeeping(inst *Instance) (*Housekeeping, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("tpoint: creating housekeeping scheduler: %w", err)
	}
	return &Housekeeping{scheduler: s, inst: inst}, nil
}

// Start registers the recurring sweep jobs and starts the scheduler.
func (h *Housekeeping) Start(sweepInterval time.Duration) error {
	_, err := h.scheduler.NewJob(
		gocron.DurationJob(sweepInterval),
		gocron.NewTask(h.sweepBeaconMisses, context.Background()),
		gocron.WithName("beacon-miss-sweep"),
	)
	if err != nil {
		return fmt.Errorf("tpoint: registering beacon-miss sweep: %w", err)
	}

	_, err = h.scheduler.NewJob(
		gocron.DurationJob(sweepInterval),
		gocron.NewTask(h.inst.persistContacts),
		gocron.WithName("contact-persist-sweep"),
	)
	if err != nil {
		return fmt.Errorf("tpoint: registering contact-persist sweep: %w", err)
	}

	// TTL twice the sweep interval: a single missed sweep does not expire
	// this instance's published state, two do
	_, err = h.scheduler.NewJob(
		gocron.DurationJob(sweepInterval),
		gocron.NewTask(func() {
			h.inst.syncCoordination(context.Background(), 2*sweepInterval)
		}),
		gocron.WithName("coordination-sync"),
	)
	if err != nil {
		return fmt.Errorf("tpoint: registering coordination sync: %w", err)
	}

	h.scheduler.Start()
	return nil
}

// Stop shuts the scheduler down.
func (h *Housekeeping) Stop() error {
	return h.scheduler.Shutdown()
}

// sweepBeaconMisses logs, at debug level, every contact with a non-zero
// missed-beacon count. It does not change any contact's state.
func (h *Housekeeping) sweepBeaconMisses(_ context.Context) {
	h.inst.Contacts.Range(func(c *contact.Contact) bool {
		if c.MissedBeacons() > 0 {
			slog.Debug("tpoint: contact has missed beacons pending review", "missed", c.MissedBeacons())
		}
		return true
	})
}
