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

	"github.com/maxpenner/dect-nr-plus-l2core/internal/contact"
)

// ContactStore is the durable persistence seam: associations and advertised
// capabilities are written through it so they survive a process restart.
// The gorm-backed implementation lives with the binary wiring; a nil store
// (the default) disables persistence.
type ContactStore interface {
	SaveContact(networkID uint32, c *contact.Contact) error
	DeleteContact(networkID, shortRadioDeviceID uint32) error
	SaveRadioCapability(networkID, shortRadioDeviceID uint32, raw []byte) error
}

// SetContactStore wires s as the persistence sink for association state and
// advertised capabilities.
func (inst *Instance) SetContactStore(s ContactStore) { inst.contactStore = s }

// CoordinationStore is the narrow slice of the key-value store used for
// cross-instance coordination: a second instance (e.g. a standby FT)
// observes which identities are live and which associations exist without
// sharing memory. kv.KV satisfies it.
type CoordinationStore interface {
	Has(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// SetCoordination wires store as the cross-instance coordination backend.
// A nil store (the default) disables coordination.
func (inst *Instance) SetCoordination(store CoordinationStore) { inst.coordination = store }

func assocKey(networkID, shortRadioDeviceID uint32) string {
	return fmt.Sprintf("assoc:%d:%04x", networkID, shortRadioDeviceID)
}

func identityKey(networkID, shortRadioDeviceID uint32) string {
	return fmt.Sprintf("identity:%d:%04x", networkID, shortRadioDeviceID)
}

// PublishAssociationState records one contact's current lifecycle state
// under a TTL'd key, so stale entries age out once the instance that wrote
// them stops refreshing.
func (inst *Instance) PublishAssociationState(ctx context.Context, c *contact.Contact, ttl time.Duration) error {
	if inst.coordination == nil {
		return nil
	}
	key := assocKey(inst.networkID, c.Identity.ShortRadioDeviceID)
	state := c.FTState.String()
	if inst.Role == RolePT {
		state = c.PTState.String()
	}
	if err := inst.coordination.Set(ctx, key, []byte(state)); err != nil {
		return fmt.Errorf("tpoint: publishing association state: %w", err)
	}
	if err := inst.coordination.Expire(ctx, key, ttl); err != nil {
		return fmt.Errorf("tpoint: setting association state ttl: %w", err)
	}
	return nil
}

// ClaimLocalIdentity registers this instance's own Short RD ID in the
// coordination store. A key already held means another live instance is
// using the same identity: logged and reported, never fatal — the radio
// keeps running and the operator resolves the clash.
func (inst *Instance) ClaimLocalIdentity(ctx context.Context, ttl time.Duration) (clash bool, err error) {
	if inst.coordination == nil {
		return false, nil
	}
	key := identityKey(inst.networkID, inst.localShortRD)
	held, err := inst.coordination.Has(ctx, key)
	if err != nil {
		return false, fmt.Errorf("tpoint: checking identity claim: %w", err)
	}
	if held {
		slog.Warn("tpoint: short RD ID already claimed by another instance",
			"network_id", inst.networkID, "short_rd_id", inst.localShortRD)
	}
	if err := inst.coordination.Set(ctx, key, []byte{byte(inst.Role)}); err != nil {
		return held, fmt.Errorf("tpoint: claiming identity: %w", err)
	}
	if err := inst.coordination.Expire(ctx, key, ttl); err != nil {
		return held, fmt.Errorf("tpoint: setting identity claim ttl: %w", err)
	}
	return held, nil
}

// syncCoordination refreshes this instance's identity claim and publishes
// every contact's association state, invoked from the housekeeping sweep so
// the TTL'd keys stay alive exactly as long as the instance does.
func (inst *Instance) syncCoordination(ctx context.Context, ttl time.Duration) {
	if inst.coordination == nil {
		return
	}
	if _, err := inst.ClaimLocalIdentity(ctx, ttl); err != nil {
		slog.Debug("tpoint: refreshing identity claim", "error", err)
	}
	inst.Contacts.Range(func(c *contact.Contact) bool {
		if err := inst.PublishAssociationState(ctx, c, ttl); err != nil {
			slog.Debug("tpoint: publishing association state", "error", err)
		}
		return true
	})
}

// persistContacts writes every contact in the registry through the contact
// store, invoked from the housekeeping sweep so the durable copy trails the
// in-memory registry by at most one sweep interval.
func (inst *Instance) persistContacts() {
	if inst.contactStore == nil {
		return
	}
	inst.Contacts.Range(func(c *contact.Contact) bool {
		if err := inst.contactStore.SaveContact(inst.networkID, c); err != nil {
			slog.Warn("tpoint: persisting contact", "error", err)
		}
		return true
	})
}
