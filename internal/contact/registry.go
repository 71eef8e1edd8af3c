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

package contact

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v4"
)

// Registry is the FT's contact list, keyed by the associated PT's Short
// Radio Device ID, mirroring the concurrent-map-of-peers pattern used
// throughout the MAC core's collaborators.
type Registry struct {
	contacts *xsync.Map[uint32, *Contact]
}

// NewRegistry returns an empty contact registry.
func NewRegistry() *Registry {
	return &Registry{contacts: xsync.NewMap[uint32, *Contact]()}
}

// Add registers a new contact, replacing any existing one for the same
// Short Radio Device ID.
func (r *Registry) Add(c *Contact) {
	r.contacts.Store(c.Identity.ShortRadioDeviceID, c)
}

// Get returns the contact for a Short Radio Device ID, if any.
func (r *Registry) Get(shortRadioDeviceID uint32) (*Contact, bool) {
	return r.contacts.Load(shortRadioDeviceID)
}

// Remove deletes a contact from the registry.
func (r *Registry) Remove(shortRadioDeviceID uint32) {
	r.contacts.Delete(shortRadioDeviceID)
}

// Len reports how many contacts are currently registered.
func (r *Registry) Len() int {
	n := 0
	r.contacts.Range(func(_ uint32, _ *Contact) bool {
		n++
		return true
	})
	return n
}

// Range calls fn for every contact currently in the registry, stopping
// early if fn returns false. Iteration order is unspecified.
func (r *Registry) Range(fn func(c *Contact) bool) {
	r.contacts.Range(func(_ uint32, c *Contact) bool {
		return fn(c)
	})
}

// MustGet returns the contact for a Short Radio Device ID or an error if
// none is registered, for call sites that treat an unknown contact as a
// protocol violation rather than a routine lookup miss.
func (r *Registry) MustGet(shortRadioDeviceID uint32) (*Contact, error) {
	c, ok := r.Get(shortRadioDeviceID)
	if !ok {
		return nil, fmt.Errorf("contact: no contact registered for short rd id %#x", shortRadioDeviceID)
	}
	return c, nil
}
