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

package pubsub

import (
	"sync"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/config"
)

// subscriberBuffer bounds how many undelivered messages a slow subscriber
// may hold before further publishes to it are dropped, matching the
// engine's non-blocking write_nto semantics elsewhere.
const subscriberBuffer = 64

func makeInMemoryPubSub(_ *config.Config) (PubSub, error) {
	return &inMemoryPubSub{topics: make(map[string]map[*inMemorySubscription]struct{})}, nil
}

type inMemoryPubSub struct {
	mu     sync.Mutex
	topics map[string]map[*inMemorySubscription]struct{}
	closed bool
}

func (ps *inMemoryPubSub) Publish(topic string, message []byte) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for sub := range ps.topics[topic] {
		select {
		case sub.ch <- message:
		default:
			// subscriber is not draining; drop rather than block the
			// firmware-side publisher
		}
	}
	return nil
}

func (ps *inMemoryPubSub) Subscribe(topic string) Subscription {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	sub := &inMemorySubscription{ps: ps, topic: topic, ch: make(chan []byte, subscriberBuffer)}
	if ps.closed {
		close(sub.ch)
		sub.detached = true
		return sub
	}
	if ps.topics[topic] == nil {
		ps.topics[topic] = make(map[*inMemorySubscription]struct{})
	}
	ps.topics[topic][sub] = struct{}{}
	return sub
}

func (ps *inMemoryPubSub) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		return nil
	}
	ps.closed = true
	for _, subs := range ps.topics {
		for sub := range subs {
			close(sub.ch)
			sub.detached = true
		}
	}
	ps.topics = nil
	return nil
}

type inMemorySubscription struct {
	ps       *inMemoryPubSub
	topic    string
	ch       chan []byte
	detached bool
}

func (s *inMemorySubscription) Close() error {
	s.ps.mu.Lock()
	defer s.ps.mu.Unlock()

	if s.detached {
		return nil
	}
	s.detached = true
	if subs := s.ps.topics[s.topic]; subs != nil {
		delete(subs, s)
	}
	close(s.ch)
	return nil
}

func (s *inMemorySubscription) Channel() <-chan []byte {
	return s.ch
}
