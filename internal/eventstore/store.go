// Package eventstore keeps the most recent webhook events in memory.
//
// The store lives only as long as the serving process. It is an inspection
// aid for operators, not a system of record: a restart loses every event, and
// once more than Capacity events have arrived the oldest ones are gone for good.
//
// All methods are safe for concurrent use and each one is a single atomic
// step; none of them blocks on I/O.
package eventstore

import (
	"sync"

	"github.com/josh-kwaku/kyc-verify/internal/domain"
)

const DefaultCapacity = 100

type Store struct {
	mu       sync.RWMutex
	capacity int
	// events is ordered oldest first; len(events) <= capacity at all times.
	events []domain.WebhookEvent
}

func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		events:   make([]domain.WebhookEvent, 0, capacity),
	}
}

// Append stores event as the most recent entry, evicting the oldest entries
// beyond capacity. ReceivedAt is raised to the previous entry's timestamp when
// a slower caller arrives after a newer event, so newest-first reads stay
// ordered by receipt time.
func (s *Store) Append(event domain.WebhookEvent) {
	event = event.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.events); n > 0 {
		if last := s.events[n-1].ReceivedAt; event.ReceivedAt.Before(last) {
			event.ReceivedAt = last
		}
	}

	if len(s.events) == s.capacity {
		// shift in place so the backing array never grows past capacity
		copy(s.events, s.events[1:])
		s.events[len(s.events)-1] = event
		return
	}
	s.events = append(s.events, event)
}

// List returns a snapshot, most recently appended first. The caller owns the
// result.
func (s *Store) List() []domain.WebhookEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.WebhookEvent, len(s.events))
	for i, e := range s.events {
		out[len(s.events)-1-i] = e.Clone()
	}
	return out
}

// Get looks an event up by id. A false result means it never existed, was
// evicted, or was cleared.
func (s *Store) Get(id string) (domain.WebhookEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].ID == id {
			return s.events[i].Clone(), true
		}
	}
	return domain.WebhookEvent{}, false
}

// Clear drops every stored event and reports how many there were.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.events)
	clear(s.events)
	s.events = s.events[:0]
	return n
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *Store) Capacity() int {
	return s.capacity
}
