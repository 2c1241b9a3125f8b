// Package memory implements an in-process session slot store. It is used in
// tests and for single-instance development runs.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnify-backend/internal/domain"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// SlotStore keeps session slots in a map. A zero TTL disables expiry.
// Every write pushes the expiry of all live slots of the session forward, so
// a record expires as a whole.
type SlotStore struct {
	mu    sync.Mutex
	data  map[uuid.UUID]map[string]entry
	ttl   time.Duration
	nowFn func() time.Time
}

// NewSlotStore creates an empty store whose sessions expire ttl after their last write.
func NewSlotStore(ttl time.Duration) *SlotStore {
	return &SlotStore{
		data:  make(map[uuid.UUID]map[string]entry),
		ttl:   ttl,
		nowFn: time.Now,
	}
}

// Get returns a copy of the slot payload, or domain.ErrNotFound.
func (s *SlotStore) Get(_ context.Context, sessionID uuid.UUID, slot string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[sessionID][slot]
	if !ok || s.expired(e) {
		return nil, fmt.Errorf("slot %s/%s: %w", sessionID, slot, domain.ErrNotFound)
	}
	return slices.Clone(e.payload), nil
}

// Put stores payload under slot.
func (s *SlotStore) Put(_ context.Context, sessionID uuid.UUID, slot string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(sessionID, slot, payload)
	return nil
}

// Replace drops the session's slots and stores the given ones under one lock.
func (s *SlotStore) Replace(_ context.Context, sessionID uuid.UUID, slots map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, sessionID)
	for slot, payload := range slots {
		s.put(sessionID, slot, payload)
	}
	return nil
}

// Delete removes one slot. Missing slots are ignored.
func (s *SlotStore) Delete(_ context.Context, sessionID uuid.UUID, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data[sessionID], slot)
	return nil
}

// Clear removes all slots of a session.
func (s *SlotStore) Clear(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, sessionID)
	return nil
}

// Ping always succeeds.
func (s *SlotStore) Ping(context.Context) error { return nil }

// DeleteExpired drops expired slots and returns how many were removed.
func (s *SlotStore) DeleteExpired(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, slots := range s.data {
		for slot, e := range slots {
			if s.expired(e) {
				delete(slots, slot)
				n++
			}
		}
		if len(slots) == 0 {
			delete(s.data, id)
		}
	}
	return n, nil
}

func (s *SlotStore) put(sessionID uuid.UUID, slot string, payload []byte) {
	slots, ok := s.data[sessionID]
	if !ok {
		slots = make(map[string]entry)
		s.data[sessionID] = slots
	}
	slots[slot] = entry{payload: slices.Clone(payload)}
	if s.ttl <= 0 {
		return
	}

	expiresAt := s.nowFn().Add(s.ttl)
	for name, e := range slots {
		if name != slot && s.expired(e) {
			continue
		}
		e.expiresAt = expiresAt
		slots[name] = e
	}
}

func (s *SlotStore) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !s.nowFn().Before(e.expiresAt)
}
