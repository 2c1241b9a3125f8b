// Package session persists the per-session state record: the signed-in user,
// the generated course cache and the progress map. Each lives in its own
// named slot so that one change rewrites only the affected record.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnify-backend/internal/domain"
)

// Slot names of the persisted record.
const (
	SlotUser     = "e-learnify-user"
	SlotCache    = "e-learnify-cache"
	SlotProgress = "e-learnify-progress"
)

// Slots lists every slot a session owns.
var Slots = []string{SlotUser, SlotCache, SlotProgress}

// SlotStore is a key/value backend scoped by session id. Get returns
// domain.ErrNotFound for a missing slot. Replace atomically swaps the whole
// record of a session for the given slots and Clear removes every slot of a
// session in one operation.
type SlotStore interface {
	Get(ctx context.Context, sessionID uuid.UUID, slot string) ([]byte, error)
	Put(ctx context.Context, sessionID uuid.UUID, slot string, payload []byte) error
	Replace(ctx context.Context, sessionID uuid.UUID, slots map[string][]byte) error
	Delete(ctx context.Context, sessionID uuid.UUID, slot string) error
	Clear(ctx context.Context, sessionID uuid.UUID) error
	Ping(ctx context.Context) error
}

// State is the loaded session record. User is nil when logged out.
type State struct {
	User     *domain.User
	Cache    domain.CourseCache
	Progress domain.CourseProgress
}

// EmptyState is the state of a fresh or cleared session.
func EmptyState() State {
	return State{
		Cache:    domain.CourseCache{},
		Progress: domain.CourseProgress{},
	}
}

// Store reads and writes session records through a SlotStore.
type Store struct {
	backend SlotStore
	log     *slog.Logger
}

// New creates a Store.
func New(logger *slog.Logger, backend SlotStore) *Store {
	return &Store{
		backend: backend,
		log:     logger.With("component", "session_store"),
	}
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Load reads the whole record. A missing user slot means logged out; missing
// cache or progress slots default to empty maps.
func (s *Store) Load(ctx context.Context, sessionID uuid.UUID) (State, error) {
	state := EmptyState()

	var user domain.User
	found, err := s.read(ctx, sessionID, SlotUser, &user)
	if err != nil {
		return State{}, err
	}
	if found {
		state.User = &user
	}

	if _, err := s.read(ctx, sessionID, SlotCache, &state.Cache); err != nil {
		return State{}, err
	}
	if state.Cache == nil {
		state.Cache = domain.CourseCache{}
	}

	if _, err := s.read(ctx, sessionID, SlotProgress, &state.Progress); err != nil {
		return State{}, err
	}
	if state.Progress == nil {
		state.Progress = domain.CourseProgress{}
	}

	s.log.DebugContext(ctx, "session loaded",
		slog.String("session_id", sessionID.String()),
		slog.Bool("logged_in", state.User != nil),
		slog.Int("cached_courses", len(state.Cache)),
		slog.Int("enrolled_courses", len(state.Progress)),
	)
	return state, nil
}

// SaveUser persists user, or removes the slot when user is nil so that a
// logged-out session never reloads a stale profile.
func (s *Store) SaveUser(ctx context.Context, sessionID uuid.UUID, user *domain.User) error {
	if user == nil {
		if err := s.backend.Delete(ctx, sessionID, SlotUser); err != nil {
			return fmt.Errorf("delete %s: %w", SlotUser, err)
		}
		return nil
	}
	return s.write(ctx, sessionID, SlotUser, user)
}

// SaveCache persists the course cache, including when it is empty.
func (s *Store) SaveCache(ctx context.Context, sessionID uuid.UUID, cache domain.CourseCache) error {
	if cache == nil {
		cache = domain.CourseCache{}
	}
	return s.write(ctx, sessionID, SlotCache, cache)
}

// SaveProgress persists the progress map, including when it is empty.
func (s *Store) SaveProgress(ctx context.Context, sessionID uuid.UUID, progress domain.CourseProgress) error {
	if progress == nil {
		progress = domain.CourseProgress{}
	}
	return s.write(ctx, sessionID, SlotProgress, progress)
}

// Reset replaces the record with user, an empty cache and an empty progress
// map in one atomic backend call.
func (s *Store) Reset(ctx context.Context, sessionID uuid.UUID, user domain.User) error {
	slots := make(map[string][]byte, len(Slots))
	for slot, v := range map[string]any{
		SlotUser:     user,
		SlotCache:    domain.CourseCache{},
		SlotProgress: domain.CourseProgress{},
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", slot, err)
		}
		slots[slot] = raw
	}
	if err := s.backend.Replace(ctx, sessionID, slots); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

// Clear removes every slot of the session.
func (s *Store) Clear(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.backend.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.log.DebugContext(ctx, "session cleared", slog.String("session_id", sessionID.String()))
	return nil
}

func (s *Store) read(ctx context.Context, sessionID uuid.UUID, slot string, dst any) (bool, error) {
	raw, err := s.backend.Get(ctx, sessionID, slot)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", slot, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", slot, err)
	}
	return true, nil
}

func (s *Store) write(ctx context.Context, sessionID uuid.UUID, slot string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", slot, err)
	}
	if err := s.backend.Put(ctx, sessionID, slot, raw); err != nil {
		return fmt.Errorf("write %s: %w", slot, err)
	}
	return nil
}
