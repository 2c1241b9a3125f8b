package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/heartmarshall/learnify-backend/internal/domain"
)

const defaultPrefix = "learnify:session:"

// SlotStore implements session slot storage on a Redis hash per session.
type SlotStore struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewSlotStore creates a store. A zero ttl leaves keys without expiry.
func NewSlotStore(rdb goredis.UniversalClient, prefix string, ttl time.Duration) *SlotStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SlotStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *SlotStore) key(sessionID uuid.UUID) string {
	return s.prefix + sessionID.String()
}

// Get returns one slot or domain.ErrNotFound.
func (s *SlotStore) Get(ctx context.Context, sessionID uuid.UUID, slot string) ([]byte, error) {
	raw, err := s.rdb.HGet(ctx, s.key(sessionID), slot).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("slot %s/%s: %w", sessionID, slot, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget %s/%s: %w", sessionID, slot, err)
	}
	return raw, nil
}

// Put writes one slot and refreshes the session TTL atomically.
func (s *SlotStore) Put(ctx context.Context, sessionID uuid.UUID, slot string, payload []byte) error {
	key := s.key(sessionID)
	_, err := s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.HSet(ctx, key, slot, payload)
		s.expire(ctx, p, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put %s/%s: %w", sessionID, slot, err)
	}
	return nil
}

// Replace swaps the whole session hash inside MULTI/EXEC.
func (s *SlotStore) Replace(ctx context.Context, sessionID uuid.UUID, slots map[string][]byte) error {
	key := s.key(sessionID)
	_, err := s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, key)
		if len(slots) == 0 {
			return nil
		}
		values := make(map[string]any, len(slots))
		for slot, payload := range slots {
			values[slot] = payload
		}
		p.HSet(ctx, key, values)
		s.expire(ctx, p, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis replace %s: %w", sessionID, err)
	}
	return nil
}

// Delete removes one slot.
func (s *SlotStore) Delete(ctx context.Context, sessionID uuid.UUID, slot string) error {
	if err := s.rdb.HDel(ctx, s.key(sessionID), slot).Err(); err != nil {
		return fmt.Errorf("redis hdel %s/%s: %w", sessionID, slot, err)
	}
	return nil
}

// Clear deletes the session hash.
func (s *SlotStore) Clear(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.rdb.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", sessionID, err)
	}
	return nil
}

// Ping checks the connection.
func (s *SlotStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *SlotStore) expire(ctx context.Context, p goredis.Pipeliner, key string) {
	if s.ttl > 0 {
		p.Expire(ctx, key, s.ttl)
	}
}
