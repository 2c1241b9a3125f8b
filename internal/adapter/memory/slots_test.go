package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/learnify-backend/internal/domain"
)

func TestSlotStore_PutGetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewSlotStore(0)
	id := uuid.New()

	_, err := s.Get(ctx, id, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	payload := []byte(`{"x":1}`)
	require.NoError(t, s.Put(ctx, id, "a", payload))
	payload[0] = 'X'

	got, err := s.Get(ctx, id, "a")
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(got), "store keeps its own copy")

	require.NoError(t, s.Delete(ctx, id, "a"))
	_, err = s.Get(ctx, id, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSlotStore_ClearIsPerSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewSlotStore(0)
	a, b := uuid.New(), uuid.New()

	require.NoError(t, s.Replace(ctx, a, map[string][]byte{"x": []byte("1"), "y": []byte("2")}))
	require.NoError(t, s.Put(ctx, b, "x", []byte("3")))

	require.NoError(t, s.Clear(ctx, a))

	_, err := s.Get(ctx, a, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Get(ctx, a, "y")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := s.Get(ctx, b, "x")
	require.NoError(t, err)
	assert.Equal(t, "3", string(got))
}

func TestSlotStore_TTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSlotStore(time.Hour)
	s.nowFn = func() time.Time { return now }
	id := uuid.New()

	require.NoError(t, s.Put(ctx, id, "a", []byte("1")))

	now = now.Add(59 * time.Minute)
	_, err := s.Get(ctx, id, "a")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(ctx, id, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := s.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSlotStore_WriteRefreshesWholeSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSlotStore(24 * time.Hour)
	s.nowFn = func() time.Time { return now }
	id, other := uuid.New(), uuid.New()

	require.NoError(t, s.Put(ctx, id, "user", []byte("u")))
	require.NoError(t, s.Put(ctx, other, "user", []byte("o")))

	now = now.Add(20 * time.Hour)
	require.NoError(t, s.Put(ctx, id, "progress", []byte("p")))

	now = now.Add(5 * time.Hour)
	got, err := s.Get(ctx, id, "user")
	require.NoError(t, err, "user slot lives as long as the session")
	assert.Equal(t, "u", string(got))
	_, err = s.Get(ctx, id, "progress")
	require.NoError(t, err)

	_, err = s.Get(ctx, other, "user")
	assert.ErrorIs(t, err, domain.ErrNotFound, "other sessions keep their own expiry")
}

func TestSlotStore_WriteDoesNotReviveExpiredSlots(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSlotStore(time.Hour)
	s.nowFn = func() time.Time { return now }
	id := uuid.New()

	require.NoError(t, s.Put(ctx, id, "user", []byte("u")))
	now = now.Add(2 * time.Hour)
	require.NoError(t, s.Put(ctx, id, "progress", []byte("p")))

	_, err := s.Get(ctx, id, "user")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSlotStore_ReplaceDropsOtherSlots(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewSlotStore(0)
	id := uuid.New()

	require.NoError(t, s.Put(ctx, id, "stale", []byte("1")))
	require.NoError(t, s.Replace(ctx, id, map[string][]byte{"fresh": []byte("2")}))

	_, err := s.Get(ctx, id, "stale")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err := s.Get(ctx, id, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))
}
