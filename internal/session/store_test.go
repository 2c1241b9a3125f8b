package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/learnify-backend/internal/adapter/memory"
	"github.com/heartmarshall/learnify-backend/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *memory.SlotStore) {
	t.Helper()
	backend := memory.NewSlotStore(0)
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), backend), backend
}

func TestStore_LoadEmptySession(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	state, err := store.Load(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Nil(t, state.User)
	assert.NotNil(t, state.Cache)
	assert.Empty(t, state.Cache)
	assert.NotNil(t, state.Progress)
	assert.Empty(t, state.Progress)
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newTestStore(t)
	id := uuid.New()

	user := domain.NewUser("Ada", "ada@example.com")
	cache := domain.CourseCache{}.With(domain.Course{ID: "c1", Title: "Go", Modules: []domain.Module{
		{ID: "m1", Lessons: []domain.Lesson{{ID: "l1", Content: "body"}}},
	}})
	progress := domain.CourseProgress{}.WithEnrollment("c1", 1)
	progress, _ = progress.WithToggled("c1", "l1")

	require.NoError(t, store.SaveUser(ctx, id, &user))
	require.NoError(t, store.SaveCache(ctx, id, cache))
	require.NoError(t, store.SaveProgress(ctx, id, progress))

	state, err := store.Load(ctx, id)
	require.NoError(t, err)

	require.NotNil(t, state.User)
	assert.Equal(t, user, *state.User)
	assert.Equal(t, cache, state.Cache)
	assert.Equal(t, 100, state.Progress.Percent("c1"))
}

func TestStore_SaveNilUserRemovesSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, backend := newTestStore(t)
	id := uuid.New()

	user := domain.MockUser("a@example.com")
	require.NoError(t, store.SaveUser(ctx, id, &user))
	require.NoError(t, store.SaveUser(ctx, id, nil))

	_, err := backend.Get(ctx, id, SlotUser)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_EmptyMapsArePersisted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, backend := newTestStore(t)
	id := uuid.New()

	require.NoError(t, store.SaveCache(ctx, id, nil))
	require.NoError(t, store.SaveProgress(ctx, id, domain.CourseProgress{}))

	raw, err := backend.Get(ctx, id, SlotCache)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))

	raw, err = backend.Get(ctx, id, SlotProgress)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestStore_ResetAndClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, backend := newTestStore(t)
	id := uuid.New()

	require.NoError(t, store.SaveCache(ctx, id, domain.CourseCache{}.With(domain.Course{ID: "c1"})))
	require.NoError(t, store.SaveProgress(ctx, id, domain.CourseProgress{}.WithEnrollment("c1", 3)))

	user := domain.NewUser("Bob", "bob@example.com")
	require.NoError(t, store.Reset(ctx, id, user))

	state, err := store.Load(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, state.User)
	assert.Equal(t, "Bob", state.User.Name)
	assert.Empty(t, state.Cache)
	assert.Empty(t, state.Progress)

	require.NoError(t, store.Clear(ctx, id))
	for _, slot := range Slots {
		_, err := backend.Get(ctx, id, slot)
		assert.ErrorIs(t, err, domain.ErrNotFound, slot)
	}
}

func TestStore_LoadCorruptSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, backend := newTestStore(t)
	id := uuid.New()

	require.NoError(t, backend.Put(ctx, id, SlotProgress, []byte("{not json")))

	_, err := store.Load(ctx, id)
	assert.ErrorContains(t, err, SlotProgress)
}

type failingBackend struct {
	*memory.SlotStore
	err error
}

func (f failingBackend) Put(context.Context, uuid.UUID, string, []byte) error { return f.err }

func TestStore_WriteErrorPropagates(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	store := New(slog.Default(), failingBackend{SlotStore: memory.NewSlotStore(0), err: boom})

	err := store.SaveCache(context.Background(), uuid.New(), domain.CourseCache{})
	assert.ErrorIs(t, err, boom)
}
