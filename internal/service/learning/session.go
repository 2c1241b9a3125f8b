package learning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/learnify-backend/internal/domain"
	"github.com/heartmarshall/learnify-backend/internal/session"
)

// Session is the state facade of one browser session. All mutations happen
// under mu and are written through to the store before the in-memory state
// is replaced. Generator calls run outside the lock.
type Session struct {
	id uuid.UUID
	*deps

	mu    sync.Mutex
	state session.State
	// epoch changes on signup and logout. A generation started under an
	// older epoch does not write to the cache.
	epoch uint64
	// days holds quiz gating per lesson. It lives with the open session and
	// is reset on signup and logout.
	days map[string]*domain.DayProgress

	flights  singleflight.Group
	inflight atomic.Int32
	used     atomic.Int64
}

func newSession(id uuid.UUID, d *deps, state session.State) *Session {
	if state.Cache == nil {
		state.Cache = domain.CourseCache{}
	}
	if state.Progress == nil {
		state.Progress = domain.CourseProgress{}
	}
	s := &Session{id: id, deps: d, state: state}
	s.touch()
	return s
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) touch() { s.used.Store(s.now().UnixNano()) }

func (s *Session) lastUsed() time.Time { return time.Unix(0, s.used.Load()) }

// User returns a copy of the signed-in user, or nil when logged out.
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// EnrolledCourses returns the ids of enrolled courses, sorted.
func (s *Session) EnrolledCourses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Progress.CourseIDs()
}

// ProgressDetails returns a deep copy of the progress map.
func (s *Session) ProgressDetails() domain.CourseProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Progress.Clone()
}

// Lesson looks a lesson up in the cached outline without generating anything.
func (s *Session) Lesson(courseID, moduleID, lessonID string) (domain.Lesson, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	course, ok := s.state.Cache.Get(courseID)
	if !ok {
		return domain.Lesson{}, false
	}
	return course.FindLesson(moduleID, lessonID)
}

// generate runs fn at most once per key at a time. fn gets a context that
// survives the caller's cancellation and is bounded by the generation
// timeout; a caller that gives up returns its own ctx error while the
// generation completes for the remaining waiters.
func (s *Session) generate(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	ch := s.flights.DoChan(key, func() (any, error) {
		s.inflight.Add(1)
		defer s.inflight.Add(-1)

		genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.genTimeout)
		defer cancel()
		return fn(genCtx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Session) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// generationError marks err as a generation failure unless it already is one.
func generationError(err error) error {
	if errors.Is(err, domain.ErrGeneration) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrGeneration, err)
}
