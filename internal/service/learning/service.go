// Package learning is the per-session facade over the course catalog, the
// generated content cache and lesson progress.
package learning

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/learnify-backend/internal/domain"
	"github.com/heartmarshall/learnify-backend/internal/provider"
	"github.com/heartmarshall/learnify-backend/internal/session"
)

type sessionStore interface {
	Load(ctx context.Context, sessionID uuid.UUID) (session.State, error)
	SaveUser(ctx context.Context, sessionID uuid.UUID, user *domain.User) error
	SaveCache(ctx context.Context, sessionID uuid.UUID, cache domain.CourseCache) error
	SaveProgress(ctx context.Context, sessionID uuid.UUID, progress domain.CourseProgress) error
	Reset(ctx context.Context, sessionID uuid.UUID, user domain.User) error
	Clear(ctx context.Context, sessionID uuid.UUID) error
}

type courseCatalog interface {
	Get(courseID string) (domain.Course, bool)
}

type outlineGenerator interface {
	GenerateOutline(ctx context.Context, req provider.OutlineRequest) ([]domain.Module, error)
}

type lessonGenerator interface {
	GenerateLesson(ctx context.Context, req provider.LessonRequest) (string, error)
}

const defaultGenerationTimeout = 2 * time.Minute

// Options tunes a Manager. Zero values fall back to defaults.
type Options struct {
	// GenerationTimeout bounds one generator call, independently of the
	// request that started it.
	GenerationTimeout time.Duration
	// IdleTimeout is how long an unused session stays open before Sweep
	// drops it.
	IdleTimeout time.Duration
}

// deps are shared by every session of a Manager.
type deps struct {
	log        *slog.Logger
	store      sessionStore
	catalog    courseCatalog
	outlines   outlineGenerator
	lessons    lessonGenerator
	genTimeout time.Duration
	now        func() time.Time
}

// Manager owns the open sessions. At most one *Session exists per session id,
// so all requests of a session share its state and in-flight generations.
// Open sessions are not reloaded from the store, so a store must be served
// by a single Manager.
type Manager struct {
	deps        *deps
	idleTimeout time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	loads    singleflight.Group
}

// NewManager creates a Manager.
func NewManager(
	logger *slog.Logger,
	store sessionStore,
	catalog courseCatalog,
	outlines outlineGenerator,
	lessons lessonGenerator,
	opts Options,
) *Manager {
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = defaultGenerationTimeout
	}
	return &Manager{
		deps: &deps{
			log:        logger.With("service", "learning"),
			store:      store,
			catalog:    catalog,
			outlines:   outlines,
			lessons:    lessons,
			genTimeout: opts.GenerationTimeout,
			now:        time.Now,
		},
		idleTimeout: opts.IdleTimeout,
		sessions:    make(map[uuid.UUID]*Session),
	}
}

// Open returns the session for sessionID, loading it from the store on first
// use. Concurrent opens of the same id share one load, which runs detached
// from any single caller's cancellation.
func (m *Manager) Open(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[sessionID]; ok {
		m.mu.Unlock()
		s.touch()
		return s, nil
	}
	m.mu.Unlock()

	loadCtx := context.WithoutCancel(ctx)
	ch := m.loads.DoChan(sessionID.String(), func() (any, error) {
		m.mu.Lock()
		if s, ok := m.sessions[sessionID]; ok {
			m.mu.Unlock()
			return s, nil
		}
		m.mu.Unlock()

		state, err := m.deps.store.Load(loadCtx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		s := newSession(sessionID, m.deps, state)

		m.mu.Lock()
		m.sessions[sessionID] = s
		m.mu.Unlock()

		m.deps.log.DebugContext(loadCtx, "session opened", slog.String("session_id", sessionID.String()))
		return s, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	s := res.Val.(*Session)
	s.touch()
	return s, nil
}

// Close drops the session from memory. Its persisted record is untouched.
func (m *Manager) Close(sessionID uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

// Sweep closes sessions idle for longer than the idle timeout and returns how
// many were closed. Sessions with a generation in flight are kept.
func (m *Manager) Sweep() int {
	if m.idleTimeout <= 0 {
		return 0
	}
	cutoff := m.deps.now().Add(-m.idleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()

	closed := 0
	for id, s := range m.sessions {
		if s.inflight.Load() > 0 || !s.lastUsed().Before(cutoff) {
			continue
		}
		delete(m.sessions, id)
		closed++
	}
	return closed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.deps.log.InfoContext(ctx, "idle sessions closed", slog.Int("count", n))
			}
		}
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
