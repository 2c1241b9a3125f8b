package learning

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/learnify-backend/internal/domain"
	"github.com/heartmarshall/learnify-backend/internal/provider"
	"github.com/heartmarshall/learnify-backend/internal/session"
)

// ---------------------------------------------------------------------------
// Outline
// ---------------------------------------------------------------------------

func TestSession_GetCourseOutline_GeneratesAndCaches(t *testing.T) {
	t.Parallel()

	var got provider.OutlineRequest
	outlines := &mockOutlineGenerator{
		GenerateOutlineFunc: func(_ context.Context, req provider.OutlineRequest) ([]domain.Module, error) {
			got = req
			modules := twoLessonOutline()
			modules[0].Lessons[0].Completed = true
			return modules, nil
		},
	}
	env := newTestEnv(t, outlines, nil)
	s := env.open(t)

	course, err := s.GetCourseOutline(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, "Course One", got.CourseTitle)
	assert.Equal(t, []string{"https://img/1", "https://img/2"}, got.ImagePool)

	assert.Equal(t, "c1", course.ID)
	assert.Equal(t, "Course One", course.Title)
	require.Len(t, course.Modules, 1)
	assert.Equal(t, "Week 1: Basics", course.Modules[0].Title)
	for _, l := range course.Modules[0].Lessons {
		assert.False(t, l.Completed, "lesson %s normalised to not completed", l.ID)
	}

	raw, err := env.backend.Get(context.Background(), s.ID(), session.SlotCache)
	require.NoError(t, err)
	var cache domain.CourseCache
	require.NoError(t, json.Unmarshal(raw, &cache))
	assert.True(t, cache["c1"].HasOutline())
}

// Memoisation: a generator that fails on its second call is never called again.
func TestSession_GetCourseOutline_Memoised(t *testing.T) {
	t.Parallel()

	calls := 0
	outlines := &mockOutlineGenerator{
		GenerateOutlineFunc: func(context.Context, provider.OutlineRequest) ([]domain.Module, error) {
			calls++
			if calls > 1 {
				return nil, errors.New("called twice")
			}
			return twoLessonOutline(), nil
		},
	}
	env := newTestEnv(t, outlines, nil)
	s := env.open(t)

	first, err := s.GetCourseOutline(context.Background(), "c1")
	require.NoError(t, err)
	second, err := s.GetCourseOutline(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, outlines.calls.Load())
}

func TestSession_GetCourseOutline_UnknownCourse(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)
	s := env.open(t)

	_, err := s.GetCourseOutline(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualValues(t, 0, env.outlines.calls.Load())
}

func TestSession_GetCourseOutline_GeneratorErrorNotCached(t *testing.T) {
	t.Parallel()

	outlines := &mockOutlineGenerator{
		GenerateOutlineFunc: func(context.Context, provider.OutlineRequest) ([]domain.Module, error) {
			return nil, errors.New("model overloaded")
		},
	}
	env := newTestEnv(t, outlines, nil)
	s := env.open(t)

	_, err := s.GetCourseOutline(context.Background(), "c1")
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Equal(t, 0, env.store.Writes())

	// Nothing cached: the next call asks the generator again.
	_, err = s.GetCourseOutline(context.Background(), "c1")
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.EqualValues(t, 2, outlines.calls.Load())
}

func TestSession_GetCourseOutline_StoreErrorKeepsState(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)
	env.store.saveCacheErr = errors.New("disk full")
	s := env.open(t)

	_, err := s.GetCourseOutline(context.Background(), "c1")
	require.Error(t, err)

	_, err = s.GetLessonContent(context.Background(), "c1", "m1", "l1", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSession_GetCourseOutline_SingleFlight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	outlines := &mockOutlineGenerator{
		GenerateOutlineFunc: func(context.Context, provider.OutlineRequest) ([]domain.Module, error) {
			<-release
			return twoLessonOutline(), nil
		},
	}
	env := newTestEnv(t, outlines, nil)
	s := env.open(t)

	const n = 10
	var wg sync.WaitGroup
	results := make([]*domain.Course, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.GetCourseOutline(context.Background(), "c1")
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
	assert.EqualValues(t, 1, outlines.calls.Load())
	// One cache write for one generation.
	assert.Equal(t, 1, env.store.Writes())
}

func TestSession_GetCourseOutline_WaiterCancelDoesNotAbortGeneration(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	outlines := &mockOutlineGenerator{
		GenerateOutlineFunc: func(ctx context.Context, _ provider.OutlineRequest) ([]domain.Module, error) {
			close(started)
			select {
			case <-release:
				return twoLessonOutline(), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	env := newTestEnv(t, outlines, nil)
	s := env.open(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.GetCourseOutline(ctx, "c1")
		done <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(release)
	require.Eventually(t, func() bool { return env.store.Writes() == 1 }, time.Second, 5*time.Millisecond)

	_, err := s.GetCourseOutline(context.Background(), "c1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, outlines.calls.Load())
}

func TestSession_GetCourseOutline_GenerationTimeout(t *testing.T) {
	t.Parallel()

	outlines := &mockOutlineGenerator{
		GenerateOutlineFunc: func(ctx context.Context, _ provider.OutlineRequest) ([]domain.Module, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	env := newTestEnv(t, outlines, nil)
	env.manager.deps.genTimeout = 10 * time.Millisecond
	s := env.open(t)

	_, err := s.GetCourseOutline(context.Background(), "c1")
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// A generation that resolves after a signup must not resurrect the old cache.
func TestSession_GetCourseOutline_StaleAfterSignup(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	outlines := &mockOutlineGenerator{
		GenerateOutlineFunc: func(context.Context, provider.OutlineRequest) ([]domain.Module, error) {
			close(started)
			<-release
			return twoLessonOutline(), nil
		},
	}
	env := newTestEnv(t, outlines, nil)
	s := env.open(t)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		course, err := s.GetCourseOutline(ctx, "c1")
		if err == nil && !course.HasOutline() {
			err = errors.New("caller did not receive the outline")
		}
		done <- err
	}()
	<-started

	_, err := s.Signup(ctx, SignupInput{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-done)

	_, err = s.GetLessonContent(ctx, "c1", "m1", "l1", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSession_GetCourseOutline_CompletionDerivedFromProgress(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)
	s := env.open(t)
	ctx := context.Background()

	require.NoError(t, s.EnrollInCourse(ctx, "c1"))
	require.NoError(t, s.ToggleLessonCompletion(ctx, "c1", "l1"))

	course, err := s.GetCourseOutline(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, course.Modules[0].Lessons[0].Completed)
	assert.False(t, course.Modules[0].Lessons[1].Completed)

	// The cached record itself never carries the flag.
	raw, err := env.backend.Get(ctx, s.ID(), session.SlotCache)
	require.NoError(t, err)
	var cache domain.CourseCache
	require.NoError(t, json.Unmarshal(raw, &cache))
	assert.False(t, cache["c1"].Modules[0].Lessons[0].Completed)
}

// ---------------------------------------------------------------------------
// Lesson content
// ---------------------------------------------------------------------------

func TestSession_GetLessonContent_BeforeOutline(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)
	s := env.open(t)

	_, err := s.GetLessonContent(context.Background(), "c1", "m1", "l1", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualValues(t, 0, env.lessons.calls.Load())
	assert.EqualValues(t, 0, env.outlines.calls.Load())
}

func TestSession_GetLessonContent_UnknownLesson(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)
	s := env.open(t)
	ctx := context.Background()

	_, err := s.GetCourseOutline(ctx, "c1")
	require.NoError(t, err)

	_, err = s.GetLessonContent(ctx, "c1", "m1", "missing", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetLessonContent(ctx, "c1", "m9", "l1", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualValues(t, 0, env.lessons.calls.Load())
}

func TestSession_GetLessonContent_Memoised(t *testing.T) {
	t.Parallel()

	var got provider.LessonRequest
	lessons := &mockLessonGenerator{
		GenerateLessonFunc: func(_ context.Context, req provider.LessonRequest) (string, error) {
			got = req
			return "<div>quiz</div>", nil
		},
	}
	env := newTestEnv(t, nil, lessons)
	s := env.open(t)
	ctx := context.Background()

	_, err := s.GetCourseOutline(ctx, "c1")
	require.NoError(t, err)

	first, err := s.GetLessonContent(ctx, "c1", "m1", "l2", true)
	require.NoError(t, err)
	second, err := s.GetLessonContent(ctx, "c1", "m1", "l2", true)
	require.NoError(t, err)

	assert.Equal(t, "<div>quiz</div>", first.Content)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, lessons.calls.Load())
	assert.Equal(t, provider.LessonRequest{
		CourseTitle:  "Course One",
		LessonTitle:  "Week 1 Quiz",
		IsAssessment: true,
	}, got)

	// Other lessons of the module are untouched and the content survives a reload.
	reloaded := env.reopen(t, s.ID())
	l1, ok := reloaded.Lesson("c1", "m1", "l1")
	require.True(t, ok)
	assert.Empty(t, l1.Content)
	l2, ok := reloaded.Lesson("c1", "m1", "l2")
	require.True(t, ok)
	assert.Equal(t, "<div>quiz</div>", l2.Content)
}

func TestSession_GetLessonContent_SingleFlight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	lessons := &mockLessonGenerator{
		GenerateLessonFunc: func(context.Context, provider.LessonRequest) (string, error) {
			<-release
			return "<p>shared</p>", nil
		},
	}
	env := newTestEnv(t, nil, lessons)
	s := env.open(t)
	ctx := context.Background()

	_, err := s.GetCourseOutline(ctx, "c1")
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := s.GetLessonContent(ctx, "c1", "m1", "l1", false)
			assert.NoError(t, err)
			assert.Equal(t, "<p>shared</p>", l.Content)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, lessons.calls.Load())
}

func TestSession_GetLessonContent_GeneratorError(t *testing.T) {
	t.Parallel()

	lessons := &mockLessonGenerator{
		GenerateLessonFunc: func(context.Context, provider.LessonRequest) (string, error) {
			return "", errors.New("rate limited")
		},
	}
	env := newTestEnv(t, nil, lessons)
	s := env.open(t)
	ctx := context.Background()

	_, err := s.GetCourseOutline(ctx, "c1")
	require.NoError(t, err)
	writes := env.store.Writes()

	_, err = s.GetLessonContent(ctx, "c1", "m1", "l1", false)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Equal(t, writes, env.store.Writes())

	l1, ok := s.Lesson("c1", "m1", "l1")
	require.True(t, ok)
	assert.Empty(t, l1.Content)
}

func TestSession_GetLessonContent_ErrorPayloadNotCached(t *testing.T) {
	t.Parallel()

	payload := `{"error": "Sorry, there was an error generating the content for this lesson. Please try again."}`
	calls := 0
	lessons := &mockLessonGenerator{
		GenerateLessonFunc: func(context.Context, provider.LessonRequest) (string, error) {
			calls++
			if calls == 1 {
				return payload, nil
			}
			return "<p>ok</p>", nil
		},
	}
	env := newTestEnv(t, nil, lessons)
	s := env.open(t)
	ctx := context.Background()

	_, err := s.GetCourseOutline(ctx, "c1")
	require.NoError(t, err)

	first, err := s.GetLessonContent(ctx, "c1", "m1", "l1", false)
	require.NoError(t, err)
	assert.Equal(t, payload, first.Content)
	_, isErr := domain.ErrorPayloadMessage(first.Content)
	assert.True(t, isErr)

	second, err := s.GetLessonContent(ctx, "c1", "m1", "l1", false)
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", second.Content)
	assert.EqualValues(t, 2, lessons.calls.Load())
}

func TestSession_GetLessonContent_CompletionDerived(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil, nil)
	s := env.open(t)
	ctx := context.Background()

	require.NoError(t, s.EnrollInCourse(ctx, "c1"))
	require.NoError(t, s.ToggleLessonCompletion(ctx, "c1", "l1"))

	lesson, err := s.GetLessonContent(ctx, "c1", "m1", "l1", false)
	require.NoError(t, err)
	assert.True(t, lesson.Completed)

	cached, ok := s.Lesson("c1", "m1", "l1")
	require.True(t, ok)
	assert.False(t, cached.Completed)
}
