package learning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/learnify-backend/internal/domain"
	"github.com/heartmarshall/learnify-backend/internal/provider"
)

// GetCourseOutline returns the course with its generated modules, generating
// and caching them on first use. Lesson completion flags reflect progress.
func (s *Session) GetCourseOutline(ctx context.Context, courseID string) (*domain.Course, error) {
	course, err := s.outline(ctx, courseID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	detail, _ := s.state.Progress.Get(courseID)
	s.mu.Unlock()

	out := course.WithCompletion(detail.IsCompleted)
	return &out, nil
}

// outline returns the cached outline of courseID or generates it.
func (s *Session) outline(ctx context.Context, courseID string) (domain.Course, error) {
	base, ok := s.catalog.Get(courseID)
	if !ok {
		return domain.Course{}, fmt.Errorf("course %q: %w", courseID, domain.ErrNotFound)
	}

	s.mu.Lock()
	cached, ok := s.state.Cache.Get(courseID)
	s.mu.Unlock()
	if ok && cached.HasOutline() {
		return cached, nil
	}

	v, err := s.generate(ctx, "outline:"+courseID, func(genCtx context.Context) (any, error) {
		epoch := s.currentEpoch()

		modules, err := s.outlines.GenerateOutline(genCtx, provider.OutlineRequest{
			CourseTitle: base.Title,
			ImagePool:   base.ModuleImagePool,
		})
		if err != nil {
			s.log.ErrorContext(genCtx, "outline generation failed",
				slog.String("session_id", s.id.String()),
				slog.String("course_id", courseID),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("generate outline %q: %w", courseID, generationError(err))
		}

		course := base.WithModules(modules)

		s.mu.Lock()
		defer s.mu.Unlock()

		if existing, ok := s.state.Cache.Get(courseID); ok && existing.HasOutline() {
			return existing, nil
		}
		if s.epoch != epoch {
			return course, nil
		}

		cache := s.state.Cache.With(course)
		if err := s.store.SaveCache(genCtx, s.id, cache); err != nil {
			return nil, fmt.Errorf("save cache: %w", err)
		}
		s.state.Cache = cache

		s.log.InfoContext(genCtx, "course outline generated",
			slog.String("session_id", s.id.String()),
			slog.String("course_id", courseID),
			slog.Int("modules", len(course.Modules)),
			slog.Int("lessons", course.TotalLessons()),
		)
		return course, nil
	})
	if err != nil {
		return domain.Course{}, err
	}
	return v.(domain.Course), nil
}

// GetLessonContent returns a lesson with its content, generating and caching
// the content on first use. The course outline must already be cached.
// A generator response encoding an error ({"error": ...}) is returned but
// not cached, so the next call tries again.
func (s *Session) GetLessonContent(ctx context.Context, courseID, moduleID, lessonID string, isAssessment bool) (*domain.Lesson, error) {
	s.mu.Lock()
	course, ok := s.state.Cache.Get(courseID)
	s.mu.Unlock()
	if !ok || !course.HasOutline() {
		return nil, fmt.Errorf("course %q outline: %w", courseID, domain.ErrNotFound)
	}

	lesson, ok := course.FindLesson(moduleID, lessonID)
	if !ok {
		return nil, fmt.Errorf("lesson %q in module %q: %w", lessonID, moduleID, domain.ErrNotFound)
	}
	if lesson.HasContent() {
		return s.withCompletion(courseID, lesson), nil
	}

	key := "lesson:" + courseID + "/" + moduleID + "/" + lessonID
	v, err := s.generate(ctx, key, func(genCtx context.Context) (any, error) {
		epoch := s.currentEpoch()

		content, err := s.lessons.GenerateLesson(genCtx, provider.LessonRequest{
			CourseTitle:  course.Title,
			LessonTitle:  lesson.Title,
			IsAssessment: isAssessment,
		})
		if err != nil {
			s.log.ErrorContext(genCtx, "lesson generation failed",
				slog.String("session_id", s.id.String()),
				slog.String("course_id", courseID),
				slog.String("lesson_id", lessonID),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("generate lesson %q: %w", lessonID, generationError(err))
		}

		generated := lesson
		generated.Content = content
		generated.Completed = false

		if msg, isErr := domain.ErrorPayloadMessage(content); isErr {
			s.log.WarnContext(genCtx, "lesson generator returned an error payload",
				slog.String("course_id", courseID),
				slog.String("lesson_id", lessonID),
				slog.String("message", msg),
			)
			return generated, nil
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		current, ok := s.state.Cache.Get(courseID)
		if !ok || s.epoch != epoch {
			return generated, nil
		}
		existing, ok := current.FindLesson(moduleID, lessonID)
		if !ok {
			return generated, nil
		}
		if existing.HasContent() {
			return existing, nil
		}

		cache := s.state.Cache.With(current.WithLesson(moduleID, generated))
		if err := s.store.SaveCache(genCtx, s.id, cache); err != nil {
			return nil, fmt.Errorf("save cache: %w", err)
		}
		s.state.Cache = cache

		s.log.InfoContext(genCtx, "lesson content generated",
			slog.String("session_id", s.id.String()),
			slog.String("course_id", courseID),
			slog.String("lesson_id", lessonID),
			slog.Bool("assessment", isAssessment),
		)
		return generated, nil
	})
	if err != nil {
		return nil, err
	}
	return s.withCompletion(courseID, v.(domain.Lesson)), nil
}

func (s *Session) withCompletion(courseID string, lesson domain.Lesson) *domain.Lesson {
	s.mu.Lock()
	detail, _ := s.state.Progress.Get(courseID)
	s.mu.Unlock()

	lesson.Completed = detail.IsCompleted(lesson.ID)
	return &lesson
}
