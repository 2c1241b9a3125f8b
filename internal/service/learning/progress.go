package learning

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/heartmarshall/learnify-backend/internal/domain"
)

// EnrollInCourse creates the progress detail of courseID, generating the
// outline first when needed. Enrolling twice is a no-op.
func (s *Session) EnrollInCourse(ctx context.Context, courseID string) error {
	s.mu.Lock()
	enrolled := s.state.Progress.IsEnrolled(courseID)
	s.mu.Unlock()
	if enrolled {
		return nil
	}

	course, err := s.outline(ctx, courseID)
	if err != nil {
		return fmt.Errorf("enroll %q: %w", courseID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A concurrent enrollment may have finished while the outline resolved.
	if s.state.Progress.IsEnrolled(courseID) {
		return nil
	}

	progress := s.state.Progress.WithEnrollment(courseID, course.TotalLessons())
	if err := s.store.SaveProgress(ctx, s.id, progress); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	s.state.Progress = progress

	s.log.InfoContext(ctx, "enrolled in course",
		slog.String("session_id", s.id.String()),
		slog.String("course_id", courseID),
		slog.Int("total_lessons", course.TotalLessons()),
	)
	return nil
}

// GetCourseProgress returns the completion percentage of courseID, 0 when
// not enrolled.
func (s *Session) GetCourseProgress(courseID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Progress.Percent(courseID)
}

// ToggleLessonCompletion flips lessonID's completion in courseID. It is a
// no-op when not enrolled. A lesson id absent from the cached outline is
// rejected with domain.ErrNotFound.
func (s *Session) ToggleLessonCompletion(ctx context.Context, courseID, lessonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Progress.IsEnrolled(courseID) {
		return nil
	}
	if course, ok := s.state.Cache.Get(courseID); ok && course.HasOutline() && !course.HasLesson(lessonID) {
		return fmt.Errorf("lesson %q in course %q: %w", lessonID, courseID, domain.ErrNotFound)
	}

	progress, _ := s.state.Progress.WithToggled(courseID, lessonID)
	if err := s.store.SaveProgress(ctx, s.id, progress); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	s.state.Progress = progress

	detail, _ := progress.Get(courseID)
	s.log.DebugContext(ctx, "lesson completion toggled",
		slog.String("session_id", s.id.String()),
		slog.String("course_id", courseID),
		slog.String("lesson_id", lessonID),
		slog.Bool("completed", detail.IsCompleted(lessonID)),
	)
	return nil
}

// Overview summarises progress across enrolled courses in course id order.
func (s *Session) Overview() Overview {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Overview{Courses: []CourseSummary{}}
	if u := s.state.User; u != nil {
		out.XP, out.Level, out.Streak = u.XP, u.Level, u.Streak
	}

	sum := 0
	for _, id := range s.state.Progress.CourseIDs() {
		detail, _ := s.state.Progress.Get(id)
		title := id
		if c, ok := s.catalog.Get(id); ok {
			title = c.Title
		}
		summary := CourseSummary{
			CourseID:  id,
			Title:     title,
			Percent:   detail.Percent(),
			Completed: detail.CompletedCount(),
			Total:     detail.TotalLessons,
		}
		sum += summary.Percent
		out.Courses = append(out.Courses, summary)
	}
	if len(out.Courses) > 0 {
		out.AveragePercent = int(math.Round(float64(sum) / float64(len(out.Courses))))
	}
	return out
}
