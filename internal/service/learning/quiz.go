package learning

import (
	"fmt"

	"github.com/heartmarshall/learnify-backend/internal/domain"
)

// DayState is where a learner stands inside a regular lesson.
type DayState struct {
	Current         int   `json:"current"`
	UnlockedDays    []int `json:"unlockedDays"`
	SummaryUnlocked bool  `json:"summaryUnlocked"`
}

// QuizResult is the outcome of one daily quiz submission.
type QuizResult struct {
	Day    int     `json:"day"`
	Score  float64 `json:"score"`
	Passed bool    `json:"passed"`
	DayState
}

func dayKey(courseID, moduleID, lessonID string) string {
	return courseID + "/" + moduleID + "/" + lessonID
}

// LessonDayState reports the gated day progress of a lesson. Lessons nobody
// has submitted a quiz for start on day 1.
func (s *Session) LessonDayState(courseID, moduleID, lessonID string) DayState {
	s.mu.Lock()
	defer s.mu.Unlock()

	dp, ok := s.days[dayKey(courseID, moduleID, lessonID)]
	if !ok {
		dp = domain.NewDayProgress()
	}
	return snapshotDays(dp)
}

// SubmitQuiz grades the quiz of one day of a generated regular lesson. Only
// unlocked days can be graded; a pass unlocks the next day, and passing the
// last day unlocks the summary.
func (s *Session) SubmitQuiz(courseID, moduleID, lessonID string, day int, answers map[int]string) (QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	course, ok := s.state.Cache.Get(courseID)
	if !ok {
		return QuizResult{}, fmt.Errorf("course %s: %w", courseID, domain.ErrNotFound)
	}
	lesson, ok := course.FindLesson(moduleID, lessonID)
	if !ok || !lesson.HasContent() || lesson.IsAssessment {
		return QuizResult{}, fmt.Errorf("lesson %s: %w", lessonID, domain.ErrNotFound)
	}
	plan, err := domain.ParseLessonContent(lesson.Content)
	if err != nil {
		return QuizResult{}, fmt.Errorf("lesson %s has no quizzes: %w", lessonID, domain.ErrNotFound)
	}
	daily, ok := plan.Day(day)
	if !ok {
		return QuizResult{}, fmt.Errorf("lesson %s day %d: %w", lessonID, day, domain.ErrNotFound)
	}

	key := dayKey(courseID, moduleID, lessonID)
	dp, ok := s.days[key]
	if !ok {
		dp = domain.NewDayProgress()
	}
	if !dp.Select(day) {
		return QuizResult{}, domain.NewValidationError("day", "locked")
	}

	score, passed := dp.SubmitQuiz(daily.Quiz, answers)
	if s.days == nil {
		s.days = make(map[string]*domain.DayProgress)
	}
	s.days[key] = dp

	return QuizResult{Day: day, Score: score, Passed: passed, DayState: snapshotDays(dp)}, nil
}

func snapshotDays(dp *domain.DayProgress) DayState {
	return DayState{
		Current:         dp.Current,
		UnlockedDays:    dp.UnlockedDays(),
		SummaryUnlocked: dp.IsUnlocked(domain.SummaryDay),
	}
}
