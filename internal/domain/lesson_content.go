package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Structured lesson content produced for regular (non-assessment) lessons.
// The cache stores it as an opaque string; these types are for callers that
// want to page through it.

const (
	// LessonDays is the number of daily units in a regular lesson.
	LessonDays = 5
	// PassThreshold is the quiz score, in percent, needed to unlock the next day.
	PassThreshold = 50
)

// QuizQuestion is a single multiple-choice question. Answer matches one of Options.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// DailyPlan is one day of a lesson.
type DailyPlan struct {
	Day         int            `json:"day"`
	Title       string         `json:"title"`
	ContentHTML string         `json:"contentHTML"`
	Quiz        []QuizQuestion `json:"quiz"`
}

// LessonContent is the decoded form of a regular lesson's content.
type LessonContent struct {
	LessonTitle string      `json:"lessonTitle"`
	DailyPlans  []DailyPlan `json:"dailyPlans"`
	SummaryHTML string      `json:"summaryHTML"`
}

// Day returns the plan for day n.
func (c LessonContent) Day(n int) (DailyPlan, bool) {
	for _, p := range c.DailyPlans {
		if p.Day == n {
			return p, true
		}
	}
	return DailyPlan{}, false
}

type errorPayload struct {
	Error *string `json:"error"`
}

// ErrorPayloadMessage reports whether content is a well-formed string that
// encodes a generation error ({"error": "..."}), and returns its message.
func ErrorPayloadMessage(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") {
		return "", false
	}
	var p errorPayload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil || p.Error == nil {
		return "", false
	}
	return *p.Error, true
}

// ParseLessonContent decodes a regular lesson's content. Error payloads are
// reported as ErrGeneration.
func ParseLessonContent(content string) (*LessonContent, error) {
	if msg, ok := ErrorPayloadMessage(content); ok {
		return nil, fmt.Errorf("lesson content: %w: %s", ErrGeneration, msg)
	}
	var lc LessonContent
	if err := json.Unmarshal([]byte(content), &lc); err != nil {
		return nil, fmt.Errorf("lesson content: decode: %w", err)
	}
	if len(lc.DailyPlans) == 0 {
		return nil, fmt.Errorf("lesson content: %w", NewValidationError("dailyPlans", "required"))
	}
	return &lc, nil
}

// QuizScore returns the percentage of questions whose answer matches
// answers[i]. An empty quiz scores 0.
func QuizScore(quiz []QuizQuestion, answers map[int]string) float64 {
	if len(quiz) == 0 {
		return 0
	}
	correct := 0
	for i, q := range quiz {
		if a, ok := answers[i]; ok && a == q.Answer {
			correct++
		}
	}
	return float64(correct) / float64(len(quiz)) * 100
}

// Passed reports whether score reaches PassThreshold.
func Passed(score float64) bool { return score >= PassThreshold }

// SummaryDay is the pseudo-day used to select the lesson summary.
const SummaryDay = LessonDays + 1

// DayProgress gates the daily units of a lesson: day 1 starts unlocked and
// passing day n's quiz unlocks day n+1. The summary unlocks after the last day
// is passed.
type DayProgress struct {
	Current  int
	unlocked map[int]bool
	passed   map[int]bool
}

// NewDayProgress starts on day 1.
func NewDayProgress() *DayProgress {
	return &DayProgress{
		Current:  1,
		unlocked: map[int]bool{1: true},
		passed:   map[int]bool{},
	}
}

// IsUnlocked reports whether day (or SummaryDay) can be opened.
func (d *DayProgress) IsUnlocked(day int) bool {
	if day == SummaryDay {
		return d.IsComplete()
	}
	return d.unlocked[day]
}

// Select moves to day if it is unlocked.
func (d *DayProgress) Select(day int) bool {
	if !d.IsUnlocked(day) {
		return false
	}
	d.Current = day
	return true
}

// SubmitQuiz scores the current day's quiz. A passing score unlocks and moves
// to the next day; after the last day it completes the lesson.
func (d *DayProgress) SubmitQuiz(quiz []QuizQuestion, answers map[int]string) (float64, bool) {
	score := QuizScore(quiz, answers)
	if !Passed(score) {
		return score, false
	}
	d.passed[d.Current] = true
	if next := d.Current + 1; next <= LessonDays {
		d.unlocked[next] = true
		d.Current = next
	}
	return score, true
}

// UnlockedDays lists the unlocked days in order.
func (d *DayProgress) UnlockedDays() []int {
	days := make([]int, 0, LessonDays)
	for day := 1; day <= LessonDays; day++ {
		if d.unlocked[day] {
			days = append(days, day)
		}
	}
	return days
}

// IsComplete reports whether every day's quiz has been passed.
func (d *DayProgress) IsComplete() bool {
	for day := 1; day <= LessonDays; day++ {
		if !d.passed[day] {
			return false
		}
	}
	return true
}
