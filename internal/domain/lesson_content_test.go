package domain

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeLessonContent(t *testing.T) string {
	t.Helper()

	lc := LessonContent{LessonTitle: "Goroutines", SummaryHTML: "<p>done</p>"}
	for day := 1; day <= LessonDays; day++ {
		lc.DailyPlans = append(lc.DailyPlans, DailyPlan{
			Day:         day,
			Title:       fmt.Sprintf("Day %d", day),
			ContentHTML: "<p>text</p>",
			Quiz: []QuizQuestion{
				{Question: "q1", Options: []string{"a", "b", "c", "d"}, Answer: "a"},
				{Question: "q2", Options: []string{"a", "b", "c", "d"}, Answer: "b"},
			},
		})
	}
	raw, err := json.Marshal(lc)
	require.NoError(t, err)
	return string(raw)
}

func TestParseLessonContent(t *testing.T) {
	t.Parallel()

	lc, err := ParseLessonContent(makeLessonContent(t))
	require.NoError(t, err)

	assert.Equal(t, "Goroutines", lc.LessonTitle)
	assert.Len(t, lc.DailyPlans, LessonDays)

	day3, ok := lc.Day(3)
	require.True(t, ok)
	assert.Equal(t, "Day 3", day3.Title)

	_, ok = lc.Day(9)
	assert.False(t, ok)
}

func TestParseLessonContent_ErrorPayload(t *testing.T) {
	t.Parallel()

	_, err := ParseLessonContent(`{"error": "Sorry, try again."}`)
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestParseLessonContent_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseLessonContent("<div>html</div>")
	assert.Error(t, err)

	_, err = ParseLessonContent(`{"lessonTitle":"x","dailyPlans":[]}`)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestErrorPayloadMessage(t *testing.T) {
	t.Parallel()

	_, ok := ErrorPayloadMessage(`  {"error": "boom"} `)
	assert.True(t, ok)
	_, ok = ErrorPayloadMessage(`{"lessonTitle": "x"}`)
	assert.False(t, ok)
	_, ok = ErrorPayloadMessage(`<p>{"error": "x"}</p>`)
	assert.False(t, ok)
	_, ok = ErrorPayloadMessage("")
	assert.False(t, ok)

	msg, ok := ErrorPayloadMessage(`{"error":"boom"}`)
	assert.True(t, ok)
	assert.Equal(t, "boom", msg)
}

func TestQuizScore(t *testing.T) {
	t.Parallel()

	quiz := []QuizQuestion{{Answer: "a"}, {Answer: "b"}, {Answer: "c"}, {Answer: "d"}}

	assert.Equal(t, 0.0, QuizScore(nil, nil))
	assert.Equal(t, 50.0, QuizScore(quiz, map[int]string{0: "a", 1: "b", 2: "x"}))
	assert.Equal(t, 100.0, QuizScore(quiz, map[int]string{0: "a", 1: "b", 2: "c", 3: "d"}))
	assert.True(t, Passed(50))
	assert.False(t, Passed(49.9))
}

func TestDayProgress_GatedAdvance(t *testing.T) {
	t.Parallel()

	lc, err := ParseLessonContent(makeLessonContent(t))
	require.NoError(t, err)

	dp := NewDayProgress()
	assert.True(t, dp.IsUnlocked(1))
	assert.False(t, dp.IsUnlocked(2))
	assert.False(t, dp.Select(2))
	assert.False(t, dp.IsUnlocked(SummaryDay))

	day1, _ := lc.Day(1)
	score, passed := dp.SubmitQuiz(day1.Quiz, map[int]string{0: "x", 1: "x"})
	assert.Equal(t, 0.0, score)
	assert.False(t, passed)
	assert.Equal(t, 1, dp.Current)
	assert.False(t, dp.IsUnlocked(2))
	assert.Equal(t, []int{1}, dp.UnlockedDays())

	for day := 1; day <= LessonDays; day++ {
		plan, ok := lc.Day(day)
		require.True(t, ok)
		require.Equal(t, day, dp.Current)
		_, passed := dp.SubmitQuiz(plan.Quiz, map[int]string{0: "a"})
		require.True(t, passed, "one of two correct is a pass")
	}

	assert.Equal(t, LessonDays, dp.Current)
	assert.True(t, dp.IsComplete())
	assert.True(t, dp.Select(SummaryDay))
	assert.True(t, dp.Select(2), "earlier days stay unlocked")
	assert.Equal(t, []int{1, 2, 3, 4, 5}, dp.UnlockedDays())
}
