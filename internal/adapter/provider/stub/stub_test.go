package stub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/learnify-backend/internal/domain"
	"github.com/heartmarshall/learnify-backend/internal/provider"
)

func TestGenerator_GenerateOutline(t *testing.T) {
	t.Parallel()

	g := NewGenerator()
	pool := []string{"https://img/a", "https://img/b"}

	modules, err := g.GenerateOutline(context.Background(), provider.OutlineRequest{CourseTitle: "Go", ImagePool: pool})
	require.NoError(t, err)
	require.Len(t, modules, weeks)

	seen := map[string]bool{}
	for i, m := range modules {
		assert.Equal(t, pool[i%len(pool)], m.ImageURL)
		require.Len(t, m.Lessons, lessonsPerWeek+1)
		assert.True(t, m.Lessons[len(m.Lessons)-1].IsAssessment, "last lesson of %s is an assessment", m.ID)
		for _, l := range m.Lessons {
			assert.False(t, seen[l.ID], "duplicate lesson id %s", l.ID)
			seen[l.ID] = true
		}
	}

	again, err := g.GenerateOutline(context.Background(), provider.OutlineRequest{CourseTitle: "Go", ImagePool: pool})
	require.NoError(t, err)
	assert.Equal(t, modules, again)
}

func TestGenerator_GenerateLesson_Structured(t *testing.T) {
	t.Parallel()

	content, err := NewGenerator().GenerateLesson(context.Background(), provider.LessonRequest{
		CourseTitle: "Go",
		LessonTitle: "Closures",
	})
	require.NoError(t, err)

	parsed, err := domain.ParseLessonContent(content)
	require.NoError(t, err)
	assert.Equal(t, "Closures", parsed.LessonTitle)
	require.Len(t, parsed.DailyPlans, domain.LessonDays)
	for _, p := range parsed.DailyPlans {
		require.Len(t, p.Quiz, questionsPerDay)
		assert.Contains(t, p.Quiz[0].Options, p.Quiz[0].Answer)
	}
}

func TestGenerator_GenerateLesson_Assessment(t *testing.T) {
	t.Parallel()

	content, err := NewGenerator().GenerateLesson(context.Background(), provider.LessonRequest{
		LessonTitle:  "Week 1 Quiz",
		IsAssessment: true,
	})
	require.NoError(t, err)
	assert.Contains(t, content, "<form>")
	assert.Contains(t, content, "Correct Answers")
	_, isErr := domain.ErrorPayloadMessage(content)
	assert.False(t, isErr)
}

func TestGenerator_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator().GenerateOutline(ctx, provider.OutlineRequest{CourseTitle: "Go"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerator_Chat(t *testing.T) {
	t.Parallel()

	reply, err := NewGenerator().Chat(context.Background(), "system", nil, " hello ")
	require.NoError(t, err)
	assert.Contains(t, reply, "hello")
}
