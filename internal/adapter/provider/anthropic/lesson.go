package anthropic

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/heartmarshall/learnify-backend/internal/domain"
	"github.com/heartmarshall/learnify-backend/internal/provider"
)

// GenerateLesson produces lesson content. Assessments come back as an HTML
// snippet; regular lessons as the structured five-day JSON document.
func (g *Generator) GenerateLesson(ctx context.Context, req provider.LessonRequest) (string, error) {
	if req.IsAssessment {
		text, err := g.complete(ctx, "assessment", "", []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildAssessmentPrompt(req.CourseTitle, req.LessonTitle))),
		})
		if err != nil {
			return "", err
		}
		return stripCodeFence(text), nil
	}

	text, err := g.complete(ctx, "lesson", "", []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(buildLessonPrompt(req.CourseTitle, req.LessonTitle))),
	})
	if err != nil {
		return "", err
	}

	raw, err := extractJSON(text)
	if err != nil {
		return "", fmt.Errorf("anthropic: lesson %q: %w: %w", req.LessonTitle, domain.ErrGeneration, err)
	}
	if _, err := domain.ParseLessonContent(raw); err != nil {
		return "", fmt.Errorf("anthropic: lesson %q: %w: %w", req.LessonTitle, domain.ErrGeneration, err)
	}
	return raw, nil
}

// stripCodeFence removes a surrounding ```html fence if the model added one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i != -1 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
