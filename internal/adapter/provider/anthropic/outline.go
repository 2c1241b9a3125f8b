package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/heartmarshall/learnify-backend/internal/domain"
	"github.com/heartmarshall/learnify-backend/internal/provider"
)

type outlineResponse struct {
	Modules []struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		ImageURL string `json:"imageUrl"`
		Lessons  []struct {
			ID           string `json:"id"`
			Title        string `json:"title"`
			IsAssessment bool   `json:"isAssessment"`
		} `json:"lessons"`
	} `json:"modules"`
}

// GenerateOutline produces the weekly modules of a course.
func (g *Generator) GenerateOutline(ctx context.Context, req provider.OutlineRequest) ([]domain.Module, error) {
	pool, err := json.Marshal(req.ImagePool)
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshal image pool: %w", err)
	}

	text, err := g.complete(ctx, "outline", "", []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(buildOutlinePrompt(req.CourseTitle, string(pool)))),
	})
	if err != nil {
		return nil, err
	}

	modules, err := parseOutline(text, req.ImagePool)
	if err != nil {
		return nil, fmt.Errorf("anthropic: outline for %q: %w: %w", req.CourseTitle, domain.ErrGeneration, err)
	}
	return modules, nil
}

// parseOutline decodes the model output. Image URLs outside the pool are
// replaced from the pool and lesson ids are made unique across modules.
func parseOutline(text string, pool []string) ([]domain.Module, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var resp outlineResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("decode outline: %w", err)
	}
	if len(resp.Modules) == 0 {
		return nil, fmt.Errorf("outline has no modules")
	}

	seen := make(map[string]struct{})
	modules := make([]domain.Module, 0, len(resp.Modules))
	for i, m := range resp.Modules {
		if m.ID == "" {
			m.ID = fmt.Sprintf("w%d", i+1)
		}
		if len(m.Lessons) == 0 {
			return nil, fmt.Errorf("module %q has no lessons", m.ID)
		}

		imageURL := m.ImageURL
		if len(pool) > 0 && !slices.Contains(pool, imageURL) {
			imageURL = pool[i%len(pool)]
		}

		lessons := make([]domain.Lesson, 0, len(m.Lessons))
		for j, l := range m.Lessons {
			id := l.ID
			if id == "" {
				id = fmt.Sprintf("%s-l%d", m.ID, j+1)
			}
			if _, dup := seen[id]; dup {
				id = m.ID + "-" + id
			}
			seen[id] = struct{}{}
			lessons = append(lessons, domain.Lesson{ID: id, Title: l.Title, IsAssessment: l.IsAssessment})
		}

		modules = append(modules, domain.Module{
			ID:       m.ID,
			Title:    m.Title,
			ImageURL: imageURL,
			Lessons:  lessons,
		})
	}
	return modules, nil
}
