// Package stub is an offline content generator. It produces deterministic
// outlines and lessons so the service runs without an API key.
package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/heartmarshall/learnify-backend/internal/domain"
	"github.com/heartmarshall/learnify-backend/internal/provider"
)

const (
	weeks           = 4
	lessonsPerWeek  = 3
	questionsPerDay = 2
)

var weekTopics = [weeks]string{"Foundations", "Core Concepts", "Applied Practice", "Capstone"}

// Generator is safe for concurrent use.
type Generator struct{}

// NewGenerator creates a stub generator.
func NewGenerator() *Generator { return &Generator{} }

// GenerateOutline returns four weeks of three lessons plus a closing quiz.
func (g *Generator) GenerateOutline(ctx context.Context, req provider.OutlineRequest) ([]domain.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	modules := make([]domain.Module, 0, weeks)
	for w := range weeks {
		moduleID := fmt.Sprintf("w%d", w+1)
		var imageURL string
		if len(req.ImagePool) > 0 {
			imageURL = req.ImagePool[w%len(req.ImagePool)]
		}

		lessons := make([]domain.Lesson, 0, lessonsPerWeek+1)
		for l := range lessonsPerWeek {
			lessons = append(lessons, domain.Lesson{
				ID:    fmt.Sprintf("%s-l%d", moduleID, l+1),
				Title: fmt.Sprintf("%s %s, Part %d", req.CourseTitle, weekTopics[w], l+1),
			})
		}
		lessons = append(lessons, domain.Lesson{
			ID:           moduleID + "-quiz",
			Title:        fmt.Sprintf("Week %d Quiz", w+1),
			IsAssessment: true,
		})

		modules = append(modules, domain.Module{
			ID:       moduleID,
			Title:    fmt.Sprintf("Week %d: %s", w+1, weekTopics[w]),
			ImageURL: imageURL,
			Lessons:  lessons,
		})
	}
	return modules, nil
}

// GenerateLesson returns an HTML quiz for assessments and a five-day
// structured plan otherwise.
func (g *Generator) GenerateLesson(ctx context.Context, req provider.LessonRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.IsAssessment {
		return assessmentHTML(req.LessonTitle), nil
	}

	content := domain.LessonContent{
		LessonTitle: req.LessonTitle,
		SummaryHTML: fmt.Sprintf(`<p class="text-gray-300 leading-relaxed mb-4">✅ You finished <strong>%s</strong>.</p>`,
			html.EscapeString(req.LessonTitle)),
	}
	for day := 1; day <= domain.LessonDays; day++ {
		plan := domain.DailyPlan{
			Day:   day,
			Title: fmt.Sprintf("Day %d: %s", day, req.LessonTitle),
			ContentHTML: fmt.Sprintf(`<p class="text-gray-300 leading-relaxed mb-4">🚀 Day %d of <strong>%s</strong> in %s.</p>`,
				day, html.EscapeString(req.LessonTitle), html.EscapeString(req.CourseTitle)),
		}
		for q := range questionsPerDay {
			plan.Quiz = append(plan.Quiz, domain.QuizQuestion{
				Question: fmt.Sprintf("Day %d, question %d: which option is correct?", day, q+1),
				Options:  []string{"Option A", "Option B", "Option C", "Option D"},
				Answer:   "Option A",
			})
		}
		content.DailyPlans = append(content.DailyPlans, plan)
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("stub: marshal lesson: %w", err)
	}
	return string(raw), nil
}

// Chat answers with a fixed acknowledgement of the prompt.
func (g *Generator) Chat(ctx context.Context, _ string, history []provider.ChatTurn, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("💡 (offline tutor, turn %d) You asked: %s", len(history)/2+1, strings.TrimSpace(prompt)), nil
}

func assessmentHTML(title string) string {
	var b strings.Builder
	b.WriteString(`<div class="p-6 bg-gray-800 border border-gray-700 rounded-lg"><form>`)
	fmt.Fprintf(&b, `<h3 class="text-xl font-bold mb-4">%s</h3>`, html.EscapeString(title))
	for q := 1; q <= 5; q++ {
		fmt.Fprintf(&b, `<div class="my-6"><p class="font-semibold text-lg mb-2">%d. Which option is correct?</p><ul>`, q)
		for _, opt := range []string{"A", "B", "C", "D"} {
			fmt.Fprintf(&b, `<li><label><input type="radio" name="q%d" value="%s"> Option %s</label></li>`, q, opt, opt)
		}
		b.WriteString(`</ul></div>`)
	}
	b.WriteString(`</form><p class="mt-6 pt-4 border-t border-gray-600 text-sm text-gray-400">Correct Answers: 1-A, 2-A, 3-A, 4-A, 5-A</p></div>`)
	return b.String()
}
