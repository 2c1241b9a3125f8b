// Package anthropic generates course outlines, lesson content and tutor
// replies with Claude.
package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/heartmarshall/learnify-backend/internal/domain"
)

// Config configures the generator.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int64
	Timeout   time.Duration
	// BaseURL overrides the API endpoint (for testing).
	BaseURL string
}

// Generator calls the Messages API. It is safe for concurrent use.
type Generator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	log       *slog.Logger
}

// NewGenerator creates a Generator. The SDK's own retries are disabled:
// a failed generation is surfaced to the caller as is.
func NewGenerator(cfg Config, logger *slog.Logger) *Generator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Generator{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		log:       logger.With("adapter", "anthropic"),
	}
}

// complete sends one request and returns the text of the first content block.
func (g *Generator) complete(ctx context.Context, op string, system string, messages []anthropic.MessageParam) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages:  messages,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	start := time.Now()
	msg, err := g.client.Messages.New(ctx, params)
	if err != nil {
		g.log.ErrorContext(ctx, "llm request failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("anthropic: %s: %w: %w", op, domain.ErrGeneration, err)
	}

	if len(msg.Content) == 0 || strings.TrimSpace(msg.Content[0].Text) == "" {
		return "", fmt.Errorf("anthropic: %s: empty response: %w", op, domain.ErrGeneration)
	}

	g.log.DebugContext(ctx, "llm response",
		slog.String("op", op),
		slog.Duration("duration", time.Since(start)),
		slog.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	return msg.Content[0].Text, nil
}

// extractJSON finds the outermost JSON object in a string.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}
