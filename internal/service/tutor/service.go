// Package tutor answers learner questions through the chat generator.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/learnify-backend/internal/domain"
	"github.com/heartmarshall/learnify-backend/internal/provider"
)

// SystemInstruction sets the tutor persona.
const SystemInstruction = "You are an expert AI learning assistant for a platform called E-Learnify. " +
	"Your name is Genu. Be encouraging, helpful, and clear. Your goal is to be a comprehensive learning " +
	"companion, acting as a mentor and study buddy. Format your responses using markdown for readability."

const (
	maxPromptLen  = 4000
	maxHistoryLen = 50
)

type chatGenerator interface {
	Chat(ctx context.Context, system string, history []provider.ChatTurn, prompt string) (string, error)
}

// Service is stateless; the conversation history travels with each request.
type Service struct {
	log  *slog.Logger
	chat chatGenerator
}

// NewService creates a tutor service.
func NewService(logger *slog.Logger, chat chatGenerator) *Service {
	return &Service{
		log:  logger.With("service", "tutor"),
		chat: chat,
	}
}

// AskInput is one tutor question with the conversation so far.
type AskInput struct {
	Prompt  string
	History []provider.ChatTurn
}

// Validate validates the ask input.
func (i AskInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.Prompt) == "" {
		errs = append(errs, domain.FieldError{Field: "prompt", Message: "required"})
	} else if len(i.Prompt) > maxPromptLen {
		errs = append(errs, domain.FieldError{Field: "prompt", Message: "too long"})
	}

	if len(i.History) > maxHistoryLen {
		errs = append(errs, domain.FieldError{Field: "history", Message: "too many turns"})
	}
	for n, turn := range i.History {
		if turn.Role != provider.RoleUser && turn.Role != provider.RoleModel {
			errs = append(errs, domain.FieldError{Field: fmt.Sprintf("history[%d].role", n), Message: "must be user or model"})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Ask returns the tutor's reply. Generator failures surface as
// domain.ErrGeneration.
func (s *Service) Ask(ctx context.Context, in AskInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	reply, err := s.chat.Chat(ctx, SystemInstruction, in.History, strings.TrimSpace(in.Prompt))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.log.ErrorContext(ctx, "tutor reply failed", slog.String("error", err.Error()))
		if !errors.Is(err, domain.ErrGeneration) {
			err = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
		}
		return "", fmt.Errorf("tutor reply: %w", err)
	}

	return reply, nil
}
