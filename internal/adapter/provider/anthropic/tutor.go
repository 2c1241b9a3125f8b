package anthropic

import (
	"context"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/heartmarshall/learnify-backend/internal/provider"
)

// Chat continues a tutor conversation with the given system instruction.
// Model turns before the first user turn are dropped: the conversation sent
// to the API must open with a user message.
func (g *Generator) Chat(ctx context.Context, system string, history []provider.ChatTurn, prompt string) (string, error) {
	for len(history) > 0 && history[0].Role == provider.RoleModel {
		history = history[1:]
	}

	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, turn := range history {
		block := anthropic.NewTextBlock(turn.Text)
		if turn.Role == provider.RoleModel {
			messages = append(messages, anthropic.NewAssistantMessage(block))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(block))
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))

	return g.complete(ctx, "tutor", system, messages)
}
