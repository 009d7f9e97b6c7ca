package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/audience/internal/domain"
)

// Completer sends a system and user message pair to the chat completions
// endpoint and returns the first choice.
type Completer struct {
	client      *openai.Client
	model       string
	temperature float32
	user        string
	logger      *zap.Logger
}

// NewCompleter creates a chat client. Dimensions in cfg are ignored.
func NewCompleter(cfg *Config, temperature float32) *Completer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Completer{
		client:      newClient(cfg),
		model:       cfg.Model,
		temperature: temperature,
		user:        cfg.User,
		logger:      logger,
	}
}

// Complete returns the assistant reply for one exchange.
func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.temperature,
		User:        c.user,
	})
	if err != nil {
		return "", parseAPIError(err, domain.ErrRefinerError)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrRefinerError)
	}

	c.logger.Debug("Completion received",
		zap.String("model", c.model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
