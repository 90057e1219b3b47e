package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements relay.Generator using an OpenAI-compatible API.
type Generator struct {
	client llms.Model
}

// NewGenerator creates a generator bound to one model.
func NewGenerator(apiKey, baseURL, model string) (*Generator, error) {
	client, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return NewGeneratorWithModel(client), nil
}

// NewGeneratorWithModel wraps an existing langchaingo model.
func NewGeneratorWithModel(client llms.Model) *Generator {
	return &Generator{client: client}
}

// Generate sends prompt as a single user turn and returns the first
// choice's text, or an empty string when the model produced none.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := g.client.GenerateContent(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("ai service generate error: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", nil
	}

	return resp.Choices[0].Content, nil
}
