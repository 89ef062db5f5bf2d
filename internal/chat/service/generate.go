package service

import (
	"context"

	"fitment_chat_backend/internal/chat/prompt"
	"fitment_chat_backend/platform/ai/openai"
)

// Generator produces the final user-facing reply from the composed messages.
type Generator interface {
	Generate(ctx context.Context, messages []openai.Message) (string, error)
}

// OpenAIGenerator runs the reply call against a chat-completions model.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	style  prompt.Style
}

// NewOpenAIGenerator creates a generator from the prompt spec.
func NewOpenAIGenerator(client *openai.Client, model string, spec prompt.Spec) *OpenAIGenerator {
	return &OpenAIGenerator{client: client, model: model, style: spec.Reply.Style}
}

// Generate sends the composed conversation and returns the model reply.
func (g *OpenAIGenerator) Generate(ctx context.Context, messages []openai.Message) (string, error) {
	return g.client.Complete(ctx, messages, openai.CompleteOptions{
		Model:       g.model,
		Temperature: g.style.Temperature,
		MaxTokens:   g.style.MaxTokens,
	})
}
