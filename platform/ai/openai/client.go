// Package openai wraps the OpenAI chat-completions API behind a small client.
// This is part of the platform layer and contains no business logic.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Config for the completion client.
type Config struct {
	APIKey  string
	BaseURL string // optional, for OpenAI-compatible gateways
}

// Message is a single chat message handed to the model.
type Message struct {
	Role    string
	Content string
}

// Chat message roles.
const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Client calls the OpenAI chat-completions API.
type Client struct {
	client *openai.Client
}

// NewClient creates a completion client. The API key is validated lazily by
// the upstream API on first use.
func NewClient(cfg Config) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &Client{client: openai.NewClientWithConfig(clientConfig)}
}

// CompleteOptions tune a single completion call.
type CompleteOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Complete sends the message array to the model and returns the text of the
// first choice.
func (c *Client) Complete(ctx context.Context, messages []Message, opts CompleteOptions) (string, error) {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Messages:    converted,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
