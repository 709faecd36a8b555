// Package openai adapts the OpenAI chat completion API to the engine's
// LLMClient port.
package openai

import (
	"context"
	"fmt"
	"os"
	"strings"

	backend "github.com/sashabaranov/go-openai"
	"github.com/weftlabs/weft/pkg/ports"
)

const defaultModel = "gpt-4o-mini"

// Config holds client settings. Model defaults to gpt-4o-mini; BaseURL is
// optional and covers OpenAI-compatible local endpoints.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client implements ports.LLMClient.
type Client struct {
	client *backend.Client
	model  string
}

// New creates a client from explicit configuration.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	backendCfg := backend.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		backendCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		client: backend.NewClientWithConfig(backendCfg),
		model:  model,
	}, nil
}

// NewFromEnv reads OPENAI_API_KEY, OPENAI_MODEL and OPENAI_BASE_URL.
func NewFromEnv() (*Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("openai: OPENAI_API_KEY environment variable not set")
	}
	return New(Config{
		APIKey:  apiKey,
		Model:   os.Getenv("OPENAI_MODEL"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	})
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete implements ports.LLMClient.
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (ports.Completion, error) {
	messages := make([]backend.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, backend.ChatCompletionMessage{
			Role:    backend.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, backend.ChatCompletionMessage{
		Role:    backend.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := backend.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	if req.Temperature > 0 {
		chatReq.Temperature = req.Temperature
	}
	if req.MaxTokens > 0 {
		chatReq.MaxCompletionTokens = req.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return ports.Completion{}, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ports.Completion{}, fmt.Errorf("openai returned no choices")
	}
	return ports.Completion{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
	}, nil
}
