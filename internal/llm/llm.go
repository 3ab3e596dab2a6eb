package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pavelanni/quizdrill/internal/llm/prompts"
	"github.com/pavelanni/quizdrill/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoChoices is returned when the API answers without any completion.
var ErrNoChoices = errors.New("LLM returned no choices")

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api     *openai.Client
	model   string
	variant prompts.PromptVariant
}

// New creates a new LLM client. An unknown variant falls back to the
// standard explanation prompt.
func New(baseURL, apiKey, modelName, variant string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	v := prompts.PromptStandard
	if prompts.IsValidVariant(variant) {
		v = prompts.PromptVariant(variant)
	} else if variant != "" {
		slog.Warn("unknown prompt variant, using standard", "variant", variant)
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		variant: v,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Variant returns the prompt variant used for explanations.
func (c *Client) Variant() prompts.PromptVariant { return c.variant }

// Ping checks that the API is reachable by listing models.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM API ping: %w", err)
	}
	return nil
}

// Explain asks the model why the correct answers of a missed question
// are correct and returns the plain-text explanation.
func (c *Client) Explain(ctx context.Context, entry model.MissedEntry) (string, error) {
	prompt, err := prompts.BuildExplainPrompt(c.variant, entry)
	if err != nil {
		return "", fmt.Errorf("build explain prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("LLM explanation", "variant", c.variant, "chars", len(text))
	return text, nil
}
