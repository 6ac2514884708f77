package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"cv-backend/internal/cv"
	"cv-backend/internal/llm"
	"cv-backend/internal/shared/telemetry"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Config holds the provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	api    *goopenai.Client
	model  string
	prompt *llm.Prompt
}

// ValidKeyFormat reports whether the key looks like an OpenAI secret key.
func ValidKeyFormat(key string) bool {
	return strings.HasPrefix(strings.TrimSpace(key), "sk-")
}

// NewClient constructs a new OpenAI client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required: %w", llm.ErrNotConfigured)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	apiCfg := goopenai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		apiCfg.BaseURL = strings.TrimRight(base, "/")
	}
	apiCfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{
		api:    goopenai.NewClientWithConfig(apiCfg),
		model:  model,
		prompt: llm.DefaultPrompt(),
	}, nil
}

// Name implements llm.Client.
func (c *Client) Name() string { return "openai" }

// ExtractCV implements llm.Client.
func (c *Client) ExtractCV(ctx context.Context, text string) (cv.StructuredCV, error) {
	user, err := c.prompt.Render(text)
	if err != nil {
		return cv.StructuredCV{}, err
	}
	req := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: c.prompt.Config.System},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if supportsTemperature(c.model) {
		req.Temperature = c.prompt.Config.Temperature
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return cv.StructuredCV{}, fmt.Errorf("openai error: status code: %d, message: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return cv.StructuredCV{}, fmt.Errorf("openai request: %w", err)
	}
	telemetry.Info("ai.response", map[string]any{
		"provider":          c.Name(),
		"model":             resp.Model,
		"prompt_version":    c.prompt.Config.Version,
		"prompt_hash":       llm.PromptHash(c.prompt.Config.System, user),
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"duration_ms":       time.Since(start).Milliseconds(),
	})
	if len(resp.Choices) == 0 {
		return cv.StructuredCV{}, fmt.Errorf("openai response missing choices: %w", llm.ErrEmptyResponse)
	}
	return llm.DecodeCV(resp.Choices[0].Message.Content)
}

// supportsTemperature reports whether the model accepts a sampling
// temperature. gpt-5 and o-series reasoning models only take the default.
func supportsTemperature(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	return !(strings.HasPrefix(m, "gpt-5") || strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4"))
}

var _ llm.Client = (*Client)(nil)
