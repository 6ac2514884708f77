package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"cv-backend/internal/cv"
	"cv-backend/internal/llm"
	"cv-backend/internal/shared/telemetry"
)

// DefaultModel is used when GEMINI_MODEL is unset.
const DefaultModel = "gemini-2.0-flash"

// Client implements llm.Client with the Gemini API.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	prompt *llm.Prompt
}

// NewClient constructs a Gemini client. Close releases the connection.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required: %w", llm.ErrNotConfigured)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(strings.TrimSpace(apiKey)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = DefaultModel
	}
	prompt := llm.DefaultPrompt()
	model := client.GenerativeModel(modelName)
	model.SetTemperature(prompt.Config.Temperature)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.Config.System)}}
	return &Client{client: client, model: model, name: modelName, prompt: prompt}, nil
}

// Name implements llm.Client.
func (c *Client) Name() string { return "gemini" }

// ExtractCV implements llm.Client.
func (c *Client) ExtractCV(ctx context.Context, text string) (cv.StructuredCV, error) {
	user, err := c.prompt.Render(text)
	if err != nil {
		return cv.StructuredCV{}, err
	}
	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return cv.StructuredCV{}, fmt.Errorf("gemini request failed: %w", err)
	}
	telemetry.Info("ai.response", map[string]any{
		"provider":       c.Name(),
		"model":          c.name,
		"prompt_version": c.prompt.Config.Version,
		"prompt_hash":    llm.PromptHash(c.prompt.Config.System, user),
		"duration_ms":    time.Since(start).Milliseconds(),
	})
	return llm.DecodeCV(responseText(resp))
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

var _ llm.Client = (*Client)(nil)
