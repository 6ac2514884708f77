package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cv-backend/internal/cv"
)

// Client abstracts AI providers that turn CV text into a StructuredCV.
type Client interface {
	// Name is the analysis method reported for results from this provider.
	Name() string
	ExtractCV(ctx context.Context, text string) (cv.StructuredCV, error)
}

var (
	// ErrNotConfigured is returned when no provider credentials are present.
	ErrNotConfigured = errors.New("ai provider not configured")
	// ErrEmptyResponse is returned when the provider answers without content.
	ErrEmptyResponse = errors.New("ai provider returned empty content")
)

// DecodeCV parses a model answer into a normalized StructuredCV. Markdown
// code fences around the JSON object are tolerated.
func DecodeCV(raw string) (cv.StructuredCV, error) {
	content := stripCodeFence(strings.TrimSpace(raw))
	if content == "" {
		return cv.StructuredCV{}, ErrEmptyResponse
	}
	var out cv.StructuredCV
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return cv.StructuredCV{}, fmt.Errorf("decode ai response: %w", err)
	}
	out.Normalize()
	return out, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
