package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCVNormalizes(t *testing.T) {
	out, err := DecodeCV("```json\n{\"personalInfo\":{\"name\":\"Ana Silva\"},\"experience\":[{\"title\":\"Dev\"}]}\n```")
	require.NoError(t, err)

	assert.Equal(t, "Ana Silva", out.PersonalInfo.Name)
	assert.NotNil(t, out.Education)
	assert.NotNil(t, out.Experience[0].Responsibilities)
	assert.NotNil(t, out.Skills.Languages)
}

func TestDecodeCVErrors(t *testing.T) {
	_, err := DecodeCV("   ")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = DecodeCV("I could not read this CV.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode ai response")
}

func TestDefaultPromptFrontmatter(t *testing.T) {
	p := DefaultPrompt()

	assert.Equal(t, "cv_extract", p.Config.Name)
	assert.NotEmpty(t, p.Config.System)
	assert.Positive(t, p.Config.MaxInputChars)

	rendered, err := p.Render("Name: Alice Wong")
	require.NoError(t, err)
	assert.Contains(t, rendered, "Name: Alice Wong")
	assert.Contains(t, rendered, `"personalInfo"`)
}

func TestRenderTruncatesInput(t *testing.T) {
	p, err := ParsePrompt("---\nname: t\nmaxInputChars: 5\n---\n[{{.Text}}]")
	require.NoError(t, err)

	out, err := p.Render("héllo world")
	require.NoError(t, err)
	assert.Equal(t, "[héllo]", out)
}

func TestParsePromptRequiresFrontmatter(t *testing.T) {
	_, err := ParsePrompt("no frontmatter here")
	assert.Error(t, err)
}

func TestPromptHashDeterministic(t *testing.T) {
	assert.Equal(t, PromptHash("a", "b"), PromptHash("a", "b"))
	assert.NotEqual(t, PromptHash("a", "b"), PromptHash("a", "c"))
}

func TestSanitizeError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("wrap: %w", ErrNotConfigured), "provider not configured"},
		{errors.New("openai error: status code: 401, message: Incorrect API key provided"), "authentication failed with provider"},
		{errors.New("status code: 429, message: Rate limit reached"), "rate limit exceeded"},
		{fmt.Errorf("openai request: %w", context.DeadlineExceeded), "request timed out"},
		{errors.New("decode ai response: invalid character"), "malformed response from provider"},
		{errors.New("dial tcp 10.0.0.1:443: connection refused"), "provider temporarily unavailable"},
	}
	for _, tc := range cases {
		got := SanitizeError(tc.err)
		assert.Equal(t, tc.want, got)
		assert.False(t, strings.Contains(got, "10.0.0.1"))
	}
}
