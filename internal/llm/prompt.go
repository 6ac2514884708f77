package llm

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/cv_extract.prompt
var cvExtractPrompt string

// PromptConfig is the YAML frontmatter of a prompt file.
type PromptConfig struct {
	Name          string  `yaml:"name"`
	Version       string  `yaml:"version"`
	System        string  `yaml:"system"`
	Temperature   float32 `yaml:"temperature"`
	MaxInputChars int     `yaml:"maxInputChars"`
}

// Prompt is a parsed prompt file: frontmatter plus a text/template body.
type Prompt struct {
	Config   PromptConfig
	Template *template.Template
}

// ParsePrompt reads "---\n<yaml>\n---\n<body>" prompt text.
func ParsePrompt(data string) (*Prompt, error) {
	parts := strings.SplitN(data, "---", 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid prompt format: missing frontmatter delimiters")
	}
	var cfg PromptConfig
	if err := yaml.Unmarshal([]byte(parts[1]), &cfg); err != nil {
		return nil, fmt.Errorf("parse prompt frontmatter: %w", err)
	}
	tmpl, err := template.New(cfg.Name).Parse(strings.TrimSpace(parts[2]))
	if err != nil {
		return nil, fmt.Errorf("parse prompt body: %w", err)
	}
	return &Prompt{Config: cfg, Template: tmpl}, nil
}

var (
	defaultPromptOnce sync.Once
	defaultPrompt     *Prompt
)

// DefaultPrompt returns the embedded CV extraction prompt.
func DefaultPrompt() *Prompt {
	defaultPromptOnce.Do(func() {
		p, err := ParsePrompt(cvExtractPrompt)
		if err != nil {
			panic(fmt.Sprintf("embedded prompt: %v", err))
		}
		defaultPrompt = p
	})
	return defaultPrompt
}

// Render fills the body with the CV text, truncated to MaxInputChars runes.
func (p *Prompt) Render(text string) (string, error) {
	if limit := p.Config.MaxInputChars; limit > 0 {
		if runes := []rune(text); len(runes) > limit {
			text = string(runes[:limit])
		}
	}
	var buf bytes.Buffer
	if err := p.Template.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// PromptHash identifies a rendered prompt in logs without logging CV text.
func PromptHash(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\n\n")))
	return hex.EncodeToString(sum[:])
}
