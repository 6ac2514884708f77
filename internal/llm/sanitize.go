package llm

import (
	"errors"
	"strings"
)

// clientSafePatterns maps provider error fragments to messages that are safe
// to return to API callers. Order matters: the first match wins.
var clientSafePatterns = []struct {
	pattern, message string
}{
	{"not configured", "provider not configured"},
	{"insufficient text", "insufficient text for AI analysis"},
	{"incorrect api key", "authentication failed with provider"},
	{"invalid api", "authentication failed with provider"},
	{"invalid_api_key", "authentication failed with provider"},
	{"api key not valid", "authentication failed with provider"},
	{"status code: 401", "authentication failed with provider"},
	{"unauthorized", "authentication failed with provider"},
	{"forbidden", "access denied by provider"},
	{"status code: 403", "access denied by provider"},
	{"rate limit", "rate limit exceeded"},
	{"status code: 429", "rate limit exceeded"},
	{"quota", "quota exceeded"},
	{"context deadline exceeded", "request timed out"},
	{"timeout", "request timed out"},
	{"context canceled", "request cancelled"},
	{"decode ai response", "malformed response from provider"},
	{"empty content", "empty response from provider"},
	{"not found", "model not found"},
}

// SanitizeError converts a provider error into a client-safe message.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNotConfigured) {
		return "provider not configured"
	}
	lower := strings.ToLower(err.Error())
	for _, p := range clientSafePatterns {
		if strings.Contains(lower, p.pattern) {
			return p.message
		}
	}
	return "provider temporarily unavailable"
}
