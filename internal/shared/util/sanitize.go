package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFileNameLen caps the sanitized upload name in bytes.
const MaxFileNameLen = 120

// ErrInvalidFileName is returned for names that cannot be stored.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName turns an uploaded CV's name into a single object key
// segment. Separators become "_", control characters are dropped and long
// names are shortened with their extension kept.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.ToValidUTF8(name, ""))
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidFileName
	}
	if len(s) > MaxFileNameLen {
		ext := path.Ext(s)
		if len(ext) > MaxFileNameLen/4 {
			ext = ""
		}
		s = truncateUTF8(s[:len(s)-len(ext)], MaxFileNameLen-len(ext)) + ext
	}
	return s, nil
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
