package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var horizontalSpaceRe = regexp.MustCompile(`[ \t\f\v\r]+`)

// latin1 maps every byte to the rune with the same value so binary PDF
// structure survives as one character per byte.
func latin1(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

func stripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
}

// collapseWhitespace squeezes horizontal whitespace and drops blank lines.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(horizontalSpaceRe.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// apparentText keeps the readable part of a UTF-8 decoded byte window.
func apparentText(s string) string {
	return collapseWhitespace(stripNonPrintable(strings.ToValidUTF8(s, "")))
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
