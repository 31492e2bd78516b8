package summarizer

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrEmptySummary   = errors.New("summarizer: empty summary")
	ErrNonLatinScript = errors.New("summarizer: summary contains Devanagari script")
	ErrQuotaExceeded  = errors.New("summarizer: daily quota exceeded")
)

// fallbackRunes is the length of the English placeholder stored when
// conversion is unavailable.
const fallbackRunes = 200

// Summarizer turns a news title and body into a short Hinglish summary.
type Summarizer interface {
	Summarize(ctx context.Context, title, body string) (string, error)
}

// Fallback returns the English placeholder summary for a description: its
// first 200 characters, with "..." appended when it was cut.
func Fallback(description string) string {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) <= fallbackRunes {
		return description
	}
	r := []rune(description)
	return strings.TrimSpace(string(r[:fallbackRunes])) + "..."
}

// Clean normalises raw model output and rejects unusable summaries.
func Clean(text string) (string, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_")
	s = strings.TrimSpace(s)
	for len(s) >= 2 && isQuote(s[0]) && s[0] == s[len(s)-1] {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return "", ErrEmptySummary
	}
	for _, r := range s {
		if unicode.Is(unicode.Devanagari, r) {
			return "", ErrNonLatinScript
		}
	}
	return s, nil
}

func isQuote(b byte) bool {
	return b == '"' || b == '\''
}
