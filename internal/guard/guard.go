// Package guard validates and bounds every inbound payload before it reaches
// any stateful component, and rate-limits clients by network origin.
package guard

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-page-rag-ollama/internal/port"
)

// FragmentInput is one fragment as supplied by the content extraction client.
type FragmentInput struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Limits holds the guardrail thresholds. Immutable; injected at construction.
type Limits struct {
	MaxFragments     int // max fragments per page
	MaxFragmentChars int // per-fragment length; longer fragments are truncated
	MaxTotalChars    int // cumulative text length per page
	MaxQuestionChars int
	MaxURLChars      int
}

// ValidatePage checks an ingest payload against the limits and returns the
// validated fragments. Overlong fragments are truncated rather than rejected;
// count and cumulative-size violations reject the whole payload.
func (l Limits) ValidatePage(url string, fragments []FragmentInput) ([]FragmentInput, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: url is required", port.ErrValidation)
	}
	if n := utf8.RuneCountInString(url); n > l.MaxURLChars {
		return nil, fmt.Errorf("%w: url too long: %d chars (max %d)", port.ErrValidation, n, l.MaxURLChars)
	}
	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: at least one fragment is required", port.ErrValidation)
	}
	if len(fragments) > l.MaxFragments {
		return nil, fmt.Errorf("%w: too many fragments: %d (max %d)", port.ErrValidation, len(fragments), l.MaxFragments)
	}

	// Limits count characters, not bytes, so multibyte pages get the same
	// budget as ASCII ones and truncation never splits a rune.
	validated := make([]FragmentInput, len(fragments))
	total := 0
	for i, f := range fragments {
		n := utf8.RuneCountInString(f.Text)
		if n > l.MaxFragmentChars {
			f.Text = truncateRunes(f.Text, l.MaxFragmentChars)
			n = l.MaxFragmentChars
		}
		if f.Kind == "" {
			f.Kind = string(domain.KindBody)
		}
		total += n
		validated[i] = f
	}
	if total > l.MaxTotalChars {
		return nil, fmt.Errorf("%w: total content too large: %d chars (max %d)", port.ErrValidation, total, l.MaxTotalChars)
	}
	return validated, nil
}

// ValidateQuestion trims the question and rejects empty or oversize input.
func (l Limits) ValidateQuestion(question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is empty", port.ErrValidation)
	}
	if n := utf8.RuneCountInString(question); n > l.MaxQuestionChars {
		return "", fmt.Errorf("%w: question too long: %d chars (max %d)", port.ErrValidation, n, l.MaxQuestionChars)
	}
	return question, nil
}

// truncateRunes cuts s after n runes, always on a rune boundary.
func truncateRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
