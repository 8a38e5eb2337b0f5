// Package suggest validates model-produced continuations and stitches them onto the user's text.
package suggest

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxLength is the longest candidate (in characters) that may be shown
	MaxLength = 200

	// ContextWindowSize is how many trailing characters of the document are sent for generation
	ContextWindowSize = 300
)

// Rejection reasons returned by Check
var (
	ErrEmpty         = errors.New("empty candidate")
	ErrTooLong       = errors.New("candidate too long")
	ErrQuoted        = errors.New("candidate contains quotation marks")
	ErrMultiSentence = errors.New("candidate spans more than one sentence")
	ErrEcho          = errors.New("candidate echoes the end of the context")
	ErrDuplicate     = errors.New("candidate duplicates context content")
)

var newlineRuns = regexp.MustCompile(`[\r\n]+`)

// Check runs the candidate through every validation predicate in order and
// returns the cleaned candidate or the first rejection reason.
func Check(raw, contextText string) (string, error) {
	compact := strings.TrimSpace(newlineRuns.ReplaceAllString(raw, " "))
	if compact == "" {
		return "", ErrEmpty
	}

	if utf8.RuneCountInString(compact) > MaxLength {
		return "", ErrTooLong
	}

	if strings.ContainsAny(compact, "\"“”") {
		return "", ErrQuoted
	}

	endings := 0
	for _, r := range compact {
		if r == '.' || r == '!' || r == '?' {
			endings++
		}
	}
	if endings > 1 {
		return "", ErrMultiSentence
	}

	if strings.HasSuffix(strings.TrimSpace(contextText), compact) {
		return "", ErrEcho
	}

	if strings.Contains(contextText, compact) {
		return "", ErrDuplicate
	}

	return compact, nil
}

// Sanitize returns the cleaned candidate, or false when there is no usable
// suggestion this round.
func Sanitize(raw, contextText string) (string, bool) {
	s, err := Check(raw, contextText)
	if err != nil {
		return "", false
	}
	return s, true
}

// ContextWindow returns the trailing slice of text that is sent as the generation prompt
func ContextWindow(text string, size int) string {
	if size <= 0 {
		size = ContextWindowSize
	}
	if utf8.RuneCountInString(text) <= size {
		return text
	}
	runes := []rune(text)
	return string(runes[len(runes)-size:])
}
