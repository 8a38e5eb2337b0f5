package suggest

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MergeResult is the text to append after the caret and the text that results from accepting it.
// Merged is always Base + Ghost.
type MergeResult struct {
	Merged string `json:"merged"`
	Ghost  string `json:"ghost"`
}

// commonShortWords are complete words that must not be mistaken for unfinished fragments
var commonShortWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "do": {}, "for": {}, "from": {},
	"had": {}, "has": {}, "have": {}, "he": {}, "her": {}, "his": {},
	"how": {}, "if": {}, "in": {}, "is": {}, "it": {}, "its": {},
	"me": {}, "my": {}, "no": {}, "not": {}, "of": {}, "on": {},
	"or": {}, "our": {}, "she": {}, "so": {}, "that": {}, "the": {},
	"their": {}, "them": {}, "they": {}, "to": {}, "us": {}, "was": {},
	"we": {}, "were": {}, "with": {}, "you": {}, "your": {},
}

// midWordMaxLen is the longest trailing fragment still treated as an unfinished word
const midWordMaxLen = 3

// Merge decides what to append to base so that suggestion continues it with
// correct spacing. It returns false when the suggestion has nothing to add.
func Merge(base, suggestion string) (MergeResult, bool) {
	trimmed := strings.TrimRightFunc(suggestion, unicode.IsSpace)
	if trimmed == "" {
		return MergeResult{}, false
	}

	baseEndsWithSpace := endsWithSpace(base)
	suggestionStartsWithSpace := startsWithSpace(trimmed)
	baseEndsWithWord := endsWithWordChar(base)
	suggestionStartsWithWord := startsWithWordChar(trimmed)

	prefix := ""
	normalized := trimmed

	switch {
	case baseEndsWithSpace:
		normalized = stripLeadingSpace(trimmed)
	case baseEndsWithWord && suggestionStartsWithWord:
		if !IsMidWord(base) {
			prefix = " "
		}
	case !suggestionStartsWithSpace && base != "":
		prefix = " "
	case suggestionStartsWithSpace:
		normalized = stripLeadingSpace(trimmed)
	}

	if prefix != "" && startsWithSpace(normalized) {
		normalized = stripLeadingSpace(normalized)
	}

	ghost := prefix + normalized
	return MergeResult{
		Merged: base + ghost,
		Ghost:  ghost,
	}, true
}

// IsMidWord reports whether the trailing word of text looks like an unfinished fragment
func IsMidWord(text string) bool {
	word := strings.ToLower(lastWord(text))
	if word == "" {
		return false
	}
	if _, ok := commonShortWords[word]; ok {
		return false
	}
	return len(word) <= midWordMaxLen
}

func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// lastWord returns the maximal trailing run of ASCII letters and digits
func lastWord(text string) string {
	i := len(text)
	for i > 0 && isWordChar(rune(text[i-1])) {
		i--
	}
	return text[i:]
}

func endsWithSpace(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && unicode.IsSpace(r)
}

func startsWithSpace(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && unicode.IsSpace(r)
}

func endsWithWordChar(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && isWordChar(r)
}

func startsWithWordChar(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && isWordChar(r)
}

func stripLeadingSpace(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}
