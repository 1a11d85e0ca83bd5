package xstrings

import (
	"strings"
	"unicode"
)

// trimChars are stripped from both ends of a split token before it is
// considered for keyword extraction: quotes, brackets, markdown markers.
const trimChars = "\"'`*#[](){}<>.,;:!?-_"

// SplitWords splits text on whitespace and punctuation, trims surrounding
// quote/bracket/hash/asterisk/backtick characters from each token, and
// returns only tokens that contain at least one letter or digit.
func SplitWords(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		if unicode.IsSpace(r) {
			return true
		}
		return strings.ContainsRune(",;:!?()[]{}<>\"'`", r)
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, trimChars)
		if f == "" {
			continue
		}
		if !containsAlnum(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func containsAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
