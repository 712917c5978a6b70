// Package textnorm cleans OCR output before it is used for matching and
// summarization.
package textnorm

import (
	"strings"
	"unicode"
)

const punctuation = `.,!?;:'"-`

func allowed(r rune) bool {
	return r == '_' ||
		unicode.IsLetter(r) ||
		unicode.IsNumber(r) ||
		unicode.IsSpace(r) ||
		strings.ContainsRune(punctuation, r)
}

// Normalize replaces disallowed characters with spaces, collapses
// whitespace, then rewrites '|' as 'I' and '0' as 'O'. The substitutions
// are unconditional and will also rewrite legitimate zeros.
func Normalize(text string) string {
	text = strings.Map(func(r rune) rune {
		if allowed(r) {
			return r
		}
		return ' '
	}, text)
	text = strings.Join(strings.Fields(text), " ")
	text = strings.ReplaceAll(text, "|", "I")
	return strings.ReplaceAll(text, "0", "O")
}

// CleanField drops disallowed characters and collapses whitespace. It is
// used for single fields such as a title or author name.
func CleanField(value string) string {
	value = strings.Map(func(r rune) rune {
		if allowed(r) {
			return r
		}
		return -1
	}, value)
	return strings.Join(strings.Fields(value), " ")
}
