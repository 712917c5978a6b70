// Package bookinfo pulls a title, author and ISBN out of noisy OCR output
package bookinfo

import (
	"regexp"
	"strings"

	"github.com/lehigh-university-libraries/bookid/internal/models"
	"github.com/lehigh-university-libraries/bookid/internal/textnorm"
)

var (
	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:title|book):\s*([^\n]+)`),
		regexp.MustCompile(`(?i)^([^\n]+)(?:\n|$)`),
		regexp.MustCompile(`(?i)([A-Z][^\n]+)(?:\n|$)`),
		regexp.MustCompile(`(?i)([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)(?:\n|$)`),
	}

	authorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:author|by|written by):\s*([^\n]+)`),
		regexp.MustCompile(`(?i)\bby\s+([^\n]+)(?:\n|$)`),
		regexp.MustCompile(`(?i)([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)(?:\n|$)`),
	}

	// Go has no lookbehind; bare numbers are delimited by a non-digit or the
	// text boundary instead.
	isbnPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ISBN[:\s-]*([0-9X-]{10,17})`),
		regexp.MustCompile(`(?i)(?:^|\D)(\d{9}[\dX])(?:\D|$)`),
		regexp.MustCompile(`(?:^|\D)(\d{13})(?:\D|$)`),
		regexp.MustCompile(`(?i)ISBN-13:\s*([0-9-]+)`),
		regexp.MustCompile(`(?i)ISBN-10:\s*([0-9X-]+)`),
	}

	validISBN = regexp.MustCompile(`^(?:\d{9}[\dX]|\d{13})$`)

	byWord    = regexp.MustCompile(`(?i)\bby\b`)
	afterByRe = regexp.MustCompile(`(?i)\bby\b\s+(.+)`)
)

// ValidISBN reports whether isbn, with hyphens already removed, has the
// shape of an ISBN-10 or ISBN-13
func ValidISBN(isbn string) bool {
	return validISBN.MatchString(isbn)
}

// NormalizeISBN removes hyphens and spaces and upper-cases a trailing X
func NormalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	return strings.ToUpper(strings.TrimSpace(isbn))
}

// Extract derives a BookInfo from an extraction result. Structured
// candidates take precedence over patterns run against the full text.
func Extract(res models.ExtractionResult) models.BookInfo {
	var info models.BookInfo

	if len(res.TitleCandidates) > 0 {
		info.Title = textnorm.CleanField(res.TitleCandidates[0])
	} else {
		info.Title = firstMatch(titlePatterns, res.FullText)
	}

	if len(res.AuthorCandidates) > 0 {
		info.Author = textnorm.CleanField(authorFromCandidates(res.AuthorCandidates))
	}
	if info.Author == "" {
		info.Author = firstMatch(authorPatterns, res.FullText)
	}

	info.ISBN = ExtractISBN(res.FullText)
	return info
}

// authorFromCandidates prefers the name following "by" in the first
// candidate that has one, then the first candidate without a "by" marker
func authorFromCandidates(candidates []string) string {
	for _, c := range candidates {
		if m := afterByRe.FindStringSubmatch(c); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				return name
			}
		}
	}
	for _, c := range candidates {
		if !byWord.MatchString(c) {
			return strings.TrimSpace(c)
		}
	}
	return ""
}

// firstMatch returns the cleaned capture of the first pattern that matches
// and leaves something after cleaning
func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if value := textnorm.CleanField(m[1]); value != "" {
			return value
		}
	}
	return ""
}

// ExtractISBN searches raw OCR text for an ISBN. Each pattern contributes
// its first match; the first one that validates wins.
func ExtractISBN(text string) string {
	for _, re := range isbnPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if isbn := NormalizeISBN(m[1]); ValidISBN(isbn) {
			return isbn
		}
	}
	return ""
}
