package metrics

import (
	"strings"

	"github.com/lehigh-university-libraries/bookid/internal/bookinfo"
	"github.com/lehigh-university-libraries/bookid/internal/matching"
	"github.com/lehigh-university-libraries/bookid/internal/textnorm"
)

// FuzzyThreshold is the similarity at which a field counts as matched
const FuzzyThreshold = 0.8

// Match methods
const (
	MethodExact     = "exact"
	MethodFuzzy     = "fuzzy"
	MethodNoMatch   = "no_match"
	MethodMissing   = "missing"
	MethodUnlabeled = "unlabeled"
)

// FieldMatch is the comparison of one identified field with its reference
type FieldMatch struct {
	Expected string  `json:"expected" yaml:"expected"`
	Actual   string  `json:"actual" yaml:"actual"`
	Score    float64 `json:"score" yaml:"score"`
	Method   string  `json:"method" yaml:"method"`
}

// Matched reports an exact or fuzzy match
func (m FieldMatch) Matched() bool {
	return m.Method == MethodExact || m.Method == MethodFuzzy
}

// Comparison holds per-field results for one dataset item
type Comparison struct {
	Title        FieldMatch `json:"title" yaml:"title"`
	Author       FieldMatch `json:"author" yaml:"author"`
	ISBN         FieldMatch `json:"isbn" yaml:"isbn"`
	OverallScore float64    `json:"overall_score" yaml:"overall_score"`
}

// Compare scores identified title, authors and ISBN against the reference.
// Fields without a reference value are marked unlabeled and left out of
// the overall score.
func Compare(expectedTitle, expectedAuthor, expectedISBN, title string, authors []string, isbn string) *Comparison {
	c := &Comparison{
		Title:  compareText(expectedTitle, title),
		Author: compareAuthors(expectedAuthor, authors),
		ISBN:   compareISBN(expectedISBN, isbn),
	}

	var total float64
	var n int
	for _, m := range []FieldMatch{c.Title, c.Author, c.ISBN} {
		if m.Method == MethodUnlabeled {
			continue
		}
		total += m.Score
		n++
	}
	if n > 0 {
		c.OverallScore = total / float64(n)
	}
	return c
}

func normalize(s string) string {
	return strings.ToLower(textnorm.CleanField(s))
}

func compareText(expected, actual string) FieldMatch {
	m := FieldMatch{Expected: expected, Actual: actual}
	e, a := normalize(expected), normalize(actual)
	switch {
	case e == "":
		m.Method = MethodUnlabeled
	case a == "" || a == "unknown":
		m.Method = MethodMissing
	case e == a:
		m.Method, m.Score = MethodExact, 1
	default:
		m.Score = matching.Similarity(e, a)
		m.Method = MethodNoMatch
		if m.Score >= FuzzyThreshold {
			m.Method = MethodFuzzy
		}
	}
	return m
}

// compareAuthors keeps the best match among the identified authors
func compareAuthors(expected string, authors []string) FieldMatch {
	best := compareText(expected, "")
	for _, a := range authors {
		m := compareText(expected, a)
		if best.Method == MethodMissing || m.Score > best.Score {
			best = m
		}
	}
	return best
}

func compareISBN(expected, actual string) FieldMatch {
	m := FieldMatch{Expected: expected, Actual: actual}
	e, a := bookinfo.NormalizeISBN(expected), bookinfo.NormalizeISBN(actual)
	switch {
	case e == "":
		m.Method = MethodUnlabeled
	case a == "":
		m.Method = MethodMissing
	case e == a:
		m.Method, m.Score = MethodExact, 1
	default:
		m.Method = MethodNoMatch
	}
	return m
}
