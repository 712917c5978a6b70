package ocr

import (
	"sort"
	"strings"
	"unicode"
)

const (
	minBlockConfidence = 0.7
	inspectedBlocks    = 5
	shortTextWords     = 5
)

// Symbol is a single recognized character with the backend's confidence
type Symbol struct {
	Text       string
	Confidence float64
}

// Word is a run of symbols
type Word struct {
	Symbols []Symbol
}

// Block is a region of text on the page. Top is the y coordinate of the
// block's first bounding vertex.
type Block struct {
	Top   int64
	Words []Word
}

// Text joins the block's words with single spaces
func (b Block) Text() string {
	words := make([]string, 0, len(b.Words))
	for _, w := range b.Words {
		var sb strings.Builder
		for _, s := range w.Symbols {
			sb.WriteString(s.Text)
		}
		words = append(words, sb.String())
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

// Confidence is the mean confidence over all of the block's symbols
func (b Block) Confidence() float64 {
	var sum float64
	var n int
	for _, w := range b.Words {
		for _, s := range w.Symbols {
			sum += s.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// ClassifyCandidates derives title and author candidates from page layout
// and from the per-region text annotations. annotations excludes the
// leading full-text annotation.
func ClassifyCandidates(blocks []Block, annotations []string) (titles, authors []string) {
	sorted := make([]Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Top < sorted[j].Top
	})
	if len(sorted) > inspectedBlocks {
		sorted = sorted[:inspectedBlocks]
	}

	for i, block := range sorted {
		text := block.Text()
		if text == "" || block.Confidence() < minBlockConfidence {
			continue
		}
		switch {
		case i == 0:
			titles = append(titles, text)
		case i == 1:
			authors = append(authors, text)
		case mentionsAuthor(text):
			authors = append(authors, text)
		case len(strings.Fields(text)) <= shortTextWords:
			// positions 0 and 1 are handled above, so short blocks here are bylines
			authors = append(authors, text)
		}
	}

	for _, a := range annotations {
		text := strings.TrimSpace(a)
		if text == "" {
			continue
		}
		if len(strings.Fields(text)) <= shortTextWords && (isUpper(text) || startsUpper(text)) {
			titles = append(titles, text)
		} else if mentionsAuthor(text) {
			authors = append(authors, text)
		}
	}

	return Dedupe(titles), Dedupe(authors)
}

func mentionsAuthor(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "by") || strings.Contains(lower, "author")
}

// isUpper reports whether text has at least one cased letter and no
// lower-case ones
func isUpper(text string) bool {
	cased := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

func startsUpper(text string) bool {
	for _, r := range text {
		return unicode.IsUpper(r)
	}
	return false
}
