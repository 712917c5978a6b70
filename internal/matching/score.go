// Package matching scores catalog records against the book information read
// from a cover and picks the best candidate.
package matching

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/bookid/internal/models"
)

// Threshold is the minimum score a record needs to count as a match
const Threshold = 15.0

// Factor contributes points to a record's score. running is the total of
// the factors evaluated before it.
type Factor struct {
	Name  string
	Score func(info models.BookInfo, rec models.CatalogRecord, running float64) float64
}

// DefaultFactors is the scoring table used by NewMatcher. Order matters for
// the quality bonuses, which only apply once something else has scored.
var DefaultFactors = []Factor{
	{Name: "isbn", Score: isbnScore},
	{Name: "title", Score: titleScore},
	{Name: "author", Score: authorScore},
	{Name: "subtitle", Score: subtitleScore},
	{Name: "recency", Score: recencyScore},
	{Name: "cover", Score: func(_ models.BookInfo, rec models.CatalogRecord, _ float64) float64 {
		return bonus(rec.ImageURL != "", 1)
	}},
	{Name: "description", Score: func(_ models.BookInfo, rec models.CatalogRecord, running float64) float64 {
		return bonus(running > 0 && rec.Description != "", 2)
	}},
	{Name: "page_count", Score: func(_ models.BookInfo, rec models.CatalogRecord, running float64) float64 {
		return bonus(running > 0 && rec.PageCount != nil && *rec.PageCount > 0, 1)
	}},
	{Name: "categories", Score: func(_ models.BookInfo, rec models.CatalogRecord, running float64) float64 {
		return bonus(running > 0 && len(rec.Categories) > 0, 1)
	}},
}

// Matcher ranks catalog records with an additive factor table
type Matcher struct {
	Factors   []Factor
	Threshold float64
}

// NewMatcher returns a matcher using DefaultFactors and Threshold
func NewMatcher() *Matcher {
	return &Matcher{Factors: DefaultFactors, Threshold: Threshold}
}

// Score sums every factor for rec
func (m *Matcher) Score(info models.BookInfo, rec models.CatalogRecord) float64 {
	var total float64
	for _, f := range m.Factors {
		total += f.Score(info, rec, total)
	}
	return total
}

// Best returns the highest scoring record, keeping the first on ties, with
// MatchScore set. It returns nil and 0 when the best score is under the
// threshold.
func (m *Matcher) Best(records []models.CatalogRecord, info models.BookInfo) (*models.CatalogRecord, float64) {
	var best *models.CatalogRecord
	var bestScore float64
	for i := range records {
		score := m.Score(info, records[i])
		slog.Debug("Scored catalog record", "title", records[i].Title, "source", records[i].Source, "score", score)
		if score > bestScore {
			bestScore = score
			best = &records[i]
		}
	}

	if best == nil || bestScore < m.Threshold {
		return nil, 0
	}
	match := *best
	match.MatchScore = bestScore
	return &match, bestScore
}

func bonus(ok bool, points float64) float64 {
	if ok {
		return points
	}
	return 0
}

func isbnScore(info models.BookInfo, rec models.CatalogRecord, _ float64) float64 {
	if info.ISBN == "" {
		return 0
	}
	want := strings.ReplaceAll(info.ISBN, "-", "")
	for _, isbn := range rec.ISBNs {
		if strings.ReplaceAll(isbn, "-", "") == want {
			return 20
		}
	}
	return 0
}

func titleScore(info models.BookInfo, rec models.CatalogRecord, _ float64) float64 {
	if info.Title == "" || rec.Title == "" {
		return 0
	}
	if strings.EqualFold(info.Title, rec.Title) {
		return 15
	}
	lengthFactor := min(1.0, float64(utf8.RuneCountInString(info.Title))/20.0)
	return Similarity(info.Title, rec.Title) * 10 * (0.5 + lengthFactor)
}

func authorScore(info models.BookInfo, rec models.CatalogRecord, _ float64) float64 {
	if info.Author == "" || len(rec.Authors) == 0 {
		return 0
	}
	best := 0.0
	for _, author := range rec.Authors {
		if strings.EqualFold(info.Author, author) {
			best = 1
			break
		}
		best = max(best, Similarity(info.Author, author))
	}
	return best * 8
}

func subtitleScore(info models.BookInfo, rec models.CatalogRecord, _ float64) float64 {
	if info.Title == "" || rec.Subtitle == "" {
		return 0
	}
	a, b := strings.ToLower(info.Title), strings.ToLower(rec.Subtitle)
	return float64(max(TokenSortRatio(a, b), PartialRatio(a, b))) / 100 * 5
}

func recencyScore(_ models.BookInfo, rec models.CatalogRecord, _ float64) float64 {
	date := rec.PublishedDate
	if len(date) > 4 {
		date = date[:4]
	}
	year, err := strconv.Atoi(date)
	if err != nil || year <= 1900 {
		return 0
	}
	return min(1.0, float64(year-1900)/120.0) * 2
}
