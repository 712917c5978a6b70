package matching

import (
	"math"
	"testing"

	"github.com/lehigh-university-libraries/bookid/internal/models"
)

func TestRatios(t *testing.T) {
	tests := []struct {
		name string
		fn   func(a, b string) int
		a, b string
		want int
	}{
		{"ratio punctuation", Ratio, "this is a test", "this is a test!", 97},
		{"ratio identical", Ratio, "dune", "dune", 100},
		{"ratio empty", Ratio, "", "dune", 0},
		{"ratio disjoint", Ratio, "abc", "xyz", 0},
		{"partial substring", PartialRatio, "this is a test", "this is a test!", 100},
		{"partial inside", PartialRatio, "hobbit", "the hobbit or there and back again", 100},
		{"partial empty", PartialRatio, "", "x", 0},
		{"token sort", TokenSortRatio, "fuzzy wuzzy was a bear", "wuzzy fuzzy was a bear", 100},
		{"token sort punctuation", TokenSortRatio, "Herbert, Frank", "frank herbert", 100},
		{"token set", TokenSetRatio, "fuzzy was a bear", "fuzzy fuzzy was a bear", 100},
		{"token set empty", TokenSetRatio, "!!!", "bear", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.a, tt.b); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("The Hobbit", "the hobbit"); got != 1 {
		t.Errorf("Expected 1, got %v", got)
	}
	if got := Similarity("", "the hobbit"); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
	got := Similarity("Neuromancer", "Count Zero")
	if got < 0 || got >= 0.5 {
		t.Errorf("Expected low similarity, got %v", got)
	}
}

func TestFactorScores(t *testing.T) {
	pages := 412
	zero := 0
	tests := []struct {
		name string
		info models.BookInfo
		rec  models.CatalogRecord
		want float64
	}{
		{
			name: "isbn with hyphens",
			info: models.BookInfo{ISBN: "9780441172719"},
			rec:  models.CatalogRecord{ISBNs: []string{"0441172717", "978-0-441-17271-9"}},
			want: 20,
		},
		{
			name: "exact title case-insensitive",
			info: models.BookInfo{Title: "Dune"},
			rec:  models.CatalogRecord{Title: "DUNE"},
			want: 15,
		},
		{
			name: "fuzzy title scaled by length",
			info: models.BookInfo{Title: "The Hobbit"},
			rec:  models.CatalogRecord{Title: "The Hobbit, or There and Back Again"},
			want: 10,
		},
		{
			name: "exact author among several",
			info: models.BookInfo{Author: "frank herbert"},
			rec:  models.CatalogRecord{Authors: []string{"Brian Herbert", "Frank Herbert"}},
			want: 8,
		},
		{
			name: "subtitle",
			info: models.BookInfo{Title: "Dune"},
			rec:  models.CatalogRecord{Title: "Xyzzy", Subtitle: "Dune Chronicles"},
			want: 5,
		},
		{
			name: "recency",
			rec:  models.CatalogRecord{PublishedDate: "1960-01-01"},
			want: 1,
		},
		{
			name: "recency capped",
			rec:  models.CatalogRecord{PublishedDate: "2024"},
			want: 2,
		},
		{
			name: "old or malformed date",
			rec:  models.CatalogRecord{PublishedDate: "19"},
			want: 0,
		},
		{
			name: "quality bonuses need a running score",
			rec:  models.CatalogRecord{Description: "x", PageCount: &pages, Categories: []string{"Fiction"}},
			want: 0,
		},
		{
			name: "cover unlocks quality bonuses",
			rec:  models.CatalogRecord{ImageURL: "http://img", Description: "x", PageCount: &pages, Categories: []string{"Fiction"}},
			want: 5,
		},
		{
			name: "zero page count ignored",
			rec:  models.CatalogRecord{ImageURL: "http://img", PageCount: &zero},
			want: 1,
		},
	}

	m := NewMatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Score(tt.info, tt.rec)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBestPrefersHigherScore(t *testing.T) {
	info := models.BookInfo{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441172719"}
	records := []models.CatalogRecord{
		{ISBNs: []string{"9780441172719"}},
		{Title: "Dune", Authors: []string{"Frank Herbert"}},
	}

	m := NewMatcher()
	if got := m.Score(info, records[0]); got != 20 {
		t.Fatalf("Expected isbn-only record to score 20, got %v", got)
	}

	best, score := m.Best(records, info)
	if best == nil {
		t.Fatal("Expected a match")
	}
	if score != 23 {
		t.Errorf("Expected score 23, got %v", score)
	}
	if best.Title != "Dune" || best.MatchScore != 23 {
		t.Errorf("Expected title+author record with MatchScore 23, got %+v", best)
	}
}

func TestBestThreshold(t *testing.T) {
	info := models.BookInfo{Title: "Dune"}
	best, score := NewMatcher().Best([]models.CatalogRecord{{Title: "DUNE"}}, info)
	if best == nil || score != 15 {
		t.Errorf("Expected score of exactly 15 to be accepted, got %v %v", best, score)
	}

	almost := &Matcher{
		Factors: []Factor{{Name: "constant", Score: func(models.BookInfo, models.CatalogRecord, float64) float64 {
			return 14.99
		}}},
		Threshold: Threshold,
	}
	best, score = almost.Best([]models.CatalogRecord{{Title: "Dune"}}, info)
	if best != nil || score != 0 {
		t.Errorf("Expected 14.99 to be rejected, got %v %v", best, score)
	}
}

func TestBestKeepsFirstOnTie(t *testing.T) {
	info := models.BookInfo{Title: "Dune"}
	records := []models.CatalogRecord{
		{Title: "Dune", Source: models.SourcePrimary},
		{Title: "Dune", Source: models.SourceFallback},
	}
	best, _ := NewMatcher().Best(records, info)
	if best == nil || best.Source != models.SourcePrimary {
		t.Errorf("Expected first record to win tie, got %+v", best)
	}
	if records[0].MatchScore != 0 {
		t.Error("Expected input records to be left unmodified")
	}
}

func TestBestEmpty(t *testing.T) {
	best, score := NewMatcher().Best(nil, models.BookInfo{Title: "Dune"})
	if best != nil || score != 0 {
		t.Errorf("Expected no match, got %v %v", best, score)
	}
}
