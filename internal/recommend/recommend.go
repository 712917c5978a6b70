// Package recommend suggests books that share or neighbour a matched
// record's category
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/bookid/internal/catalog"
	"github.com/lehigh-university-libraries/bookid/internal/models"
)

// Limit is the maximum number of suggestions returned
const Limit = 6

// Categories maps a lower-cased category to related ones. It is read only.
var Categories = map[string][]string{
	"fiction":                       {"literary fiction", "classics", "fantasy", "science fiction"},
	"literary fiction":              {"fiction", "classics"},
	"classics":                      {"fiction", "literary fiction", "poetry"},
	"fantasy":                       {"science fiction", "young adult fiction", "fiction"},
	"science fiction":               {"fantasy", "fiction", "science"},
	"young adult fiction":           {"fantasy", "juvenile fiction", "fiction"},
	"juvenile fiction":              {"young adult fiction", "fantasy"},
	"mystery":                       {"thriller", "crime", "detective and mystery stories"},
	"detective and mystery stories": {"mystery", "crime", "thriller"},
	"thriller":                      {"mystery", "crime", "suspense"},
	"crime":                         {"mystery", "thriller", "true crime"},
	"true crime":                    {"crime", "biography & autobiography"},
	"romance":                       {"fiction", "young adult fiction"},
	"horror":                        {"thriller", "fantasy"},
	"poetry":                        {"classics", "literary collections"},
	"history":                       {"biography & autobiography", "political science", "social science"},
	"biography & autobiography":     {"history", "memoir"},
	"memoir":                        {"biography & autobiography", "self-help"},
	"business & economics":          {"self-help", "psychology", "technology & engineering"},
	"self-help":                     {"psychology", "business & economics", "health & fitness"},
	"psychology":                    {"self-help", "philosophy", "science"},
	"philosophy":                    {"religion", "psychology", "political science"},
	"religion":                      {"philosophy", "history"},
	"political science":             {"history", "social science", "philosophy"},
	"social science":                {"political science", "psychology", "history"},
	"science":                       {"nature", "technology & engineering", "mathematics"},
	"mathematics":                   {"science", "computers"},
	"computers":                     {"technology & engineering", "mathematics", "business & economics"},
	"technology & engineering":      {"computers", "science"},
	"nature":                        {"science", "travel"},
	"travel":                        {"nature", "history"},
	"health & fitness":              {"self-help", "cooking", "psychology"},
	"cooking":                       {"health & fitness"},
	"art":                           {"photography", "design", "music"},
	"music":                         {"art", "biography & autobiography"},
}

type subjectQuery struct {
	category  string
	matchType models.MatchType
}

// Recommender searches a catalog by subject
type Recommender struct {
	Searcher catalog.Searcher
}

func New(s catalog.Searcher) *Recommender {
	return &Recommender{Searcher: s}
}

// Similar returns up to Limit books sharing rec's first category, then books
// from its related categories. Search failures are logged and skipped.
func (r *Recommender) Similar(ctx context.Context, rec *models.CatalogRecord) []models.SimilarBook {
	out := []models.SimilarBook{}
	if r == nil || r.Searcher == nil || rec == nil || len(rec.Categories) == 0 {
		return out
	}

	category := strings.ToLower(strings.TrimSpace(rec.Categories[0]))
	seen := map[string]struct{}{strings.ToLower(strings.TrimSpace(rec.Title)): {}}

	queries := []subjectQuery{{category, models.MatchSameCategory}}
	for _, related := range Categories[category] {
		queries = append(queries, subjectQuery{related, models.MatchRelatedCategory})
	}

	for _, q := range queries {
		if len(out) >= Limit {
			break
		}
		query := fmt.Sprintf("subject:%q", q.category)
		records, err := r.Searcher.Search(ctx, query)
		if err != nil {
			slog.Warn("Similar book search failed", "query", query, "err", err)
			continue
		}
		for _, candidate := range records {
			key := strings.ToLower(strings.TrimSpace(candidate.Title))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, models.SimilarBook{
				Title:      candidate.Title,
				Authors:    nonNil(candidate.Authors),
				Image:      candidate.ImageURL,
				Rating:     candidate.Rating,
				Categories: candidate.Categories,
				MatchType:  q.matchType,
			})
			if len(out) >= Limit {
				break
			}
		}
	}
	slog.Debug("Found similar books", "category", category, "count", len(out))
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
