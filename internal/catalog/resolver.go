package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/bookid/internal/matching"
	"github.com/lehigh-university-libraries/bookid/internal/models"
)

// Resolver escalates through query strategies on the primary catalog, then
// the fallback catalog, and returns the best accepted match
type Resolver struct {
	Primary  Searcher
	Fallback Searcher
	Pages    PageCounter
	Lookups  []ISBNLookup
	Matcher  *matching.Matcher
}

// NewResolver wires Google Books as primary and Open Library as fallback
func NewResolver(primary *GoogleBooks, fallback *OpenLibrary) *Resolver {
	return &Resolver{
		Primary:  primary,
		Fallback: fallback,
		Pages:    fallback,
		Lookups:  []ISBNLookup{primary, fallback},
		Matcher:  matching.NewMatcher(),
	}
}

// Resolve returns the best match for info, or nil when nothing clears the
// acceptance threshold. Transport failures on the primary catalog abort.
func (r *Resolver) Resolve(ctx context.Context, info models.BookInfo, text string) (*models.CatalogRecord, error) {
	slog.Info("Resolving book", "title", info.Title, "author", info.Author, "isbn", info.ISBN)

	best, err := r.bestOf(ctx, r.Primary, PrimaryStrategies(info, text), info, true)
	if err != nil {
		return nil, err
	}
	if best == nil && r.Fallback != nil {
		slog.Info("Primary catalog found no match, trying fallback", "source", r.Fallback.Source())
		best, _ = r.bestOf(ctx, r.Fallback, FallbackStrategies(info), info, false)
	}
	if best == nil {
		return nil, nil
	}

	r.backfillPages(ctx, best, info)
	slog.Info("Resolved book", "title", best.Title, "source", best.Source, "score", best.MatchScore)
	return best, nil
}

// bestOf runs every strategy and keeps the accepted match with the strictly
// highest score
func (r *Resolver) bestOf(ctx context.Context, s Searcher, strategies []Strategy, info models.BookInfo, abortOnError bool) (*models.CatalogRecord, error) {
	if s == nil {
		return nil, nil
	}
	var best *models.CatalogRecord
	var bestScore float64
	for _, st := range strategies {
		slog.Debug("Trying search", "source", s.Source(), "strategy", st.Name, "query", st.Query)
		records, err := s.Search(ctx, st.Query)
		if err != nil {
			if abortOnError {
				return nil, fmt.Errorf("%s search %q failed: %w", s.Source(), st.Name, err)
			}
			slog.Error("Catalog search failed", "source", s.Source(), "strategy", st.Name, "err", err)
			continue
		}
		if len(records) == 0 {
			continue
		}
		match, score := r.Matcher.Best(records, info)
		slog.Info("Best match score", "source", s.Source(), "strategy", st.Name, "score", score)
		if match != nil && score > bestScore {
			best, bestScore = match, score
		}
	}
	return best, nil
}

// backfillPages fills a missing page count from the edition record, then
// from the first fallback search result for title and author
func (r *Resolver) backfillPages(ctx context.Context, rec *models.CatalogRecord, info models.BookInfo) {
	if rec.PageCount != nil {
		return
	}

	isbn := info.ISBN
	if len(rec.ISBNs) > 0 {
		isbn = rec.ISBNs[0]
	}
	if isbn != "" && r.Pages != nil {
		pages, err := r.Pages.PageCountByISBN(ctx, isbn)
		if err != nil {
			slog.Warn("Page count lookup failed", "isbn", isbn, "err", err)
		}
		if pages != nil {
			rec.PageCount = pages
			return
		}
	}

	if r.Fallback == nil || rec.Title == "" {
		return
	}
	query := rec.Title
	if len(rec.Authors) > 0 {
		query += " " + rec.Authors[0]
	}
	records, err := r.Fallback.Search(ctx, query)
	if err != nil {
		slog.Warn("Page count search failed", "query", query, "err", err)
		return
	}
	if len(records) > 0 && records[0].PageCount != nil {
		rec.PageCount = records[0].PageCount
	}
}

// LookupISBN asks each lookup backend in turn
func (r *Resolver) LookupISBN(ctx context.Context, isbn string) (*models.BookDetails, error) {
	isbn = strings.ReplaceAll(isbn, "-", "")
	var errs []error
	for _, l := range r.Lookups {
		details, err := l.LookupISBN(ctx, isbn)
		if err != nil {
			slog.Warn("ISBN lookup failed", "isbn", isbn, "err", err)
			errs = append(errs, err)
			continue
		}
		if details != nil {
			return details, nil
		}
	}
	if len(errs) == len(r.Lookups) && len(errs) > 0 {
		return nil, fmt.Errorf("isbn lookup failed: %w", errors.Join(errs...))
	}
	return nil, ErrNotFound
}
