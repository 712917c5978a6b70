package evalcmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lehigh-university-libraries/bookid/internal/eval/dataset"
	"github.com/lehigh-university-libraries/bookid/internal/eval/metrics"
	"github.com/lehigh-university-libraries/bookid/internal/identify"
	"github.com/lehigh-university-libraries/bookid/internal/images"
	"golang.org/x/sync/errgroup"
)

// Recognizer identifies a cover without summarizing it
type Recognizer interface {
	Recognize(ctx context.Context, data []byte) (*identify.Identification, error)
}

// Runner evaluates dataset items concurrently
type Runner struct {
	Recognizer  Recognizer
	Fetcher     *images.Fetcher
	Concurrency int
}

// Run processes every item and returns results in dataset order. Item
// failures are recorded in the result, not returned.
func (r *Runner) Run(ctx context.Context, items []dataset.Item, datasetDir string) ([]metrics.EvaluationResult, error) {
	results := make([]metrics.EvaluationResult, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.Concurrency))
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slog.Info("Processing item", "id", item.ID, "progress", fmt.Sprintf("%d/%d", i+1, len(items)))
			results[i] = r.processItem(ctx, item, datasetDir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) processItem(ctx context.Context, item dataset.Item, datasetDir string) metrics.EvaluationResult {
	result := metrics.EvaluationResult{ID: item.ID}
	start := time.Now()

	data, err := r.loadImage(ctx, item, datasetDir)
	if err != nil {
		result.Error = err.Error()
		result.ProcessingTime = time.Since(start)
		return result
	}

	id, err := r.Recognizer.Recognize(ctx, data)
	if err != nil {
		result.Error = fmt.Sprintf("failed to recognize: %v", err)
		result.ProcessingTime = time.Since(start)
		return result
	}

	title, authors := id.Info.Title, []string{}
	if id.Info.Author != "" {
		authors = []string{id.Info.Author}
	}
	if id.Match != nil {
		title, authors = id.Match.Title, id.Match.Authors
		result.Source = string(id.Match.Source)
		result.MatchScore = id.Match.MatchScore
	}
	if len(authors) > 0 {
		result.Author = authors[0]
	}
	result.Title = title
	result.Variant = id.Variant

	isbn := id.Info.ISBN
	if isbn == "" && id.Match != nil && len(id.Match.ISBNs) > 0 {
		isbn = id.Match.ISBNs[0]
	}
	result.Comparison = metrics.Compare(item.Title, item.Author, item.CleanISBN(), title, authors, isbn)
	result.ProcessingTime = time.Since(start)
	return result
}

// loadImage reads the item's image from disk, its URL, or the Open Library
// cover for its ISBN, in that order
func (r *Runner) loadImage(ctx context.Context, item dataset.Item, datasetDir string) ([]byte, error) {
	switch {
	case item.ImagePath != "":
		data, err := os.ReadFile(item.ResolvePath(datasetDir))
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		return data, nil
	case item.ImageURL != "" && r.Fetcher != nil:
		return r.Fetcher.Fetch(ctx, item.ImageURL)
	case item.ISBN != "" && r.Fetcher != nil:
		return r.Fetcher.FetchCover(ctx, item.CleanISBN())
	default:
		return nil, errors.New("no image available for item")
	}
}
