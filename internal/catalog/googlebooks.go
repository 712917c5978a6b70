package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/bookid/internal/models"
	"google.golang.org/api/books/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const googleBooksMaxResults = 5

// GoogleBooks is the primary catalog
type GoogleBooks struct {
	svc        *books.Service
	MaxResults int64
}

// NewGoogleBooks creates a Google Books client. Pass option.WithAPIKey for
// keyed access or option.WithoutAuthentication for anonymous access.
func NewGoogleBooks(ctx context.Context, opts ...option.ClientOption) (*GoogleBooks, error) {
	svc, err := books.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create google books client: %w", err)
	}
	return &GoogleBooks{svc: svc, MaxResults: googleBooksMaxResults}, nil
}

func (g *GoogleBooks) Source() models.Source {
	return models.SourcePrimary
}

// Search lists volumes matching query
func (g *GoogleBooks) Search(ctx context.Context, query string) ([]models.CatalogRecord, error) {
	items, err := g.list(ctx, query, g.MaxResults)
	if err != nil {
		return nil, err
	}
	records := make([]models.CatalogRecord, 0, len(items))
	for _, v := range items {
		if v == nil || v.VolumeInfo == nil {
			continue
		}
		records = append(records, volumeRecord(v.VolumeInfo))
	}
	return records, nil
}

// LookupISBN returns the first volume for isbn
func (g *GoogleBooks) LookupISBN(ctx context.Context, isbn string) (*models.BookDetails, error) {
	items, err := g.list(ctx, "isbn:"+isbn, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 || items[0].VolumeInfo == nil {
		return nil, nil
	}
	rec := volumeRecord(items[0].VolumeInfo)
	return &models.BookDetails{
		Title:       rec.Title,
		Authors:     nonNil(rec.Authors),
		Description: rec.Description,
		Image:       rec.ImageURL,
		PageCount:   rec.PageCount,
	}, nil
}

func (g *GoogleBooks) list(ctx context.Context, query string, maxResults int64) ([]*books.Volume, error) {
	call := g.svc.Volumes.List(query).Context(ctx)
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}
	resp, err := call.Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			slog.Warn("Google Books returned an error status", "query", query, "status", apiErr.Code, "message", apiErr.Message)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query google books: %w", err)
	}
	return resp.Items, nil
}

func volumeRecord(info *books.VolumeVolumeInfo) models.CatalogRecord {
	rec := models.CatalogRecord{
		Title:         info.Title,
		Subtitle:      info.Subtitle,
		Authors:       info.Authors,
		Description:   CleanDescription(info.Description),
		Categories:    info.Categories,
		PublishedDate: info.PublishedDate,
		Source:        models.SourcePrimary,
	}
	if info.ImageLinks != nil {
		rec.ImageURL = info.ImageLinks.Thumbnail
	}
	if info.AverageRating > 0 {
		rating := info.AverageRating
		rec.Rating = &rating
	}
	if info.PageCount > 0 {
		pages := int(info.PageCount)
		rec.PageCount = &pages
	}
	for _, id := range info.IndustryIdentifiers {
		if id != nil && id.Identifier != "" {
			rec.ISBNs = append(rec.ISBNs, id.Identifier)
		}
	}
	return rec
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
