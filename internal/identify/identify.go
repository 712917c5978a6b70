// Package identify runs the cover identification pipeline: preprocessing,
// text extraction with escalating fallbacks, book info extraction, catalog
// matching and summarization, with results cached by content hash.
package identify

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/bookid/internal/bookinfo"
	"github.com/lehigh-university-libraries/bookid/internal/cache"
	"github.com/lehigh-university-libraries/bookid/internal/models"
	"github.com/lehigh-university-libraries/bookid/internal/ocr"
	"github.com/lehigh-university-libraries/bookid/internal/preprocess"
	"github.com/lehigh-university-libraries/bookid/internal/summarizer"
	"github.com/lehigh-university-libraries/bookid/internal/textnorm"
)

// ErrInvalidImage is returned when the upload cannot be decoded
var ErrInvalidImage = errors.New("invalid image")

// ErrInvalidISBN is returned by LookupISBN for malformed input
var ErrInvalidISBN = errors.New("invalid isbn")

// ErrMissingQuery is returned when a lookup has nothing left to search for
// after cleaning
var ErrMissingQuery = errors.New("title or author is required")

// Resolver finds the best catalog record for extracted book info
type Resolver interface {
	Resolve(ctx context.Context, info models.BookInfo, text string) (*models.CatalogRecord, error)
	LookupISBN(ctx context.Context, isbn string) (*models.BookDetails, error)
}

// Summarizer writes the key-points summary
type Summarizer interface {
	Summarize(ctx context.Context, req summarizer.Request) (string, error)
}

// Recommender suggests similar books for a matched record
type Recommender interface {
	Similar(ctx context.Context, rec *models.CatalogRecord) []models.SimilarBook
}

// Identification is everything recognized from a cover before summarizing
type Identification struct {
	Variant    string
	Extraction models.ExtractionResult
	Text       string
	Info       models.BookInfo
	Match      *models.CatalogRecord
}

// Service wires the pipeline stages. Cache and Recommender are optional.
// Recommendations are attached to results only when AttachSimilar is set;
// SimilarBooks serves them on demand either way.
type Service struct {
	Structured  ocr.StructuredExtractor
	Plain       ocr.PlainExtractor
	Resolver    Resolver
	Summarizer  Summarizer
	Cache       cache.Store
	Recommender Recommender

	AttachSimilar bool

	// Timeout bounds each external call; zero means no deadline
	Timeout time.Duration

	preprocess func(image.Image) []models.ImageVariant
}

func New(structured ocr.StructuredExtractor, plain ocr.PlainExtractor, resolver Resolver, sum Summarizer, store cache.Store) *Service {
	if structured == nil {
		structured = ocr.NopExtractor{}
	}
	if plain == nil {
		plain = ocr.NopExtractor{}
	}
	return &Service{
		Structured: structured,
		Plain:      plain,
		Resolver:   resolver,
		Summarizer: sum,
		Cache:      store,
		preprocess: preprocess.Variants,
	}
}

// Identify returns the result for a cover photo, from the cache when a
// fresh entry exists for the same bytes
func (s *Service) Identify(ctx context.Context, data []byte) (*models.Result, error) {
	key := cache.ImageKey(data)
	if cached := s.cached(ctx, key); cached != nil {
		return cached, nil
	}

	id, err := s.Recognize(ctx, data)
	if err != nil {
		return nil, err
	}

	result, err := s.finish(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, *result)
	return result, nil
}

// Recognize runs extraction and catalog matching without the cache or the
// summarizer
func (s *Service) Recognize(ctx context.Context, data []byte) (*Identification, error) {
	img, format, err := preprocess.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	slog.Info("Decoded image", "format", format, "bounds", img.Bounds().String(), "bytes", len(data))

	variants := s.preprocess(img)
	variant, extraction := s.extract(ctx, variants)

	id := &Identification{
		Variant:    variant,
		Extraction: extraction,
		Text:       textnorm.Normalize(extraction.FullText),
		Info:       bookinfo.Extract(extraction),
	}
	slog.Info("Extracted book info", "variant", variant, "text_length", len(id.Text), "title", id.Info.Title, "author", id.Info.Author, "isbn", id.Info.ISBN)

	id.Match, err = s.resolve(ctx, id.Info, id.Text)
	if err != nil {
		return nil, err
	}
	return id, nil
}

// Lookup identifies a book by title and author instead of a photo
func (s *Service) Lookup(ctx context.Context, title, author string) (*models.Result, error) {
	info := models.BookInfo{
		Title:  textnorm.CleanField(title),
		Author: textnorm.CleanField(author),
	}
	if info.Title == "" && info.Author == "" {
		return nil, ErrMissingQuery
	}

	key := cache.LookupKey(info.Title, info.Author)
	if cached := s.cached(ctx, key); cached != nil {
		return cached, nil
	}

	text := strings.TrimSpace(info.Title + " " + info.Author)
	match, err := s.resolve(ctx, info, text)
	if err != nil {
		return nil, err
	}

	result, err := s.finish(ctx, &Identification{Text: text, Info: info, Match: match})
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, *result)
	return result, nil
}

// SimilarBooks resolves title and the first author to a catalog record and
// recommends books from its categories. No match yields an empty list.
func (s *Service) SimilarBooks(ctx context.Context, title string, authors []string) ([]models.SimilarBook, error) {
	info := models.BookInfo{Title: textnorm.CleanField(title)}
	if len(authors) > 0 {
		info.Author = textnorm.CleanField(authors[0])
	}
	if info.Title == "" {
		return nil, ErrMissingQuery
	}

	match, err := s.resolve(ctx, info, strings.TrimSpace(info.Title+" "+info.Author))
	if err != nil {
		return nil, err
	}
	if match == nil || s.Recommender == nil {
		slog.Info("No similar books", "title", info.Title, "matched", match != nil)
		return []models.SimilarBook{}, nil
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.Recommender.Similar(ctx, match), nil
}

// LookupISBN fetches edition details directly from the catalogs
func (s *Service) LookupISBN(ctx context.Context, isbn string) (*models.BookDetails, error) {
	isbn = bookinfo.NormalizeISBN(isbn)
	if !bookinfo.ValidISBN(isbn) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidISBN, isbn)
	}
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.Resolver.LookupISBN(ctx, isbn)
}

func (s *Service) resolve(ctx context.Context, info models.BookInfo, text string) (*models.CatalogRecord, error) {
	if s.Resolver == nil {
		return nil, nil
	}
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	match, err := s.Resolver.Resolve(ctx, info, text)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}
	return match, nil
}

// finish summarizes and assembles the result, preferring the catalog match
// over the extracted info
func (s *Service) finish(ctx context.Context, id *Identification) (*models.Result, error) {
	result := assemble(id.Info, id.Match)

	req := summarizer.Request{Text: id.Text, ISBN: id.Info.ISBN}
	if id.Match != nil {
		req.Title = id.Match.Title
		req.Authors = id.Match.Authors
	} else {
		req.Title = id.Info.Title
		if id.Info.Author != "" {
			req.Authors = []string{id.Info.Author}
		}
	}

	if s.Summarizer != nil {
		sctx, cancel := s.callContext(ctx)
		summary, err := s.Summarizer.Summarize(sctx, req)
		cancel()
		if err != nil {
			return nil, err
		}
		result.Summary = summary
	}

	if s.AttachSimilar && s.Recommender != nil && id.Match != nil {
		rctx, cancel := s.callContext(ctx)
		result.Similar = s.Recommender.Similar(rctx, id.Match)
		cancel()
	}
	return result, nil
}

func assemble(info models.BookInfo, match *models.CatalogRecord) *models.Result {
	if match != nil {
		result := &models.Result{
			Title:     match.Title,
			Authors:   match.Authors,
			Rating:    match.Rating,
			PageCount: match.PageCount,
		}
		if match.ImageURL != "" {
			image := match.ImageURL
			result.Image = &image
		}
		if result.Authors == nil {
			result.Authors = []string{}
		}
		return result
	}

	result := &models.Result{Title: info.Title, Authors: []string{}}
	if result.Title == "" {
		result.Title = "Unknown"
	}
	if info.Author != "" {
		result.Authors = []string{info.Author}
	}
	return result
}

func (s *Service) cached(ctx context.Context, key string) *models.Result {
	if s.Cache == nil {
		return nil
	}
	entry, err := s.Cache.Get(ctx, key)
	if err != nil {
		slog.Warn("Cache read failed", "key", key, "err", err)
		return nil
	}
	if entry == nil {
		return nil
	}
	slog.Info("Cache hit", "key", key, "written", entry.Timestamp)
	return &entry.Result
}

func (s *Service) store(ctx context.Context, key string, result models.Result) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Put(ctx, key, result); err != nil {
		slog.Warn("Cache write failed", "key", key, "err", err)
	}
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}
