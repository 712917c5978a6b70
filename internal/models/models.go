package models

import (
	"image"
	"time"
)

// Source identifies which catalog backend produced a record
type Source string

const (
	SourcePrimary  Source = "google_books"
	SourceFallback Source = "open_library"
)

// ImageVariant is one rendering of the uploaded cover. Index 0 is always the
// unmodified original.
type ImageVariant struct {
	Index int
	Name  string
	Image image.Image
}

// ExtractionResult is the output of a text extractor for one image variant
type ExtractionResult struct {
	FullText         string   `json:"full_text"`
	TitleCandidates  []string `json:"title_candidates"`
	AuthorCandidates []string `json:"author_candidates"`
}

// BookInfo holds the fields derived from OCR output. Empty strings mean absent.
type BookInfo struct {
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
	ISBN   string `json:"isbn,omitempty"`
}

// CatalogRecord is a candidate returned by one of the catalog backends
type CatalogRecord struct {
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle,omitempty"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	ImageURL      string   `json:"image_url,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	PageCount     *int     `json:"page_count,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	ISBNs         []string `json:"isbns,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Source        Source   `json:"source"`
	MatchScore    float64  `json:"match_score"`
}

// Result is the final record returned to callers and stored in the cache
type Result struct {
	Summary   string        `json:"summary"`
	Title     string        `json:"title"`
	Authors   []string      `json:"authors"`
	Image     *string       `json:"image"`
	Rating    *float64      `json:"rating"`
	PageCount *int          `json:"pageCount,omitempty"`
	Similar   []SimilarBook `json:"similar,omitempty"`
}

// BookDetails is the response of a direct ISBN lookup
type BookDetails struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	PageCount   *int     `json:"pageCount,omitempty"`
}

// MatchType tells whether a recommendation shares the book's category or a
// related one
type MatchType string

const (
	MatchSameCategory    MatchType = "same_category"
	MatchRelatedCategory MatchType = "related_category"
)

// SimilarBook is a recommendation attached to a Result
type SimilarBook struct {
	Title      string    `json:"title"`
	Authors    []string  `json:"authors"`
	Image      string    `json:"image"`
	Rating     *float64  `json:"rating,omitempty"`
	Categories []string  `json:"categories,omitempty"`
	MatchType  MatchType `json:"match_type"`
}

// CacheEntry is a stored Result with the time it was written
type CacheEntry struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	Result    Result    `json:"result"`
}
