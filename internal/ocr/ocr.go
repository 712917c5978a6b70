// Package ocr turns image variants into text. Structured extractors also
// report title and author candidates; plain extractors return raw text only.
package ocr

import (
	"context"

	"github.com/lehigh-university-libraries/bookid/internal/models"
)

// StructuredExtractor extracts text plus title/author candidates. An
// unavailable or failing backend yields an empty result, never an error.
type StructuredExtractor interface {
	Extract(ctx context.Context, variant models.ImageVariant) models.ExtractionResult
}

// PlainExtractor extracts raw text only. Failures are logged and yield "".
type PlainExtractor interface {
	ExtractText(ctx context.Context, variant models.ImageVariant) string
}

// NopExtractor satisfies both extractor interfaces and never finds text
type NopExtractor struct{}

func (NopExtractor) Extract(context.Context, models.ImageVariant) models.ExtractionResult {
	return models.ExtractionResult{}
}

func (NopExtractor) ExtractText(context.Context, models.ImageVariant) string {
	return ""
}

// Dedupe removes repeated strings, keeping the first occurrence of each
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
