package identify

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/bookid/internal/models"
)

// minStructuredText is the full text length, in characters, below which the
// other variants are tried with the structured extractor
const minStructuredText = 20

// textLength counts characters, not bytes
func textLength(s string) int {
	return utf8.RuneCountInString(s)
}

// extraction is the running best result of the escalation table
type extraction struct {
	variant string
	result  models.ExtractionResult
}

// extractionStep runs when its predicate holds for the running best
type extractionStep struct {
	name string
	when func(best extraction) bool
	run  func(s *Service, ctx context.Context, variants []models.ImageVariant, best extraction) extraction
}

var extractionSteps = []extractionStep{
	{
		name: "structured_original",
		when: func(extraction) bool { return true },
		run: func(s *Service, ctx context.Context, variants []models.ImageVariant, best extraction) extraction {
			return s.structured(ctx, variants[:1], best)
		},
	},
	{
		name: "structured_variants",
		when: func(best extraction) bool { return textLength(best.result.FullText) < minStructuredText },
		run: func(s *Service, ctx context.Context, variants []models.ImageVariant, best extraction) extraction {
			return s.structured(ctx, variants[1:], best)
		},
	},
	{
		name: "plain_variants",
		when: func(best extraction) bool { return best.result.FullText == "" },
		run: func(s *Service, ctx context.Context, variants []models.ImageVariant, best extraction) extraction {
			return s.plain(ctx, variants, best)
		},
	},
}

// extract walks the escalation table and returns the winning variant name
// and its extraction result
func (s *Service) extract(ctx context.Context, variants []models.ImageVariant) (string, models.ExtractionResult) {
	var best extraction
	if len(variants) == 0 {
		return "", best.result
	}
	for _, step := range extractionSteps {
		if !step.when(best) {
			continue
		}
		slog.Debug("Running extraction step", "step", step.name, "current_length", textLength(best.result.FullText))
		best = step.run(s, ctx, variants, best)
	}
	return best.variant, best.result
}

func (s *Service) structured(ctx context.Context, variants []models.ImageVariant, best extraction) extraction {
	for _, v := range variants {
		cctx, cancel := s.callContext(ctx)
		res := s.Structured.Extract(cctx, v)
		cancel()
		if textLength(res.FullText) > textLength(best.result.FullText) {
			slog.Info("Found longer text", "extractor", "structured", "variant", v.Name, "length", textLength(res.FullText))
			best = extraction{variant: v.Name, result: res}
		}
	}
	return best
}

// plain keeps the best candidates found so far and only replaces the text
func (s *Service) plain(ctx context.Context, variants []models.ImageVariant, best extraction) extraction {
	for _, v := range variants {
		cctx, cancel := s.callContext(ctx)
		text := s.Plain.ExtractText(cctx, v)
		cancel()
		if textLength(text) > textLength(best.result.FullText) {
			slog.Info("Found longer text", "extractor", "plain", "variant", v.Name, "length", textLength(text))
			best.variant = v.Name
			best.result.FullText = text
		}
	}
	if strings.TrimSpace(best.result.FullText) == "" {
		slog.Warn("No text extracted from any variant")
	}
	return best
}
