// Package tesseract adapts a local Tesseract install to ocr.PlainExtractor.
package tesseract

import (
	"context"
	"log/slog"

	"github.com/lehigh-university-libraries/bookid/internal/models"
	"github.com/lehigh-university-libraries/bookid/internal/preprocess"
	"github.com/otiai10/gosseract/v2"
)

// Extractor runs Tesseract through gosseract
type Extractor struct {
	Languages     []string
	clientFactory func() *gosseract.Client
}

// New creates an extractor for the given languages; none means
// Tesseract's default (eng).
func New(languages ...string) *Extractor {
	return &Extractor{Languages: languages, clientFactory: gosseract.NewClient}
}

// ExtractText recognizes the variant with a fresh client per call
func (e *Extractor) ExtractText(ctx context.Context, variant models.ImageVariant) string {
	if ctx.Err() != nil {
		return ""
	}
	data, err := preprocess.EncodePNG(variant.Image)
	if err != nil {
		slog.Error("Unable to encode variant for tesseract", "variant", variant.Name, "err", err)
		return ""
	}

	c := e.clientFactory()
	defer c.Close()

	if len(e.Languages) > 0 {
		if err := c.SetLanguage(e.Languages...); err != nil {
			slog.Error("Tesseract OCR error", "variant", variant.Name, "err", err)
			return ""
		}
	}
	if err := c.SetImageFromBytes(data); err != nil {
		slog.Error("Tesseract OCR error", "variant", variant.Name, "err", err)
		return ""
	}
	text, err := c.Text()
	if err != nil {
		slog.Error("Tesseract OCR error", "variant", variant.Name, "err", err)
		return ""
	}

	slog.Debug("Tesseract extraction", "variant", variant.Name, "length", len(text))
	return text
}
