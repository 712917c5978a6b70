package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/bookid/internal/models"
	"github.com/lehigh-university-libraries/bookid/internal/preprocess"
	"google.golang.org/api/option"
	"google.golang.org/api/vision/v1"
)

// VisionExtractor runs Google Cloud Vision text and document detection
type VisionExtractor struct {
	svc *vision.Service
}

// NewVisionExtractor creates a Cloud Vision client. Credentials come from
// opts (an API key or a service account file).
func NewVisionExtractor(ctx context.Context, opts ...option.ClientOption) (*VisionExtractor, error) {
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionExtractor{svc: svc}, nil
}

// Available reports whether a Cloud Vision client is configured
func (v *VisionExtractor) Available() bool {
	return v != nil && v.svc != nil
}

// Extract annotates a single variant
func (v *VisionExtractor) Extract(ctx context.Context, variant models.ImageVariant) models.ExtractionResult {
	if !v.Available() {
		return models.ExtractionResult{}
	}

	data, err := preprocess.EncodePNG(variant.Image)
	if err != nil {
		slog.Error("Unable to encode variant for vision", "variant", variant.Name, "err", err)
		return models.ExtractionResult{}
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(data)},
				Features: []*vision.Feature{
					{Type: "TEXT_DETECTION"},
					{Type: "DOCUMENT_TEXT_DETECTION"},
				},
			},
		},
	}
	resp, err := v.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		slog.Error("Google Vision API error", "variant", variant.Name, "err", err)
		return models.ExtractionResult{}
	}
	if len(resp.Responses) == 0 {
		return models.ExtractionResult{}
	}
	annotated := resp.Responses[0]
	if annotated.Error != nil {
		slog.Error("Google Vision API error", "variant", variant.Name, "code", annotated.Error.Code, "message", annotated.Error.Message)
		return models.ExtractionResult{}
	}

	result := layoutFromVision(annotated)
	slog.Debug("Vision extraction",
		"variant", variant.Name,
		"length", len(result.FullText),
		"titles", len(result.TitleCandidates),
		"authors", len(result.AuthorCandidates))
	return result
}

func layoutFromVision(resp *vision.AnnotateImageResponse) models.ExtractionResult {
	var result models.ExtractionResult
	var annotations []string
	if len(resp.TextAnnotations) > 0 {
		result.FullText = resp.TextAnnotations[0].Description
		for _, a := range resp.TextAnnotations[1:] {
			annotations = append(annotations, a.Description)
		}
	}

	var blocks []Block
	if resp.FullTextAnnotation != nil && len(resp.FullTextAnnotation.Pages) > 0 {
		for _, b := range resp.FullTextAnnotation.Pages[0].Blocks {
			block := Block{}
			if b.BoundingBox != nil && len(b.BoundingBox.Vertices) > 0 && b.BoundingBox.Vertices[0] != nil {
				block.Top = b.BoundingBox.Vertices[0].Y
			}
			for _, p := range b.Paragraphs {
				for _, w := range p.Words {
					word := Word{}
					for _, s := range w.Symbols {
						word.Symbols = append(word.Symbols, Symbol{Text: s.Text, Confidence: s.Confidence})
					}
					block.Words = append(block.Words, word)
				}
			}
			blocks = append(blocks, block)
		}
	}

	result.TitleCandidates, result.AuthorCandidates = ClassifyCandidates(blocks, annotations)
	return result
}
