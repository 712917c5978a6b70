package cmd

import (
	"testing"

	"github.com/lehigh-university-libraries/bookid/internal/config"
	"github.com/lehigh-university-libraries/bookid/internal/gemini"
	"github.com/lehigh-university-libraries/bookid/internal/ocr"
	"github.com/lehigh-university-libraries/bookid/internal/ocr/tesseract"
	"github.com/lehigh-university-libraries/bookid/internal/ollama"
	"github.com/lehigh-university-libraries/bookid/internal/openai"
)

func TestVisionOptions(t *testing.T) {
	if opts := visionOptions(config.Config{}); opts != nil {
		t.Errorf("Expected no options without credentials, got %d", len(opts))
	}
	if opts := visionOptions(config.Config{VisionAPIKey: "key"}); len(opts) != 1 {
		t.Errorf("Expected 1 option for an API key, got %d", len(opts))
	}
	if opts := visionOptions(config.Config{VisionCredentials: "sa.json"}); len(opts) != 1 {
		t.Errorf("Expected 1 option for a credentials file, got %d", len(opts))
	}
}

func TestGoogleBooksOptions(t *testing.T) {
	if got := len(googleBooksOptions(config.Config{})); got != 1 {
		t.Errorf("Expected 1 option, got %d", got)
	}
	cfg := config.Config{GoogleBooksAPIKey: "key", GoogleBooksEndpoint: "http://localhost:9999/"}
	if got := len(googleBooksOptions(cfg)); got != 2 {
		t.Errorf("Expected 2 options, got %d", got)
	}
}

func TestFallbackExtractor(t *testing.T) {
	if _, ok := fallbackExtractor(config.Config{FallbackOCR: "tesseract"}).(*tesseract.Extractor); !ok {
		t.Error("Expected tesseract extractor")
	}
	e, ok := fallbackExtractor(config.Config{FallbackOCR: "ollama", OllamaOCRModel: "llava"}).(*ocr.LLMExtractor)
	if !ok {
		t.Fatal("Expected LLM extractor")
	}
	if e.URL != ollama.DefaultURL {
		t.Errorf("Expected default Ollama URL, got %s", e.URL)
	}
	if _, ok := fallbackExtractor(config.Config{FallbackOCR: "none"}).(ocr.NopExtractor); !ok {
		t.Error("Expected nop extractor")
	}
}

func TestSummaryProvider(t *testing.T) {
	tests := []struct {
		provider string
		check    func(any) bool
	}{
		{"ollama", func(p any) bool { _, ok := p.(*ollama.Ollama); return ok }},
		{"openai", func(p any) bool { _, ok := p.(*openai.OpenAI); return ok }},
		{"gemini", func(p any) bool { _, ok := p.(*gemini.Gemini); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := summaryProvider(config.Config{SummaryProvider: tt.provider})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !tt.check(p) {
				t.Errorf("Unexpected provider type %T", p)
			}
		})
	}

	if _, err := summaryProvider(config.Config{SummaryProvider: "claude"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestSetupLogging(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		if err := setupLogging(false, format); err != nil {
			t.Errorf("Unexpected error for %s: %v", format, err)
		}
	}
	if err := setupLogging(true, "xml"); err == nil {
		t.Error("Expected error for unknown log format")
	}
}
