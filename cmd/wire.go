package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/bookid/internal/cache"
	"github.com/lehigh-university-libraries/bookid/internal/catalog"
	"github.com/lehigh-university-libraries/bookid/internal/config"
	"github.com/lehigh-university-libraries/bookid/internal/gemini"
	"github.com/lehigh-university-libraries/bookid/internal/identify"
	"github.com/lehigh-university-libraries/bookid/internal/ocr"
	"github.com/lehigh-university-libraries/bookid/internal/ocr/tesseract"
	"github.com/lehigh-university-libraries/bookid/internal/ollama"
	"github.com/lehigh-university-libraries/bookid/internal/openai"
	"github.com/lehigh-university-libraries/bookid/internal/providers"
	"github.com/lehigh-university-libraries/bookid/internal/recommend"
	"github.com/lehigh-university-libraries/bookid/internal/summarizer"
	"google.golang.org/api/option"
)

// buildService wires the identification pipeline from cfg. The returned
// service owns its cache; callers close it with service.Cache.Close.
func buildService(ctx context.Context, cfg config.Config) (*identify.Service, error) {
	var structured ocr.StructuredExtractor
	if opts := visionOptions(cfg); opts != nil {
		v, err := ocr.NewVisionExtractor(ctx, opts...)
		if err != nil {
			return nil, err
		}
		structured = v
	} else {
		slog.Warn("Cloud Vision not configured, using fallback OCR only")
	}

	googleBooks, err := catalog.NewGoogleBooks(ctx, googleBooksOptions(cfg)...)
	if err != nil {
		return nil, err
	}
	resolver := catalog.NewResolver(googleBooks, catalog.NewOpenLibrary(cfg.OpenLibraryURL))

	provider, err := summaryProvider(cfg)
	if err != nil {
		return nil, err
	}
	model := cfg.SummaryModel
	if model == "" {
		model = providers.DefaultModels[cfg.SummaryProvider]
	}

	store, err := cache.Open(cfg.CacheKind, cfg.CacheDir, cfg.CacheDSN)
	if err != nil {
		return nil, err
	}

	svc := identify.New(structured, fallbackExtractor(cfg), resolver, summarizer.New(provider, model), store)
	svc.Timeout = cfg.Timeout
	svc.Recommender = recommend.New(googleBooks)
	svc.AttachSimilar = cfg.Similar

	slog.Info("Pipeline configured",
		"vision", structured != nil,
		"fallback_ocr", cfg.FallbackOCR,
		"summary_provider", cfg.SummaryProvider,
		"summary_model", model,
		"cache", cfg.CacheKind,
		"similar", cfg.Similar)
	return svc, nil
}

// visionOptions returns nil when no Cloud Vision credentials are configured
func visionOptions(cfg config.Config) []option.ClientOption {
	switch {
	case cfg.VisionAPIKey != "":
		return []option.ClientOption{option.WithAPIKey(cfg.VisionAPIKey)}
	case cfg.VisionCredentials != "":
		return []option.ClientOption{option.WithCredentialsFile(cfg.VisionCredentials)}
	}
	return nil
}

func googleBooksOptions(cfg config.Config) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.GoogleBooksAPIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.GoogleBooksAPIKey))
	} else {
		opts = append(opts, option.WithoutAuthentication())
	}
	if cfg.GoogleBooksEndpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.GoogleBooksEndpoint))
	}
	return opts
}

func ollamaURL(cfg config.Config) string {
	if cfg.OllamaURL == "" {
		return ollama.DefaultURL
	}
	return cfg.OllamaURL
}

func fallbackExtractor(cfg config.Config) ocr.PlainExtractor {
	switch cfg.FallbackOCR {
	case "tesseract":
		return tesseract.New(cfg.TesseractLanguage)
	case "ollama":
		return ocr.NewLLMExtractor(ollamaURL(cfg), cfg.OllamaOCRModel)
	}
	return ocr.NopExtractor{}
}

func summaryProvider(cfg config.Config) (providers.Provider, error) {
	switch cfg.SummaryProvider {
	case providers.Ollama:
		return ollama.New(cfg.OllamaURL), nil
	case providers.OpenAI:
		return openai.New(cfg.OpenAIAPIKey, ""), nil
	case providers.Gemini:
		return gemini.New(cfg.GeminiAPIKey), nil
	}
	return nil, fmt.Errorf("unknown summary provider: %s", cfg.SummaryProvider)
}
