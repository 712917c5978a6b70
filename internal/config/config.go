// Package config reads service settings from the environment
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every setting the service and CLI read at startup
type Config struct {
	Port string

	CacheKind string
	CacheDir  string
	CacheDSN  string

	Timeout time.Duration

	GoogleBooksAPIKey   string
	GoogleBooksEndpoint string
	OpenLibraryURL      string

	VisionAPIKey      string
	VisionCredentials string

	FallbackOCR       string
	TesseractLanguage string
	OllamaURL         string
	OllamaOCRModel    string

	SummaryProvider string
	SummaryModel    string
	OpenAIAPIKey    string
	GeminiAPIKey    string

	Similar bool
}

// Load reads the environment, applying defaults for unset values
func Load() (Config, error) {
	cfg := Config{
		Port:                env("PORT", "8000"),
		CacheKind:           env("BOOKID_CACHE", "file"),
		CacheDir:            env("BOOKID_CACHE_DIR", "cache"),
		CacheDSN:            os.Getenv("BOOKID_CACHE_DSN"),
		GoogleBooksAPIKey:   os.Getenv("GOOGLE_BOOKS_API_KEY"),
		GoogleBooksEndpoint: os.Getenv("GOOGLE_BOOKS_ENDPOINT"),
		OpenLibraryURL:      os.Getenv("OPEN_LIBRARY_URL"),
		VisionAPIKey:        os.Getenv("GOOGLE_VISION_API_KEY"),
		VisionCredentials:   os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FallbackOCR:         env("BOOKID_FALLBACK_OCR", "tesseract"),
		TesseractLanguage:   env("TESSERACT_LANGUAGE", "eng"),
		OllamaURL:           os.Getenv("OLLAMA_URL"),
		OllamaOCRModel:      env("OLLAMA_OCR_MODEL", "llava"),
		SummaryProvider:     env("SUMMARY_PROVIDER", "ollama"),
		SummaryModel:        os.Getenv("SUMMARY_MODEL"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
	}

	timeout, err := time.ParseDuration(env("BOOKID_TIMEOUT", "30s"))
	if err != nil {
		return cfg, fmt.Errorf("invalid BOOKID_TIMEOUT: %w", err)
	}
	cfg.Timeout = timeout

	if v := os.Getenv("BOOKID_SIMILAR"); v != "" {
		cfg.Similar, err = strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid BOOKID_SIMILAR: %w", err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks the enumerated settings
func (c Config) Validate() error {
	if err := oneOf("BOOKID_CACHE", c.CacheKind, "file", "sqlite", "postgres", "memory"); err != nil {
		return err
	}
	if err := oneOf("BOOKID_FALLBACK_OCR", c.FallbackOCR, "tesseract", "ollama", "none"); err != nil {
		return err
	}
	return oneOf("SUMMARY_PROVIDER", c.SummaryProvider, "ollama", "openai", "gemini")
}

func oneOf(name, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q: must be one of %s", name, value, strings.Join(allowed, ", "))
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
