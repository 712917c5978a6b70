package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "BOOKID_CACHE", "BOOKID_CACHE_DIR", "BOOKID_TIMEOUT",
		"BOOKID_FALLBACK_OCR", "SUMMARY_PROVIDER", "BOOKID_SIMILAR", "TESSERACT_LANGUAGE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Expected port 8000, got %s", cfg.Port)
	}
	if cfg.CacheKind != "file" || cfg.CacheDir != "cache" {
		t.Errorf("Expected file cache in cache, got %s in %s", cfg.CacheKind, cfg.CacheDir)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", cfg.Timeout)
	}
	if cfg.FallbackOCR != "tesseract" || cfg.TesseractLanguage != "eng" {
		t.Errorf("Unexpected OCR defaults: %s %s", cfg.FallbackOCR, cfg.TesseractLanguage)
	}
	if cfg.SummaryProvider != "ollama" || cfg.Similar {
		t.Errorf("Unexpected summary defaults: %s similar=%v", cfg.SummaryProvider, cfg.Similar)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("BOOKID_CACHE", "sqlite")
	t.Setenv("BOOKID_TIMEOUT", "5s")
	t.Setenv("BOOKID_SIMILAR", "true")
	t.Setenv("SUMMARY_PROVIDER", "gemini")
	t.Setenv("BOOKID_FALLBACK_OCR", "none")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9000" || cfg.CacheKind != "sqlite" || cfg.Timeout != 5*time.Second {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if !cfg.Similar || cfg.SummaryProvider != "gemini" || cfg.FallbackOCR != "none" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"BOOKID_TIMEOUT", "soon"},
		{"BOOKID_SIMILAR", "maybe"},
		{"BOOKID_CACHE", "redis"},
		{"BOOKID_FALLBACK_OCR", "easyocr"},
		{"SUMMARY_PROVIDER", "claude"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
