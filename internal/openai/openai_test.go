package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lehigh-university-libraries/bookid/internal/providers"
)

func TestGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Unexpected authorization %q", auth)
		}
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "1. point"}}]}`))
	}))
	defer ts.Close()

	got, err := New("sk-test", ts.URL).Generate(context.Background(), providers.Config{Model: "gpt-4o-mini", Prompt: "hi"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "1. point" {
		t.Errorf("Expected '1. point', got %q", got)
	}
}

func TestGenerateNoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer ts.Close()

	if _, err := New("sk-test", ts.URL).Generate(context.Background(), providers.Config{}); err == nil {
		t.Error("Expected error for empty choices")
	}
}

func TestGenerateMissingKey(t *testing.T) {
	if _, err := New("", "").Generate(context.Background(), providers.Config{}); err == nil {
		t.Error("Expected error without an API key")
	}
}
