package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/bookid/internal/providers"
)

func TestGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if body["model"] != "gemma2" || body["stream"] != false {
			t.Errorf("Unexpected request %v", body)
		}
		if _, ok := body["options"]; ok {
			t.Error("Expected no options for zero temperature")
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "- point"})
	}))
	defer ts.Close()

	got, err := New(ts.URL+"/").Generate(context.Background(), providers.Config{Model: "gemma2", Prompt: "hi"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "- point" {
		t.Errorf("Expected '- point', got %q", got)
	}
}

func TestGenerateNon200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := New(ts.URL).Generate(context.Background(), providers.Config{Model: "missing"})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected 404 error, got %v", err)
	}
}

func TestNewDefaultURL(t *testing.T) {
	if got := New("").URL; got != DefaultURL {
		t.Errorf("Expected %s, got %s", DefaultURL, got)
	}
}
