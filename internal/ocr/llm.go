package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/bookid/internal/models"
	"github.com/lehigh-university-libraries/bookid/internal/preprocess"
)

const coverTranscriptionPrompt = `You are performing OCR (Optical Character Recognition) on a photograph of a book cover.

Extract ALL visible text exactly as it appears, preserving line breaks, capitalization and punctuation.
Read from top to bottom. Do not add interpretation, commentary or explanations.
If text is partially obscured, transcribe what you can see and use [?] for illegible portions.

Provide ONLY the extracted text. Start immediately with the transcribed text.`

// LLMExtractor transcribes a variant with an Ollama vision model
type LLMExtractor struct {
	URL        string
	Model      string
	httpClient *http.Client
}

// NewLLMExtractor creates an extractor against the Ollama server at url
func NewLLMExtractor(url, model string) *LLMExtractor {
	return &LLMExtractor{
		URL:        url,
		Model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// ExtractText sends the variant to /api/generate and returns the transcription
func (e *LLMExtractor) ExtractText(ctx context.Context, variant models.ImageVariant) string {
	text, err := e.transcribe(ctx, variant)
	if err != nil {
		slog.Error("LLM OCR error", "variant", variant.Name, "model", e.Model, "err", err)
		return ""
	}
	slog.Debug("Extracted OCR text", "provider", "ollama", "variant", variant.Name, "length", len(text))
	return text
}

func (e *LLMExtractor) transcribe(ctx context.Context, variant models.ImageVariant) (string, error) {
	data, err := preprocess.EncodePNG(variant.Image)
	if err != nil {
		return "", err
	}

	requestBody, err := json.Marshal(map[string]any{
		"model":  e.Model,
		"prompt": coverTranscriptionPrompt,
		"images": []string{base64.StdEncoding.EncodeToString(data)},
		"stream": false,
		"options": map[string]any{
			"temperature": 0.0,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal OCR request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL+"/api/generate", bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create OCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Ollama API for OCR: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama OCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to decode Ollama OCR response: %w", err)
	}
	return ollamaResp.Response, nil
}
