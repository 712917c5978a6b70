// Package providers defines the text-generation backends used for book
// summaries
package providers

import (
	"context"
)

const (
	Ollama = "ollama"
	OpenAI = "openai"
	Gemini = "gemini"
)

// DefaultModels maps each provider to the model used when none is configured
var DefaultModels = map[string]string{
	Ollama: "gemma2",
	OpenAI: "gpt-4o-mini",
	Gemini: "gemini-1.5-flash",
}

// Config represents a single generation request
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
}

// Provider generates a completion for a prompt
type Provider interface {
	Generate(ctx context.Context, config Config) (string, error)
}
