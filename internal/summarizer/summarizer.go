// Package summarizer asks a text-generation provider for a short bullet
// list of a book's key points
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/lehigh-university-libraries/bookid/internal/providers"
)

const (
	unknown = "Unknown"
	bullet  = "• "
)

const promptTemplate = `Extract the most important, actionable key points from the following book. 
Summarize in 4-7 short bullet points (one per line). 
Each point should be concise, direct, and help a reader instantly understand what makes this book unique or useful. 
Do NOT write a paragraph. Do NOT include an introduction or conclusion. 
Just the key points, like a cheat sheet.

Extracted Text: %s

Book Information:
Title: %s
Author: %s
ISBN: %s

Key Points:
`

// leadingMarker matches one bullet or list number and captures the character
// after it, so "3.5" is not read as item 3. Markdown bold ("**") is left alone
// by the caller.
var leadingMarker = regexp.MustCompile(`^(?:[-*+]|\d+[.)]|[•·◦‣▪])\s*(\D|$)`)

// Request carries what is known about the book
type Request struct {
	Text    string
	Title   string
	Authors []string
	ISBN    string
}

// BuildPrompt renders the summary prompt. Missing values render as Unknown.
func BuildPrompt(req Request) string {
	authors := strings.Join(req.Authors, ", ")
	return fmt.Sprintf(promptTemplate, req.Text, orUnknown(req.Title), orUnknown(authors), orUnknown(req.ISBN))
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}

// FormatBullets strips any bullet or numbering the model produced and
// prefixes every non-empty line with a uniform bullet
func FormatBullets(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		for !strings.HasPrefix(line, "**") {
			stripped := strings.TrimSpace(leadingMarker.ReplaceAllString(line, "$1"))
			if stripped == line {
				break
			}
			line = stripped
		}
		if line == "" {
			continue
		}
		lines = append(lines, bullet+line)
	}
	return strings.Join(lines, "\n")
}

// Summarizer produces formatted summaries with a provider
type Summarizer struct {
	Provider    providers.Provider
	Model       string
	Temperature float64
}

// New returns a Summarizer for provider and model
func New(provider providers.Provider, model string) *Summarizer {
	return &Summarizer{Provider: provider, Model: model}
}

// Summarize builds the prompt, calls the provider and formats the answer
func (s *Summarizer) Summarize(ctx context.Context, req Request) (string, error) {
	prompt := BuildPrompt(req)
	slog.Debug("Requesting summary", "model", s.Model, "title", req.Title, "prompt_length", len(prompt))

	raw, err := s.Provider.Generate(ctx, providers.Config{
		Model:       s.Model,
		Temperature: s.Temperature,
		Prompt:      prompt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	summary := FormatBullets(raw)
	slog.Info("Generated summary", "model", s.Model, "length", len(summary))
	return summary, nil
}
