package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/bookid/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// EvalConfig is the configuration section of the eval YAML
type EvalConfig struct {
	DatasetPath     string `yaml:"datasetpath"`
	SampleSize      int    `yaml:"samplesize"`
	Concurrency     int    `yaml:"concurrency"`
	StructuredOCR   string `yaml:"structuredocr"`
	FallbackOCR     string `yaml:"fallbackocr"`
	SummaryProvider string `yaml:"summaryprovider,omitempty"`
	Timestamp       string `yaml:"timestamp"`
}

// EvalSummary holds the aggregate accuracies
type EvalSummary struct {
	Total           int     `yaml:"total"`
	Failed          int     `yaml:"failed"`
	Matched         int     `yaml:"matched"`
	TitleAccuracy   float64 `yaml:"titleaccuracy"`
	AuthorAccuracy  float64 `yaml:"authoraccuracy"`
	ISBNAccuracy    float64 `yaml:"isbnaccuracy"`
	OverallAccuracy float64 `yaml:"overallaccuracy"`
}

// EvalResult is a single evaluation result
type EvalResult struct {
	Identifier   string              `yaml:"identifier"`
	Title        string              `yaml:"title"`
	Author       string              `yaml:"author,omitempty"`
	Variant      string              `yaml:"variant,omitempty"`
	Source       string              `yaml:"source,omitempty"`
	MatchScore   float64             `yaml:"matchscore,omitempty"`
	Seconds      float64             `yaml:"seconds"`
	Error        string              `yaml:"error,omitempty"`
	OverallScore float64             `yaml:"overallscore"`
	Fields       map[string]FieldRow `yaml:"fields,omitempty"`
}

// FieldRow is the YAML form of a metrics.FieldMatch
type FieldRow struct {
	Expected string  `yaml:"expected"`
	Actual   string  `yaml:"actual"`
	Method   string  `yaml:"method"`
	Score    float64 `yaml:"score"`
}

// EvalSpec is the complete evaluation file
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Summary EvalSummary  `yaml:"summary"`
	Results []EvalResult `yaml:"results"`
}

// SaveToYAML writes the run to <dir>/<timestamp>.yaml and returns the path
func SaveToYAML(dir string, cfg EvalConfig, agg *metrics.AggregateResults) (string, error) {
	if dir == "" {
		dir = "evals"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	spec := EvalSpec{
		Config: cfg,
		Summary: EvalSummary{
			Total:           agg.TotalRecords,
			Failed:          agg.FailureCount,
			Matched:         agg.MatchedCount,
			TitleAccuracy:   agg.TitleAccuracy.Accuracy(),
			AuthorAccuracy:  agg.AuthorAccuracy.Accuracy(),
			ISBNAccuracy:    agg.ISBNAccuracy.Accuracy(),
			OverallAccuracy: agg.OverallAccuracy,
		},
		Results: make([]EvalResult, 0, len(agg.Results)),
	}

	for _, r := range agg.Results {
		row := EvalResult{
			Identifier: r.ID,
			Title:      r.Title,
			Author:     r.Author,
			Variant:    r.Variant,
			Source:     r.Source,
			MatchScore: r.MatchScore,
			Seconds:    r.ProcessingTime.Seconds(),
			Error:      r.Error,
		}
		if r.Comparison != nil {
			row.OverallScore = r.Comparison.OverallScore
			row.Fields = map[string]FieldRow{
				"title":  fieldRow(r.Comparison.Title),
				"author": fieldRow(r.Comparison.Author),
				"isbn":   fieldRow(r.Comparison.ISBN),
			}
		}
		spec.Results = append(spec.Results, row)
	}

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	filename := filepath.Join(dir, cfg.Timestamp+".yaml")
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}
	return filename, nil
}

func fieldRow(m metrics.FieldMatch) FieldRow {
	return FieldRow{Expected: m.Expected, Actual: m.Actual, Method: m.Method, Score: m.Score}
}
