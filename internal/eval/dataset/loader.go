package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Loader reads evaluation items from a dataset file
type Loader struct {
	datasetPath string
}

func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Dir is the directory relative image paths are resolved against
func (l *Loader) Dir() string {
	return filepath.Dir(l.datasetPath)
}

// Load reads every item (JSONL, YAML or Parquet)
func (l *Loader) Load() ([]Item, error) {
	return l.LoadSample(0)
}

// LoadSample reads at most limit items; zero means all
func (l *Loader) LoadSample(limit int) ([]Item, error) {
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	var (
		items []Item
		err   error
	)
	switch ext {
	case ".parquet":
		items, err = l.loadParquet(limit)
	case ".jsonl", ".json":
		items, err = l.loadJSONL(limit)
	case ".yaml", ".yml":
		items, err = l.loadYAML(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl, .yaml)", ext)
	}
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = fmt.Sprintf("item-%d", i+1)
		}
	}
	slog.Debug("Loaded dataset", "path", l.datasetPath, "items", len(items))
	return items, nil
}

func (l *Loader) loadJSONL(limit int) ([]Item, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var items []Item
	scanner := bufio.NewScanner(file)

	lineNum := 0
	for scanner.Scan() {
		if limit > 0 && len(items) >= limit {
			break
		}
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}
	return items, nil
}

// loadYAML accepts either a list of items or a mapping with an items key
func (l *Loader) loadYAML(limit int) ([]Item, error) {
	data, err := os.ReadFile(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}

	var items []Item
	if err := yaml.Unmarshal(data, &items); err != nil {
		var doc struct {
			Items []Item `yaml:"items"`
		}
		if err2 := yaml.Unmarshal(data, &doc); err2 != nil {
			return nil, fmt.Errorf("failed to parse YAML dataset: %w", err)
		}
		items = doc.Items
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (l *Loader) loadParquet(limit int) ([]Item, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}
	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Item](pf)
	defer reader.Close()

	var items []Item
	rows := make([]Item, 128)
	for limit <= 0 || len(items) < limit {
		n, err := reader.Read(rows)
		if n > 0 {
			if limit > 0 && n > limit-len(items) {
				n = limit - len(items)
			}
			items = append(items, rows[:n]...)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return items, nil
}

// WriteParquet stores items as a Parquet dataset
func WriteParquet(path string, items []Item) error {
	if err := parquet.WriteFile(path, items); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}
