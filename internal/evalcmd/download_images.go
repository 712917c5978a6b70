package evalcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/bookid/internal/eval/dataset"
	"github.com/lehigh-university-libraries/bookid/internal/images"
)

// downloadCovers fetches the Open Library cover of every item that has an
// ISBN but no local image, and writes a JSONL dataset pointing at the files
func downloadCovers(ctx context.Context, fetcher *images.Fetcher, items []dataset.Item, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var downloaded, skipped, failed int
	out := make([]dataset.Item, 0, len(items))
	for i, item := range items {
		if item.ImagePath != "" || item.ISBN == "" {
			skipped++
			continue
		}
		isbn := item.CleanISBN()
		slog.Info("Downloading cover", "index", i+1, "total", len(items), "isbn", isbn)

		data, err := fetcher.FetchCover(ctx, isbn)
		if err != nil {
			slog.Warn("Failed to download cover", "isbn", isbn, "err", err)
			failed++
			continue
		}

		name := isbn + "_cover.jpg"
		if err := os.WriteFile(filepath.Join(outputDir, name), data, 0644); err != nil {
			return "", fmt.Errorf("failed to write cover file: %w", err)
		}
		item.ImagePath = name
		item.ImageURL = ""
		out = append(out, item)
		downloaded++
	}

	path := filepath.Join(outputDir, "dataset.jsonl")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, item := range out {
		if err := enc.Encode(item); err != nil {
			return "", fmt.Errorf("failed to write dataset file: %w", err)
		}
	}

	slog.Info("Cover download complete", "downloaded", downloaded, "skipped", skipped, "failed", failed, "dataset", path)
	return path, nil
}
