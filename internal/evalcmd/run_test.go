package evalcmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lehigh-university-libraries/bookid/internal/eval/dataset"
	"github.com/lehigh-university-libraries/bookid/internal/eval/metrics"
	"github.com/lehigh-university-libraries/bookid/internal/identify"
	"github.com/lehigh-university-libraries/bookid/internal/images"
	"github.com/lehigh-university-libraries/bookid/internal/models"
)

// fakeRecognizer identifies an image by its content
type fakeRecognizer struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeRecognizer) Recognize(_ context.Context, data []byte) (*identify.Identification, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	switch string(data) {
	case "dune":
		return &identify.Identification{
			Variant: "original",
			Info:    models.BookInfo{Title: "DUNE", ISBN: "9780441013593"},
			Match: &models.CatalogRecord{
				Title:      "Dune",
				Authors:    []string{"Frank Herbert"},
				Source:     models.SourcePrimary,
				MatchScore: 43,
			},
		}, nil
	case "emma":
		return &identify.Identification{
			Variant: "otsu",
			Info:    models.BookInfo{Title: "Emma", Author: "Jane Austen"},
		}, nil
	default:
		return nil, errors.New("catalog unavailable")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{"dune.jpg": "dune", "emma.jpg": "emma", "bad.jpg": "bad"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	items := []dataset.Item{
		{ID: "dune", ImagePath: "dune.jpg", Title: "Dune", Author: "Frank Herbert", ISBN: "978-0441013593"},
		{ID: "emma", ImagePath: "emma.jpg", Title: "Emma", Author: "Jane Austen"},
		{ID: "bad", ImagePath: "bad.jpg", Title: "Ulysses"},
		{ID: "missing", ImagePath: "missing.jpg", Title: "Beloved"},
		{ID: "none", Title: "Middlemarch"},
	}

	rec := &fakeRecognizer{}
	runner := &Runner{Recognizer: rec, Concurrency: 3}
	res, err := runner.Run(context.Background(), items, dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res) != len(items) {
		t.Fatalf("Expected %d results, got %d", len(items), len(res))
	}
	for i, r := range res {
		if r.ID != items[i].ID {
			t.Errorf("Result %d: expected id %s, got %s", i, items[i].ID, r.ID)
		}
	}

	dune := res[0]
	if dune.Error != "" || dune.Source != "google_books" || dune.Title != "Dune" || dune.Author != "Frank Herbert" {
		t.Errorf("Unexpected dune result: %+v", dune)
	}
	if dune.Comparison.ISBN.Method != metrics.MethodExact {
		t.Errorf("Expected exact isbn, got %s", dune.Comparison.ISBN.Method)
	}

	emma := res[1]
	if emma.Source != "" || emma.Variant != "otsu" || emma.Comparison.Author.Method != metrics.MethodExact {
		t.Errorf("Unexpected emma result: %+v", emma)
	}

	for _, r := range res[2:] {
		if r.Error == "" {
			t.Errorf("Expected error for %s", r.ID)
		}
	}
	if rec.calls != 3 {
		t.Errorf("Expected 3 recognitions, got %d", rec.calls)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := &Runner{Recognizer: &fakeRecognizer{}, Concurrency: 1}
	if _, err := runner.Run(ctx, []dataset.Item{{ID: "a"}}, ""); err == nil {
		t.Error("Expected canceled run to fail")
	}
}

func TestDownloadCovers(t *testing.T) {
	cover := bytes.Repeat([]byte{0xd8}, 4096)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/b/isbn/9780441013593-L.jpg" {
			w.Write(cover)
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	fetcher := images.NewFetcher()
	fetcher.CoversURL = ts.URL
	out := t.TempDir()

	items := []dataset.Item{
		{ID: "dune", Title: "Dune", ISBN: "978-0441013593"},
		{ID: "unknown", Title: "Unknown", ISBN: "0000000000"},
		{ID: "local", ImagePath: "local.jpg", Title: "Emma"},
	}
	path, err := downloadCovers(context.Background(), fetcher, items, out)
	if err != nil {
		t.Fatalf("downloadCovers failed: %v", err)
	}

	loaded, err := dataset.NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Failed to load written dataset: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "dune" || loaded[0].ImagePath != "9780441013593_cover.jpg" {
		t.Fatalf("Unexpected dataset: %+v", loaded)
	}
	data, err := os.ReadFile(loaded[0].ResolvePath(filepath.Dir(path)))
	if err != nil || !bytes.Equal(data, cover) {
		t.Errorf("Expected cover on disk, got %d bytes, %v", len(data), err)
	}
}
