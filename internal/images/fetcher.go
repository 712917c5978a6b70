// Package images downloads cover photos over HTTP
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// MaxSize is the largest image accepted, in bytes
const MaxSize = 10 * 1024 * 1024

// minCoverSize filters out the tiny placeholder Open Library serves for
// unknown covers
const minCoverSize = 1000

// DefaultCoversURL is the Open Library covers API
const DefaultCoversURL = "https://covers.openlibrary.org"

// ErrTooLarge is returned for images of MaxSize bytes or more
var ErrTooLarge = errors.New("image too large (max 10MB)")

// Fetcher retrieves book images from URLs and the Open Library covers API
type Fetcher struct {
	CoversURL  string
	HTTPClient *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		CoversURL: DefaultCoversURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch downloads the image at url
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("unsupported image URL %q", url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}
	return ReadLimited(resp.Body)
}

// FetchCover downloads the large Open Library cover for isbn
func (f *Fetcher) FetchCover(ctx context.Context, isbn string) ([]byte, error) {
	isbn = strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
	url := fmt.Sprintf("%s/b/isbn/%s-L.jpg", strings.TrimRight(f.CoversURL, "/"), isbn)

	data, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cover for %s: %w", isbn, err)
	}
	if len(data) < minCoverSize {
		return nil, fmt.Errorf("cover image for %s too small (likely placeholder)", isbn)
	}
	slog.Debug("Downloaded cover image", "isbn", isbn, "bytes", len(data))
	return data, nil
}

// ReadLimited reads r, failing once MaxSize bytes have been seen
func ReadLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) >= MaxSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
