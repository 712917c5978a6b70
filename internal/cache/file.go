package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/bookid/internal/models"
)

// FileStore keeps one JSON file per key in a directory
type FileStore struct {
	Dir string
	now func() time.Time
}

// fileEntry stores the timestamp as fractional unix seconds
type fileEntry struct {
	Timestamp float64       `json:"timestamp"`
	Result    models.Result `json:"result"`
}

// NewFileStore creates dir if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "cache"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileStore{Dir: dir, now: time.Now}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

func (s *FileStore) Get(_ context.Context, key string) (*models.CacheEntry, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var fe fileEntry
	if err := json.Unmarshal(data, &fe); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}

	sec := int64(fe.Timestamp)
	written := time.Unix(sec, int64((fe.Timestamp-float64(sec))*1e9))
	if !fresh(written, s.now()) {
		return nil, nil
	}
	return &models.CacheEntry{Key: key, Timestamp: written, Result: fe.Result}, nil
}

// Put writes the entry to a temporary file and renames it into place
func (s *FileStore) Put(_ context.Context, key string, result models.Result) error {
	now := s.now()
	data, err := json.Marshal(fileEntry{
		Timestamp: float64(now.UnixNano()) / 1e9,
		Result:    result,
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store cache file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
