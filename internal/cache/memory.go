package cache

import (
	"context"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/bookid/internal/models"
)

// MemoryStore is a process-local cache for tests and single-shot CLI runs
type MemoryStore struct {
	entries map[string]models.CacheEntry
	mu      sync.RWMutex
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]models.CacheEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*models.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, exists := s.entries[key]
	if !exists || !fresh(entry.Timestamp, s.now()) {
		return nil, nil
	}
	return &entry, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, result models.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = models.CacheEntry{Key: key, Timestamp: s.now(), Result: result}
	return nil
}

// Len reports the number of stored entries, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) Close() error { return nil }
