// Package cache stores identification results keyed by content hash. Entries
// expire 30 days after they are written; expiry is checked on read.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/bookid/internal/models"
	"github.com/lehigh-university-libraries/bookid/internal/textnorm"
)

// TTL is how long an entry stays valid
const TTL = 30 * 24 * time.Hour

// Store is a keyed result cache. Get returns nil without an error on a miss
// or an expired entry.
type Store interface {
	Get(ctx context.Context, key string) (*models.CacheEntry, error)
	Put(ctx context.Context, key string, result models.Result) error
	Close() error
}

// ImageKey is the MD5 hex digest of the uploaded image bytes
func ImageKey(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// LookupKey hashes a normalized title and author for non-image lookups
func LookupKey(title, author string) string {
	norm := func(s string) string {
		return strings.ToLower(textnorm.CleanField(s))
	}
	return ImageKey([]byte(norm(title) + "|" + norm(author)))
}

func fresh(written, now time.Time) bool {
	return now.Sub(written) < TTL
}

// Open returns the store selected by kind: file, sqlite, postgres or memory
func Open(kind, dir, dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch kind {
	case "", "file":
		s, err = NewFileStore(dir)
	case "sqlite":
		if dsn == "" {
			dsn = filepath.Join(dir, "bookid.db")
		}
		s, err = OpenSQLite(dsn)
	case "postgres":
		s, err = OpenPostgres(dsn)
	case "memory":
		s = NewMemoryStore()
	default:
		err = fmt.Errorf("unsupported cache store: %s", kind)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
