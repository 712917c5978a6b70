package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lehigh-university-libraries/bookid/internal/models"
	_ "modernc.org/sqlite"
)

type dialect struct {
	driver string
	pragma []string
	schema string
	get    string
	put    string
}

var (
	sqliteDialect = dialect{
		driver: "sqlite",
		pragma: []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA busy_timeout = 10000",
			"PRAGMA synchronous = NORMAL",
		},
		schema: `CREATE TABLE IF NOT EXISTS bookid_cache (
			key        TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			result     TEXT NOT NULL
		)`,
		get: `SELECT created_at, result FROM bookid_cache WHERE key = ?`,
		put: `INSERT INTO bookid_cache (key, created_at, result) VALUES (?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET created_at = excluded.created_at, result = excluded.result`,
	}

	postgresDialect = dialect{
		driver: "pgx",
		schema: `CREATE TABLE IF NOT EXISTS bookid_cache (
			key        TEXT PRIMARY KEY,
			created_at BIGINT NOT NULL,
			result     JSONB NOT NULL
		)`,
		get: `SELECT created_at, result FROM bookid_cache WHERE key = $1`,
		put: `INSERT INTO bookid_cache (key, created_at, result) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET created_at = excluded.created_at, result = excluded.result`,
	}
)

// SQLStore keeps entries in a bookid_cache table. Writes upsert, so the
// last writer for a key wins.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// OpenSQLite opens (and creates) an SQLite cache database at path
func OpenSQLite(path string) (*SQLStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	return openSQL(sqliteDialect, path)
}

// OpenPostgres connects to the Postgres database at dsn
func OpenPostgres(dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres cache requires BOOKID_CACHE_DSN")
	}
	return openSQL(postgresDialect, dsn)
}

func openSQL(d dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s cache: %w", d.driver, err)
	}
	if d.driver == "sqlite" {
		// pragmas are per connection
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, stmt := range append(append([]string{}, d.pragma...), d.schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to prepare %s cache: %w", d.driver, err)
		}
	}
	return &SQLStore{db: db, dialect: d, now: time.Now}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	var createdAt int64
	var raw []byte
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&createdAt, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	written := time.UnixMilli(createdAt)
	if !fresh(written, s.now()) {
		return nil, nil
	}

	entry := &models.CacheEntry{Key: key, Timestamp: written}
	if err := json.Unmarshal(raw, &entry.Result); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return entry, nil
}

func (s *SQLStore) Put(ctx context.Context, key string, result models.Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.put, key, s.now().UnixMilli(), string(raw)); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
