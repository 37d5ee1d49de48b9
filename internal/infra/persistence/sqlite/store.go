// Package sqlite persists worklog state to a single SQLite table as JSON
// buckets, keeping an in-memory copy for reads.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"worklog/internal/infra/persistence/memory"
	"worklog/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const defaultPath = "worklog.db"

// Store writes each bucket to SQLite on save and serves loads from memory.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the database at path and hydrates the
// in-memory copy from any existing state.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var snapshot memory.Snapshot
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if err := memory.DecodeBucket(&snapshot, bucket, payload); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	s.ImportState(snapshot)
	return nil
}

// SaveSchema stores the schema and writes the schema bucket.
func (s *Store) SaveSchema(ctx context.Context, schema domain.Schema) error {
	if err := s.Store.SaveSchema(ctx, schema); err != nil {
		return err
	}
	return s.persist(ctx, memory.BucketSchema)
}

// SaveEntries stores the entries and writes the entries bucket.
func (s *Store) SaveEntries(ctx context.Context, entries []domain.Entry) error {
	if err := s.Store.SaveEntries(ctx, entries); err != nil {
		return err
	}
	return s.persist(ctx, memory.BucketEntries)
}

// SavePreferences stores the preferences; nil deletes the bucket row.
func (s *Store) SavePreferences(ctx context.Context, prefs *domain.Preferences) error {
	if err := s.Store.SavePreferences(ctx, prefs); err != nil {
		return err
	}
	return s.persist(ctx, memory.BucketPreferences)
}

func (s *Store) persist(ctx context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := memory.EncodeBucket(s.ExportState(), bucket)
	if err != nil {
		return err
	}
	if data == nil {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE bucket = ?`, bucket); err != nil {
			return fmt.Errorf("delete %s: %w", bucket, err)
		}
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
