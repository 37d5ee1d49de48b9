// Package postgres provides a Postgres-backed persistent store that keeps the
// in-memory semantics and writes each bucket to a JSONB state table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"worklog/internal/infra/persistence/memory"
	"worklog/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/worklog?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists state to Postgres while serving reads from memory.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back to
// defaultDSN), ensures the state table exists, and hydrates the in-memory
// copy from any existing rows.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureStateTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	snapshot, err := loadSnapshot(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	mem := memory.NewStore()
	mem.ImportState(snapshot)
	return &Store{Store: mem, db: db}, nil
}

func ensureStateTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure state table: %w", err)
	}
	return nil
}

func loadSnapshot(ctx context.Context, db *sql.DB) (memory.Snapshot, error) {
	rows, err := db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshot memory.Snapshot
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return memory.Snapshot{}, fmt.Errorf("scan state: %w", err)
		}
		if err := memory.DecodeBucket(&snapshot, bucket, payload); err != nil {
			return memory.Snapshot{}, err
		}
	}
	if err := rows.Err(); err != nil {
		return memory.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	return snapshot, nil
}

// SaveSchema stores the schema and upserts the schema bucket.
func (s *Store) SaveSchema(ctx context.Context, schema domain.Schema) error {
	if err := s.Store.SaveSchema(ctx, schema); err != nil {
		return err
	}
	return s.persist(ctx, memory.BucketSchema)
}

// SaveEntries stores the entries and upserts the entries bucket.
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
		if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE bucket = $1`, bucket); err != nil {
			return fmt.Errorf("delete %s: %w", bucket, err)
		}
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`, bucket, data); err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
