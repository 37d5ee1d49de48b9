// Package redis persists worklog buckets as JSON strings under prefixed redis
// keys (for example "worklog:entries").
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"worklog/internal/infra/persistence/memory"
	"worklog/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const defaultPrefix = "worklog"

// Options configures the redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Store writes each bucket to redis on save and serves loads from memory.
type Store struct {
	*memory.Store
	rdb    *goredis.Client
	prefix string
	mu     sync.Mutex
}

// NewStore connects to redis, verifies it with a ping, and hydrates the
// in-memory copy from existing keys.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redis addr required")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})
	store, err := NewStoreWithClient(ctx, rdb, opts.Prefix)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return store, nil
}

// NewStoreWithClient wraps an existing client. The store owns the client and
// closes it on Close.
func NewStoreWithClient(ctx context.Context, rdb *goredis.Client, prefix string) (*Store, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	s := &Store{Store: memory.NewStore(), rdb: rdb, prefix: prefix}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Key returns the redis key holding bucket.
func (s *Store) Key(bucket string) string { return s.prefix + ":" + bucket }

func (s *Store) load(ctx context.Context) error {
	var snapshot memory.Snapshot
	for _, bucket := range memory.Buckets {
		payload, err := s.rdb.Get(ctx, s.Key(bucket)).Bytes()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", bucket, err)
		}
		if err := memory.DecodeBucket(&snapshot, bucket, payload); err != nil {
			return err
		}
	}
	s.ImportState(snapshot)
	return nil
}

// SaveSchema stores the schema and writes the schema key.
func (s *Store) SaveSchema(ctx context.Context, schema domain.Schema) error {
	if err := s.Store.SaveSchema(ctx, schema); err != nil {
		return err
	}
	return s.persist(ctx, memory.BucketSchema)
}

// SaveEntries stores the entries and writes the entries key.
func (s *Store) SaveEntries(ctx context.Context, entries []domain.Entry) error {
	if err := s.Store.SaveEntries(ctx, entries); err != nil {
		return err
	}
	return s.persist(ctx, memory.BucketEntries)
}

// SavePreferences stores the preferences; nil deletes the key.
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
		if err := s.rdb.Del(ctx, s.Key(bucket)).Err(); err != nil {
			return fmt.Errorf("del %s: %w", bucket, err)
		}
		return nil
	}
	if err := s.rdb.Set(ctx, s.Key(bucket), data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", bucket, err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error { return s.rdb.Close() }
