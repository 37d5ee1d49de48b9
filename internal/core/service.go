package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"worklog/internal/infra/persistence/memory"
	"worklog/internal/taxonomy"
	"worklog/pkg/domain"
)

const (
	defaultQueueSize   = 64
	defaultSaveTimeout = 5 * time.Second
)

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the service logger. Nil is ignored.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsRecorder sets the operation metrics sink. Nil is ignored.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the span source. Nil is ignored.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock overrides the time source used for entry stamps.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithSaveListener registers a callback for every background write result.
// Listeners run on the persistence goroutine and must not call Flush or Close.
func WithSaveListener(fn SaveListener) Option {
	return func(s *Service) {
		if fn != nil {
			s.listeners = append(s.listeners, fn)
		}
	}
}

// WithQueueSize bounds the number of pending background writes.
func WithQueueSize(n int) Option {
	return func(s *Service) { s.queueSize = n }
}

// WithSaveTimeout bounds each background write.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Service) { s.saveTimeout = d }
}

// WithIDGenerator replaces the uuid entry ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Service owns the schema, entries, and preferences of one worklog. Every
// method is safe for concurrent use. Mutations commit to memory and then
// queue a background write; a failed write never rolls memory back.
type Service struct {
	store       PersistentStore
	logger      Logger
	metrics     MetricsRecorder
	tracer      Tracer
	clock       Clock
	newID       func() string
	listeners   []SaveListener
	queueSize   int
	saveTimeout time.Duration

	mu       sync.Mutex
	closed   bool
	schema   domain.Schema
	entries  []domain.Entry
	prefs    *domain.Preferences
	flows    map[string]*keyedFlow
	deferred []SaveResult

	persist *persister

	saveMu   sync.Mutex
	lastSave *SaveResult
}

type keyedFlow struct {
	key  FlowKey
	flow *taxonomy.Flow
}

// NewService loads state from store and starts the persistence worker. When
// no schema has been stored the default schema is installed and saved. The
// caller keeps ownership of store and closes it after Close.
func NewService(ctx context.Context, store PersistentStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("core: store is required")
	}
	s := &Service{
		store:       store,
		logger:      noopLogger{},
		metrics:     noopMetricsRecorder{},
		tracer:      noopTracer{},
		clock:       systemClock{},
		newID:       uuid.NewString,
		queueSize:   defaultQueueSize,
		saveTimeout: defaultSaveTimeout,
		flows:       make(map[string]*keyedFlow),
	}
	for _, opt := range opts {
		opt(s)
	}

	var seeded bool
	err := s.run(ctx, "load_state", func(ctx context.Context) error {
		schema, ok, err := store.LoadSchema(ctx)
		if err != nil {
			return fmt.Errorf("load schema: %w", err)
		}
		entries, err := store.LoadEntries(ctx)
		if err != nil {
			return fmt.Errorf("load entries: %w", err)
		}
		prefs, err := store.LoadPreferences(ctx)
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		if !ok {
			schema, seeded = domain.DefaultSchema(), true
		}
		if entries == nil {
			entries = []domain.Entry{}
		}
		s.schema, s.entries, s.prefs = schema, entries, prefs
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.persist = newPersister(s.queueSize, s.saveTimeout, s.recordSave)
	if seeded {
		s.mu.Lock()
		s.saveSchemaLocked()
		s.unlock()
		s.logger.Info("installed default schema")
	}
	s.logger.Info("worklog state loaded", "entries", len(s.entries), "technologies", len(s.schema.Technologies))
	return s, nil
}

// run wraps an operation in a span, metrics, and logging.
func (s *Service) run(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, op)
	start := time.Now()
	err := fn(ctx)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	if err != nil {
		s.logger.Warn("operation failed", "operation", op, "error", err)
	} else {
		s.logger.Debug("operation completed", "operation", op)
	}
	return err
}

// lockOpen takes the state lock, failing once the service is closed.
func (s *Service) lockOpen() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	return nil
}

// unlock releases the state lock and then reports saves that could not be
// queued, so listeners never run under the lock.
func (s *Service) unlock() {
	deferred := s.deferred
	s.deferred = nil
	s.mu.Unlock()
	for _, res := range deferred {
		s.recordSave(res)
	}
}

func (s *Service) saveSchemaLocked() {
	schema := s.schema.Clone()
	s.enqueueLocked(memory.BucketSchema, func(ctx context.Context) error {
		return s.store.SaveSchema(ctx, schema)
	})
}

func (s *Service) saveEntriesLocked() {
	entries := domain.CloneEntries(s.entries)
	s.enqueueLocked(memory.BucketEntries, func(ctx context.Context) error {
		return s.store.SaveEntries(ctx, entries)
	})
}

func (s *Service) savePreferencesLocked() {
	var prefs *domain.Preferences
	if s.prefs != nil {
		cp := s.prefs.Clone()
		prefs = &cp
	}
	s.enqueueLocked(memory.BucketPreferences, func(ctx context.Context) error {
		return s.store.SavePreferences(ctx, prefs)
	})
}

func (s *Service) enqueueLocked(bucket string, write func(context.Context) error) {
	if err := s.persist.enqueue(bucket, write); err != nil {
		s.deferred = append(s.deferred, SaveResult{Bucket: bucket, Error: err.Error(), At: time.Now().UTC()})
	}
}

func (s *Service) recordSave(res SaveResult) {
	s.saveMu.Lock()
	cp := res
	s.lastSave = &cp
	s.saveMu.Unlock()

	s.metrics.Observe(context.Background(), "persist_"+res.Bucket, res.Success, res.Duration)
	if res.Success {
		s.logger.Debug("state saved", "bucket", res.Bucket)
	} else {
		s.logger.Warn("changes may not be saved", "bucket", res.Bucket, "error", res.Error)
	}
	for _, fn := range s.listeners {
		fn(res)
	}
}

// LastSave returns the most recent background write result.
func (s *Service) LastSave() (SaveResult, bool) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if s.lastSave == nil {
		return SaveResult{}, false
	}
	return *s.lastSave, true
}

// Flush waits for every write queued so far.
func (s *Service) Flush(ctx context.Context) error {
	return s.persist.flush(ctx)
}

// Close rejects further mutations, drains queued writes, and stops the
// worker. It does not close the store.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.persist.close(ctx)
}

// Schema returns a copy of the current taxonomy.
func (s *Service) Schema() Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema.Clone()
}

// Entries returns a copy of every logged entry in insertion order.
func (s *Service) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneEntries(s.entries)
}

// Preferences returns the stored form preferences, or nil.
func (s *Service) Preferences() *Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prefs == nil {
		return nil
	}
	cp := s.prefs.Clone()
	return &cp
}

// ResetSchema replaces the taxonomy with the default schema and discards
// every open similarity decision. Entries are kept.
func (s *Service) ResetSchema(ctx context.Context) (Schema, error) {
	var out Schema
	err := s.run(ctx, "reset_schema", func(context.Context) error {
		if err := s.lockOpen(); err != nil {
			return err
		}
		defer s.unlock()
		s.schema = domain.DefaultSchema()
		s.flows = make(map[string]*keyedFlow)
		s.saveSchemaLocked()
		out = s.schema.Clone()
		return nil
	})
	return out, err
}

// ClearData deletes every entry and the stored preferences. The schema is
// kept.
func (s *Service) ClearData(ctx context.Context) error {
	return s.run(ctx, "clear_data", func(context.Context) error {
		if err := s.lockOpen(); err != nil {
			return err
		}
		defer s.unlock()
		s.entries = []domain.Entry{}
		s.prefs = nil
		s.saveEntriesLocked()
		s.savePreferencesLocked()
		return nil
	})
}
