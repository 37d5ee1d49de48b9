package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"worklog/internal/infra/persistence/memory"
	"worklog/pkg/domain"
)

type stubClock struct{ t time.Time }

func (s stubClock) Now() time.Time { return s.t }

var testNow = time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)

type captureLogger struct {
	mu    sync.Mutex
	calls []string
}

func (c *captureLogger) add(prefix, msg string) {
	c.mu.Lock()
	c.calls = append(c.calls, prefix+msg)
	c.mu.Unlock()
}

func (c *captureLogger) Debug(msg string, _ ...any) { c.add("d:", msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.add("i:", msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.add("w:", msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.add("e:", msg) }

func (c *captureLogger) has(call string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, got := range c.calls {
		if got == call {
			return true
		}
	}
	return false
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	mu    sync.Mutex
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.mu.Lock()
	c.calls = append(c.calls, metricsCall{op: op, success: success})
	c.mu.Unlock()
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	mu    sync.Mutex
	ended []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	return ctx, &captureSpan{tracer: c, op: op}
}

func (c *captureTracer) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, record := range c.ended {
		if record.op == op && (record.err == nil) == success {
			return true
		}
	}
	return false
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.mu.Lock()
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
	s.tracer.mu.Unlock()
}

var errSaveFailed = errors.New("disk full")

// flakyStore fails saves while fail is set and can hold saves on gate.
type flakyStore struct {
	*memory.Store
	mu       sync.Mutex
	fail     bool
	loadErr  error
	gate     chan struct{}
	attempts int
}

func newFlakyStore() *flakyStore { return &flakyStore{Store: memory.NewStore()} }

func (f *flakyStore) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *flakyStore) before(ctx context.Context) error {
	f.mu.Lock()
	f.attempts++
	gate, fail := f.gate, f.fail
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail {
		return errSaveFailed
	}
	return nil
}

func (f *flakyStore) LoadSchema(ctx context.Context) (domain.Schema, bool, error) {
	if f.loadErr != nil {
		return domain.Schema{}, false, f.loadErr
	}
	return f.Store.LoadSchema(ctx)
}

func (f *flakyStore) SaveSchema(ctx context.Context, s domain.Schema) error {
	if err := f.before(ctx); err != nil {
		return err
	}
	return f.Store.SaveSchema(ctx, s)
}

func (f *flakyStore) SaveEntries(ctx context.Context, e []domain.Entry) error {
	if err := f.before(ctx); err != nil {
		return err
	}
	return f.Store.SaveEntries(ctx, e)
}

func (f *flakyStore) SavePreferences(ctx context.Context, p *domain.Preferences) error {
	if err := f.before(ctx); err != nil {
		return err
	}
	return f.Store.SavePreferences(ctx, p)
}

func smallSchema() domain.Schema {
	return domain.Schema{
		Projects:   []string{"Worklog"},
		Categories: []string{"Feature", "Bugfix"},
		Technologies: []domain.Technology{
			{Name: "React", Group: domain.GroupFrontend, SubTechs: []string{"Hooks"}},
			{Name: "Go", Group: domain.GroupLanguages, SubTechs: []string{}},
		},
	}
}

// newTestService returns a service over a memory store seeded with
// smallSchema and a fixed clock. Close runs on cleanup.
func newTestService(t *testing.T, opts ...Option) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	if err := store.SaveSchema(context.Background(), smallSchema()); err != nil {
		t.Fatalf("seed schema: %v", err)
	}
	opts = append([]Option{WithClock(stubClock{t: testNow})}, opts...)
	svc, err := NewService(context.Background(), store, opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close(context.Background()) })
	return svc, store
}

func flush(t *testing.T, svc *Service) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}
