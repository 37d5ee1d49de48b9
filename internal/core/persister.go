package core

import (
	"context"
	"sync"
	"time"
)

// SaveResult reports the outcome of one background write.
type SaveResult struct {
	Bucket   string        `json:"bucket"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	At       time.Time     `json:"at"`
	Duration time.Duration `json:"-"`
}

// SaveListener is notified after every background write.
type SaveListener func(SaveResult)

type persistTask struct {
	bucket string
	write  func(context.Context) error
	done   chan struct{}
}

// persister applies writes on a single goroutine in enqueue order, so the
// last committed snapshot of a bucket is the last one stored.
type persister struct {
	queue   chan persistTask
	timeout time.Duration
	report  func(SaveResult)

	mu     sync.Mutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newPersister(size int, timeout time.Duration, report func(SaveResult)) *persister {
	if size <= 0 {
		size = defaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &persister{
		queue:   make(chan persistTask, size),
		timeout: timeout,
		report:  report,
		ctx:     ctx,
		cancel:  cancel,
	}
	p.wg.Add(1)
	go p.loop()
	return p
}

func (p *persister) loop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.queue:
			p.process(task)
		}
	}
}

func (p *persister) process(task persistTask) {
	if task.done != nil {
		close(task.done)
		return
	}
	ctx := p.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	start := time.Now()
	err := task.write(ctx)
	res := SaveResult{Bucket: task.bucket, Success: err == nil, At: time.Now().UTC(), Duration: time.Since(start)}
	if err != nil {
		res.Error = err.Error()
	}
	if p.report != nil {
		p.report(res)
	}
}

// enqueue never blocks; a full queue yields ErrQueueFull.
func (p *persister) enqueue(bucket string, write func(context.Context) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- persistTask{bucket: bucket, write: write}:
		return nil
	default:
		return ErrQueueFull
	}
}

// flush waits until every task queued before the call has been applied.
func (p *persister) flush(ctx context.Context) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return p.barrier(ctx)
}

func (p *persister) barrier(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case p.queue <- persistTask{done: done}:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrClosed
	}
}

// close drains queued tasks then stops the worker. Later calls are no-ops.
func (p *persister) close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	drainErr := p.barrier(ctx)
	p.cancel()
	stopped := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
		return drainErr
	case <-ctx.Done():
		return ctx.Err()
	}
}
