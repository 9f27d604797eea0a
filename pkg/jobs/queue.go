// Package jobs runs typed background work on a bounded pool of goroutines.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotRunning is returned by Enqueue before Start or after Stop.
var ErrNotRunning = errors.New("queue not running")

// Job is one unit of work carrying a typed payload.
type Job[T any] struct {
	ID       string
	Kind     string
	Payload  T
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job. A returned error schedules a retry until the
// attempt budget is spent.
type Handler[T any] func(context.Context, Job[T]) error

// Config sizes the worker pool and its retry policy.
type Config[T any] struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
	// OnDrop is called for a job the queue gives up on without running it
	// again: a retry that cannot be requeued, or a buffered job discarded by
	// Stop. Exhausted retries are reported through the handler's own error.
	OnDrop func(Job[T], error)
}

// Queue dispatches jobs to a fixed set of workers.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	cfg     Config[T]
	logger  *zap.Logger

	jobs    chan Job[T]
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// New builds a stopped queue.
func New[T any](name string, handler Handler[T], cfg Config[T]) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue[T]{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  logger.With(zap.String("queue", name)),
		jobs:    make(chan Job[T], cfg.BufferSize),
	}
}

// MaxRetries is the number of retries after the first attempt.
func (q *Queue[T]) MaxRetries() int {
	return q.cfg.MaxRetries
}

// Start launches the workers. Calling it on a running queue does nothing.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	q.running = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop cancels the workers and waits for in-flight jobs to return.
// Buffered jobs that were not picked up are dropped.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()

	q.wg.Wait()
	for {
		select {
		case job := <-q.jobs:
			q.drop(job, ErrNotRunning)
		default:
			q.logger.Info("queue stopped")
			return
		}
	}
}

// Enqueue hands a job to the pool, blocking while the buffer is full.
func (q *Queue[T]) Enqueue(job Job[T]) error {
	q.mu.Lock()
	ctx, running := q.ctx, q.running
	q.mu.Unlock()
	if !running {
		return fmt.Errorf("%s: %w", q.name, ErrNotRunning)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", q.name, ErrNotRunning)
	case q.jobs <- job:
		return nil
	}
}

func (q *Queue[T]) work() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			if err := q.handler(q.ctx, job); err != nil {
				q.retry(job, err)
			}
		}
	}
}

func (q *Queue[T]) retry(job Job[T], err error) {
	fields := []zap.Field{zap.String("job_id", job.ID), zap.String("kind", job.Kind), zap.Error(err)}
	if job.Attempt >= q.cfg.MaxRetries {
		q.logger.Error("job exhausted retries", fields...)
		return
	}
	job.Attempt++
	q.logger.Warn("job failed, retrying", append(fields, zap.Int("attempt", job.Attempt))...)

	go func() {
		timer := time.NewTimer(q.cfg.RetryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			q.drop(job, ErrNotRunning)
		case <-timer.C:
			if err := q.Enqueue(job); err != nil {
				q.logger.Error("requeue failed", zap.String("job_id", job.ID), zap.Error(err))
				q.drop(job, err)
			}
		}
	}()
}

func (q *Queue[T]) drop(job Job[T], err error) {
	if q.cfg.OnDrop != nil {
		q.cfg.OnDrop(job, err)
	}
}
