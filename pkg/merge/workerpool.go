package merge

import (
	"context"
	"sync"
)

// Job is a unit of work submitted to the WorkerPool.
type Job func(ctx context.Context) error

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	// SubmitCtx enqueues a job but returns promptly if ctx is canceled or the pool closes.
	SubmitCtx(ctx context.Context, job Job) error
	// Close stops accepting jobs, waits for queued jobs to finish and
	// returns the first job error, if any.
	Close() error
}

// WorkerPool runs jobs using a fixed number of goroutines. The merger uses it
// to normalize independent sources concurrently; every job writes only to its
// own result slot, and the combination step runs afterwards on one goroutine.
type WorkerPool struct {
	jobs    chan Job
	quit    chan struct{}
	wg      sync.WaitGroup
	workers int

	closeMu  sync.Mutex
	closed   bool
	inflight sync.WaitGroup

	errOnce sync.Once
	err     error
}

// NewWorkerPool creates a new worker pool with the specified number of workers
// and job queue capacity.
func NewWorkerPool(workers, queue int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	return &WorkerPool{
		jobs:    make(chan Job, queue),
		quit:    make(chan struct{}),
		workers: workers,
	}
}

// Start begins the worker goroutines and runs jobs until ctx is done or Close is called.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					p.fail(ctx.Err())
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					if err := job(ctx); err != nil {
						p.fail(err)
					}
				}
			}
		}()
	}
}

func (p *WorkerPool) fail(err error) {
	p.errOnce.Do(func() { p.err = err })
}

// Submit enqueues a job for processing. Returns ErrPoolClosed if the pool is closed.
func (p *WorkerPool) Submit(job Job) error {
	return p.SubmitCtx(context.Background(), job)
}

// SubmitCtx enqueues a job, giving up when ctx is canceled or the pool closes.
func (p *WorkerPool) SubmitCtx(ctx context.Context, job Job) error {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return ErrPoolClosed
	}
	p.inflight.Add(1)
	p.closeMu.Unlock()
	defer p.inflight.Done()

	select {
	case p.jobs <- job:
		return nil
	case <-p.quit:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new jobs and waits for workers to finish.
func (p *WorkerPool) Close() error {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		p.wg.Wait()
		return p.err
	}
	p.closed = true
	close(p.quit)
	p.closeMu.Unlock()

	// No sender can be between the closed check and the send once inflight drains.
	p.inflight.Wait()
	close(p.jobs)
	p.wg.Wait()
	return p.err
}

// ErrPoolClosed is returned if a Submit is attempted after Close.
var ErrPoolClosed = &PoolError{"worker pool closed"}

// PoolError provides a simple typed error for pool operations.
type PoolError struct{ msg string }

func (e *PoolError) Error() string { return e.msg }
