package monitor

import (
	"context"
	"log"
	"sync"
)

// Pool is a fixed-size worker pool executing fetch batches off the
// coordinator's merge goroutine.
type Pool struct {
	workers int
	jobs    chan func(context.Context)
	wg      sync.WaitGroup
}

// NewPool creates a pool; Start must be called before Submit.
func NewPool(workers, queue int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queue < 1 {
		queue = workers
	}
	return &Pool{
		workers: workers,
		jobs:    make(chan func(context.Context), queue),
	}
}

// Start launches the workers. They drain jobs until ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			job(ctx)
		}
	}
}

// Submit enqueues a job without blocking. Returns false when the queue is
// full; callers treat that as "enough refreshes are already pending".
func (p *Pool) Submit(job func(context.Context)) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Wait blocks until all workers have exited after context cancellation.
func (p *Pool) Wait() {
	p.wg.Wait()
	log.Println("[INFO] fetch workers stopped")
}
