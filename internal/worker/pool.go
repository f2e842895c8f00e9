package worker

import (
	"context"
	"sync"
)

// FetchJob is one unit of fetch work executed by the pool.
type FetchJob func(ctx context.Context) error

// Pool runs fetch jobs with bounded concurrency. Results are collected by the
// jobs themselves; the pool only reports the first error.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given worker count.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run executes all jobs and blocks until they finish or the context is
// cancelled. Returns the first job error observed, if any.
func (p *Pool) Run(ctx context.Context, jobs []FetchJob) error {
	queue := make(chan FetchJob)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var firstErr error
	record := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				record(job(ctx))
			}
		}()
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			record(ctx.Err())
			close(queue)
			wg.Wait()
			return firstErr
		case queue <- job:
		}
	}
	close(queue)
	wg.Wait()
	return firstErr
}
