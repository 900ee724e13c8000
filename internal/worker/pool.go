// Package worker runs analyses concurrently and rate limits them per key.
package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of workers
type Pool struct {
	workers int
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run executes every job and returns results in job order (results[i] is jobs[i]'s).
// onResult, when set, is called once per finished job, one call at a time.
// Jobs still queued when ctx is done are executed with the done ctx and are
// expected to return promptly.
func (p *Pool) Run(ctx context.Context, jobs []Job, onResult func(index int, result Result)) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	workers := p.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	indexes := make(chan int)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				result := jobs[i].Execute(ctx)
				results[i] = result
				if onResult != nil {
					mu.Lock()
					onResult(i, result)
					mu.Unlock()
				}
			}
		}()
	}

	for i := range jobs {
		indexes <- i
	}
	close(indexes)

	wg.Wait()
	return results
}
