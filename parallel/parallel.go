// Package parallel defines the execution-engine boundary the layer drivers
// submit their work through, plus two reference implementations: a bounded
// worker pool and a sequential runner. The drivers are agnostic to the
// runner; correctness only assumes tasks share no in-memory transient state
// except the cache store and the prediction matrix.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// Call is one unit of deferred work.
type Call func(ctx context.Context) error

// Runner executes a batch of calls. Run returns after every call has
// completed, propagating the first error encountered. Submitted calls are
// never cancelled by a sibling's failure: once submitted, a call runs to
// completion or failure.
type Runner interface {
	Run(ctx context.Context, calls []Call) error
}

// Compile-time interface satisfaction checks.
var (
	_ Runner = Pool{}
	_ Runner = Sequential{}
)

// Pool runs calls across a fixed number of goroutine workers.
type Pool struct {
	// Workers caps concurrency. Zero or negative means runtime.NumCPU.
	Workers int
}

// Run implements Runner.
func (p Pool) Run(ctx context.Context, calls []Call) error {
	if len(calls) == 0 {
		return nil
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(calls) {
		workers = len(calls)
	}

	work := make(chan Call)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		first error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for call := range work {
				if err := call(ctx); err != nil {
					mu.Lock()
					if first == nil {
						first = err
					}
					mu.Unlock()
				}
			}
		}()
	}

	for _, call := range calls {
		work <- call
	}
	close(work)
	wg.Wait()

	return first
}

// Sequential runs calls one at a time in submission order. Like Pool, every
// call runs even after an earlier one fails.
type Sequential struct{}

// Run implements Runner.
func (Sequential) Run(ctx context.Context, calls []Call) error {
	var first error
	for _, call := range calls {
		if err := call(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
