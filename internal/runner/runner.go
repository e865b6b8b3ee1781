package runner

import (
	"context"
	"sync"

	"github.com/tsoref/cachebench/internal/workload"
)

// Pool replays target sequences through a bounded set of workers.
type Pool struct {
	opt     Options
	arrival arrivalController
}

func New(opt Options) *Pool {
	opt.normalize()
	return &Pool{opt: opt, arrival: newArrivalController(opt)}
}

// Run dispatches every target through the worker pool and blocks until
// all in-flight requests have completed. At most Concurrency requests are
// in flight at any instant. The returned slice is unordered with respect
// to the input but has exactly one Result per dispatched target.
// Cancelling the context stops further dispatch; requests already in
// flight still contribute their Results.
func (p *Pool) Run(ctx context.Context, targets []workload.Target) []Result {
	if len(targets) == 0 || p.opt.Executor == nil {
		return nil
	}

	jobs := make(chan workload.Target)
	resultCh := make(chan Result)

	// Dispatcher: serializes pacing to avoid burst overshoot across
	// workers. The unbuffered jobs channel makes dispatch wait for a free
	// worker, so dispatched == executed.
	go func() {
		defer close(jobs)
		for _, target := range targets {
			if ctx.Err() != nil {
				return
			}
			if p.arrival != nil {
				if err := p.arrival.Wait(ctx); err != nil {
					return
				}
			}
			select {
			case jobs <- target:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(p.opt.Concurrency)
	for i := 0; i < p.opt.Concurrency; i++ {
		go func() {
			defer wg.Done()
			for target := range jobs {
				resultCh <- p.opt.Executor.Execute(ctx, target)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]Result, 0, len(targets))
	for res := range resultCh {
		results = append(results, res)
	}
	return results
}
