package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/tsoref/cachebench/internal/workload"
)

// Executor issues a single request for a target. Implementations never
// return an error: transport failures are recorded on the Result itself
// so the aggregator can count them.
type Executor interface {
	Execute(ctx context.Context, target workload.Target) Result
}

// ArrivalModel selects how the dispatcher spaces requests.
type ArrivalModel string

const (
	// ArrivalModelUniform spaces dispatches at fixed intervals.
	ArrivalModelUniform ArrivalModel = "uniform"
	// ArrivalModelPoisson samples exponential inter-arrival gaps for
	// open-loop traffic.
	ArrivalModelPoisson ArrivalModel = "poisson"
)

// Options configure a Pool.
type Options struct {
	Concurrency   int          // number of worker goroutines
	RatePerSecond int          // dispatch pacing (0 means unpaced)
	ArrivalModel  ArrivalModel // uniform (default) or poisson
	RandomSeed    int64        // seeds the poisson sampler

	Executor Executor // request executor (required)

	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
	PoissonSampler func() float64              // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.ArrivalModel == "" {
		o.ArrivalModel = ArrivalModelUniform
	}
	if o.RandomSeed == 0 {
		o.RandomSeed = time.Now().UnixNano()
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
