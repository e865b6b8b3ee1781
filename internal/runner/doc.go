// Package runner executes one benchmark phase: it replays a generated
// target sequence through a bounded worker pool and collects every
// request's outcome.
//
// # Basic Usage
//
// Create a pool with options and an executor implementation:
//
//	pool := runner.New(runner.Options{
//		Concurrency: 20,
//		Executor:    client,
//	})
//	results := pool.Run(ctx, targets)
//
// Run blocks until every dispatched request has completed and returns one
// [Result] per dispatched target, unordered. No more than Concurrency
// requests are in flight at any instant.
//
// # Executor Interface
//
// The [Executor] interface defines what a pool executes:
//
//	type Executor interface {
//		Execute(ctx context.Context, target workload.Target) Result
//	}
//
// Executors never return errors. A failed request is still a [Result],
// with Err set and the time-to-failure recorded as its latency, because
// the statistics layer counts failures rather than aborting on them.
//
// # Arrival Models
//
// Dispatch is unpaced by default (workers pull as fast as they finish).
// Setting RatePerSecond spaces dispatches using one of two models:
//   - [ArrivalModelUniform]: fixed intervals via a token bucket
//   - [ArrivalModelPoisson]: exponential inter-arrival gaps, seeded for
//     reproducibility
package runner
