package bench

import (
	"context"
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"

	"github.com/tsoref/cachebench/internal/articles"
	"github.com/tsoref/cachebench/internal/config"
	"github.com/tsoref/cachebench/internal/metrics"
	"github.com/tsoref/cachebench/internal/runner"
	"github.com/tsoref/cachebench/internal/workload"
)

// Hot-pattern shape and page size, matching the workload the service
// was originally benchmarked under.
const (
	hotLocalityFraction = 0.2
	hotSelectionBias    = 0.8
	sweepPageLimit      = 10
)

// Runner dispatches a batch of targets and returns one result per
// dispatched target.
type Runner interface {
	Run(ctx context.Context, targets []workload.Target) []runner.Result
}

// Admin is the cache-control surface driven between phases.
type Admin interface {
	ClearCache(ctx context.Context) bool
	ResetStats(ctx context.Context) bool
	Stats(ctx context.Context) *articles.CacheSnapshot
	Health(ctx context.Context) error
}

// PhaseOutcome couples one measured phase with the cache snapshot
// taken after it, when one was taken.
type PhaseOutcome struct {
	Name     string
	Stats    metrics.PhaseStats
	Snapshot *articles.CacheSnapshot
}

// TestOutcome holds the phases of one battery test. Skipped carries
// the reason when the test could not run; its Phases are then empty.
type TestOutcome struct {
	Test    config.TestName
	Phases  []PhaseOutcome
	Skipped string
}

// Options configure a Suite. Runner, Admin and Universe are required;
// zero counts fall back to the reference workload sizes.
type Options struct {
	Universe workload.Universe
	Runner   Runner
	Admin    Admin

	Tests        []config.TestName
	Requests     int // per-pattern request count
	TagRequests  int // per-tag and per-query request count
	Tags         []string
	Queries      []string
	CapacityHint int

	// Seed drives every generated sequence. Callers resolve a zero
	// seed before constructing the suite so reports can echo it.
	Seed int64
}

// Suite runs the selected tests in order and collects their outcomes.
type Suite struct {
	universe     workload.Universe
	runner       Runner
	admin        Admin
	tests        []config.TestName
	requests     int
	tagRequests  int
	tags         []string
	queries      []string
	capacityHint int
	seed         int64
}

// New builds a Suite from options, filling reference defaults for
// unset counts.
func New(opts Options) *Suite {
	s := &Suite{
		universe:     opts.Universe,
		runner:       opts.Runner,
		admin:        opts.Admin,
		tests:        opts.Tests,
		requests:     opts.Requests,
		tagRequests:  opts.TagRequests,
		tags:         opts.Tags,
		queries:      opts.Queries,
		capacityHint: opts.CapacityHint,
		seed:         opts.Seed,
	}
	if len(s.tests) == 0 {
		s.tests = config.TestNames(config.DefaultTests())
	}
	if s.requests < 1 {
		s.requests = 1000
	}
	if s.tagRequests < 1 {
		s.tagRequests = 50
	}
	if s.capacityHint < 1 {
		s.capacityHint = 500
	}
	return s
}

// Run probes the service once and then executes the battery. A failed
// health probe aborts the run; anything that goes wrong inside a test
// is recorded on that test's outcome and the battery continues.
// Cancellation stops before the next test and returns the outcomes
// gathered so far alongside the context error.
func (s *Suite) Run(ctx context.Context) ([]TestOutcome, error) {
	if err := s.admin.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check: %w", err)
	}
	log.WithFields(log.Fields{
		"tests":    len(s.tests),
		"universe": s.universe.Size(),
	}).Info("service reachable, starting battery")

	outcomes := make([]TestOutcome, 0, len(s.tests))
	for _, test := range s.tests {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, s.runTest(ctx, test))
	}
	return outcomes, nil
}

func (s *Suite) runTest(ctx context.Context, test config.TestName) TestOutcome {
	switch test {
	case config.TestHot:
		return s.runPattern(ctx, test, workload.HotItems{
			LocalityFraction: hotLocalityFraction,
			HotBias:          hotSelectionBias,
		})
	case config.TestSequential:
		return s.runPattern(ctx, test, workload.Sequential{})
	case config.TestRandom:
		return s.runPattern(ctx, test, workload.Random{})
	case config.TestTags:
		return s.runTagSweep(ctx, test)
	case config.TestQueries:
		return s.runQuerySweep(ctx, test)
	case config.TestPollution:
		return s.runPollution(ctx, test)
	case config.TestInCapacity:
		return s.runInCapacity(ctx, test)
	case config.TestList:
		return s.runListSweep(ctx, test)
	default:
		return TestOutcome{Test: test, Skipped: fmt.Sprintf("unknown test %q", test)}
	}
}

type testState string

const (
	stateClearingCache  testState = "clearing_cache"
	stateResettingStats testState = "resetting_stats"
	stateRunning        testState = "running"
	stateSnapshotting   testState = "snapshotting_stats"
	stateDone           testState = "done"
)

func (s *Suite) transition(test config.TestName, state testState) {
	log.WithFields(log.Fields{"test": string(test), "state": string(state)}).Debug("state transition")
}

// prepare clears the cache and resets its counters so the test starts
// cold. Administrative failures are logged and the test proceeds; a
// benchmark run always produces a report.
func (s *Suite) prepare(ctx context.Context, test config.TestName) {
	s.transition(test, stateClearingCache)
	if !s.admin.ClearCache(ctx) {
		log.WithField("test", string(test)).Warn("cache clear failed, results may include warm entries")
	}
	s.transition(test, stateResettingStats)
	if !s.admin.ResetStats(ctx) {
		log.WithField("test", string(test)).Warn("stats reset failed, hit rates may carry over")
	}
}

func (s *Suite) snapshot(ctx context.Context, test config.TestName) *articles.CacheSnapshot {
	s.transition(test, stateSnapshotting)
	snap := s.admin.Stats(ctx)
	if snap == nil {
		log.WithField("test", string(test)).Warn("cache stats unavailable")
	}
	return snap
}

// execute runs one phase's targets through the pool under the given
// stage label.
func (s *Suite) execute(ctx context.Context, stage string, targets []workload.Target) []runner.Result {
	log.WithFields(log.Fields{"stage": stage, "targets": len(targets)}).Info("dispatching phase")
	return s.runner.Run(metrics.WithStage(ctx, stage), targets)
}

// rngFor derives a per-test source from the run seed. The offset is
// the test's position in the full battery list, so deselecting one
// test never shifts the sequences of the others.
func (s *Suite) rngFor(test config.TestName) *rand.Rand {
	offset := int64(len(config.AllTests))
	for i, name := range config.AllTests {
		if name == test {
			offset = int64(i)
			break
		}
	}
	return rand.New(rand.NewSource(s.seed + offset))
}
