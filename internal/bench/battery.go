package bench

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/tsoref/cachebench/internal/config"
	"github.com/tsoref/cachebench/internal/metrics"
	"github.com/tsoref/cachebench/internal/runner"
	"github.com/tsoref/cachebench/internal/workload"
)

// runPattern measures one access pattern: cold cache, one batch of
// by-ID lookups, one snapshot.
func (s *Suite) runPattern(ctx context.Context, test config.TestName, pattern workload.Pattern) TestOutcome {
	targets, err := pattern.Generate(s.universe, s.requests, s.rngFor(test))
	if err != nil {
		log.WithError(err).WithField("test", string(test)).Warn("skipping test")
		return TestOutcome{Test: test, Skipped: err.Error()}
	}

	s.prepare(ctx, test)
	s.transition(test, stateRunning)
	results := s.execute(ctx, pattern.Name(), targets)
	snap := s.snapshot(ctx, test)
	s.transition(test, stateDone)

	return TestOutcome{Test: test, Phases: []PhaseOutcome{{
		Name:     pattern.Name(),
		Stats:    metrics.ReducePhase(results),
		Snapshot: snap,
	}}}
}

// runTagSweep drives each configured tag as its own phase over a
// single cold cache, then aggregates the whole sweep. The aggregate
// phase carries the end-of-sweep snapshot.
func (s *Suite) runTagSweep(ctx context.Context, test config.TestName) TestOutcome {
	return s.runGroupedSweep(ctx, test, "tag_search", s.tags, func(tag string) []workload.Target {
		return workload.TagSweep([]string{tag}, s.tagRequests, sweepPageLimit)
	})
}

// runQuerySweep mirrors the tag sweep over the configured search
// queries.
func (s *Suite) runQuerySweep(ctx context.Context, test config.TestName) TestOutcome {
	return s.runGroupedSweep(ctx, test, "query_search", s.queries, func(query string) []workload.Target {
		return workload.QuerySweep([]string{query}, s.tagRequests, sweepPageLimit)
	})
}

func (s *Suite) runGroupedSweep(ctx context.Context, test config.TestName, stage string, groups []string, build func(string) []workload.Target) TestOutcome {
	if len(groups) == 0 {
		return TestOutcome{Test: test, Skipped: "no values configured"}
	}

	s.prepare(ctx, test)
	s.transition(test, stateRunning)

	outcome := TestOutcome{Test: test}
	combined := make([]runner.Result, 0, len(groups)*s.tagRequests)
	for _, group := range groups {
		results := s.execute(ctx, stage+"/"+group, build(group))
		combined = append(combined, results...)
		outcome.Phases = append(outcome.Phases, PhaseOutcome{
			Name:  stage + "/" + group,
			Stats: metrics.ReducePhase(results),
		})
	}

	snap := s.snapshot(ctx, test)
	s.transition(test, stateDone)
	outcome.Phases = append(outcome.Phases, PhaseOutcome{
		Name:     stage,
		Stats:    metrics.ReducePhase(combined),
		Snapshot: snap,
	})
	return outcome
}

// runPollution warms a small hot set, snapshots, floods the cache with
// distinct identifiers from outside it, revisits the hot set, and
// snapshots again. Phase sizes scale with the per-pattern request
// count: a 1/20 hot set, warm and rewarm batches of half the count,
// and a flood of a fifth, the 50/500/200 shape at the default 1000.
func (s *Suite) runPollution(ctx context.Context, test config.TestName) TestOutcome {
	hotSize := max(1, s.requests/20)
	warmCount := max(1, s.requests/2)
	polluteCount := max(1, s.requests/5)

	plan, err := workload.BuildPollutionPlan(s.universe, hotSize, warmCount, polluteCount, s.rngFor(test))
	if err != nil {
		if errors.Is(err, workload.ErrInsufficientUniverse) {
			log.WithError(err).WithField("test", string(test)).Warn("universe too small for pollution test, skipping")
		} else {
			log.WithError(err).WithField("test", string(test)).Warn("skipping test")
		}
		return TestOutcome{Test: test, Skipped: err.Error()}
	}

	s.prepare(ctx, test)
	s.transition(test, stateRunning)

	warm := s.execute(ctx, "pollution_initial", plan.Warm)
	initial := s.snapshot(ctx, test)
	s.transition(test, stateRunning)
	flood := s.execute(ctx, "pollution_flood", plan.Pollute)
	rewarm := s.execute(ctx, "pollution_final", plan.Rewarm)
	final := s.snapshot(ctx, test)
	s.transition(test, stateDone)

	return TestOutcome{Test: test, Phases: []PhaseOutcome{
		{Name: "pollution_initial", Stats: metrics.ReducePhase(warm), Snapshot: initial},
		{Name: "pollution_flood", Stats: metrics.ReducePhase(flood)},
		{Name: "pollution_final", Stats: metrics.ReducePhase(rewarm), Snapshot: final},
	}}
}

// runInCapacity confines random lookups to a universe prefix sized to
// the cache capacity hint, so after the first pass everything fits and
// the hit rate should approach one.
func (s *Suite) runInCapacity(ctx context.Context, test config.TestName) TestOutcome {
	prefix := s.universe.Prefix(s.capacityHint)
	targets, err := workload.Random{}.Generate(prefix, s.requests, s.rngFor(test))
	if err != nil {
		log.WithError(err).WithField("test", string(test)).Warn("skipping test")
		return TestOutcome{Test: test, Skipped: err.Error()}
	}

	s.prepare(ctx, test)
	s.transition(test, stateRunning)
	results := s.execute(ctx, "in_capacity", targets)
	snap := s.snapshot(ctx, test)
	s.transition(test, stateDone)

	return TestOutcome{Test: test, Phases: []PhaseOutcome{{
		Name:     "in_capacity",
		Stats:    metrics.ReducePhase(results),
		Snapshot: snap,
	}}}
}

// runListSweep cycles paginated listing requests through every page of
// the corpus. Listings bypass the service cache, so the snapshot
// mostly documents that the counters stayed put.
func (s *Suite) runListSweep(ctx context.Context, test config.TestName) TestOutcome {
	pages := max(1, (s.universe.Size()+sweepPageLimit-1)/sweepPageLimit)
	targets := workload.ListSweep(s.requests, sweepPageLimit, pages)

	s.prepare(ctx, test)
	s.transition(test, stateRunning)
	results := s.execute(ctx, "list", targets)
	snap := s.snapshot(ctx, test)
	s.transition(test, stateDone)

	return TestOutcome{Test: test, Phases: []PhaseOutcome{{
		Name:     "list",
		Stats:    metrics.ReducePhase(results),
		Snapshot: snap,
	}}}
}
