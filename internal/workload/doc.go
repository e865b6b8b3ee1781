// Package workload generates the request sequences a benchmark run replays
// against the article service.
//
// A workload is described by three pieces: a [Universe] of article
// identifiers, a [Pattern] that decides how identifiers are drawn from it,
// and a request count. Generation is eager and deterministic: the same
// pattern, universe, count, and random source always produce the same
// []Target, so a run can be reproduced from its seed.
//
// # Patterns
//
// Three patterns cover the cache behaviors the harness measures:
//   - [HotItems]: a two-tier mixture approximating temporal locality. A hot
//     subset is sampled once; each draw picks from it with probability
//     HotBias, otherwise from the whole universe.
//   - [Sequential]: a modulo walk over the universe in order, modeling a
//     cold scan that defeats a bounded LRU cache.
//   - [Random]: independent uniform draws with replacement.
//
// # Pollution plans
//
// Cache pollution is not a single sequence but three: warm a small hot set,
// flood the cache with distinct cold identifiers, then revisit the hot set.
// [BuildPollutionPlan] produces all three sub-sequences up front; the
// pollute sequence samples without replacement and fails with
// [ErrInsufficientUniverse] when the universe cannot supply enough distinct
// identifiers outside the hot set.
//
// # Targets
//
// Generated sequences are []Target values. A [Target] pairs an operation
// (lookup by ID, lookup by tag, search, list) with its parameters and is
// immutable once built. Helpers such as [TagSweep] and [ListSweep] build
// the non-pattern sequences of the standard battery.
package workload
