package workload

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInsufficientUniverse reports that a plan needs more distinct
// identifiers than the universe can supply. Sampling with replacement is
// never substituted silently.
var ErrInsufficientUniverse = errors.New("universe too small for requested distinct draws")

// PollutionPlan holds the three target sequences of a cache pollution
// test: warm a small hot set, flood the cache with distinct identifiers
// from outside it, then revisit the hot set. The sequences are generated
// together so warm and rewarm share the exact hot set and the pollute
// sequence provably avoids it.
type PollutionPlan struct {
	HotSet  []int
	Warm    []Target
	Pollute []Target
	Rewarm  []Target
}

// BuildPollutionPlan samples a hot set of hotSize identifiers, warmCount
// draws from it for the warm and rewarm sequences, and polluteCount
// distinct draws from its complement. Returns ErrInsufficientUniverse
// (wrapped) when the complement holds fewer than polluteCount identifiers.
func BuildPollutionPlan(u Universe, hotSize, warmCount, polluteCount int, rng *rand.Rand) (*PollutionPlan, error) {
	if len(u) == 0 {
		return nil, fmt.Errorf("pollution: empty universe")
	}
	if hotSize < 1 {
		hotSize = 1
	}
	if hotSize > len(u) {
		return nil, fmt.Errorf("pollution: hot set size %d exceeds universe size %d: %w",
			hotSize, len(u), ErrInsufficientUniverse)
	}

	// One permutation yields both the hot set and a shuffled complement,
	// so the pollute draws are distinct by construction.
	perm := rng.Perm(len(u))
	hot := make([]int, hotSize)
	for i := range hot {
		hot[i] = u[perm[i]]
	}
	complement := perm[hotSize:]
	if polluteCount > len(complement) {
		return nil, fmt.Errorf("pollution: need %d distinct identifiers outside the hot set, universe offers %d: %w",
			polluteCount, len(complement), ErrInsufficientUniverse)
	}

	plan := &PollutionPlan{HotSet: hot}

	plan.Warm = make([]Target, 0, warmCount)
	for i := 0; i < warmCount; i++ {
		plan.Warm = append(plan.Warm, LookupByID(hot[rng.Intn(len(hot))]))
	}

	plan.Pollute = make([]Target, 0, polluteCount)
	for i := 0; i < polluteCount; i++ {
		plan.Pollute = append(plan.Pollute, LookupByID(u[complement[i]]))
	}

	plan.Rewarm = make([]Target, 0, warmCount)
	for i := 0; i < warmCount; i++ {
		plan.Rewarm = append(plan.Rewarm, LookupByID(hot[rng.Intn(len(hot))]))
	}

	return plan, nil
}
