package workload

import (
	"fmt"
	"math"
	"math/rand"
)

// Pattern describes how identifiers are drawn from a universe. Generation
// is pure: all randomness comes from the supplied source, so equal seeds
// reproduce equal sequences.
type Pattern interface {
	// Name is the stable identifier used for phase naming and test
	// selection.
	Name() string

	// Generate produces an eager, ordered sequence of count lookup
	// targets drawn from the universe.
	Generate(u Universe, count int, rng *rand.Rand) ([]Target, error)
}

// HotItems models temporal locality as a two-tier mixture: a hot subset of
// size round(|U| * LocalityFraction) is sampled once, then each draw picks
// from it with probability HotBias and from the whole universe otherwise.
// Over a large count the fraction of hot draws converges to HotBias.
type HotItems struct {
	LocalityFraction float64
	HotBias          float64
}

// Name implements Pattern.
func (HotItems) Name() string { return "hot_items" }

// Generate implements Pattern.
func (p HotItems) Generate(u Universe, count int, rng *rand.Rand) ([]Target, error) {
	if len(u) == 0 {
		return nil, fmt.Errorf("hot_items: empty universe")
	}

	hotSize := int(math.Round(float64(len(u)) * p.LocalityFraction))
	if hotSize < 1 {
		hotSize = 1
	}
	if hotSize > len(u) {
		hotSize = len(u)
	}
	hot := Sample(u, hotSize, rng)

	targets := make([]Target, 0, count)
	for i := 0; i < count; i++ {
		var id int
		if rng.Float64() < p.HotBias {
			id = hot[rng.Intn(len(hot))]
		} else {
			id = u[rng.Intn(len(u))]
		}
		targets = append(targets, LookupByID(id))
	}
	return targets, nil
}

// Sequential walks the universe in order starting at Offset, wrapping with
// modulo arithmetic. Against an LRU cache smaller than the universe this
// produces a near-zero steady-state hit rate.
type Sequential struct {
	Offset int
}

// Name implements Pattern.
func (Sequential) Name() string { return "sequential" }

// Generate implements Pattern.
func (p Sequential) Generate(u Universe, count int, _ *rand.Rand) ([]Target, error) {
	if len(u) == 0 {
		return nil, fmt.Errorf("sequential: empty universe")
	}

	targets := make([]Target, 0, count)
	for i := 0; i < count; i++ {
		targets = append(targets, LookupByID(u[(p.Offset+i)%len(u)]))
	}
	return targets, nil
}

// Random draws count identifiers uniformly with replacement.
type Random struct{}

// Name implements Pattern.
func (Random) Name() string { return "random" }

// Generate implements Pattern.
func (Random) Generate(u Universe, count int, rng *rand.Rand) ([]Target, error) {
	if len(u) == 0 {
		return nil, fmt.Errorf("random: empty universe")
	}

	targets := make([]Target, 0, count)
	for i := 0; i < count; i++ {
		targets = append(targets, LookupByID(u[rng.Intn(len(u))]))
	}
	return targets, nil
}

// Sample draws k distinct identifiers from the universe without
// replacement. k must not exceed the universe size.
func Sample(u Universe, k int, rng *rand.Rand) []int {
	perm := rng.Perm(len(u))
	sample := make([]int, k)
	for i := 0; i < k; i++ {
		sample[i] = u[perm[i]]
	}
	return sample
}
