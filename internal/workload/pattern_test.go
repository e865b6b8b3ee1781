package workload_test

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/tsoref/cachebench/internal/workload"
)

func TestRandomCountAndMembership(t *testing.T) {
	u := workload.RangeUniverse(1, 100)
	rng := rand.New(rand.NewSource(1))

	for _, count := range []int{0, 1, 50, 1000} {
		targets, err := workload.Random{}.Generate(u, count, rng)
		if err != nil {
			t.Fatalf("Generate(count=%d) returned error: %v", count, err)
		}
		if len(targets) != count {
			t.Errorf("Generate(count=%d) produced %d targets", count, len(targets))
		}
		for _, tgt := range targets {
			if tgt.Op != workload.OpLookupByID {
				t.Fatalf("unexpected operation %q", tgt.Op)
			}
			if tgt.ID < 1 || tgt.ID > 100 {
				t.Errorf("target %d outside universe", tgt.ID)
			}
		}
	}
}

func TestRandomDeterministicPerSeed(t *testing.T) {
	u := workload.RangeUniverse(1, 500)

	first, err := workload.Random{}.Generate(u, 200, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	second, err := workload.Random{}.Generate(u, 200, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("equal seeds produced different sequences")
	}
}

func TestHotItemsBias(t *testing.T) {
	u := workload.RangeUniverse(1, 1000)
	pattern := workload.HotItems{LocalityFraction: 0.2, HotBias: 0.8}

	targets, err := pattern.Generate(u, 5000, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	// The hot subset is the first draw the pattern takes from its source,
	// so an identical source recovers it.
	hot := workload.Sample(u, 200, rand.New(rand.NewSource(42)))
	hotSet := make(map[int]bool, len(hot))
	for _, id := range hot {
		hotSet[id] = true
	}

	inHot := 0
	for _, tgt := range targets {
		if hotSet[tgt.ID] {
			inHot++
		}
	}

	// Expected membership is hotBias + (1-hotBias)*localityFraction = 0.84,
	// since universe-wide draws can land in the hot subset too.
	frac := float64(inHot) / float64(len(targets))
	if frac < 0.79 || frac > 0.89 {
		t.Errorf("hot-subset membership fraction = %.3f, want ~0.84", frac)
	}
}

func TestHotItemsFullBiasStaysInHotSet(t *testing.T) {
	u := workload.RangeUniverse(1, 5)
	pattern := workload.HotItems{LocalityFraction: 0.2, HotBias: 1.0}

	targets, err := pattern.Generate(u, 100, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	// round(5 * 0.2) = 1, so every draw must be the single hot identifier.
	distinct := make(map[int]bool)
	for _, tgt := range targets {
		distinct[tgt.ID] = true
	}
	if len(distinct) != 1 {
		t.Errorf("expected a single hot identifier, saw %d distinct", len(distinct))
	}
}

func TestHotItemsTinyFractionKeepsOneHotItem(t *testing.T) {
	u := workload.RangeUniverse(1, 10)
	pattern := workload.HotItems{LocalityFraction: 0.001, HotBias: 1.0}

	targets, err := pattern.Generate(u, 50, rand.New(rand.NewSource(8)))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(targets) != 50 {
		t.Fatalf("expected 50 targets, got %d", len(targets))
	}
}

func TestHotItemsEmptyUniverse(t *testing.T) {
	if _, err := (workload.HotItems{LocalityFraction: 0.2, HotBias: 0.8}).Generate(nil, 10, rand.New(rand.NewSource(1))); err == nil {
		t.Error("expected error for empty universe")
	}
}

func TestSequentialPeriodicity(t *testing.T) {
	u := workload.RangeUniverse(10, 7)

	targets, err := workload.Sequential{}.Generate(u, 20, nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(targets) != 20 {
		t.Fatalf("expected 20 targets, got %d", len(targets))
	}
	for i, tgt := range targets {
		if want := u[i%len(u)]; tgt.ID != want {
			t.Errorf("target[%d] = %d, want %d", i, tgt.ID, want)
		}
	}
}

func TestSequentialOffset(t *testing.T) {
	u := workload.RangeUniverse(1, 5)

	targets, err := workload.Sequential{Offset: 3}.Generate(u, 5, nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	want := []int{4, 5, 1, 2, 3}
	for i, tgt := range targets {
		if tgt.ID != want[i] {
			t.Errorf("target[%d] = %d, want %d", i, tgt.ID, want[i])
		}
	}
}

func TestSampleDistinct(t *testing.T) {
	u := workload.RangeUniverse(1, 30)
	sample := workload.Sample(u, 30, rand.New(rand.NewSource(5)))

	seen := make(map[int]bool)
	for _, id := range sample {
		if seen[id] {
			t.Fatalf("identifier %d sampled twice", id)
		}
		seen[id] = true
	}
	if len(sample) != 30 {
		t.Errorf("expected 30 samples, got %d", len(sample))
	}
}
