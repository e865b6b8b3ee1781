package workload_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tsoref/cachebench/internal/workload"
)

func TestRangeUniverse(t *testing.T) {
	u := workload.RangeUniverse(1, 1000)
	if u.Size() != 1000 {
		t.Fatalf("size = %d, want 1000", u.Size())
	}
	if u[0] != 1 || u[999] != 1000 {
		t.Errorf("bounds = %d..%d, want 1..1000", u[0], u[999])
	}

	if workload.RangeUniverse(5, 0).Size() != 0 {
		t.Error("zero-size universe should be empty")
	}
}

func TestUniversePrefix(t *testing.T) {
	u := workload.RangeUniverse(1, 10)

	if got := u.Prefix(3); got.Size() != 3 || got[2] != 3 {
		t.Errorf("Prefix(3) = %v", got)
	}
	if got := u.Prefix(50); got.Size() != 10 {
		t.Errorf("Prefix(50) size = %d, want 10", got.Size())
	}
	if got := u.Prefix(-1); got.Size() != 0 {
		t.Errorf("Prefix(-1) size = %d, want 0", got.Size())
	}
}

func TestLoadUniverseJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.json")
	if err := os.WriteFile(path, []byte("[3, 1, 4, 1500]"), 0o644); err != nil {
		t.Fatal(err)
	}

	u, err := workload.LoadUniverse(path)
	if err != nil {
		t.Fatalf("LoadUniverse: %v", err)
	}
	want := []int{3, 1, 4, 1500}
	for i, id := range want {
		if u[i] != id {
			t.Errorf("u[%d] = %d, want %d", i, u[i], id)
		}
	}
}

func TestLoadUniverseCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.csv")
	if err := os.WriteFile(path, []byte("10\n20\n30\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	u, err := workload.LoadUniverse(path)
	if err != nil {
		t.Fatalf("LoadUniverse: %v", err)
	}
	if u.Size() != 3 || u[0] != 10 || u[2] != 30 {
		t.Errorf("unexpected universe %v", u)
	}
}

func TestLoadUniverseRejectsUnknownFormat(t *testing.T) {
	if _, err := workload.LoadUniverse("ids.yaml"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestLoadUniverseRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := workload.LoadUniverse(path); err == nil {
		t.Error("expected error for empty identifier set")
	}
}

func TestTagSweep(t *testing.T) {
	targets := workload.TagSweep([]string{"go", "cache"}, 3, 10)
	if len(targets) != 6 {
		t.Fatalf("len = %d, want 6", len(targets))
	}
	for i := 0; i < 3; i++ {
		if targets[i].Tag != "go" || targets[i].Op != workload.OpLookupByTag {
			t.Errorf("targets[%d] = %+v", i, targets[i])
		}
	}
	for i := 3; i < 6; i++ {
		if targets[i].Tag != "cache" {
			t.Errorf("targets[%d].Tag = %q, want cache", i, targets[i].Tag)
		}
	}
	if targets[0].Limit != 10 || targets[0].Page != 0 {
		t.Errorf("pagination = limit %d page %d, want 10/0", targets[0].Limit, targets[0].Page)
	}
}

func TestListSweepCyclesPages(t *testing.T) {
	targets := workload.ListSweep(7, 20, 3)
	if len(targets) != 7 {
		t.Fatalf("len = %d, want 7", len(targets))
	}
	wantPages := []int{0, 1, 2, 0, 1, 2, 0}
	for i, tgt := range targets {
		if tgt.Op != workload.OpList || tgt.Page != wantPages[i] {
			t.Errorf("targets[%d] = %+v, want page %d", i, tgt, wantPages[i])
		}
	}
}

func TestQuerySweep(t *testing.T) {
	targets := workload.QuerySweep([]string{"rust"}, 2, 5)
	if len(targets) != 2 {
		t.Fatalf("len = %d, want 2", len(targets))
	}
	if targets[0].Op != workload.OpSearch || targets[0].Query != "rust" {
		t.Errorf("targets[0] = %+v", targets[0])
	}
}
