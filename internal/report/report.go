package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tsoref/cachebench/internal/articles"
	"github.com/tsoref/cachebench/internal/bench"
	"github.com/tsoref/cachebench/internal/clientmetrics"
	"github.com/tsoref/cachebench/internal/metrics"
)

// Metadata echoes the run configuration into the report so a result
// file is interpretable on its own.
type Metadata struct {
	RunID        string    `json:"run_id"`
	TargetURL    string    `json:"target_url"`
	UniverseSize int       `json:"universe_size"`
	CapacityHint int       `json:"capacity_hint"`
	Concurrency  int       `json:"concurrency"`
	Requests     int       `json:"requests_per_pattern"`
	Seed         int64     `json:"seed"`
	StartedAt    time.Time `json:"started_at"`
}

// Phase is one measured phase in the report.
type Phase struct {
	Name  string                  `json:"name"`
	Stats metrics.PhaseStats      `json:"stats"`
	Cache *articles.CacheSnapshot `json:"cache,omitempty"`
}

// Section holds one battery test's phases, or the reason it was
// skipped.
type Section struct {
	Test    string  `json:"test"`
	Phases  []Phase `json:"phases,omitempty"`
	Skipped string  `json:"skipped,omitempty"`
}

// Report is the complete, immutable result of one run.
type Report struct {
	Meta            Metadata                `json:"meta"`
	Sections        []Section               `json:"sections"`
	Duration        time.Duration           `json:"-"`
	DurationSeconds float64                 `json:"duration_seconds"`
	Summary         *metrics.Stats          `json:"summary,omitempty"`
	Connections     *clientmetrics.Snapshot `json:"connections,omitempty"`
	Thresholds      *ThresholdSummary       `json:"thresholds,omitempty"`
}

// Build assembles the report from the suite's outcomes. summary may be
// nil when no live collector ran.
func Build(meta Metadata, outcomes []bench.TestOutcome, duration time.Duration, summary *metrics.Stats) *Report {
	r := &Report{
		Meta:            meta,
		Sections:        make([]Section, 0, len(outcomes)),
		Duration:        duration,
		DurationSeconds: duration.Seconds(),
		Summary:         summary,
	}
	for _, outcome := range outcomes {
		section := Section{Test: string(outcome.Test), Skipped: outcome.Skipped}
		for _, phase := range outcome.Phases {
			section.Phases = append(section.Phases, Phase{
				Name:  phase.Name,
				Stats: phase.Stats,
				Cache: phase.Snapshot,
			})
		}
		r.Sections = append(r.Sections, section)
	}
	return r
}

var (
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	entropyMu sync.Mutex
)

// NewRunID returns a lowercase ULID for tagging a run's artifacts.
func NewRunID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return strings.ToLower(ulid.MustNew(ulid.Now(), entropy).String())
}

// WriteArtifact writes the JSON report into dir under a timestamped
// name and returns the full path.
func WriteArtifact(r *Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating results directory: %w", err)
	}

	name := fmt.Sprintf("cachebench-result-%s.json", r.Meta.StartedAt.Format("20060102-150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing report file: %w", err)
	}
	return path, nil
}

// PrintJSONReport writes the report as indented JSON.
func PrintJSONReport(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
