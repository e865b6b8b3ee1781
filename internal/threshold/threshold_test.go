package threshold

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/tsoref/cachebench/internal/articles"
	"github.com/tsoref/cachebench/internal/bench"
	"github.com/tsoref/cachebench/internal/config"
	"github.com/tsoref/cachebench/internal/metrics"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Threshold
		wantError bool
	}{
		{
			name:  "valid p95 latency threshold",
			input: "hot_items:p95_ms < 250",
			want: Threshold{
				Phase:     "hot_items",
				Aggregate: "p95_ms",
				Operator:  "<",
				Value:     250,
				Raw:       "hot_items:p95_ms < 250",
			},
		},
		{
			name:  "valid hit rate threshold",
			input: "pollution_final:hit_rate > 0.1",
			want: Threshold{
				Phase:     "pollution_final",
				Aggregate: "hit_rate",
				Operator:  ">",
				Value:     0.1,
				Raw:       "pollution_final:hit_rate > 0.1",
			},
		},
		{
			name:  "valid success rate with >=",
			input: "random:success_rate >= 0.99",
			want: Threshold{
				Phase:     "random",
				Aggregate: "success_rate",
				Operator:  ">=",
				Value:     0.99,
				Raw:       "random:success_rate >= 0.99",
			},
		},
		{
			name:  "per-tag phase name",
			input: "tag_search/技术:mean_ms <= 40",
			want: Threshold{
				Phase:     "tag_search/技术",
				Aggregate: "mean_ms",
				Operator:  "<=",
				Value:     40,
				Raw:       "tag_search/技术:mean_ms <= 40",
			},
		},
		{
			name:  "request count",
			input: "tag_search:total == 500",
			want: Threshold{
				Phase:     "tag_search",
				Aggregate: "total",
				Operator:  "==",
				Value:     500,
				Raw:       "tag_search:total == 500",
			},
		},
		{
			name:      "empty string",
			input:     "",
			wantError: true,
		},
		{
			name:      "missing operator",
			input:     "hot_items:p95_ms 250",
			wantError: true,
		},
		{
			name:      "unknown aggregate",
			input:     "hot_items:p85_ms < 250",
			wantError: true,
		},
		{
			name:      "invalid operator",
			input:     "hot_items:p95_ms << 250",
			wantError: true,
		},
		{
			name:      "value is not a number",
			input:     "hot_items:p95_ms < abc",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("Parse() error = %v, wantError %v", err, tt.wantError)
				return
			}
			if !tt.wantError && got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMultiple(t *testing.T) {
	tests := []struct {
		name      string
		input     []string
		wantCount int
		wantError bool
	}{
		{
			name: "multiple valid thresholds",
			input: []string{
				"hot_items:p95_ms < 250",
				"pollution_final:hit_rate > 0.1",
				"random:success_rate >= 0.99",
			},
			wantCount: 3,
		},
		{
			name:      "empty slice",
			input:     []string{},
			wantCount: 0,
		},
		{
			name: "one valid, one invalid",
			input: []string{
				"hot_items:p95_ms < 250",
				"invalid threshold",
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMultiple(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("ParseMultiple() error = %v, wantError %v", err, tt.wantError)
				return
			}
			if !tt.wantError && len(got) != tt.wantCount {
				t.Errorf("ParseMultiple() returned %d thresholds, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func sampleOutcomes() []bench.TestOutcome {
	return []bench.TestOutcome{
		{
			Test: config.TestHot,
			Phases: []bench.PhaseOutcome{{
				Name: "hot_items",
				Stats: metrics.PhaseStats{
					TotalRequests:      1000,
					SuccessfulRequests: 980,
					MeanLatency:        12 * time.Millisecond,
					P95Latency:         45 * time.Millisecond,
					MeanLatencyMs:      12,
					P95LatencyMs:       45,
				},
				Snapshot: &articles.CacheSnapshot{HitCount: 780, MissCount: 200, HitRate: 0.7959},
			}},
		},
		{
			Test: config.TestPollution,
			Phases: []bench.PhaseOutcome{
				{
					Name:  "pollution_flood",
					Stats: metrics.PhaseStats{TotalRequests: 200, SuccessfulRequests: 200},
				},
				{
					Name:     "pollution_final",
					Stats:    metrics.PhaseStats{TotalRequests: 500, SuccessfulRequests: 500},
					Snapshot: &articles.CacheSnapshot{HitCount: 60, MissCount: 440, HitRate: 0.12},
				},
			},
		},
	}
}

func TestEvaluator(t *testing.T) {
	tests := []struct {
		name       string
		thresholds []string
		wantPass   []bool
	}{
		{
			name: "all thresholds pass",
			thresholds: []string{
				"hot_items:p95_ms < 50",
				"hot_items:hit_rate > 0.7",
				"pollution_final:hit_rate > 0.1",
			},
			wantPass: []bool{true, true, true},
		},
		{
			name: "some thresholds fail",
			thresholds: []string{
				"hot_items:p95_ms < 40",
				"hot_items:success_rate >= 0.99",
				"pollution_final:success_rate >= 0.99",
			},
			wantPass: []bool{false, false, true},
		},
		{
			name: "counts",
			thresholds: []string{
				"hot_items:total == 1000",
				"hot_items:successes >= 980",
				"hot_items:failure_rate < 0.05",
			},
			wantPass: []bool{true, true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thresholds, err := ParseMultiple(tt.thresholds)
			if err != nil {
				t.Fatalf("ParseMultiple() error = %v", err)
			}

			results := NewEvaluator(thresholds).Evaluate(sampleOutcomes())
			if len(results) != len(tt.wantPass) {
				t.Fatalf("got %d results, want %d", len(results), len(tt.wantPass))
			}
			for i, result := range results {
				if result.Pass != tt.wantPass[i] {
					t.Errorf("threshold[%d] %q: got pass=%v, want %v (actual=%.2f)",
						i, result.Threshold.Raw, result.Pass, tt.wantPass[i], result.Actual)
				}
			}
		})
	}
}

// A threshold against a phase that never ran fails with a message
// instead of erroring.
func TestEvaluatorUnknownPhase(t *testing.T) {
	thresholds, err := ParseMultiple([]string{"in_capacity:hit_rate > 0.9"})
	if err != nil {
		t.Fatal(err)
	}
	results := NewEvaluator(thresholds).Evaluate(sampleOutcomes())
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Pass {
		t.Error("expected a missing phase to fail the threshold")
	}
	if !strings.Contains(results[0].Message, "no phase") {
		t.Errorf("message = %q, want a missing-phase explanation", results[0].Message)
	}
}

// hit_rate requires a snapshot; phases without one fail with a message.
func TestEvaluatorHitRateWithoutSnapshot(t *testing.T) {
	thresholds, err := ParseMultiple([]string{"pollution_flood:hit_rate > 0.5"})
	if err != nil {
		t.Fatal(err)
	}
	results := NewEvaluator(thresholds).Evaluate(sampleOutcomes())
	if results[0].Pass {
		t.Error("expected failure for a phase without a snapshot")
	}
	if !strings.Contains(results[0].Message, "snapshot") {
		t.Errorf("message = %q", results[0].Message)
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name     string
		actual   float64
		operator string
		expected float64
		want     bool
	}{
		{"less than true", 50, "<", 100, true},
		{"less than false", 100, "<", 50, false},
		{"less than equal", 100, "<", 100, false},
		{"less than or equal true", 50, "<=", 100, true},
		{"less than or equal equal", 100, "<=", 100, true},
		{"less than or equal false", 150, "<=", 100, false},
		{"greater than true", 150, ">", 100, true},
		{"greater than false", 50, ">", 100, false},
		{"greater than equal", 100, ">", 100, false},
		{"greater than or equal true", 150, ">=", 100, true},
		{"greater than or equal equal", 100, ">=", 100, true},
		{"greater than or equal false", 50, ">=", 100, false},
		{"equal true", 100, "==", 100, true},
		{"equal false", 100, "==", 101, false},
		{"equal with floating point precision", 100.0000000001, "==", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareValues(tt.actual, tt.operator, tt.expected)
			if got != tt.want {
				t.Errorf("compareValues(%.2f, %s, %.2f) = %v, want %v",
					tt.actual, tt.operator, tt.expected, got, tt.want)
			}
		})
	}
}

func TestExtractValue(t *testing.T) {
	phase := bench.PhaseOutcome{
		Name: "hot_items",
		Stats: metrics.PhaseStats{
			TotalRequests:      1000,
			SuccessfulRequests: 950,
			MeanLatencyMs:      100.75,
			P95LatencyMs:       300.5,
		},
		Snapshot: &articles.CacheSnapshot{HitRate: 0.82},
	}

	tests := []struct {
		aggregate string
		want      float64
		wantError bool
	}{
		{aggregate: "p95_ms", want: 300.5},
		{aggregate: "mean_ms", want: 100.75},
		{aggregate: "success_rate", want: 0.95},
		{aggregate: "failure_rate", want: 0.05},
		{aggregate: "total", want: 1000},
		{aggregate: "successes", want: 950},
		{aggregate: "hit_rate", want: 0.82},
		{aggregate: "p85_ms", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.aggregate, func(t *testing.T) {
			got, err := extractValue(tt.aggregate, phase)
			if (err != nil) != tt.wantError {
				t.Errorf("extractValue() error = %v, wantError %v", err, tt.wantError)
				return
			}
			if !tt.wantError && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("extractValue() = %v, want %v", got, tt.want)
			}
		})
	}
}
