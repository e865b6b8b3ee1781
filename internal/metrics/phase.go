package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/tsoref/cachebench/internal/runner"
)

// PhaseStats summarizes one measured phase. Mean and p95 are computed
// over the successful-request latencies only; a phase with no successes
// reports zero for both by convention.
type PhaseStats struct {
	TotalRequests      int           `json:"total_requests"`
	SuccessfulRequests int           `json:"successful_requests"`
	MeanLatency        time.Duration `json:"-"`
	P95Latency         time.Duration `json:"-"`
	MeanLatencyMs      float64       `json:"mean_latency_ms"`
	P95LatencyMs       float64       `json:"p95_latency_ms"`

	StatusCounts map[string]int `json:"status_counts,omitempty"`
}

// SuccessRate returns the fraction of requests that succeeded, 0 for an
// empty phase.
func (s PhaseStats) SuccessRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.SuccessfulRequests) / float64(s.TotalRequests)
}

// ReducePhase reduces one phase's results into its statistics. The input
// order does not matter; results are never mutated.
func ReducePhase(results []runner.Result) PhaseStats {
	stats := PhaseStats{TotalRequests: len(results)}
	if len(results) == 0 {
		return stats
	}

	stats.StatusCounts = make(map[string]int)
	latencies := make([]time.Duration, 0, len(results))
	for _, res := range results {
		stats.StatusCounts[res.StatusKey()]++
		if res.Success() {
			latencies = append(latencies, res.Latency)
		}
	}

	stats.SuccessfulRequests = len(latencies)
	if len(latencies) == 0 {
		return stats
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	stats.MeanLatency = sum / time.Duration(len(latencies))
	stats.P95Latency = Percentile(latencies, 0.95)
	stats.MeanLatencyMs = float64(stats.MeanLatency) / float64(time.Millisecond)
	stats.P95LatencyMs = float64(stats.P95Latency) / float64(time.Millisecond)
	return stats
}

// Percentile returns the q quantile (0..1) of an ascending-sorted sample
// using linear interpolation between the two closest ranks at
// h = q*(n-1). A single-element sample returns that element; an empty
// sample returns zero. The interpolated definition keeps small samples
// (such as 50-request tag sweeps) stable instead of jumping between
// neighboring order statistics.
func Percentile(sorted []time.Duration, q float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 || q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	h := q * float64(n-1)
	lo := int(math.Floor(h))
	frac := h - float64(lo)
	if frac == 0 {
		return sorted[lo]
	}
	return sorted[lo] + time.Duration(frac*float64(sorted[lo+1]-sorted[lo]))
}
