package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// RequestMetadata carries the dimensions a recorded request is bucketed
// under: the benchmark stage it belongs to and the service operation it
// exercised.
type RequestMetadata struct {
	Stage     string // phase name, e.g. "hot_items" or "pollution_warm"
	Operation string // service operation, e.g. "lookup_by_id"
	Status    string // status bucket key, e.g. "200" or "error"
}

// Collector records per-request metrics for the whole run in a
// thread-safe manner. It feeds the live progress line and dashboard;
// per-phase statistics are reduced separately from the collected Results.
type Collector struct {
	mu            sync.Mutex
	hist          *hdrhistogram.Histogram
	successes     int64
	failures      int64
	minLatency    time.Duration
	maxLatency    time.Duration
	sumLatency    time.Duration
	errorsByType  map[string]int64
	statusBuckets map[string]map[string]int
	stages        map[string]*stageAgg
	start         time.Time
}

type stageAgg struct {
	hist     *hdrhistogram.Histogram
	total    int64
	failures int64
	sum      time.Duration
}

// Stats represents aggregated run-wide metrics.
type Stats struct {
	Total          int64         `json:"total"`
	Successes      int64         `json:"successes"`
	Failures       int64         `json:"failures"`
	MinLatency     time.Duration `json:"-"`
	MaxLatency     time.Duration `json:"-"`
	MeanLatency    time.Duration `json:"-"`
	P50Latency     time.Duration `json:"-"`
	P90Latency     time.Duration `json:"-"`
	P95Latency     time.Duration `json:"-"`
	P99Latency     time.Duration `json:"-"`
	Duration       time.Duration `json:"-"`
	RequestsPerSec float64       `json:"requests_per_sec"`

	// JSON-friendly millisecond fields.
	MinLatencyMs  float64 `json:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms"`
	MeanLatencyMs float64 `json:"mean_latency_ms"`
	P50LatencyMs  float64 `json:"p50_latency_ms"`
	P90LatencyMs  float64 `json:"p90_latency_ms"`
	P95LatencyMs  float64 `json:"p95_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms"`
	DurationMs    float64 `json:"duration_ms"`

	Errors        map[string]int            `json:"errors,omitempty"`
	StatusBuckets map[string]map[string]int `json:"status_buckets,omitempty"`
	Stages        map[string]StageStats     `json:"stages,omitempty"`
}

// StageStats is the live per-stage breakdown.
type StageStats struct {
	Total          int64   `json:"total"`
	Failures       int64   `json:"failures"`
	RequestsPerSec float64 `json:"requests_per_sec"`
	MeanLatencyMs  float64 `json:"mean_latency_ms"`
	P50LatencyMs   float64 `json:"p50_latency_ms"`
	P95LatencyMs   float64 `json:"p95_latency_ms"`
	P99LatencyMs   float64 `json:"p99_latency_ms"`
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		hist:          h,
		errorsByType:  make(map[string]int64),
		statusBuckets: make(map[string]map[string]int),
		stages:        make(map[string]*stageAgg),
		start:         time.Now(),
	}
}

// Start marks the beginning of the measured run for RPS calculation.
func (c *Collector) Start() {
	c.mu.Lock()
	c.start = time.Now()
	c.mu.Unlock()
}

// Elapsed returns the time since Start.
func (c *Collector) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.start)
}

// RecordRequest records a single request's latency, error state, and
// bucketing metadata. meta may be nil.
func (c *Collector) RecordRequest(latency time.Duration, err error, meta *RequestMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.recordHist(c.hist, latency)
	c.sumLatency += latency

	if c.minLatency == 0 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}

	if err == nil {
		c.successes++
	} else {
		c.failures++
		c.errorsByType[FriendlyErrorName(fmt.Sprintf("%T", err))]++
	}

	if meta == nil {
		return
	}
	if meta.Operation != "" && meta.Status != "" {
		codes, ok := c.statusBuckets[meta.Operation]
		if !ok {
			codes = make(map[string]int)
			c.statusBuckets[meta.Operation] = codes
		}
		codes[meta.Status]++
	}
	if meta.Stage != "" {
		agg, ok := c.stages[meta.Stage]
		if !ok {
			agg = &stageAgg{hist: hdrhistogram.New(1, 60_000_000, 3)}
			c.stages[meta.Stage] = agg
		}
		agg.total++
		if err != nil {
			agg.failures++
		}
		agg.sum += latency
		c.recordHist(agg.hist, latency)
	}
}

func (c *Collector) recordHist(h *hdrhistogram.Histogram, latency time.Duration) {
	if latency <= 0 {
		return
	}
	us := latency.Microseconds()
	if us < h.LowestTrackableValue() {
		us = h.LowestTrackableValue()
	}
	if us > h.HighestTrackableValue() {
		us = h.HighestTrackableValue()
	}
	_ = h.RecordValue(us)
}

// Stats computes and returns current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.failures
	stats := Stats{
		Total:      total,
		Successes:  c.successes,
		Failures:   c.failures,
		MinLatency: c.minLatency,
		MaxLatency: c.maxLatency,
	}

	if total > 0 {
		stats.MeanLatency = time.Duration(int64(c.sumLatency) / total)
	}

	if c.hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Latency = time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P95Latency = time.Duration(c.hist.ValueAtQuantile(95)) * time.Microsecond
		stats.P99Latency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	stats.MinLatencyMs = float64(stats.MinLatency) / float64(time.Millisecond)
	stats.MaxLatencyMs = float64(stats.MaxLatency) / float64(time.Millisecond)
	stats.MeanLatencyMs = float64(stats.MeanLatency) / float64(time.Millisecond)
	stats.P50LatencyMs = float64(stats.P50Latency) / float64(time.Millisecond)
	stats.P90LatencyMs = float64(stats.P90Latency) / float64(time.Millisecond)
	stats.P95LatencyMs = float64(stats.P95Latency) / float64(time.Millisecond)
	stats.P99LatencyMs = float64(stats.P99Latency) / float64(time.Millisecond)

	stats.Duration = elapsed
	stats.DurationMs = float64(elapsed) / float64(time.Millisecond)
	if elapsed > 0 && total > 0 {
		stats.RequestsPerSec = float64(total) / elapsed.Seconds()
	}

	if len(c.errorsByType) > 0 {
		stats.Errors = make(map[string]int, len(c.errorsByType))
		for k, v := range c.errorsByType {
			stats.Errors[k] = int(v)
		}
	}

	if len(c.statusBuckets) > 0 {
		stats.StatusBuckets = make(map[string]map[string]int, len(c.statusBuckets))
		for op, codes := range c.statusBuckets {
			copied := make(map[string]int, len(codes))
			for code, count := range codes {
				copied[code] = count
			}
			stats.StatusBuckets[op] = copied
		}
	}

	if len(c.stages) > 0 {
		stats.Stages = make(map[string]StageStats, len(c.stages))
		for name, agg := range c.stages {
			stage := StageStats{
				Total:    agg.total,
				Failures: agg.failures,
			}
			if agg.total > 0 {
				stage.MeanLatencyMs = float64(agg.sum) / float64(agg.total) / float64(time.Millisecond)
			}
			if agg.hist.TotalCount() > 0 {
				stage.P50LatencyMs = float64(agg.hist.ValueAtQuantile(50)) / 1000
				stage.P95LatencyMs = float64(agg.hist.ValueAtQuantile(95)) / 1000
				stage.P99LatencyMs = float64(agg.hist.ValueAtQuantile(99)) / 1000
			}
			if elapsed > 0 {
				stage.RequestsPerSec = float64(agg.total) / elapsed.Seconds()
			}
			stats.Stages[name] = stage
		}
	}

	return stats
}
