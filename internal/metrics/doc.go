// Package metrics aggregates request measurements at two levels: a live
// run-wide collector and immutable per-phase statistics.
//
// # Collector
//
// The [Collector] records every request of the run as it happens and is
// safe for concurrent use. It backs the progress line and the dashboard:
//
//	collector := metrics.NewCollector()
//	collector.Start() // mark run start for RPS calculation
//
//	collector.RecordRequest(latency, err, &metrics.RequestMetadata{
//		Stage:     "hot_items",
//		Operation: "lookup_by_id",
//		Status:    "200",
//	})
//
//	stats := collector.Stats(collector.Elapsed())
//
// Latencies feed an HDR histogram (1µs to 60s at 3 significant figures),
// so live percentiles stay cheap regardless of request volume. [Stats]
// carries both time.Duration fields for code and *_ms float fields for
// JSON output, plus per-stage and per-operation breakdowns.
//
// # Phase statistics
//
// Report numbers never come from the live histogram. [ReducePhase] takes
// the exact Results a phase collected and computes [PhaseStats]: total and
// successful counts, and mean and p95 latency over the successful subset
// only. A phase with no successes reports zeroes rather than an error.
//
// The p95 is [Percentile] with q=0.95: linear interpolation between the
// two closest order statistics at rank q*(n-1). This is the one numerical
// definition in the harness that small samples are sensitive to, so it is
// fixed here and covered by tests rather than left to a histogram's
// bucketing.
package metrics
