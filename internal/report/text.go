package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/tsoref/cachebench/internal/clientmetrics"
	"github.com/tsoref/cachebench/internal/config"
	"github.com/tsoref/cachebench/internal/metrics"
)

// PrintReport writes the human-readable run report.
func PrintReport(w io.Writer, r *Report) {
	fmt.Fprintln(w, "\n=== Cachebench Report ===")
	fmt.Fprintf(w, "Run ID:      %s\n", r.Meta.RunID)
	fmt.Fprintf(w, "Target:      %s\n", r.Meta.TargetURL)
	fmt.Fprintf(w, "Universe:    %d articles, capacity hint %d\n", r.Meta.UniverseSize, r.Meta.CapacityHint)
	fmt.Fprintf(w, "Concurrency: %d workers\n", r.Meta.Concurrency)
	fmt.Fprintf(w, "Seed:        %d\n", r.Meta.Seed)
	fmt.Fprintf(w, "Started:     %s\n", r.Meta.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration:    %.2f seconds\n", r.DurationSeconds)

	lastHeading := ""
	for _, section := range r.Sections {
		heading := sectionHeading(section.Test)
		if heading != lastHeading {
			fmt.Fprintf(w, "\n%s\n", heading)
			lastHeading = heading
		}
		if section.Skipped != "" {
			fmt.Fprintf(w, "  %s: skipped (%s)\n", section.Test, section.Skipped)
			continue
		}
		for _, phase := range section.Phases {
			printPhase(w, phase)
		}
	}

	printPollutionStats(w, r)

	if r.Summary != nil {
		printSummary(w, *r.Summary)
	}
	if r.Connections != nil {
		printConnections(w, *r.Connections)
	}
}

// printConnections reports connection reuse across the run. A low reuse
// rate means dial and handshake cost is folded into the latency figures.
func printConnections(w io.Writer, snap clientmetrics.Snapshot) {
	fmt.Fprintln(w, "\nConnections:")
	fmt.Fprintf(w, "  New:             %d\n", snap.NewConns)
	fmt.Fprintf(w, "  Reused:          %d\n", snap.ReusedConns)
	fmt.Fprintf(w, "  Reuse Rate:      %.2f%%\n", snap.ReuseRate*100)
	if snap.NewConns > 0 {
		fmt.Fprintf(w, "  Mean Dial:       %.2f ms\n", snap.MeanDialMs)
	}
}

// sectionHeading groups battery tests under the report headings.
// Consecutive tests sharing a heading print under a single instance of
// it.
func sectionHeading(test string) string {
	switch config.TestName(test) {
	case config.TestHot, config.TestSequential, config.TestRandom, config.TestInCapacity:
		return "LRU Cache Patterns:"
	case config.TestTags:
		return "Tag Search Performance:"
	case config.TestQueries:
		return "Query Search Performance:"
	case config.TestPollution:
		return "Cache Pollution:"
	case config.TestList:
		return "Listing Sweep:"
	}
	return "Other Tests:"
}

// phaseLabel names one phase for the text report. Compact phases are
// the per-tag and per-query sweep groups, which print a single Samples
// count instead of the full request block.
func phaseLabel(name string) (label string, compact bool) {
	if group, ok := strings.CutPrefix(name, "tag_search/"); ok {
		return "Tag: " + group, true
	}
	if group, ok := strings.CutPrefix(name, "query_search/"); ok {
		return "Query: " + group, true
	}
	switch name {
	case "tag_search":
		return "All tags", false
	case "query_search":
		return "All queries", false
	case "pollution_initial":
		return "Initial warm-up", false
	case "pollution_flood":
		return "Flood", false
	case "pollution_final":
		return "Final rewarm", false
	}
	return "Pattern: " + name, false
}

func printPhase(w io.Writer, phase Phase) {
	label, compact := phaseLabel(phase.Name)
	fmt.Fprintf(w, "  %s\n", label)
	if compact {
		fmt.Fprintf(w, "    Samples: %d\n", phase.Stats.TotalRequests)
	} else {
		fmt.Fprintf(w, "    Total Requests: %d\n", phase.Stats.TotalRequests)
		fmt.Fprintf(w, "    Successful Requests: %d\n", phase.Stats.SuccessfulRequests)
	}
	fmt.Fprintf(w, "    Average Response Time: %.2f ms\n", phase.Stats.MeanLatencyMs)
	fmt.Fprintf(w, "    P95 Response Time: %.2f ms\n", phase.Stats.P95LatencyMs)
	for _, code := range sortedNonOKCodes(phase.Stats.StatusCounts) {
		fmt.Fprintf(w, "    Status %s: %d\n", code, phase.Stats.StatusCounts[code])
	}
	if phase.Cache != nil {
		fmt.Fprintf(w, "    Cache Hit Rate: %.2f%%\n", phase.Cache.HitRate*100)
	}
}

// sortedNonOKCodes lists the status keys worth calling out, i.e.
// everything that is not a plain 200.
func sortedNonOKCodes(counts map[string]int) []string {
	codes := make([]string, 0, len(counts))
	for code := range counts {
		if code == "200" {
			continue
		}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// printPollutionStats prints the before/after hit rates of the
// pollution test, when that test ran and both snapshots were captured.
func printPollutionStats(w io.Writer, r *Report) {
	for _, section := range r.Sections {
		if config.TestName(section.Test) != config.TestPollution || section.Skipped != "" {
			continue
		}
		var initial, final *Phase
		for i := range section.Phases {
			if section.Phases[i].Cache == nil {
				continue
			}
			if initial == nil {
				initial = &section.Phases[i]
			}
			final = &section.Phases[i]
		}
		if initial == nil || final == nil || initial == final {
			return
		}
		fmt.Fprintln(w, "\nCache Stats:")
		fmt.Fprintf(w, "  Initial Cache Hit Rate: %.2f%%\n", initial.Cache.HitRate*100)
		fmt.Fprintf(w, "  Final Cache Hit Rate: %.2f%%\n", final.Cache.HitRate*100)
		return
	}
}

// printSummary appends the run-wide totals gathered by the live
// collector.
func printSummary(w io.Writer, stats metrics.Stats) {
	fmt.Fprintln(w, "\n--- Run Summary ---")
	fmt.Fprintf(w, "Total Requests:    %d\n", stats.Total)
	fmt.Fprintf(w, "Successful:        %d\n", stats.Successes)
	fmt.Fprintf(w, "Failed:            %d\n", stats.Failures)
	fmt.Fprintf(w, "Duration:          %s\n", stats.Duration)
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", stats.RequestsPerSec)
	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", stats.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", stats.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanLatency)
	fmt.Fprintf(w, "  P50:             %s\n", stats.P50Latency)
	fmt.Fprintf(w, "  P90:             %s\n", stats.P90Latency)
	fmt.Fprintf(w, "  P95:             %s\n", stats.P95Latency)
	fmt.Fprintf(w, "  P99:             %s\n", stats.P99Latency)

	if len(stats.StatusBuckets) > 0 {
		fmt.Fprintln(w, "\nStatus Buckets:")
		for _, row := range metrics.FlattenStatusBuckets(stats.StatusBuckets) {
			fmt.Fprintf(w, "  %s %s: %d\n", row.Operation, row.Code, row.Count)
		}
	}

	if len(stats.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		names := make([]string, 0, len(stats.Errors))
		for name := range stats.Errors {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %d\n", name, stats.Errors[name])
		}
	}
}
