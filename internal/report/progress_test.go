package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tsoref/cachebench/internal/metrics"
)

func TestProgressReporterBasic(t *testing.T) {
	collector := metrics.NewCollector()
	collector.Start()

	for i := 0; i < 5; i++ {
		collector.RecordRequest(30*time.Millisecond, nil, nil)
	}

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 100*time.Millisecond, &buf)

	if reporter == nil {
		t.Fatal("Expected non-nil reporter")
	}

	reporter.Stop()
}

func TestProgressReporterFormatting(t *testing.T) {
	collector := metrics.NewCollector()
	collector.Start()

	collector.RecordRequest(50*time.Millisecond, nil, &metrics.RequestMetadata{
		Stage:     "hot_items",
		Operation: "lookup_by_id",
		Status:    "200",
	})

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 50*time.Millisecond, &buf)
	reporter.Start()

	time.Sleep(100 * time.Millisecond)
	reporter.Stop()

	output := buf.String()
	if !strings.Contains(output, "Requests:") {
		t.Error("Expected 'Requests:' in progress output")
	}
	if !strings.Contains(output, "Stage: hot_items") {
		t.Error("Expected current stage in progress output")
	}
}

func TestTopStageSnapshot(t *testing.T) {
	stats := metrics.Stats{
		Total: 30,
		Stages: map[string]metrics.StageStats{
			"hot_items":  {Total: 20, P95LatencyMs: 40},
			"sequential": {Total: 10, P95LatencyMs: 55},
		},
	}

	name, stage, ok := topStageSnapshot(stats)
	if !ok {
		t.Fatal("Expected a top stage")
	}
	if name != "hot_items" || stage.Total != 20 {
		t.Errorf("Expected hot_items with 20 requests, got %s with %d", name, stage.Total)
	}

	if _, _, ok := topStageSnapshot(metrics.Stats{}); ok {
		t.Error("Expected no top stage for empty stats")
	}
}
