package metrics_test

import (
	"context"
	"testing"

	"github.com/tsoref/cachebench/internal/metrics"
)

func TestStageContextRoundTrip(t *testing.T) {
	ctx := metrics.WithStage(context.Background(), "pollution_warm")
	if got := metrics.StageFromContext(ctx); got != "pollution_warm" {
		t.Errorf("StageFromContext = %q, want pollution_warm", got)
	}
	if got := metrics.StageFromContext(context.Background()); got != "" {
		t.Errorf("unset stage = %q, want empty", got)
	}
}
