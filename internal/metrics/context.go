package metrics

import "context"

type stageContextKey struct{}

// WithStage tags a context with the benchmark stage name. The request
// executor reads it back when recording metadata, so the orchestrator can
// label every request of a phase without threading the name through the
// executor API.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageContextKey{}, stage)
}

// StageFromContext returns the stage name set by WithStage, or "".
func StageFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	stage, _ := ctx.Value(stageContextKey{}).(string)
	return stage
}
