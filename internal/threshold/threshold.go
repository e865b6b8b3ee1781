package threshold

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tsoref/cachebench/internal/bench"
)

// Threshold is a pass/fail assertion over one benchmark phase.
type Threshold struct {
	Phase     string  // phase name, e.g. "hot_items" or "tag_search/技术"
	Aggregate string  // e.g. "p95_ms", "mean_ms", "success_rate", "hit_rate"
	Operator  string  // "<", "<=", ">", ">=", "=="
	Value     float64 // the value to compare against
	Raw       string  // original threshold string for display
}

// Result is the outcome of evaluating one threshold.
type Result struct {
	Threshold Threshold
	Actual    float64
	Pass      bool
	Message   string
}

// Evaluator evaluates thresholds against a run's test outcomes.
type Evaluator struct {
	thresholds []Threshold
}

// NewEvaluator creates a threshold evaluator.
func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{
		thresholds: thresholds,
	}
}

// Evaluate checks all thresholds against the phases of the given
// outcomes. A threshold naming a phase that did not run fails with an
// explanatory message rather than erroring the run.
func (e *Evaluator) Evaluate(outcomes []bench.TestOutcome) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}

	phases := indexPhases(outcomes)
	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		results = append(results, evaluateOne(t, phases))
	}
	return results
}

func indexPhases(outcomes []bench.TestOutcome) map[string]bench.PhaseOutcome {
	phases := make(map[string]bench.PhaseOutcome)
	for _, outcome := range outcomes {
		for _, phase := range outcome.Phases {
			phases[phase.Name] = phase
		}
	}
	return phases
}

func evaluateOne(t Threshold, phases map[string]bench.PhaseOutcome) Result {
	phase, ok := phases[t.Phase]
	if !ok {
		return Result{
			Threshold: t,
			Pass:      false,
			Message:   fmt.Sprintf("error: no phase %q in this run", t.Phase),
		}
	}

	actual, err := extractValue(t.Aggregate, phase)
	if err != nil {
		return Result{
			Threshold: t,
			Pass:      false,
			Message:   fmt.Sprintf("error: %v", err),
		}
	}

	pass := compareValues(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}

	return Result{
		Threshold: t,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s %s: %.2f %s %.2f", status, t.Raw, actual, t.Operator, t.Value),
	}
}

// Parse parses a threshold string into a Threshold.
// Supported formats:
//   - "hot_items:p95_ms < 250"          (phase p95 latency in ms)
//   - "random:mean_ms < 100"            (phase mean latency in ms)
//   - "sequential:success_rate >= 0.99" (fraction of HTTP 200 responses)
//   - "pollution_final:hit_rate > 0.1"  (cache hit rate from the snapshot)
//   - "tag_search:total == 500"         (request count)
//
// The phase name is not validated here: which phases exist depends on
// the battery selection and the configured tags and queries.
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	// Pattern: phase:aggregate operator value. Phase names may carry
	// slash-separated groups and non-ASCII tags.
	pattern := regexp.MustCompile(`^([^:\s]+):([a-z0-9_]+)\s*([<>=!]+)\s*([0-9.]+)$`)
	matches := pattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected format: phase:aggregate operator value, e.g. 'hot_items:p95_ms < 250')", s)
	}

	phase := matches[1]
	aggregate := matches[2]
	operator := matches[3]
	valueStr := matches[4]

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", valueStr, err)
	}

	if !isValidAggregate(aggregate) {
		return Threshold{}, fmt.Errorf("unsupported aggregate: %q (supported: p95_ms, mean_ms, success_rate, failure_rate, hit_rate, total, successes)", aggregate)
	}

	if !isValidOperator(operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: <, <=, >, >=, ==)", operator)
	}

	return Threshold{
		Phase:     phase,
		Aggregate: aggregate,
		Operator:  operator,
		Value:     value,
		Raw:       s,
	}, nil
}

// ParseMultiple parses multiple threshold strings, reporting every
// malformed entry at once.
func ParseMultiple(thresholds []string) ([]Threshold, error) {
	if len(thresholds) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(thresholds))
	var errors []string

	for i, s := range thresholds {
		t, err := Parse(s)
		if err != nil {
			errors = append(errors, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(errors, "; "))
	}

	return result, nil
}

func isValidAggregate(aggregate string) bool {
	valid := []string{"p95_ms", "mean_ms", "success_rate", "failure_rate", "hit_rate", "total", "successes"}
	for _, v := range valid {
		if aggregate == v {
			return true
		}
	}
	return false
}

func isValidOperator(operator string) bool {
	valid := []string{"<", "<=", ">", ">=", "=="}
	for _, v := range valid {
		if operator == v {
			return true
		}
	}
	return false
}

func extractValue(aggregate string, phase bench.PhaseOutcome) (float64, error) {
	switch aggregate {
	case "p95_ms":
		return phase.Stats.P95LatencyMs, nil
	case "mean_ms":
		return phase.Stats.MeanLatencyMs, nil
	case "success_rate":
		return phase.Stats.SuccessRate(), nil
	case "failure_rate":
		return 1 - phase.Stats.SuccessRate(), nil
	case "total":
		return float64(phase.Stats.TotalRequests), nil
	case "successes":
		return float64(phase.Stats.SuccessfulRequests), nil
	case "hit_rate":
		if phase.Snapshot == nil {
			return 0, fmt.Errorf("phase %q has no cache snapshot", phase.Name)
		}
		return phase.Snapshot.HitRate, nil
	default:
		return 0, fmt.Errorf("unknown aggregate: %s", aggregate)
	}
}

func compareValues(actual float64, operator string, expected float64) bool {
	// Floating point comparison with a small epsilon.
	epsilon := 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}
