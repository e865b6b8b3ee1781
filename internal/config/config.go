package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// ArrivalModel selects how dispatches are spaced when a rate is set.
type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

// TestName identifies one benchmark in the battery.
type TestName string

const (
	TestHot        TestName = "hot"
	TestSequential TestName = "sequential"
	TestRandom     TestName = "random"
	TestTags       TestName = "tags"
	TestQueries    TestName = "queries"
	TestPollution  TestName = "pollution"
	TestInCapacity TestName = "in_capacity"
	TestList       TestName = "list"
)

// AllTests lists every battery test in canonical run order.
var AllTests = []TestName{
	TestHot,
	TestSequential,
	TestRandom,
	TestTags,
	TestQueries,
	TestPollution,
	TestInCapacity,
	TestList,
}

// DefaultTests is the battery run when no selection is given: the three
// pattern tests, the tag sweep, and the pollution test. The query,
// in-capacity, and list sweeps are opt-in.
func DefaultTests() []string {
	return []string{
		string(TestHot),
		string(TestSequential),
		string(TestRandom),
		string(TestTags),
		string(TestPollution),
	}
}

// TestNames converts a test selection into typed names.
func TestNames(names []string) []TestName {
	out := make([]TestName, len(names))
	for i, n := range names {
		out[i] = TestName(n)
	}
	return out
}

// DefaultTags is the tag set the reference corpus is seeded with.
func DefaultTags() []string {
	return []string{
		"技术", "编程", "教程", "开发", "软件",
		"云计算", "人工智能", "数据库", "前端", "后端",
	}
}

// TracingConfig controls the OpenTelemetry exporter.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" (default) or "http"
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	ServiceName string  `mapstructure:"service_name"`
}

// Config is the full benchmark configuration, merged from defaults, an
// optional config file, and explicit flag overrides.
type Config struct {
	BaseURL      string        `mapstructure:"url"`
	UniverseSize int           `mapstructure:"universe"`
	UniverseFile string        `mapstructure:"universe_file"`
	CapacityHint int           `mapstructure:"capacity_hint"`
	Concurrency  int           `mapstructure:"concurrency"`
	Requests     int           `mapstructure:"requests"`
	TagRequests  int           `mapstructure:"tag_requests"`
	Tests        []string      `mapstructure:"tests"`
	Seed         int64         `mapstructure:"seed"`
	Rate         int           `mapstructure:"rate"`
	Arrival      ArrivalConfig `mapstructure:"arrival"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Tags         []string      `mapstructure:"tags"`
	Queries      []string      `mapstructure:"queries"`
	OutputDir    string        `mapstructure:"output_dir"`
	JSONOutput   bool          `mapstructure:"json_output"`
	HTMLOutput   string        `mapstructure:"html_output"`
	Thresholds   []string      `mapstructure:"thresholds"`
	Dashboard    bool          `mapstructure:"dashboard"`
	LogErrors    bool          `mapstructure:"log_errors"`
	Verbose      bool          `mapstructure:"verbose"`
	Tracing      TracingConfig `mapstructure:"tracing"`
	ConfigFile   string        `mapstructure:"-"`
}

type ArrivalConfig struct {
	Model ArrivalModel `mapstructure:"model"`
}

// HasTest reports whether the battery selection includes name.
func (c Config) HasTest(name TestName) bool {
	for _, t := range c.Tests {
		if TestName(t) == name {
			return true
		}
	}
	return false
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string
	var warnings []string

	if strings.TrimSpace(c.BaseURL) == "" {
		issues = append(issues, "url is required (use --help for usage information)")
	} else if parsed, err := url.Parse(c.BaseURL); err != nil {
		issues = append(issues, fmt.Sprintf("url is not valid: %v", err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		issues = append(issues, fmt.Sprintf("url scheme must be http or https, got %q", parsed.Scheme))
	}

	if strings.TrimSpace(c.UniverseFile) == "" && c.UniverseSize < 1 {
		issues = append(issues, "universe must be >= 1 when no universe-file is given")
	}
	if c.CapacityHint < 1 {
		issues = append(issues, "capacity-hint must be >= 1")
	}
	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Requests < 1 {
		issues = append(issues, "requests must be >= 1")
	}
	if c.TagRequests < 1 {
		issues = append(issues, "tag-requests must be >= 1")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}

	// Warnings for load levels that can stress a shared target.
	if c.Rate > 1000 {
		warnings = append(warnings, fmt.Sprintf("WARNING: High rate limit configured (%d RPS). Ensure you have authorization to benchmark the target system.", c.Rate))
	}
	if c.Concurrency > 500 {
		warnings = append(warnings, fmt.Sprintf("WARNING: High concurrency configured (%d workers). Ensure you have authorization to benchmark the target system.", c.Concurrency))
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w)
	}

	issues = append(issues, validateArrivalConfig(c.Arrival)...)
	issues = append(issues, validateTests(c)...)

	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("trace-sample-rate must be between 0.0 and 1.0, got %g", c.Tracing.SampleRate))
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateArrivalConfig(arr ArrivalConfig) []string {
	model := arr.Model
	if model == "" {
		model = ArrivalModelUniform
	}
	switch model {
	case ArrivalModelUniform, ArrivalModelPoisson:
		return nil
	default:
		return []string{fmt.Sprintf("arrival model %q is not supported", model)}
	}
}

func validateTests(c Config) []string {
	var issues []string
	if len(c.Tests) == 0 {
		issues = append(issues, "tests must name at least one test")
	}
	known := map[TestName]bool{}
	for _, t := range AllTests {
		known[t] = true
	}
	for idx, name := range c.Tests {
		if !known[TestName(name)] {
			issues = append(issues, fmt.Sprintf("tests[%d]: unknown test %q", idx, name))
		}
	}
	if c.HasTest(TestTags) && len(c.Tags) == 0 {
		issues = append(issues, "tags test selected but no tags configured")
	}
	if c.HasTest(TestQueries) && len(c.Queries) == 0 {
		issues = append(issues, "queries test selected but no queries configured")
	}
	return issues
}
