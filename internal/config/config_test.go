package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tsoref/cachebench/internal/config"
)

func TestParseFlagsDefaults(t *testing.T) {
	loader := config.NewLoader()

	cfg, err := loader.Load([]string{"--url", "http://127.0.0.1:8080"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BaseURL != "http://127.0.0.1:8080" {
		t.Errorf("BaseURL = %q, want http://127.0.0.1:8080", cfg.BaseURL)
	}
	if cfg.UniverseSize != 1000 {
		t.Errorf("UniverseSize = %d, want 1000", cfg.UniverseSize)
	}
	if cfg.CapacityHint != 500 {
		t.Errorf("CapacityHint = %d, want 500", cfg.CapacityHint)
	}
	if cfg.Concurrency != 20 {
		t.Errorf("Concurrency = %d, want 20", cfg.Concurrency)
	}
	if cfg.Requests != 1000 {
		t.Errorf("Requests = %d, want 1000", cfg.Requests)
	}
	if cfg.TagRequests != 50 {
		t.Errorf("TagRequests = %d, want 50", cfg.TagRequests)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %s, want 10s", cfg.Timeout)
	}
	if cfg.Arrival.Model != config.ArrivalModelUniform {
		t.Errorf("Arrival.Model = %q, want uniform", cfg.Arrival.Model)
	}
	if len(cfg.Tests) != 5 || cfg.Tests[0] != "hot" || cfg.Tests[4] != "pollution" {
		t.Errorf("Tests = %v, want the default battery", cfg.Tests)
	}
	if len(cfg.Tags) != 10 {
		t.Errorf("Tags len = %d, want the 10 seeded tags", len(cfg.Tags))
	}
	if cfg.OutputDir != "." {
		t.Errorf("OutputDir = %q, want .", cfg.OutputDir)
	}
	if cfg.JSONOutput || cfg.Dashboard || cfg.Verbose {
		t.Error("output toggles should default to false")
	}
	if cfg.Tracing.Enabled {
		t.Error("tracing should default to disabled")
	}
	if cfg.Tracing.Protocol != "grpc" || cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("tracing defaults = %q/%g, want grpc/1", cfg.Tracing.Protocol, cfg.Tracing.SampleRate)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{
		"url": "http://cache.example:8080",
		"universe": 5000,
		"capacity_hint": 1000,
		"concurrency": 40,
		"requests": 2000,
		"tag_requests": 25,
		"seed": 42,
		"rate": 100,
		"arrival": "poisson",
		"timeout": "5s",
		"tests": ["hot", "pollution"],
		"queries": ["rust", "cache"],
		"output_dir": "results",
		"thresholds": ["hot_items:p95_ms < 250"],
		"tracing": {"enabled": true, "endpoint": "collector:4317", "insecure": true, "sample_rate": 0.25}
	}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--config", path, "--concurrency", "10", "--tags", "go,cache"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BaseURL != "http://cache.example:8080" {
		t.Errorf("BaseURL = %q, want http://cache.example:8080", cfg.BaseURL)
	}
	if cfg.UniverseSize != 5000 {
		t.Errorf("UniverseSize = %d, want 5000", cfg.UniverseSize)
	}
	if cfg.CapacityHint != 1000 {
		t.Errorf("CapacityHint = %d, want 1000", cfg.CapacityHint)
	}
	if cfg.Concurrency != 10 {
		t.Errorf("Concurrency = %d, want flag override 10", cfg.Concurrency)
	}
	if cfg.Requests != 2000 {
		t.Errorf("Requests = %d, want 2000", cfg.Requests)
	}
	if cfg.TagRequests != 25 {
		t.Errorf("TagRequests = %d, want 25", cfg.TagRequests)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.Rate != 100 {
		t.Errorf("Rate = %d, want 100", cfg.Rate)
	}
	if cfg.Arrival.Model != config.ArrivalModelPoisson {
		t.Errorf("Arrival.Model = %q, want poisson", cfg.Arrival.Model)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", cfg.Timeout)
	}
	if len(cfg.Tests) != 2 || cfg.Tests[0] != "hot" || cfg.Tests[1] != "pollution" {
		t.Errorf("Tests = %v, want [hot pollution]", cfg.Tests)
	}
	if len(cfg.Tags) != 2 || cfg.Tags[0] != "go" {
		t.Errorf("Tags = %v, want flag override [go cache]", cfg.Tags)
	}
	if len(cfg.Queries) != 2 || cfg.Queries[1] != "cache" {
		t.Errorf("Queries = %v, want [rust cache]", cfg.Queries)
	}
	if cfg.OutputDir != "results" {
		t.Errorf("OutputDir = %q, want results", cfg.OutputDir)
	}
	if len(cfg.Thresholds) != 1 {
		t.Errorf("Thresholds = %v, want one entry", cfg.Thresholds)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.Endpoint != "collector:4317" {
		t.Errorf("Tracing = %+v, want enabled with endpoint", cfg.Tracing)
	}
	if !cfg.Tracing.Insecure || cfg.Tracing.SampleRate != 0.25 {
		t.Errorf("Tracing = %+v, want insecure with sample rate 0.25", cfg.Tracing)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"url: http://service.example:9090",
		"universe: 200",
		"concurrency: 4",
		"arrival:",
		"  model: poisson",
		"tags:",
		"  - go",
		"  - cache",
		"tracing:",
		"  enabled: true",
		"  protocol: http",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BaseURL != "http://service.example:9090" {
		t.Errorf("BaseURL = %q, want http://service.example:9090", cfg.BaseURL)
	}
	if cfg.UniverseSize != 200 {
		t.Errorf("UniverseSize = %d, want 200", cfg.UniverseSize)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.Arrival.Model != config.ArrivalModelPoisson {
		t.Errorf("Arrival.Model = %q, want poisson", cfg.Arrival.Model)
	}
	if len(cfg.Tags) != 2 || cfg.Tags[1] != "cache" {
		t.Errorf("Tags = %v, want [go cache]", cfg.Tags)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.Protocol != "http" {
		t.Errorf("Tracing = %+v, want enabled over http", cfg.Tracing)
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("Tracing.SampleRate = %g, want default 1.0 preserved", cfg.Tracing.SampleRate)
	}
}

func TestHelpRequested(t *testing.T) {
	loader := config.NewLoader()
	if _, err := loader.Load([]string{"--help"}); err != config.ErrHelpRequested {
		t.Errorf("Load(--help) error = %v, want ErrHelpRequested", err)
	}
	if _, err := loader.Load(nil); err != config.ErrHelpRequested {
		t.Errorf("Load() with no args error = %v, want ErrHelpRequested", err)
	}
}

func TestConfigValidationErrors(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			BaseURL:      "http://127.0.0.1:8080",
			UniverseSize: 1000,
			CapacityHint: 500,
			Concurrency:  20,
			Requests:     1000,
			TagRequests:  50,
			Tests:        config.DefaultTests(),
			Tags:         config.DefaultTags(),
		}
	}

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   []string
	}{
		{
			name:   "missing url",
			mutate: func(c *config.Config) { c.BaseURL = "" },
			want:   []string{"url is required"},
		},
		{
			name:   "bad scheme",
			mutate: func(c *config.Config) { c.BaseURL = "ftp://example.com" },
			want:   []string{"scheme"},
		},
		{
			name: "negative values",
			mutate: func(c *config.Config) {
				c.UniverseSize = 0
				c.CapacityHint = 0
				c.Concurrency = -1
				c.Requests = 0
				c.TagRequests = 0
				c.Rate = -5
				c.Timeout = -1
			},
			want: []string{"universe", "capacity-hint", "concurrency", "requests", "tag-requests", "rate", "timeout"},
		},
		{
			name:   "unknown test",
			mutate: func(c *config.Config) { c.Tests = []string{"hot", "thrash"} },
			want:   []string{`unknown test "thrash"`},
		},
		{
			name:   "queries test without queries",
			mutate: func(c *config.Config) { c.Tests = []string{"queries"} },
			want:   []string{"no queries configured"},
		},
		{
			name:   "tags test without tags",
			mutate: func(c *config.Config) { c.Tags = nil },
			want:   []string{"no tags configured"},
		},
		{
			name: "dashboard json conflict",
			mutate: func(c *config.Config) {
				c.Dashboard = true
				c.JSONOutput = true
			},
			want: []string{"mutually exclusive"},
		},
		{
			name:   "bad arrival model",
			mutate: func(c *config.Config) { c.Arrival.Model = "bursty" },
			want:   []string{"arrival model"},
		},
		{
			name:   "bad sample rate",
			mutate: func(c *config.Config) { c.Tracing.SampleRate = 1.5 },
			want:   []string{"trace-sample-rate"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() error = nil, want error")
			}
			for _, want := range tc.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() error %q missing %q", err.Error(), want)
				}
			}
		})
	}
}

func TestUniverseFileRelaxesUniverseSize(t *testing.T) {
	cfg := config.Config{
		BaseURL:      "http://127.0.0.1:8080",
		UniverseFile: "ids.json",
		CapacityHint: 500,
		Concurrency:  20,
		Requests:     1000,
		TagRequests:  50,
		Tests:        []string{"hot"},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil when universe-file is set", err)
	}
}

func TestHasTest(t *testing.T) {
	cfg := config.Config{Tests: []string{"hot", "pollution"}}
	if !cfg.HasTest(config.TestHot) || !cfg.HasTest(config.TestPollution) {
		t.Error("HasTest missing selected tests")
	}
	if cfg.HasTest(config.TestList) {
		t.Error("HasTest reported an unselected test")
	}
}

func TestValidationErrorIssues(t *testing.T) {
	cfg := config.Config{}
	err := cfg.Validate()
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error type = %T, want ValidationError", err)
	}
	if len(verr.Issues()) == 0 {
		t.Error("Issues() is empty")
	}
}
