package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestAsString(t *testing.T) {
	tests := []struct {
		input interface{}
		want  string
	}{
		{"hello", "hello"},
		{123, "123"},
		{true, "true"},
		{nil, ""},
		{[]byte("bytes"), "bytes"},
	}

	for _, tt := range tests {
		got, err := asString(tt.input)
		if err != nil {
			t.Errorf("asString(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asString(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		input interface{}
		want  int
	}{
		{123, 123},
		{"456", 456},
		{int64(789), 789},
		{float64(10.0), 10},
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asInt(tt.input)
		if err != nil {
			t.Errorf("asInt(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asInt(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestAsFloat64(t *testing.T) {
	tests := []struct {
		input interface{}
		want  float64
	}{
		{0.25, 0.25},
		{float32(0.5), 0.5},
		{1, 1.0},
		{"0.75", 0.75},
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asFloat64(tt.input)
		if err != nil {
			t.Errorf("asFloat64(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asFloat64(%v) = %g, want %g", tt.input, got, tt.want)
		}
	}
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		input interface{}
		want  bool
	}{
		{true, true},
		{"true", true},
		{"1", true},
		{false, false},
		{"false", false},
		{"0", false},
		{nil, false},
	}

	for _, tt := range tests {
		got, err := asBool(tt.input)
		if err != nil {
			t.Errorf("asBool(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asBool(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAsDuration(t *testing.T) {
	tests := []struct {
		input interface{}
		want  time.Duration
	}{
		{time.Second, time.Second},
		{"1m", time.Minute},
		{10, 10 * time.Second}, // int treated as seconds
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asDuration(tt.input)
		if err != nil {
			t.Errorf("asDuration(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asDuration(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestApplyConfigSettings(t *testing.T) {
	cfg := &Config{Tracing: TracingConfig{Protocol: "grpc", SampleRate: 1.0}}
	settings := map[string]interface{}{
		"url":           "http://cache.example:8080",
		"universe":      2000,
		"capacity_hint": "750",
		"concurrency":   10,
		"timeout":       "5s",
		"tests":         []interface{}{"hot", "random"},
		"tags":          []interface{}{"go"},
		"tracing": map[string]interface{}{
			"enabled":     true,
			"sample_rate": 0.5,
		},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		t.Fatalf("applyConfigSettings() error = %v", err)
	}

	if cfg.BaseURL != "http://cache.example:8080" {
		t.Errorf("BaseURL = %q, want http://cache.example:8080", cfg.BaseURL)
	}
	if cfg.UniverseSize != 2000 {
		t.Errorf("UniverseSize = %d, want 2000", cfg.UniverseSize)
	}
	if cfg.CapacityHint != 750 {
		t.Errorf("CapacityHint = %d, want 750", cfg.CapacityHint)
	}
	if cfg.Concurrency != 10 {
		t.Errorf("Concurrency = %d, want 10", cfg.Concurrency)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if len(cfg.Tests) != 2 || cfg.Tests[1] != "random" {
		t.Errorf("Tests = %v, want [hot random]", cfg.Tests)
	}
	if len(cfg.Tags) != 1 || cfg.Tags[0] != "go" {
		t.Errorf("Tags = %v, want [go]", cfg.Tags)
	}
	if !cfg.Tracing.Enabled {
		t.Error("Tracing.Enabled = false, want true")
	}
	if cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("Tracing.SampleRate = %g, want 0.5", cfg.Tracing.SampleRate)
	}
	if cfg.Tracing.Protocol != "grpc" {
		t.Errorf("Tracing.Protocol = %q, want default grpc preserved", cfg.Tracing.Protocol)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := &Config{
		Concurrency: 20,
		Requests:    1000,
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)

	args := []string{
		"--concurrency=5",
		"--requests=100",
		"--seed=7",
		"--tags=go,cache",
		"--tracing",
		"--trace-sample-rate=0.1",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if err := applyFlagOverrides(cfg, fs); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}

	if cfg.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5", cfg.Concurrency)
	}
	if cfg.Requests != 100 {
		t.Errorf("Requests = %d, want 100", cfg.Requests)
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
	if len(cfg.Tags) != 2 || cfg.Tags[0] != "go" {
		t.Errorf("Tags = %v, want [go cache]", cfg.Tags)
	}
	if !cfg.Tracing.Enabled {
		t.Error("Tracing.Enabled = false, want true")
	}
	if cfg.Tracing.SampleRate != 0.1 {
		t.Errorf("Tracing.SampleRate = %g, want 0.1", cfg.Tracing.SampleRate)
	}
}

func TestUnchangedFlagsLeaveConfigAlone(t *testing.T) {
	cfg := &Config{Concurrency: 40, UniverseSize: 5000}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)
	if err := fs.Parse([]string{"--requests=10"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if err := applyFlagOverrides(cfg, fs); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}

	if cfg.Concurrency != 40 {
		t.Errorf("Concurrency = %d, want file value 40 kept", cfg.Concurrency)
	}
	if cfg.UniverseSize != 5000 {
		t.Errorf("UniverseSize = %d, want file value 5000 kept", cfg.UniverseSize)
	}
	if cfg.Requests != 10 {
		t.Errorf("Requests = %d, want 10", cfg.Requests)
	}
}

func TestParseArrival(t *testing.T) {
	arrival, err := parseArrival("Poisson")
	if err != nil {
		t.Fatalf("parseArrival(string) error = %v", err)
	}
	if arrival.Model != ArrivalModelPoisson {
		t.Errorf("Model = %q, want poisson", arrival.Model)
	}

	arrival, err = parseArrival(map[string]interface{}{"model": "uniform"})
	if err != nil {
		t.Fatalf("parseArrival(map) error = %v", err)
	}
	if arrival.Model != ArrivalModelUniform {
		t.Errorf("Model = %q, want uniform", arrival.Model)
	}

	if _, err := parseArrival(map[string]interface{}{"shape": "x"}); err == nil {
		t.Error("parseArrival without model should error")
	}
}

func TestLoaderLoad(t *testing.T) {
	loader := NewLoader()
	args := []string{
		"--url=http://example.com",
		"--concurrency=2",
		"--tests=hot, random ,",
	}

	cfg, err := loader.Load(args)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BaseURL != "http://example.com" {
		t.Errorf("BaseURL = %q, want http://example.com", cfg.BaseURL)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2", cfg.Concurrency)
	}
	if len(cfg.Tests) != 2 || cfg.Tests[0] != "hot" || cfg.Tests[1] != "random" {
		t.Errorf("Tests = %v, want trimmed [hot random]", cfg.Tests)
	}
}
