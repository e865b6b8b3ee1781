package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cachebench",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target and workload flags
	flags.String("url", "", "Base URL of the article service under test")
	flags.Int("universe", 1000, "Article identifier universe size (IDs 1..N)")
	flags.String("universe-file", "", "Path to a JSON array or CSV file of article IDs (overrides --universe)")
	flags.Int("capacity-hint", 500, "Service cache capacity hint, sizes the pollution and in-capacity tests")
	flags.Int64("seed", 0, "Workload random seed (0 derives one from the clock)")

	// Load control flags
	flags.IntP("concurrency", "c", 20, "Number of concurrent workers")
	flags.IntP("requests", "n", 1000, "Request count per pattern test")
	flags.Int("tag-requests", 50, "Request count per tag or query in the sweep tests")
	flags.IntP("rate", "r", 0, "Requests per second limit (0 means unpaced)")
	flags.String("arrival", string(ArrivalModelUniform), "Arrival model to use when pacing requests (uniform or poisson)")
	flags.Duration("timeout", 10*time.Second, "Per-request timeout")

	// Battery selection flags
	flags.StringSlice("tests", nil, "Tests to run: hot, sequential, random, tags, queries, pollution, in_capacity, list")
	flags.StringSlice("tags", nil, "Tags for the tag-search sweep")
	flags.StringSlice("queries", nil, "Queries for the search sweep")

	// Output flags
	flags.String("output-dir", ".", "Directory for the JSON result artifact (empty disables the artifact)")
	flags.Bool("json-output", false, "Emit the report as JSON on stdout instead of text")
	flags.String("html-output", "", "Generate an HTML report at the given file path")
	flags.StringSlice("threshold", nil, "Pass/fail thresholds (repeatable, e.g. 'hot_items:p95_ms < 250')")
	flags.Bool("dashboard", false, "Show a live terminal dashboard while the battery runs")
	flags.Bool("log-errors", false, "Log each failed request")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.Bool("tracing", false, "Enable OpenTelemetry tracing")
	flags.String("tracing-endpoint", "", "OTLP collector endpoint")
	flags.String("tracing-protocol", "grpc", "OTLP transport: 'grpc' or 'http'")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file only when explicitly set.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("url") {
		val, err := fs.GetString("url")
		if err != nil {
			return err
		}
		cfg.BaseURL = strings.TrimSpace(val)
	}
	if fs.Changed("universe") {
		val, err := fs.GetInt("universe")
		if err != nil {
			return err
		}
		cfg.UniverseSize = val
	}
	if fs.Changed("universe-file") {
		val, err := fs.GetString("universe-file")
		if err != nil {
			return err
		}
		cfg.UniverseFile = strings.TrimSpace(val)
	}
	if fs.Changed("capacity-hint") {
		val, err := fs.GetInt("capacity-hint")
		if err != nil {
			return err
		}
		cfg.CapacityHint = val
	}
	if fs.Changed("seed") {
		val, err := fs.GetInt64("seed")
		if err != nil {
			return err
		}
		cfg.Seed = val
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("requests") {
		val, err := fs.GetInt("requests")
		if err != nil {
			return err
		}
		cfg.Requests = val
	}
	if fs.Changed("tag-requests") {
		val, err := fs.GetInt("tag-requests")
		if err != nil {
			return err
		}
		cfg.TagRequests = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("arrival") {
		val, err := fs.GetString("arrival")
		if err != nil {
			return err
		}
		cfg.Arrival.Model = ArrivalModel(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("tests") {
		val, err := fs.GetStringSlice("tests")
		if err != nil {
			return err
		}
		cfg.Tests = val
	}
	if fs.Changed("tags") {
		val, err := fs.GetStringSlice("tags")
		if err != nil {
			return err
		}
		cfg.Tags = val
	}
	if fs.Changed("queries") {
		val, err := fs.GetStringSlice("queries")
		if err != nil {
			return err
		}
		cfg.Queries = val
	}
	if fs.Changed("output-dir") {
		val, err := fs.GetString("output-dir")
		if err != nil {
			return err
		}
		cfg.OutputDir = strings.TrimSpace(val)
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("html-output") {
		val, err := fs.GetString("html-output")
		if err != nil {
			return err
		}
		cfg.HTMLOutput = strings.TrimSpace(val)
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("verbose") {
		val, err := fs.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = val
	}
	if fs.Changed("tracing") {
		val, err := fs.GetBool("tracing")
		if err != nil {
			return err
		}
		cfg.Tracing.Enabled = val
	}
	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	return nil
}
