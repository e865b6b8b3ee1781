package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tsoref/cachebench/internal/articles"
	"github.com/tsoref/cachebench/internal/bench"
	"github.com/tsoref/cachebench/internal/clientmetrics"
	"github.com/tsoref/cachebench/internal/config"
	"github.com/tsoref/cachebench/internal/dashboard"
	"github.com/tsoref/cachebench/internal/httpclient"
	"github.com/tsoref/cachebench/internal/metrics"
	"github.com/tsoref/cachebench/internal/report"
	"github.com/tsoref/cachebench/internal/runner"
	"github.com/tsoref/cachebench/internal/threshold"
	"github.com/tsoref/cachebench/internal/tracing"
	"github.com/tsoref/cachebench/internal/workload"
)

const (
	progressInterval    = time.Second
	cacheProbeTimeout   = 2 * time.Second
	tracingFlushTimeout = 5 * time.Second
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	configureLogging(cfg)

	// Parse thresholds up front so a typo fails before the battery runs.
	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	universe, err := loadUniverse(cfg)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), tracingFlushTimeout)
		defer flushCancel()
		if err := provider.Shutdown(flushCtx); err != nil {
			log.WithError(err).Warn("tracing shutdown")
		}
	}()

	httpClient := httpclient.NewClient(cfg.Timeout)
	collector := metrics.NewCollector()
	connStats := clientmetrics.New()

	clientOpts := articles.ClientOptions{
		BaseURL:    cfg.BaseURL,
		HTTPClient: httpClient,
		Collector:  collector,
		ConnStats:  connStats,
		LogErrors:  cfg.LogErrors,
	}
	if provider.Active() {
		clientOpts.Tracer = provider.Tracer()
	}
	client := articles.NewClient(clientOpts)
	admin := articles.NewAdmin(cfg.BaseURL, httpClient)

	pool := runner.New(runner.Options{
		Concurrency:   cfg.Concurrency,
		RatePerSecond: cfg.Rate,
		ArrivalModel:  toRunnerArrivalModel(cfg.Arrival.Model),
		RandomSeed:    seed,
		Executor:      client,
	})

	suite := bench.New(bench.Options{
		Universe:     universe,
		Runner:       pool,
		Admin:        admin,
		Tests:        config.TestNames(cfg.Tests),
		Requests:     cfg.Requests,
		TagRequests:  cfg.TagRequests,
		Tags:         cfg.Tags,
		Queries:      cfg.Queries,
		CapacityHint: cfg.CapacityHint,
		Seed:         seed,
	})

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(collector, harnessConfig(cfg, universe, seed), cacheProbe(ctx, admin), cancel)
		if err != nil {
			return err
		}
		dash.Start()
	}

	var progress *report.ProgressReporter
	if !cfg.JSONOutput && !cfg.Dashboard {
		progress = report.NewProgressReporter(collector, progressInterval, os.Stdout)
		progress.Start()
	}

	// Mark the actual start time in the collector so throughput figures
	// count from when the battery began, not from process start.
	startedAt := time.Now()
	collector.Start()
	outcomes, runErr := suite.Run(ctx)
	duration := time.Since(startedAt)

	// Tear the live surfaces down before printing so the report lands
	// on a clean terminal.
	if dash != nil {
		dash.Stop()
	}
	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}

	if runErr != nil && len(outcomes) == 0 {
		return runErr
	}
	if runErr != nil {
		log.WithError(runErr).Warn("battery interrupted, reporting partial results")
	}

	stats := collector.Stats(duration)
	meta := report.Metadata{
		RunID:        report.NewRunID(),
		TargetURL:    cfg.BaseURL,
		UniverseSize: universe.Size(),
		CapacityHint: cfg.CapacityHint,
		Concurrency:  cfg.Concurrency,
		Requests:     cfg.Requests,
		Seed:         seed,
		StartedAt:    startedAt,
	}
	rep := report.Build(meta, outcomes, duration, &stats)
	conns := connStats.Snapshot()
	rep.Connections = &conns

	var results []threshold.Result
	if len(thresholds) > 0 {
		results = threshold.NewEvaluator(thresholds).Evaluate(outcomes)
		rep.Thresholds = report.SummarizeThresholds(results)
	}

	if cfg.JSONOutput {
		if err := report.PrintJSONReport(os.Stdout, rep); err != nil {
			return err
		}
	} else {
		report.PrintReport(os.Stdout, rep)
		printThresholds(os.Stdout, results)
	}

	if cfg.OutputDir != "" {
		path, err := report.WriteArtifact(rep, cfg.OutputDir)
		if err != nil {
			return err
		}
		if !cfg.JSONOutput {
			fmt.Fprintf(os.Stdout, "\nResults written to %s\n", path)
		}
	}

	if cfg.HTMLOutput != "" {
		if err := writeHTMLReport(cfg.HTMLOutput, rep, results); err != nil {
			return err
		}
		if !cfg.JSONOutput {
			fmt.Fprintf(os.Stdout, "HTML report written to %s\n", cfg.HTMLOutput)
		}
	}

	if runErr != nil {
		return runErr
	}
	if failed := countFailed(results); failed > 0 {
		return fmt.Errorf("%d of %d thresholds failed", failed, len(results))
	}
	return nil
}

func configureLogging(cfg *config.Config) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	// The TUI owns the terminal while it runs.
	if cfg.Dashboard {
		log.SetOutput(io.Discard)
	}
}

func loadUniverse(cfg *config.Config) (workload.Universe, error) {
	if cfg.UniverseFile != "" {
		return workload.LoadUniverse(cfg.UniverseFile)
	}
	return workload.RangeUniverse(1, cfg.UniverseSize), nil
}

// cacheProbe wraps the admin stats call for the dashboard's cache pane.
// The stats endpoint does not touch the hit and miss counters, so
// polling it mid-run does not distort the benchmark.
func cacheProbe(ctx context.Context, admin *articles.Admin) func() *articles.CacheSnapshot {
	return func() *articles.CacheSnapshot {
		probeCtx, probeCancel := context.WithTimeout(ctx, cacheProbeTimeout)
		defer probeCancel()
		return admin.Stats(probeCtx)
	}
}

func harnessConfig(cfg *config.Config, universe workload.Universe, seed int64) dashboard.HarnessConfig {
	return dashboard.HarnessConfig{
		TargetURL:    cfg.BaseURL,
		Concurrency:  cfg.Concurrency,
		Universe:     universe.Size(),
		CapacityHint: cfg.CapacityHint,
		Requests:     cfg.Requests,
		Tests:        cfg.Tests,
		Timeout:      cfg.Timeout,
		Seed:         seed,
		ConfigFile:   cfg.ConfigFile,
	}
}

func toRunnerArrivalModel(model config.ArrivalModel) runner.ArrivalModel {
	switch strings.ToLower(string(model)) {
	case string(config.ArrivalModelPoisson):
		return runner.ArrivalModelPoisson
	default:
		return runner.ArrivalModelUniform
	}
}

func printThresholds(w io.Writer, results []threshold.Result) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w, "\nThresholds:")
	for _, res := range results {
		fmt.Fprintf(w, "  %s\n", res.Message)
	}
}

func countFailed(results []threshold.Result) int {
	failed := 0
	for _, res := range results {
		if !res.Pass {
			failed++
		}
	}
	return failed
}

func writeHTMLReport(path string, rep *report.Report, results []threshold.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating HTML report: %w", err)
	}
	defer f.Close()
	if err := report.GenerateHTMLReport(f, rep, results); err != nil {
		return fmt.Errorf("generating HTML report: %w", err)
	}
	return nil
}
