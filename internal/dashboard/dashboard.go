package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/tsoref/cachebench/internal/articles"
	"github.com/tsoref/cachebench/internal/metrics"
)

// HarnessConfig holds benchmark configuration parameters for display.
type HarnessConfig struct {
	TargetURL    string        // Article service base URL
	Concurrency  int           // Number of concurrent workers
	Universe     int           // Article identifier universe size
	CapacityHint int           // Expected service cache capacity
	Requests     int           // Requests per access pattern
	Tests        []string      // Battery selection
	Timeout      time.Duration // Request timeout
	Seed         int64         // Workload seed
	ConfigFile   string        // Path to config file if used
}

// Dashboard renders a live terminal UI for benchmark metrics.
type Dashboard struct {
	collector    *metrics.Collector
	cacheFunc    func() *articles.CacheSnapshot
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	// Widgets
	grid           *ui.Grid
	latencySparkle *widgets.SparklineGroup
	latencyPara    *widgets.Paragraph
	rpsGauge       *widgets.Gauge
	errorList      *widgets.List
	stageList      *widgets.List
	summaryPara    *widgets.Paragraph
	metricsPara    *widgets.Paragraph
	cachePara      *widgets.Paragraph
	latencyHistory []float64
	startTime      time.Time
	runDuration    time.Duration
	targetURL      string
	harness        HarnessConfig
}

// New creates a new Dashboard. cacheFunc may be nil when live cache
// statistics are not wanted; it is polled on every refresh tick.
func New(collector *metrics.Collector, cfg HarnessConfig, cacheFunc func() *articles.CacheSnapshot, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		collector:      collector,
		cacheFunc:      cacheFunc,
		ctx:            ctx,
		cancel:         cancel,
		shutdownFunc:   shutdownFunc,
		latencyHistory: make([]float64, 0, 100),
		startTime:      time.Now(),
		targetURL:      cfg.TargetURL,
		harness:        cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

// initWidgets initializes all dashboard widgets.
func (d *Dashboard) initWidgets() {
	// Latency Sparkline
	sparkline := widgets.NewSparkline()
	sparkline.Title = "Latency (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.latencySparkle = widgets.NewSparklineGroup(sparkline)
	d.latencySparkle.Title = "Real-time Latency"
	d.latencySparkle.BorderStyle.Fg = ui.ColorCyan

	// Latency Metrics Paragraph
	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Latency Stats"
	d.latencyPara.Text = "Min: 0ms\nMean: 0ms\nP50: 0ms\nP95: 0ms\nP99: 0ms"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	// RPS Gauge
	d.rpsGauge = widgets.NewGauge()
	d.rpsGauge.Title = "Requests Per Second"
	d.rpsGauge.Percent = 0
	d.rpsGauge.BarColor = ui.ColorBlue
	d.rpsGauge.BorderStyle.Fg = ui.ColorCyan
	d.rpsGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	// Status Bucket List
	d.errorList = widgets.NewList()
	d.errorList.Title = "Status Buckets"
	d.errorList.Rows = []string{"No failures"}
	d.errorList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.errorList.BorderStyle.Fg = ui.ColorCyan

	// Stage List
	d.stageList = widgets.NewList()
	d.stageList.Title = "Stages"
	d.stageList.Rows = []string{"Awaiting data"}
	d.stageList.TextStyle = ui.NewStyle(ui.ColorCyan)
	d.stageList.BorderStyle.Fg = ui.ColorCyan

	// Summary Paragraph
	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Run Summary"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	// Metrics Paragraph (plain text summary)
	d.metricsPara = widgets.NewParagraph()
	d.metricsPara.Title = "Metrics"
	d.metricsPara.Text = "Waiting for data..."
	d.metricsPara.BorderStyle.Fg = ui.ColorCyan

	// Service Cache Paragraph
	d.cachePara = widgets.NewParagraph()
	d.cachePara.Title = "Service Cache"
	d.cachePara.Text = "No cache data"
	d.cachePara.TextStyle = ui.NewStyle(ui.ColorGreen)
	d.cachePara.BorderStyle.Fg = ui.ColorCyan
}

// setupGrid configures the layout grid.
func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.14,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.18,
			ui.NewCol(0.5, d.rpsGauge),
			ui.NewCol(0.5, d.metricsPara),
		),
		ui.NewRow(0.26,
			ui.NewCol(0.65, d.latencySparkle),
			ui.NewCol(0.35, d.latencyPara),
		),
		ui.NewRow(0.14,
			ui.NewCol(1.0, d.cachePara),
		),
		ui.NewRow(0.28,
			ui.NewCol(0.5, d.stageList),
			ui.NewCol(0.5, d.errorList),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and cleans up.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	d.runDuration = time.Since(d.startTime)
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

// GetFinalStats returns the final statistics after the dashboard has stopped.
func (d *Dashboard) GetFinalStats() metrics.Stats {
	return d.collector.Stats(d.runDuration)
}

// run is the main dashboard update loop.
func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			// Drain any remaining events
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			// Check if context is done to avoid blocking
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Do not return here; wait for Stop() to cancel context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes all widget data from the collector.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	elapsed := time.Since(d.startTime)
	stats := d.collector.Stats(elapsed)

	// Update latency history for sparkline
	if stats.MeanLatency > 0 {
		latencyMs := stats.MeanLatencyMs
		d.latencyHistory = append(d.latencyHistory, latencyMs)
		if len(d.latencyHistory) > 100 {
			d.latencyHistory = d.latencyHistory[1:]
		}
		d.latencySparkle.Sparklines[0].Data = d.latencyHistory
		// Update sparkline title with current latency values
		d.latencySparkle.Title = fmt.Sprintf(
			"Real-time Latency | Current: %.2fms | Min: %.2fms | Max: %.2fms",
			latencyMs,
			stats.MinLatencyMs,
			stats.MaxLatencyMs,
		)
	}

	currentRPS := stats.RequestsPerSec
	maxRPS := 100.0
	if currentRPS > maxRPS {
		maxRPS = currentRPS
	}
	rpsPercent := int((currentRPS / maxRPS) * 100)
	if rpsPercent > 100 {
		rpsPercent = 100
	}
	d.rpsGauge.Percent = rpsPercent
	d.rpsGauge.Label = fmt.Sprintf("%.1f RPS", currentRPS)

	successRate := 0.0
	if stats.Total > 0 {
		successRate = (float64(stats.Successes) / float64(stats.Total)) * 100
	}

	// Build harness parameters line
	params := d.formatHarnessParams()

	d.summaryPara.Text = fmt.Sprintf(
		"Target: %s\n%s\nElapsed: %s | Total: %d | Success Rate: %.1f%%",
		d.targetURL,
		params,
		elapsed.Round(time.Second),
		stats.Total,
		successRate,
	)

	d.metricsPara.Text = fmt.Sprintf(
		"Total Requests:    %d\nSuccessful:        %d\nFailed:            %d\nCurrent RPS:       %.2f\nSuccess Rate:      %.1f%%\nMin Latency:       %.2fms\nMean Latency:      %.2fms\nP50/P95/P99:       %.2f / %.2f / %.2f ms",
		stats.Total,
		stats.Successes,
		stats.Failures,
		currentRPS,
		successRate,
		stats.MinLatencyMs,
		stats.MeanLatencyMs,
		stats.P50LatencyMs,
		stats.P95LatencyMs,
		stats.P99LatencyMs,
	)

	d.latencyPara.Text = fmt.Sprintf(
		"Min:  %.2fms\nMean: %.2fms\nP50:  %.2fms\nP95:  %.2fms\nP99:  %.2fms",
		stats.MinLatencyMs,
		stats.MeanLatencyMs,
		stats.P50LatencyMs,
		stats.P95LatencyMs,
		stats.P99LatencyMs,
	)

	d.errorList.Rows = formatStatusListRows(stats.StatusBuckets)

	d.updateStageList(stats)
	d.updateCachePane()
}

// render draws all widgets to the screen.
func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

func (d *Dashboard) updateStageList(stats metrics.Stats) {
	if len(stats.Stages) == 0 {
		d.stageList.Rows = []string{"[No stage data](fg:green)"}
		return
	}
	type stageRow struct {
		name string
		stat metrics.StageStats
	}
	rows := make([]stageRow, 0, len(stats.Stages))
	for name, stat := range stats.Stages {
		rows = append(rows, stageRow{name: name, stat: stat})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].stat.Total == rows[j].stat.Total {
			return rows[i].name < rows[j].name
		}
		return rows[i].stat.Total > rows[j].stat.Total
	})
	formatted := make([]string, 0, len(rows))
	for _, entry := range rows {
		share := 0.0
		if stats.Total > 0 {
			share = (float64(entry.stat.Total) / float64(stats.Total)) * 100
		}
		formatted = append(formatted, fmt.Sprintf("[%s](fg:cyan) | %5.1f%% | RPS %5.1f | P95 %5.1fms | Err %d",
			entry.name,
			share,
			entry.stat.RequestsPerSec,
			entry.stat.P95LatencyMs,
			entry.stat.Failures,
		))
	}
	d.stageList.Rows = formatted
}

func (d *Dashboard) updateCachePane() {
	if d.cacheFunc == nil {
		d.cachePara.Text = "[Live cache stats disabled](fg:green)"
		return
	}
	snap := d.cacheFunc()
	if snap == nil {
		d.cachePara.Text = "[Cache stats unavailable](fg:yellow)"
		return
	}
	d.cachePara.Text = fmt.Sprintf(
		"Hit Rate: [%.2f%%](fg:green) | Hits: %d | Misses: %d | Size: %d | Evictions: %d",
		snap.HitRate*100,
		snap.HitCount,
		snap.MissCount,
		snap.CurrentSize,
		snap.EvictionCount,
	)
}

func formatStatusListRows(buckets map[string]map[string]int) []string {
	rows := metrics.FlattenStatusBuckets(buckets)
	if len(rows) == 0 {
		return []string{"[No failures](fg:green)"}
	}
	maxRows := len(rows)
	if maxRows > 10 {
		maxRows = 10
	}
	formatted := make([]string, 0, maxRows)
	for i := 0; i < maxRows; i++ {
		row := rows[i]
		formatted = append(formatted, fmt.Sprintf("[%s %s](fg:red) %d", row.Operation, row.Code, row.Count))
	}
	return formatted
}

// formatHarnessParams formats the benchmark configuration for display.
func (d *Dashboard) formatHarnessParams() string {
	var parts []string

	if d.harness.Concurrency > 0 {
		parts = append(parts, fmt.Sprintf("Workers: %d", d.harness.Concurrency))
	}

	if d.harness.Requests > 0 {
		parts = append(parts, fmt.Sprintf("Requests: %d/pattern", d.harness.Requests))
	}

	if d.harness.Universe > 0 {
		parts = append(parts, fmt.Sprintf("Universe: %d", d.harness.Universe))
	}

	if d.harness.CapacityHint > 0 {
		parts = append(parts, fmt.Sprintf("Capacity: %d", d.harness.CapacityHint))
	}

	if len(d.harness.Tests) > 0 {
		parts = append(parts, fmt.Sprintf("Tests: %s", strings.Join(d.harness.Tests, ",")))
	}

	if d.harness.Timeout > 0 {
		parts = append(parts, fmt.Sprintf("Timeout: %s", d.harness.Timeout))
	}

	if d.harness.Seed != 0 {
		parts = append(parts, fmt.Sprintf("Seed: %d", d.harness.Seed))
	}

	if d.harness.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", d.harness.ConfigFile))
	}

	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, " | ")
}
