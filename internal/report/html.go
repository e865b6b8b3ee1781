package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/tsoref/cachebench/internal/articles"
	"github.com/tsoref/cachebench/internal/metrics"
	"github.com/tsoref/cachebench/internal/threshold"
)

// HTMLReportData contains all data needed for the HTML report template.
type HTMLReportData struct {
	GeneratedAt      string
	Report           *Report
	PhaseRows        []PhaseRow
	SkippedTests     []SkippedTest
	ThresholdSummary *ThresholdSummary
	PhasesJSON       string
}

// PhaseRow is one flattened phase for the breakdown table.
type PhaseRow struct {
	Test  string
	Name  string
	Stats metrics.PhaseStats
	Cache *articles.CacheSnapshot
}

// SkippedTest records a battery test that did not run.
type SkippedTest struct {
	Test   string
	Reason string
}

// ThresholdSummary aggregates threshold evaluation for the report.
type ThresholdSummary struct {
	Total   int                   `json:"total"`
	Passed  int                   `json:"passed"`
	Failed  int                   `json:"failed"`
	Results []ThresholdResultJSON `json:"results"`
}

// ThresholdResultJSON is a single evaluated threshold in report form.
type ThresholdResultJSON struct {
	Threshold string  `json:"threshold"`
	Phase     string  `json:"phase"`
	Aggregate string  `json:"aggregate"`
	Operator  string  `json:"operator"`
	Expected  float64 `json:"expected"`
	Actual    float64 `json:"actual"`
	Pass      bool    `json:"pass"`
}

// SummarizeThresholds folds evaluated thresholds into the summary shape
// shared by the HTML report and the JSON artifact. Returns nil when
// nothing was evaluated.
func SummarizeThresholds(results []threshold.Result) *ThresholdSummary {
	if len(results) == 0 {
		return nil
	}
	summary := &ThresholdSummary{
		Total:   len(results),
		Results: make([]ThresholdResultJSON, len(results)),
	}
	for i, tr := range results {
		summary.Results[i] = ThresholdResultJSON{
			Threshold: tr.Threshold.Raw,
			Phase:     tr.Threshold.Phase,
			Aggregate: tr.Threshold.Aggregate,
			Operator:  tr.Threshold.Operator,
			Expected:  tr.Threshold.Value,
			Actual:    tr.Actual,
			Pass:      tr.Pass,
		}
		if tr.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	return summary
}

// chartPoint carries one phase's values for the embedded charts.
type chartPoint struct {
	Name    string   `json:"name"`
	MeanMs  float64  `json:"mean_ms"`
	P95Ms   float64  `json:"p95_ms"`
	HitRate *float64 `json:"hit_rate,omitempty"`
}

// GenerateHTMLReport generates a standalone HTML report with embedded charts.
func GenerateHTMLReport(w io.Writer, r *Report, thresholdResults []threshold.Result) error {
	var (
		rows    []PhaseRow
		skipped []SkippedTest
		points  []chartPoint
	)
	for _, section := range r.Sections {
		if section.Skipped != "" {
			skipped = append(skipped, SkippedTest{Test: section.Test, Reason: section.Skipped})
			continue
		}
		for _, phase := range section.Phases {
			rows = append(rows, PhaseRow{
				Test:  section.Test,
				Name:  phase.Name,
				Stats: phase.Stats,
				Cache: phase.Cache,
			})
			point := chartPoint{
				Name:   phase.Name,
				MeanMs: phase.Stats.MeanLatencyMs,
				P95Ms:  phase.Stats.P95LatencyMs,
			}
			if phase.Cache != nil {
				rate := phase.Cache.HitRate
				point.HitRate = &rate
			}
			points = append(points, point)
		}
	}

	phasesJSON, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("failed to marshal phase data: %w", err)
	}

	data := HTMLReportData{
		GeneratedAt:      time.Now().Format(time.RFC3339),
		Report:           r,
		PhaseRows:        rows,
		SkippedTests:     skipped,
		ThresholdSummary: SummarizeThresholds(thresholdResults),
		PhasesJSON:       string(phasesJSON),
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatDuration": func(d time.Duration) string {
			return d.String()
		},
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"formatPercent": func(part, total int64) string {
			if total == 0 {
				return "0.0"
			}
			return fmt.Sprintf("%.1f", (float64(part)/float64(total))*100)
		},
		"formatRate": func(rate float64) string {
			return fmt.Sprintf("%.2f%%", rate*100)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Cachebench Report</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #2c3e50;
            line-height: 1.6;
            padding: 20px;
        }
        .container {
            max-width: 1400px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            overflow: hidden;
        }
        header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px 40px;
        }
        header h1 {
            font-size: 2rem;
            margin-bottom: 10px;
        }
        header .meta {
            opacity: 0.9;
            font-size: 0.9rem;
        }
        .content {
            padding: 40px;
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin-bottom: 40px;
        }
        .card {
            background: #f8f9fa;
            border-radius: 8px;
            padding: 20px;
            border-left: 4px solid #667eea;
        }
        .card h3 {
            font-size: 0.9rem;
            color: #6c757d;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            margin-bottom: 10px;
        }
        .card .value {
            font-size: 2rem;
            font-weight: bold;
            color: #2c3e50;
        }
        .card .subvalue {
            font-size: 0.85rem;
            color: #6c757d;
            margin-top: 5px;
        }
        .card.success {
            border-left-color: #10b981;
        }
        .card.error {
            border-left-color: #ef4444;
        }
        .section {
            margin-bottom: 40px;
        }
        .section h2 {
            font-size: 1.5rem;
            margin-bottom: 20px;
            padding-bottom: 10px;
            border-bottom: 2px solid #e5e7eb;
        }
        .chart-container {
            background: white;
            border-radius: 8px;
            padding: 20px;
            margin-bottom: 30px;
            border: 1px solid #e5e7eb;
        }
        .chart-container h3 {
            font-size: 1.1rem;
            margin-bottom: 15px;
            color: #4b5563;
        }
        .chart {
            width: 100%;
            height: 300px;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            background: white;
        }
        th, td {
            text-align: left;
            padding: 12px;
            border-bottom: 1px solid #e5e7eb;
        }
        th {
            background: #f8f9fa;
            font-weight: 600;
            color: #4b5563;
            font-size: 0.9rem;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }
        tr:hover {
            background: #f8f9fa;
        }
        .badge {
            display: inline-block;
            padding: 4px 12px;
            border-radius: 12px;
            font-size: 0.85rem;
            font-weight: 600;
        }
        .badge-success {
            background: #d1fae5;
            color: #065f46;
        }
        .badge-error {
            background: #fee2e2;
            color: #991b1b;
        }
        .latency-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(150px, 1fr));
            gap: 15px;
            margin-top: 20px;
        }
        .latency-item {
            background: #f8f9fa;
            padding: 15px;
            border-radius: 6px;
            text-align: center;
        }
        .latency-item .label {
            font-size: 0.85rem;
            color: #6c757d;
            margin-bottom: 5px;
        }
        .latency-item .value {
            font-size: 1.3rem;
            font-weight: bold;
            color: #2c3e50;
        }
        .skipped {
            color: #6c757d;
            font-style: italic;
        }
    </style>
    <script src="https://cdn.jsdelivr.net/npm/uplot@1.6.24/dist/uPlot.iife.min.js"></script>
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/uplot@1.6.24/dist/uPlot.min.css">
</head>
<body>
    <div class="container">
        <header>
            <h1>&#128230; Cachebench Report</h1>
            {{if .Report.Meta.TargetURL}}
            <div class="meta" style="margin-top: 5px;">Target: <a href="{{.Report.Meta.TargetURL}}" style="color: white; text-decoration: underline;">{{.Report.Meta.TargetURL}}</a></div>
            {{end}}
            <div class="meta">Run ID: {{.Report.Meta.RunID}} | Generated: {{.GeneratedAt}} | Duration: {{formatDuration .Report.Duration}}</div>
            <div class="meta">Universe: {{.Report.Meta.UniverseSize}} articles | Capacity hint: {{.Report.Meta.CapacityHint}} | Workers: {{.Report.Meta.Concurrency}} | Seed: {{.Report.Meta.Seed}}</div>
        </header>

        <div class="content">
            <!-- Summary Cards -->
            {{if .Report.Summary}}
            <div class="grid">
                <div class="card">
                    <h3>Total Requests</h3>
                    <div class="value">{{.Report.Summary.Total}}</div>
                </div>
                <div class="card success">
                    <h3>Successful</h3>
                    <div class="value">{{.Report.Summary.Successes}}</div>
                    <div class="subvalue">{{formatPercent .Report.Summary.Successes .Report.Summary.Total}}%</div>
                </div>
                <div class="card error">
                    <h3>Failed</h3>
                    <div class="value">{{.Report.Summary.Failures}}</div>
                    <div class="subvalue">{{formatPercent .Report.Summary.Failures .Report.Summary.Total}}%</div>
                </div>
                <div class="card">
                    <h3>Requests/sec</h3>
                    <div class="value">{{formatFloat .Report.Summary.RequestsPerSec}}</div>
                </div>
            </div>
            {{end}}

            <!-- Charts Section -->
            {{if .PhaseRows}}
            <div class="section">
                <h2>Per-Phase Performance</h2>

                <div class="chart-container">
                    <h3>P95 Response Time (ms)</h3>
                    <div id="latency-chart" class="chart"></div>
                </div>

                <div class="chart-container">
                    <h3>Cache Hit Rate (%)</h3>
                    <div id="hitrate-chart" class="chart"></div>
                </div>
            </div>
            {{end}}

            <!-- Latency Statistics -->
            {{if .Report.Summary}}
            <div class="section">
                <h2>Latency Statistics</h2>
                <div class="latency-grid">
                    <div class="latency-item">
                        <div class="label">Min</div>
                        <div class="value">{{formatDuration .Report.Summary.MinLatency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Max</div>
                        <div class="value">{{formatDuration .Report.Summary.MaxLatency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Mean</div>
                        <div class="value">{{formatDuration .Report.Summary.MeanLatency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P50</div>
                        <div class="value">{{formatDuration .Report.Summary.P50Latency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P90</div>
                        <div class="value">{{formatDuration .Report.Summary.P90Latency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P95</div>
                        <div class="value">{{formatDuration .Report.Summary.P95Latency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P99</div>
                        <div class="value">{{formatDuration .Report.Summary.P99Latency}}</div>
                    </div>
                </div>
            </div>
            {{end}}

            <!-- Thresholds -->
            {{if .ThresholdSummary}}
            <div class="section">
                <h2>Thresholds ({{.ThresholdSummary.Passed}}/{{.ThresholdSummary.Total}} Passed)</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Threshold</th>
                            <th>Phase</th>
                            <th>Expected</th>
                            <th>Actual</th>
                            <th>Status</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .ThresholdSummary.Results}}
                        <tr>
                            <td>{{.Threshold}}</td>
                            <td>{{.Phase}} ({{.Aggregate}})</td>
                            <td>{{.Operator}} {{formatFloat .Expected}}</td>
                            <td>{{formatFloat .Actual}}</td>
                            <td>
                                {{if .Pass}}
                                <span class="badge badge-success">&#10003; PASS</span>
                                {{else}}
                                <span class="badge badge-error">&#10007; FAIL</span>
                                {{end}}
                            </td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}

            <!-- Phase Breakdown -->
            {{if .PhaseRows}}
            <div class="section">
                <h2>Phase Breakdown</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Test</th>
                            <th>Phase</th>
                            <th>Total</th>
                            <th>Success</th>
                            <th>Mean</th>
                            <th>P95</th>
                            <th>Hit Rate</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .PhaseRows}}
                        <tr>
                            <td><strong>{{.Test}}</strong></td>
                            <td>{{.Name}}</td>
                            <td>{{.Stats.TotalRequests}}</td>
                            <td>{{.Stats.SuccessfulRequests}}</td>
                            <td>{{formatFloat .Stats.MeanLatencyMs}} ms</td>
                            <td>{{formatFloat .Stats.P95LatencyMs}} ms</td>
                            <td>{{if .Cache}}{{formatRate .Cache.HitRate}}{{else}}-{{end}}</td>
                        </tr>
                        {{end}}
                        {{range .SkippedTests}}
                        <tr>
                            <td><strong>{{.Test}}</strong></td>
                            <td colspan="6" class="skipped">skipped ({{.Reason}})</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}
        </div>
    </div>

    {{if .PhaseRows}}
    <script>
        const phasesJSON = {{.PhasesJSON}};
        const phases = JSON.parse(phasesJSON);

        if (phases && phases.length > 0) {
            const barPaths = uPlot.paths.bars({size: [0.6, 100]});
            const indices = phases.map((_, i) => i);
            const nameAxis = {
                values: (u, ticks) => ticks.map(t =>
                    Number.isInteger(t) && phases[t] ? phases[t].name : ""),
                rotate: -30,
                size: 90
            };

            new uPlot({
                width: document.getElementById('latency-chart').offsetWidth,
                height: 300,
                scales: { x: { time: false } },
                series: [
                    { label: "Phase" },
                    {
                        label: "P95 (ms)",
                        stroke: "#667eea",
                        fill: "rgba(102, 126, 234, 0.3)",
                        paths: barPaths
                    }
                ],
                axes: [
                    nameAxis,
                    { label: "Latency (ms)" }
                ]
            }, [indices, phases.map(p => p.p95_ms)], document.getElementById('latency-chart'));

            const cached = phases.filter(p => p.hit_rate !== undefined && p.hit_rate !== null);
            if (cached.length > 0) {
                const cachedAxis = {
                    values: (u, ticks) => ticks.map(t =>
                        Number.isInteger(t) && cached[t] ? cached[t].name : ""),
                    rotate: -30,
                    size: 90
                };
                new uPlot({
                    width: document.getElementById('hitrate-chart').offsetWidth,
                    height: 300,
                    scales: { x: { time: false }, y: { range: [0, 100] } },
                    series: [
                        { label: "Phase" },
                        {
                            label: "Hit Rate (%)",
                            stroke: "#10b981",
                            fill: "rgba(16, 185, 129, 0.3)",
                            paths: barPaths
                        }
                    ],
                    axes: [
                        cachedAxis,
                        { label: "Hit Rate (%)" }
                    ]
                }, [cached.map((_, i) => i), cached.map(p => p.hit_rate * 100)], document.getElementById('hitrate-chart'));
            }
        }
    </script>
    {{end}}
</body>
</html>
`
