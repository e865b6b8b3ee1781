// Package report turns a run's test outcomes into its artifacts: the
// human-readable text report, the timestamped JSON result file, the
// optional standalone HTML page, and the live progress line.
package report
