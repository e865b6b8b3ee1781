package articles

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tsoref/cachebench/internal/clientmetrics"
	"github.com/tsoref/cachebench/internal/metrics"
	"github.com/tsoref/cachebench/internal/runner"
	"github.com/tsoref/cachebench/internal/tracing"
	"github.com/tsoref/cachebench/internal/workload"
)

// maxBodySnippetBytes caps how much of an error response body is kept
// for diagnostics.
const maxBodySnippetBytes = 1024

// HTTPError represents a non-200 response from the service.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// ClientOptions configure a Client.
type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client             // defaults to http.DefaultClient
	Collector  *metrics.Collector       // optional live metrics sink
	ConnStats  *clientmetrics.ConnStats // optional connection-reuse tracker
	Tracer     trace.Tracer             // optional, opens one client span per request
	LogErrors  bool                     // log each failed request at warn level
}

// Client issues article service requests for workload targets. It
// implements runner.Executor: transport failures and error statuses are
// reported on the Result, never raised.
type Client struct {
	base      string
	http      *http.Client
	collector *metrics.Collector
	conns     *clientmetrics.ConnStats
	tracer    trace.Tracer
	logErrors bool
}

// NewClient returns a Client for the service at opts.BaseURL.
func NewClient(opts ClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		base:      strings.TrimRight(opts.BaseURL, "/"),
		http:      httpClient,
		collector: opts.Collector,
		conns:     opts.ConnStats,
		tracer:    opts.Tracer,
		logErrors: opts.LogErrors,
	}
}

// Execute issues the single HTTP request for target. Latency is measured
// from call start to response or failure detection. Result.Err carries
// transport failures only; a non-200 status is preserved on the Result
// and counted as a failure by the live collector.
func (c *Client) Execute(ctx context.Context, target workload.Target) runner.Result {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	result := runner.Result{Target: target, Timestamp: start}
	meta := &metrics.RequestMetadata{
		Stage:     metrics.StageFromContext(ctx),
		Operation: string(target.Op),
	}
	reqURL := URLFor(c.base, target)

	var span trace.Span
	if c.tracer != nil {
		ctx, span = tracing.StartRequestSpan(ctx, c.tracer, string(target.Op), reqURL)
	}
	if c.conns != nil {
		ctx = httptrace.WithClientTrace(ctx, c.conns.Trace())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		result.Err = err
		result.Latency = time.Since(start)
		c.record(result, err, meta, span)
		return result
	}
	req.Header.Set("Accept", "application/json")
	if span != nil {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := c.http.Do(req)
	result.Latency = time.Since(start)
	if err != nil {
		result.Err = err
		c.record(result, err, meta, span)
		return result
	}

	result.StatusCode = resp.StatusCode
	var sampleErr error
	if resp.StatusCode != http.StatusOK {
		snippet, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippetBytes))
		if readErr != nil {
			sampleErr = readErr
		} else {
			sampleErr = &HTTPError{
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(snippet)),
			}
		}
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	c.record(result, sampleErr, meta, span)
	return result
}

// record feeds the live collector and tracing with one finished sample.
func (c *Client) record(result runner.Result, sampleErr error, meta *metrics.RequestMetadata, span trace.Span) {
	meta.Status = result.StatusKey()
	if c.collector != nil {
		c.collector.RecordRequest(result.Latency, sampleErr, meta)
	}
	if span != nil {
		tracing.EndSpan(span, sampleErr, attribute.Int("http.response.status_code", result.StatusCode))
	}
	if c.logErrors && sampleErr != nil {
		log.WithError(sampleErr).WithFields(log.Fields{
			"operation": meta.Operation,
			"stage":     meta.Stage,
		}).Warn("request failed")
	}
}
