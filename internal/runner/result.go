package runner

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tsoref/cachebench/internal/workload"
)

// Result is the outcome of one dispatched request. Exactly one Result
// exists per dispatched target; it is immutable once returned.
type Result struct {
	Target     workload.Target
	StatusCode int           // HTTP status, 0 when the request never completed
	Err        error         // transport-level failure, nil otherwise
	Latency    time.Duration // call start to response or failure detection
	Timestamp  time.Time     // call start
}

// Success reports whether the request completed with HTTP 200. Not-found
// and server-error responses count as unsuccessful for statistics, the
// same as transport failures.
func (r Result) Success() bool {
	return r.Err == nil && r.StatusCode == http.StatusOK
}

// StatusKey returns the bucket key for status breakdowns: the numeric
// status code, or "error" for transport failures.
func (r Result) StatusKey() string {
	if r.Err != nil {
		return "error"
	}
	return strconv.Itoa(r.StatusCode)
}
