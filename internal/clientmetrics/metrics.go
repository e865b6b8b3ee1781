// Package clientmetrics tracks HTTP connection behavior across a
// benchmark run. Connection churn matters to a latency benchmark: a
// request that had to dial (and possibly complete a TLS handshake)
// carries setup cost a request on a reused connection does not, so the
// reuse rate tells a reader how much of the measured latency is the
// service and how much is the transport warming up.
package clientmetrics

import (
	"crypto/tls"
	"net/http/httptrace"
	"sync"
	"time"
)

// ConnStats accumulates connection-level counters. One value is shared
// by every request of a run; all methods are safe for concurrent use.
type ConnStats struct {
	mu            sync.Mutex
	newConns      int64
	reusedConns   int64
	tlsHandshakes int64
	dialTime      time.Duration
	tlsTime       time.Duration
}

// New creates a new ConnStats instance.
func New() *ConnStats {
	return &ConnStats{}
}

// Trace returns a ClientTrace recording into s. Call it once per
// request: the dial and handshake start times live in the returned
// closure, so per-request timing state is never shared between
// in-flight requests.
func (s *ConnStats) Trace() *httptrace.ClientTrace {
	var dialStart, tlsStart time.Time
	return &httptrace.ClientTrace{
		ConnectStart: func(_, _ string) {
			dialStart = time.Now()
		},
		ConnectDone: func(_, _ string, err error) {
			if err != nil || dialStart.IsZero() {
				return
			}
			s.addDial(time.Since(dialStart))
		},
		TLSHandshakeStart: func() {
			tlsStart = time.Now()
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, err error) {
			if err != nil || tlsStart.IsZero() {
				return
			}
			s.addTLS(time.Since(tlsStart))
		},
		GotConn: func(info httptrace.GotConnInfo) {
			s.markConn(info.Reused)
		},
	}
}

func (s *ConnStats) markConn(reused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reused {
		s.reusedConns++
	} else {
		s.newConns++
	}
}

func (s *ConnStats) addDial(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialTime += d
}

func (s *ConnStats) addTLS(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tlsHandshakes++
	s.tlsTime += d
}

// NewConns returns how many requests needed a fresh connection.
func (s *ConnStats) NewConns() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newConns
}

// ReusedConns returns how many requests rode an existing connection.
func (s *ConnStats) ReusedConns() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reusedConns
}

// Snapshot is a point-in-time copy of the connection counters, in the
// shape the report serializes.
type Snapshot struct {
	NewConns      int64   `json:"new_connections"`
	ReusedConns   int64   `json:"reused_connections"`
	ReuseRate     float64 `json:"reuse_rate"`
	TLSHandshakes int64   `json:"tls_handshakes,omitempty"`
	MeanDialMs    float64 `json:"mean_dial_ms"`
}

// Snapshot returns a consistent snapshot of all counters.
func (s *ConnStats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		NewConns:      s.newConns,
		ReusedConns:   s.reusedConns,
		TLSHandshakes: s.tlsHandshakes,
	}
	if total := s.newConns + s.reusedConns; total > 0 {
		snap.ReuseRate = float64(s.reusedConns) / float64(total)
	}
	if s.newConns > 0 {
		snap.MeanDialMs = float64(s.dialTime) / float64(s.newConns) / float64(time.Millisecond)
	}
	return snap
}
