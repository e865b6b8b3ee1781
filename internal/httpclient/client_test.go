package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClientAppliesTimeout(t *testing.T) {
	client := NewClient(5 * time.Second)
	if client.Timeout != 5*time.Second {
		t.Fatalf("expected timeout 5s, got %s", client.Timeout)
	}
}

func TestNewClientNegativeTimeoutDisabled(t *testing.T) {
	client := NewClient(-time.Second)
	if client.Timeout != 0 {
		t.Fatalf("expected timeout 0, got %s", client.Timeout)
	}
}

func TestNewClientTransportTuning(t *testing.T) {
	client := NewClient(time.Second)

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", client.Transport)
	}
	if transport.MaxIdleConnsPerHost < 20 {
		t.Errorf("MaxIdleConnsPerHost = %d, want at least a worker pool's worth", transport.MaxIdleConnsPerHost)
	}
	if transport.IdleConnTimeout == 0 {
		t.Error("idle connections should be kept alive between phases")
	}
}

func TestNewClientIssuesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(2 * time.Second)
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestNewClientTimesOutSlowServer(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer slow.Close()

	client := NewClient(50 * time.Millisecond)
	start := time.Now()
	_, err := client.Get(slow.URL)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("timeout took %s, should fire near 50ms", elapsed)
	}
}
