// Package httpclient builds the shared HTTP client the benchmark workers
// issue requests through.
//
// A single client is shared across the whole worker pool so connections
// are reused between phases; only per-request timing state lives with the
// request. [NewClient] tunes the transport for sustained concurrent
// traffic against one host:
//
//	client := httpclient.NewClient(10 * time.Second)
//	resp, err := client.Do(req)
//
// The timeout applies per request. Keep-alive and idle-connection limits
// are sized so a pool of tens of workers hitting a single service does
// not re-handshake between requests, which would pollute the latency
// measurements with connection setup time.
package httpclient
