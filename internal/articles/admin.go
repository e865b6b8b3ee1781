package articles

import (
	"context"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// maxAdminBodyBytes bounds admin response bodies; stats payloads are a
// few hundred bytes at most.
const maxAdminBodyBytes = 64 * 1024

// CacheSnapshot is the service's cache statistics payload. CurrentSize
// and EvictionCount stay zero when the service does not expose them.
type CacheSnapshot struct {
	HitCount      int64   `json:"cache_hit"`
	MissCount     int64   `json:"cache_miss"`
	HitRate       float64 `json:"hit_rate"`
	CurrentSize   int64   `json:"current_size"`
	EvictionCount int64   `json:"eviction_count"`
}

// Admin drives the service's cache control endpoints between benchmark
// phases. Control calls never abort a run: failures come back as false
// or nil, logged at debug level, and the caller continues.
type Admin struct {
	base string
	http *http.Client
}

// NewAdmin returns an admin client for the service at baseURL.
func NewAdmin(baseURL string, httpClient *http.Client) *Admin {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Admin{base: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// ClearCache evicts every cached article from the service. Reports
// whether the service acknowledged the clear.
func (a *Admin) ClearCache(ctx context.Context) bool {
	body, err := a.call(ctx, http.MethodDelete, routeCache)
	if err != nil {
		log.WithError(err).Debug("cache clear failed")
		return false
	}
	return gjson.GetBytes(body, "success").Bool()
}

// ResetStats zeroes the service's hit/miss counters. Reports whether the
// service acknowledged the reset.
func (a *Admin) ResetStats(ctx context.Context) bool {
	body, err := a.call(ctx, http.MethodPost, routeStatsReset)
	if err != nil {
		log.WithError(err).Debug("cache stats reset failed")
		return false
	}
	return gjson.GetBytes(body, "success").Bool()
}

// Stats fetches the service's cache counters. A nil snapshot means the
// endpoint was unavailable; callers must not read it as zeros.
func (a *Admin) Stats(ctx context.Context) *CacheSnapshot {
	body, err := a.call(ctx, http.MethodGet, routeCacheStats)
	if err != nil {
		log.WithError(err).Debug("cache stats fetch failed")
		return nil
	}
	if !gjson.GetBytes(body, "success").Bool() {
		log.WithField("message", gjson.GetBytes(body, "message").String()).
			Debug("cache stats call rejected")
		return nil
	}
	data := gjson.GetBytes(body, "data")
	return &CacheSnapshot{
		HitCount:      data.Get("cache_hit").Int(),
		MissCount:     data.Get("cache_miss").Int(),
		HitRate:       data.Get("hit_rate").Float(),
		CurrentSize:   data.Get("current_size").Int(),
		EvictionCount: data.Get("eviction_count").Int(),
	}
}

// Health probes the service health endpoint.
func (a *Admin) Health(ctx context.Context) error {
	_, err := a.call(ctx, http.MethodGet, routeHealth)
	return err
}

// call issues one admin request and returns the response body. Any
// non-2xx status is an error.
func (a *Admin) call(ctx context.Context, method, path string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, a.base+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAdminBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := body
		if len(snippet) > maxBodySnippetBytes {
			snippet = snippet[:maxBodySnippetBytes]
		}
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}
	return body, nil
}
