package articles

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/tsoref/cachebench/internal/workload"
)

// Route prefix and fixed paths of the article service API.
const (
	routePrefix     = "/api/v1/articles"
	routeCache      = routePrefix + "/cache"
	routeCacheStats = routePrefix + "/cache/stats"
	routeStatsReset = routePrefix + "/cache/stats/reset"
	routeHealth     = "/health"
)

// URLFor maps a workload target onto the service's route convention and
// returns the fully encoded request URL. Tags are path-escaped so
// non-ASCII tag names survive the round trip.
func URLFor(base string, target workload.Target) string {
	base = strings.TrimRight(base, "/")
	switch target.Op {
	case workload.OpLookupByID:
		return base + routePrefix + "/" + strconv.Itoa(target.ID)
	case workload.OpLookupByTag:
		return base + routePrefix + "/tags/" + url.PathEscape(target.Tag) + pageQuery(target)
	case workload.OpSearch:
		q := url.Values{}
		q.Set("query", target.Query)
		q.Set("limit", strconv.Itoa(target.Limit))
		q.Set("page", strconv.Itoa(target.Page))
		return base + routePrefix + "/search?" + q.Encode()
	default:
		return base + routePrefix + pageQuery(target)
	}
}

func pageQuery(target workload.Target) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(target.Limit))
	q.Set("page", strconv.Itoa(target.Page))
	return "?" + q.Encode()
}
