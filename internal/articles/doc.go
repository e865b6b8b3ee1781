// Package articles speaks the article service's HTTP API. It provides
// the request executor that turns workload targets into measured HTTP
// calls and the admin client that drives the cache control endpoints
// between benchmark phases.
package articles
