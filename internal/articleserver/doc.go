// Package articleserver is an in-process stand-in for the article
// service the benchmark drives: a seeded article corpus behind an LRU
// read-through cache with hit/miss/eviction counters, exposed over the
// same routes and response envelope as the real service. Artificial
// per-request delays make cache hits and misses distinguishable in
// latency-sensitive tests.
package articleserver
