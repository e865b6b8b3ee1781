// Package bench sequences the benchmark battery: for each selected
// test it clears the service cache, resets its counters, drives a
// generated target sequence through the worker pool, and snapshots the
// cache statistics. Tests run strictly one at a time so no phase
// contaminates another's cache state.
package bench
