// Standalone mock article service for manual smoke tests. It serves the
// same API surface the harness drives, backed by a seeded corpus and a
// bounded LRU cache, so a benchmark run can be exercised end to end
// without the real service.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/tsoref/cachebench/internal/articleserver"
)

func main() {
	port := flag.Int("port", 8080, "Listening port")
	articles := flag.Int("articles", 1000, "Number of seeded articles")
	capacity := flag.Int("capacity", 500, "LRU cache capacity")
	hitDelay := flag.Duration("hit-delay", 0, "Artificial latency for cached by-ID lookups")
	missDelay := flag.Duration("miss-delay", 0, "Artificial latency for uncached by-ID lookups")
	flag.Parse()

	if *port <= 0 {
		log.Fatalf("port must be > 0")
	}

	store := articleserver.NewStore(articleserver.SeedCorpus(*articles))
	server, err := articleserver.New(store, articleserver.Options{
		Capacity:  *capacity,
		HitDelay:  *hitDelay,
		MissDelay: *missDelay,
	})
	if err != nil {
		log.Fatalf("building article server: %v", err)
	}

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("article service on %s: %d articles, cache capacity %d", addr, *articles, *capacity)
	log.Fatal(http.ListenAndServe(addr, server.Handler()))
}
