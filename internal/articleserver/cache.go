package articleserver

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheStats is a snapshot of the cache counters. Hits and misses
// count successful lookups only; requests for unknown IDs touch
// neither counter. Evictions count capacity evictions, not explicit
// clears.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// HitRate is hits over total lookups, or zero before any lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// CachedStore is a read-through LRU in front of a Store. Only by-ID
// lookups pass through it; listing, tag and search reads go straight
// to the Store.
type CachedStore struct {
	store     *Store
	lru       *lru.Cache[int, Article]
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewCachedStore wraps store with an LRU of the given capacity.
func NewCachedStore(store *Store, capacity int) (*CachedStore, error) {
	l, err := lru.New[int, Article](capacity)
	if err != nil {
		return nil, err
	}
	return &CachedStore{store: store, lru: l}, nil
}

// Lookup fetches an article through the cache. cached reports whether
// it was already resident; ok is false when the ID does not exist, in
// which case no counter moves.
func (c *CachedStore) Lookup(id int) (article Article, cached, ok bool) {
	if a, found := c.lru.Get(id); found {
		c.hits.Add(1)
		return a, true, true
	}
	a, found := c.store.Get(id)
	if !found {
		return Article{}, false, false
	}
	c.misses.Add(1)
	if c.lru.Add(id, a) {
		c.evictions.Add(1)
	}
	return a, false, true
}

// Refresh re-reads an article from the store and installs it in the
// cache, warming the entry without counting a hit or a miss. It
// reports whether the article exists.
func (c *CachedStore) Refresh(id int) bool {
	a, found := c.store.Get(id)
	if !found {
		return false
	}
	if c.lru.Add(id, a) {
		c.evictions.Add(1)
	}
	return true
}

// Clear empties the cache without touching the counters.
func (c *CachedStore) Clear() {
	c.lru.Purge()
}

// ResetStats zeroes all counters, leaving cached entries in place.
func (c *CachedStore) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// Stats snapshots the counters and current occupancy.
func (c *CachedStore) Stats() CacheStats {
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.lru.Len(),
	}
}
