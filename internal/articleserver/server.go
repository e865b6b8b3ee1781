package articleserver

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultPageSize = 10

// Options tune the mock service.
type Options struct {
	// Capacity is the LRU cache capacity in articles.
	Capacity int

	// HitDelay and MissDelay add artificial latency to by-ID lookups
	// served from the cache and from the backing store respectively,
	// so cache behavior shows up in latency distributions.
	HitDelay  time.Duration
	MissDelay time.Duration
}

// Server serves the article API over an LRU-cached corpus.
type Server struct {
	store     *Store
	cache     *CachedStore
	hitDelay  time.Duration
	missDelay time.Duration
}

// New builds a Server over the given store.
func New(store *Store, opts Options) (*Server, error) {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = 500
	}
	cache, err := NewCachedStore(store, capacity)
	if err != nil {
		return nil, err
	}
	return &Server{
		store:     store,
		cache:     cache,
		hitDelay:  opts.HitDelay,
		missDelay: opts.MissDelay,
	}, nil
}

// Cache exposes the cache layer for in-process inspection.
func (s *Server) Cache() *CachedStore {
	return s.cache
}

// Handler returns the routing table for the article API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/articles", s.handleList)
	mux.HandleFunc("GET /api/v1/articles/pages", s.handleListPages)
	mux.HandleFunc("GET /api/v1/articles/{id}", s.handleArticle)
	mux.HandleFunc("POST /api/v1/articles/{id}/refresh", s.handleRefreshArticle)
	mux.HandleFunc("POST /api/v1/articles/index/refresh", s.handleRefreshIndex)
	mux.HandleFunc("GET /api/v1/articles/tags/{tag}", s.handleTag)
	mux.HandleFunc("GET /api/v1/articles/tags/{tag}/pages", s.handleTagPages)
	mux.HandleFunc("GET /api/v1/articles/search", s.handleSearch)
	mux.HandleFunc("GET /api/v1/articles/search/pages", s.handleSearchPages)
	mux.HandleFunc("DELETE /api/v1/articles/cache", s.handleClearCache)
	mux.HandleFunc("GET /api/v1/articles/cache/stats", s.handleCacheStats)
	mux.HandleFunc("POST /api/v1/articles/cache/stats/reset", s.handleResetStats)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

type envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Message *string `json:"message"`
}

type cacheStatsPayload struct {
	CacheHit      int64   `json:"cache_hit"`
	CacheMiss     int64   `json:"cache_miss"`
	HitRate       float64 `json:"hit_rate"`
	CurrentSize   int     `json:"current_size"`
	EvictionCount int64   `json:"eviction_count"`
}

func respond(w http.ResponseWriter, status int, data any, message string) {
	env := envelope{Success: status < 400, Data: data}
	if message != "" {
		env.Message = &message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.WithError(err).Debug("failed to encode response")
	}
}

// parsePagination reads the optional limit and page parameters. both
// reports whether the two were supplied together, which is the only
// case pagination applies. valid is false when a supplied value is not
// a usable non-negative integer.
func parsePagination(q url.Values) (limit, page int, both, valid bool) {
	limit, page = -1, -1
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, 0, false, false
		}
		limit = n
	}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, 0, false, false
		}
		page = n
	}
	both = limit >= 0 && page >= 0
	if both && limit == 0 {
		return 0, 0, false, false
	}
	return limit, page, both, true
}

// respondSummaries applies the dual-mode pagination contract: when
// both limit and page are present the page is returned, otherwise the
// whole set is.
func respondSummaries(w http.ResponseWriter, items []Summary, q url.Values) {
	limit, page, both, valid := parsePagination(q)
	if !valid {
		respond(w, http.StatusBadRequest, nil, "Invalid pagination parameters")
		return
	}
	if both {
		items = paginate(items, limit, page)
	}
	respond(w, http.StatusOK, items, "")
}

// respondPageCount answers the /pages companion routes, which take an
// optional limit and fall back to the default page size.
func respondPageCount(w http.ResponseWriter, total int, q url.Values) {
	limit := defaultPageSize
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respond(w, http.StatusBadRequest, nil, "Invalid pagination parameters")
			return
		}
		limit = n
	}
	respond(w, http.StatusOK, pageCount(total, limit), "")
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	respondSummaries(w, s.store.Summaries(), r.URL.Query())
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	respondPageCount(w, s.store.Len(), r.URL.Query())
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		respond(w, http.StatusNotFound, nil, "Article not found")
		return
	}
	article, cached, ok := s.cache.Lookup(id)
	if !ok {
		respond(w, http.StatusNotFound, nil, "Article not found")
		return
	}
	if cached {
		time.Sleep(s.hitDelay)
	} else {
		time.Sleep(s.missDelay)
	}
	respond(w, http.StatusOK, article, "")
}

func (s *Server) handleRefreshArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || !s.cache.Refresh(id) {
		respond(w, http.StatusInternalServerError, nil, "Failed to refresh article")
		return
	}
	respond(w, http.StatusOK, nil, "Article refreshed")
}

func (s *Server) handleRefreshIndex(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, nil, "Index refreshed")
}

func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	respondSummaries(w, s.store.SummariesByTag(r.PathValue("tag")), r.URL.Query())
}

func (s *Server) handleTagPages(w http.ResponseWriter, r *http.Request) {
	total := len(s.store.SummariesByTag(r.PathValue("tag")))
	respondPageCount(w, total, r.URL.Query())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("query")
	if query == "" {
		respond(w, http.StatusBadRequest, nil, "Invalid search parameters")
		return
	}
	respondSummaries(w, s.store.Search(query), q)
}

func (s *Server) handleSearchPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("query")
	if query == "" {
		respond(w, http.StatusBadRequest, nil, "Invalid search parameters")
		return
	}
	respondPageCount(w, len(s.store.Search(query)), q)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.cache.Clear()
	respond(w, http.StatusOK, nil, "Cache cleared")
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats := s.cache.Stats()
	respond(w, http.StatusOK, cacheStatsPayload{
		CacheHit:      stats.Hits,
		CacheMiss:     stats.Misses,
		HitRate:       stats.HitRate(),
		CurrentSize:   stats.Size,
		EvictionCount: stats.Evictions,
	}, "")
}

func (s *Server) handleResetStats(w http.ResponseWriter, r *http.Request) {
	s.cache.ResetStats()
	respond(w, http.StatusOK, nil, "Cache statistics have been reset")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, "ok", "")
}
