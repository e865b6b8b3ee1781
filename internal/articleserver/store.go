package articleserver

import (
	"sort"
	"strings"
)

// Store holds the article corpus and answers the index-style reads
// that bypass the cache: listing, tag filtering and search.
type Store struct {
	articles map[int]Article
	ordered  []Summary
}

// NewStore indexes the given articles. Summaries are kept in ascending
// ID order so paginated listings are stable.
func NewStore(articles []Article) *Store {
	s := &Store{articles: make(map[int]Article, len(articles))}
	for _, a := range articles {
		s.articles[a.ID] = a
	}
	ids := make([]int, 0, len(s.articles))
	for id := range s.articles {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	s.ordered = make([]Summary, 0, len(ids))
	for _, id := range ids {
		s.ordered = append(s.ordered, s.articles[id].summary())
	}
	return s
}

// Get looks up a single article by ID.
func (s *Store) Get(id int) (Article, bool) {
	a, ok := s.articles[id]
	return a, ok
}

// Len reports the corpus size.
func (s *Store) Len() int {
	return len(s.ordered)
}

// Summaries returns every article summary in ID order.
func (s *Store) Summaries() []Summary {
	return s.ordered
}

// SummariesByTag returns the summaries carrying the given tag, in ID
// order.
func (s *Store) SummariesByTag(tag string) []Summary {
	matched := []Summary{}
	for _, sum := range s.ordered {
		for _, t := range sum.Tags {
			if t == tag {
				matched = append(matched, sum)
				break
			}
		}
	}
	return matched
}

// Search returns summaries whose title or content contains the query,
// case-insensitively, in ID order.
func (s *Store) Search(query string) []Summary {
	needle := strings.ToLower(query)
	matched := []Summary{}
	for _, sum := range s.ordered {
		a := s.articles[sum.ID]
		if strings.Contains(strings.ToLower(a.Title), needle) ||
			strings.Contains(strings.ToLower(a.Content), needle) {
			matched = append(matched, sum)
		}
	}
	return matched
}

// paginate slices out the page-th window of limit items, counting
// pages from zero. Pages past the end are empty, not errors.
func paginate(items []Summary, limit, page int) []Summary {
	start := page * limit
	if start >= len(items) {
		return []Summary{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// pageCount reports how many pages of size limit the items span.
func pageCount(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
