package workload

// Operation identifies which service endpoint a target exercises.
type Operation string

const (
	OpLookupByID  Operation = "lookup_by_id"
	OpLookupByTag Operation = "lookup_by_tag"
	OpSearch      Operation = "search_by_query"
	OpList        Operation = "list"
)

// Target is a single request to issue: an operation plus the parameters
// it needs. Targets are immutable values; the fields not used by an
// operation stay zero.
type Target struct {
	Op    Operation
	ID    int
	Tag   string
	Query string
	Limit int
	Page  int
}

// LookupByID returns a target fetching one article by identifier.
func LookupByID(id int) Target {
	return Target{Op: OpLookupByID, ID: id}
}

// LookupByTag returns a target fetching one page of articles for a tag.
func LookupByTag(tag string, limit, page int) Target {
	return Target{Op: OpLookupByTag, Tag: tag, Limit: limit, Page: page}
}

// Search returns a target running a full-text query.
func Search(query string, limit, page int) Target {
	return Target{Op: OpSearch, Query: query, Limit: limit, Page: page}
}

// List returns a target fetching one page of the article listing.
func List(limit, page int) Target {
	return Target{Op: OpList, Limit: limit, Page: page}
}

// TagSweep builds perTag consecutive lookups for every tag, in tag order.
// All requests ask for the first page (page 0) so repeated lookups hit
// the same cache key.
func TagSweep(tags []string, perTag, limit int) []Target {
	targets := make([]Target, 0, len(tags)*perTag)
	for _, tag := range tags {
		for i := 0; i < perTag; i++ {
			targets = append(targets, LookupByTag(tag, limit, 0))
		}
	}
	return targets
}

// QuerySweep builds perQuery consecutive searches for every query, in
// query order.
func QuerySweep(queries []string, perQuery, limit int) []Target {
	targets := make([]Target, 0, len(queries)*perQuery)
	for _, query := range queries {
		for i := 0; i < perQuery; i++ {
			targets = append(targets, Search(query, limit, 0))
		}
	}
	return targets
}

// ListSweep builds count paginated listing requests cycling through pages
// 0..maxPage-1.
func ListSweep(count, limit, maxPage int) []Target {
	if maxPage < 1 {
		maxPage = 1
	}
	targets := make([]Target, 0, count)
	for i := 0; i < count; i++ {
		targets = append(targets, List(limit, i%maxPage))
	}
	return targets
}
