package articleserver

import "fmt"

// Article is the full record served by the by-ID route.
type Article struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// Summary is the trimmed form returned by list, tag and search routes.
type Summary struct {
	ID    int      `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// SeedTags is the tag vocabulary seeded articles cycle through. It
// matches the tag set of the corpus the service was originally
// benchmarked against.
var SeedTags = []string{
	"技术", "编程", "教程", "开发", "软件",
	"云计算", "人工智能", "数据库", "前端", "后端",
}

var seedTopics = []string{
	"caching", "eviction", "latency", "throughput",
	"sharding", "indexing", "replication", "compression",
}

// SeedCorpus builds a deterministic corpus of count articles with IDs
// 1..count. Tags cycle through SeedTags so every tag owns roughly
// count/len(SeedTags) articles, and content embeds topic words so
// substring search returns stable subsets.
func SeedCorpus(count int) []Article {
	articles := make([]Article, 0, count)
	for id := 1; id <= count; id++ {
		primary := SeedTags[(id-1)%len(SeedTags)]
		secondary := SeedTags[((id-1)/len(SeedTags))%len(SeedTags)]
		tags := []string{primary}
		if secondary != primary {
			tags = append(tags, secondary)
		}
		topic := seedTopics[(id-1)%len(seedTopics)]
		related := seedTopics[(id+2)%len(seedTopics)]
		articles = append(articles, Article{
			ID:      id,
			Title:   fmt.Sprintf("Article %d: notes on %s", id, topic),
			Content: fmt.Sprintf("Article %d covers %s in depth, with a short detour into %s.", id, topic, related),
			Tags:    tags,
		})
	}
	return articles
}

func (a Article) summary() Summary {
	return Summary{ID: a.ID, Title: a.Title, Tags: a.Tags}
}
