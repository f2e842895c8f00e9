// Package ingest implements the feed adapters and the ingestion runner. The
// core pipeline never sees adapter identity: adapters emit normalized
// (source_name, source_type, url, title, raw_text, published_at) tuples.
package ingest

// SourceConfig describes one configured feed source.
type SourceConfig struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	SourceType  string `json:"source_type"`
	Description string `json:"description"`
}

// Registry maps source keys to their descriptors. The core pipeline is
// unaware of this mapping beyond the source_name/source_type strings attached
// to normalized items.
var Registry = map[string]SourceConfig{
	"hacker_news": {
		Key:         "hacker_news",
		Name:        "Hacker News",
		SourceType:  "api",
		Description: "Top stories from Hacker News Firebase API.",
	},
	"github_trending_stars": {
		Key:         "github_trending_stars",
		Name:        "GitHub Trending/Stars",
		SourceType:  "api",
		Description: "Trending repositories discovered from GitHub repository search sorted by stars.",
	},
	"google_news_api": {
		Key:         "google_news_api",
		Name:        "Google News API",
		SourceType:  "api",
		Description: "Google News-compatible API feed for latest technology and AI headlines.",
	},
	"webpage": {
		Key:         "webpage",
		Name:        "Configured Webpages",
		SourceType:  "webpage",
		Description: "Articles fetched politely from a configured list of page URLs.",
	},
}
