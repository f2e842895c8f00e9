package model

// Source represents an upstream publisher of articles.
// Sources are created lazily on the first article from a new name and never deleted.
type Source struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SourceType  string `json:"source_type"`
	HomepageURL string `json:"homepage_url,omitempty"`
	CreatedAt   int64  `json:"created_at"` // Unix seconds
}

// Article represents one ingested news/technical item.
// ContentHash is derived from the keyword signature of the normalized text,
// not from raw bytes, so trivially reworded duplicates collapse to one row.
type Article struct {
	ID          string `json:"id"`
	SourceID    string `json:"source_id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	PublishedAt *int64 `json:"published_at,omitempty"` // Unix seconds
	CleanedText string `json:"cleaned_text"`
	ContentHash string `json:"content_hash"`
	CreatedAt   int64  `json:"created_at"`
}

// RawItem is the normalized tuple produced by a feed adapter.
// The core pipeline never sees adapter identity beyond SourceName/SourceType.
type RawItem struct {
	SourceName  string `json:"source_name"`
	SourceType  string `json:"source_type"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	RawText     string `json:"raw_text,omitempty"`
	PublishedAt *int64 `json:"published_at,omitempty"`
}
