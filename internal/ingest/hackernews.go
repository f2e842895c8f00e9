package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tkarpov/claimscope/internal/model"
)

const hackerNewsBase = "https://hacker-news.firebaseio.com/v0"

// HackerNewsAdapter pulls top stories from the Hacker News Firebase API.
type HackerNewsAdapter struct {
	fetcher *Fetcher
	baseURL string
}

// NewHackerNewsAdapter creates the adapter. baseURL is overridable for tests;
// empty means the public Firebase endpoint.
func NewHackerNewsAdapter(fetcher *Fetcher, baseURL string) *HackerNewsAdapter {
	if baseURL == "" {
		baseURL = hackerNewsBase
	}
	return &HackerNewsAdapter{fetcher: fetcher, baseURL: baseURL}
}

type hackerNewsItem struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Time  int64  `json:"time"`
}

// FetchItems returns up to limit normalized stories. Non-story items and
// stories without an outbound URL are skipped.
func (a *HackerNewsAdapter) FetchItems(ctx context.Context, limit int) ([]model.RawItem, error) {
	body, err := a.fetcher.Get(ctx, a.baseURL+"/topstories.json", nil)
	if err != nil {
		return nil, fmt.Errorf("hacker news top stories: %w", err)
	}

	var ids []int64
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("hacker news top stories: %w", err)
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	source := Registry["hacker_news"]
	items := make([]model.RawItem, 0, len(ids))
	for _, id := range ids {
		itemBody, err := a.fetcher.Get(ctx, fmt.Sprintf("%s/item/%d.json", a.baseURL, id), nil)
		if err != nil {
			return nil, fmt.Errorf("hacker news item %d: %w", id, err)
		}
		var item hackerNewsItem
		if err := json.Unmarshal(itemBody, &item); err != nil {
			return nil, fmt.Errorf("hacker news item %d: %w", id, err)
		}
		if item.Type != "story" || item.URL == "" {
			continue
		}
		title := item.Title
		if title == "" {
			title = "Untitled"
		}
		var publishedAt *int64
		if item.Time > 0 {
			t := item.Time
			publishedAt = &t
		}
		items = append(items, model.RawItem{
			SourceName:  source.Name,
			SourceType:  source.SourceType,
			URL:         item.URL,
			Title:       title,
			RawText:     item.Text,
			PublishedAt: publishedAt,
		})
	}
	return items, nil
}
