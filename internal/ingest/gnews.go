package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/tkarpov/claimscope/internal/model"
)

const googleNewsBase = "https://gnews.io/api/v4/top-headlines"

// GoogleNewsAdapter pulls technology headlines from a Google News-compatible
// API. Without GOOGLE_NEWS_API_KEY it yields zero items rather than an error,
// so the source can stay enabled in default configs.
type GoogleNewsAdapter struct {
	fetcher *Fetcher
	baseURL string
}

// NewGoogleNewsAdapter creates the adapter. baseURL is overridable for tests;
// empty means gnews.io.
func NewGoogleNewsAdapter(fetcher *Fetcher, baseURL string) *GoogleNewsAdapter {
	if baseURL == "" {
		baseURL = googleNewsBase
	}
	return &GoogleNewsAdapter{fetcher: fetcher, baseURL: baseURL}
}

type googleNewsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// FetchItems returns up to limit normalized headlines.
func (a *GoogleNewsAdapter) FetchItems(ctx context.Context, limit int) ([]model.RawItem, error) {
	apiKey := os.Getenv("GOOGLE_NEWS_API_KEY")
	if apiKey == "" {
		return nil, nil
	}

	maxItems := limit
	if maxItems > 100 {
		maxItems = 100
	}
	params := url.Values{}
	params.Set("token", apiKey)
	params.Set("topic", "technology")
	params.Set("lang", "en")
	params.Set("max", strconv.Itoa(maxItems))

	body, err := a.fetcher.Get(ctx, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google news: %w", err)
	}

	var payload googleNewsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("google news: %w", err)
	}

	source := Registry["google_news_api"]
	items := make([]model.RawItem, 0, len(payload.Articles))
	for _, article := range payload.Articles {
		if len(items) >= limit {
			break
		}
		title := article.Title
		if title == "" {
			title = "Untitled"
		}
		rawText := article.Description
		if rawText == "" {
			rawText = article.Content
		}
		var publishedAt *int64
		if article.PublishedAt != "" {
			if t, err := time.Parse(time.RFC3339, article.PublishedAt); err == nil {
				unix := t.Unix()
				publishedAt = &unix
			}
		}
		items = append(items, model.RawItem{
			SourceName:  source.Name,
			SourceType:  source.SourceType,
			URL:         article.URL,
			Title:       title,
			RawText:     rawText,
			PublishedAt: publishedAt,
		})
	}
	return items, nil
}
