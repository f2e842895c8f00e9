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

const githubSearchBase = "https://api.github.com/search/repositories"

// GitHubTrendingAdapter discovers trending repositories via the GitHub
// repository search API, sorted by stars over the last week.
type GitHubTrendingAdapter struct {
	fetcher *Fetcher
	baseURL string
}

// NewGitHubTrendingAdapter creates the adapter. baseURL is overridable for
// tests; empty means api.github.com.
func NewGitHubTrendingAdapter(fetcher *Fetcher, baseURL string) *GitHubTrendingAdapter {
	if baseURL == "" {
		baseURL = githubSearchBase
	}
	return &GitHubTrendingAdapter{fetcher: fetcher, baseURL: baseURL}
}

type githubSearchResponse struct {
	Items []struct {
		FullName    string `json:"full_name"`
		HTMLURL     string `json:"html_url"`
		Description string `json:"description"`
		CreatedAt   string `json:"created_at"`
	} `json:"items"`
}

// FetchItems returns up to limit repositories created in the last 7 days,
// ordered by star count. GITHUB_TOKEN, when set, raises the rate limit.
func (a *GitHubTrendingAdapter) FetchItems(ctx context.Context, limit int) ([]model.RawItem, error) {
	since := time.Now().UTC().AddDate(0, 0, -7).Format("2006-01-02")
	perPage := limit
	if perPage > 100 {
		perPage = 100
	}

	params := url.Values{}
	params.Set("q", "created:>"+since)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(perPage))

	headers := map[string]string{"Accept": "application/vnd.github+json"}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	body, err := a.fetcher.Get(ctx, a.baseURL+"?"+params.Encode(), headers)
	if err != nil {
		return nil, fmt.Errorf("github search: %w", err)
	}

	var payload githubSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("github search: %w", err)
	}

	source := Registry["github_trending_stars"]
	items := make([]model.RawItem, 0, len(payload.Items))
	for _, repo := range payload.Items {
		if len(items) >= limit {
			break
		}
		var publishedAt *int64
		if repo.CreatedAt != "" {
			if t, err := time.Parse(time.RFC3339, repo.CreatedAt); err == nil {
				unix := t.Unix()
				publishedAt = &unix
			}
		}
		items = append(items, model.RawItem{
			SourceName:  source.Name,
			SourceType:  source.SourceType,
			URL:         repo.HTMLURL,
			Title:       repo.FullName,
			RawText:     repo.Description,
			PublishedAt: publishedAt,
		})
	}
	return items, nil
}
