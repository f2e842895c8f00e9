package ingest

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/tkarpov/claimscope/internal/model"
	"github.com/tkarpov/claimscope/internal/worker"
)

// WebpageAdapter fetches a configured list of page URLs, gated by robots.txt,
// with bounded fetch concurrency. Pages without a <title> fall back to the URL.
type WebpageAdapter struct {
	fetcher *Fetcher
	robots  *RobotsChecker
	pool    *worker.Pool
	urls    []string
	logger  *zap.Logger
}

// NewWebpageAdapter creates the adapter over the configured URL list.
func NewWebpageAdapter(fetcher *Fetcher, robots *RobotsChecker, pool *worker.Pool, urls []string, logger *zap.Logger) *WebpageAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebpageAdapter{
		fetcher: fetcher,
		robots:  robots,
		pool:    pool,
		urls:    urls,
		logger:  logger,
	}
}

// FetchItems fetches up to limit configured pages. Disallowed and failed pages
// are logged and skipped; one bad page never fails the run.
func (a *WebpageAdapter) FetchItems(ctx context.Context, limit int) ([]model.RawItem, error) {
	urls := a.urls
	if len(urls) > limit {
		urls = urls[:limit]
	}

	source := Registry["webpage"]
	results := make([]model.RawItem, len(urls))
	fetched := make([]bool, len(urls))
	var mu sync.Mutex

	jobs := make([]worker.FetchJob, 0, len(urls))
	for i, pageURL := range urls {
		i, pageURL := i, pageURL
		jobs = append(jobs, func(ctx context.Context) error {
			if !a.robots.IsAllowed(ctx, pageURL) {
				a.logger.Info("webpage disallowed by robots.txt", zap.String("url", pageURL))
				return nil
			}
			body, err := a.fetcher.Get(ctx, pageURL, nil)
			if err != nil {
				a.logger.Warn("webpage fetch failed", zap.String("url", pageURL), zap.Error(err))
				return nil
			}
			title := pageTitle(body)
			if title == "" {
				title = pageURL
			}
			mu.Lock()
			results[i] = model.RawItem{
				SourceName: source.Name,
				SourceType: source.SourceType,
				URL:        pageURL,
				Title:      title,
				RawText:    string(body),
			}
			fetched[i] = true
			mu.Unlock()
			return nil
		})
	}

	if err := a.pool.Run(ctx, jobs); err != nil {
		return nil, err
	}

	items := make([]model.RawItem, 0, len(urls))
	for i := range results {
		if fetched[i] {
			items = append(items, results[i])
		}
	}
	return items, nil
}

// pageTitle extracts the first <title> text from an HTML document.
func pageTitle(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			title = strings.TrimSpace(sb.String())
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}
