package ingest

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/tkarpov/claimscope/internal/model"
	"github.com/tkarpov/claimscope/internal/normalize"
	"github.com/tkarpov/claimscope/internal/store"
)

// Adapter is the contract every feed adapter satisfies.
type Adapter interface {
	FetchItems(ctx context.Context, limit int) ([]model.RawItem, error)
}

// Runner drives one ingestion pass across selected sources.
type Runner struct {
	adapters map[string]Adapter
	store    *store.Store
	cleaner  *normalize.Cleaner
	logger   *zap.Logger
}

// NewRunner creates a runner over the given adapters.
func NewRunner(adapters map[string]Adapter, st *store.Store, cleaner *normalize.Cleaner, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		adapters: adapters,
		store:    st,
		cleaner:  cleaner,
		logger:   logger,
	}
}

// AvailableSources lists the configured source keys, sorted.
func (r *Runner) AvailableSources() []string {
	keys := make([]string, 0, len(r.adapters))
	for key := range r.adapters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Run ingests from the selected sources (all when sourceKeys is empty). An
// unknown key is reported per-source, never as a run failure, and one failing
// source does not abort the others.
func (r *Runner) Run(ctx context.Context, sourceKeys []string, limitPerSource int) (model.IngestResult, error) {
	selected := sourceKeys
	if len(selected) == 0 {
		selected = r.AvailableSources()
	}

	result := model.IngestResult{Sources: make(map[string]model.SourceIngestStats)}
	for _, sourceKey := range selected {
		adapter, ok := r.adapters[sourceKey]
		if !ok {
			result.Sources[sourceKey] = model.SourceIngestStats{Error: "unknown_source"}
			continue
		}

		fetched, err := adapter.FetchItems(ctx, limitPerSource)
		if err != nil {
			r.logger.Warn("source fetch failed", zap.String("source", sourceKey), zap.Error(err))
			result.Sources[sourceKey] = model.SourceIngestStats{Error: err.Error()}
			continue
		}

		stats := model.SourceIngestStats{Fetched: len(fetched)}
		for _, item := range fetched {
			upsert, err := r.ingestItem(ctx, item)
			if err != nil {
				return result, err
			}
			if upsert.Deduped {
				stats.Skipped++
			} else {
				stats.Ingested++
			}
		}

		result.Ingested += stats.Ingested
		result.Skipped += stats.Skipped
		result.Sources[sourceKey] = stats

		r.logger.Info("source ingested",
			zap.String("source", sourceKey),
			zap.Int("fetched", stats.Fetched),
			zap.Int("ingested", stats.Ingested),
			zap.Int("skipped", stats.Skipped))
	}
	return result, nil
}

// IngestItem normalizes and persists one raw item. Exposed for the article
// submission endpoint, which bypasses the adapters.
func (r *Runner) IngestItem(ctx context.Context, item model.RawItem) (model.ArticleUpsertResult, error) {
	return r.ingestItem(ctx, item)
}

func (r *Runner) ingestItem(ctx context.Context, item model.RawItem) (model.ArticleUpsertResult, error) {
	text := item.RawText
	if text == "" {
		text = item.Title
	}
	cleaned := r.cleaner.CleanForKeywords(text)
	return r.store.CreateArticleFromRaw(ctx, item, cleaned.CleanedText, cleaned.ContentHash)
}
