package summary

import (
	"context"

	"github.com/tkarpov/claimscope/internal/model"
	"github.com/tkarpov/claimscope/internal/store"
)

// LatestEvents is the read-only event feed: the most recent limit summaries
// joined to their cluster's canonical title and the de-duplicated,
// order-preserving source article URLs. Never mutates.
func (e *Engine) LatestEvents(ctx context.Context, limit int) ([]model.EventCard, error) {
	db := e.store.DB()
	summaries, err := store.LatestSummaries(ctx, db, limit)
	if err != nil {
		return nil, err
	}

	cards := make([]model.EventCard, 0, len(summaries))
	for _, s := range summaries {
		title, err := store.ClusterTitle(ctx, db, s.EventClusterID)
		if err != nil {
			return nil, err
		}
		links, err := store.SourceLinksForCluster(ctx, db, s.EventClusterID)
		if err != nil {
			return nil, err
		}
		cards = append(cards, model.EventCard{
			ClusterID:           s.EventClusterID,
			ClusterTitle:        title,
			AgreedFacts:         s.AgreedFacts,
			DisputedClaims:      s.DisputedClaims,
			Unknowns:            s.Unknowns,
			ConfidenceRationale: s.ConfidenceRationale,
			ConfidenceScore:     s.ConfidenceScore,
			SourceLinks:         links,
		})
	}
	return cards, nil
}
