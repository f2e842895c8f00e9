package summary

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tkarpov/claimscope/internal/cluster"
	"github.com/tkarpov/claimscope/internal/errors"
	"github.com/tkarpov/claimscope/internal/extract"
	"github.com/tkarpov/claimscope/internal/model"
	"github.com/tkarpov/claimscope/internal/normalize"
	"github.com/tkarpov/claimscope/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return store.New(db)
}

func seedArticleClaims(t *testing.T, st *store.Store, sourceName, url string, claims ...extract.ExtractedClaim) {
	t.Helper()
	ctx := context.Background()
	cleaner := normalize.NewCleaner(25)
	// Each seeded article needs a distinct body or fingerprint dedupe collapses
	// them into one; the URL digest stands in for unique article text.
	cleaned := cleaner.CleanForKeywords("article body " + normalize.HashText(url))
	created, err := st.CreateArticleFromRaw(ctx, model.RawItem{
		SourceName: sourceName, SourceType: "api", URL: url, Title: "article",
	}, cleaned.CleanedText, cleaned.ContentHash)
	require.NoError(t, err)
	require.False(t, created.Deduped)
	_, err = st.PersistExtraction(ctx, created.ArticleID, &extract.ExtractionResult{Claims: claims}, "", "")
	require.NoError(t, err)
}

func claimWithConfidence(text string, claimType model.ClaimType, confidence float64) extract.ExtractedClaim {
	return extract.ExtractedClaim{
		ClaimText:  text,
		ClaimType:  claimType,
		Confidence: &confidence,
		Evidence: []extract.ExtractedEvidence{
			{EvidenceText: text, EvidenceType: model.EvidenceTypeReportedFact},
		},
	}
}

// The disputed chip-production event: two agreeing claims from two sources,
// one contradicting claim from a third.
func seedChipProductionCluster(t *testing.T, st *store.Store) {
	t.Helper()
	seedArticleClaims(t, st, "Hacker News", "https://example.com/hn",
		claimWithConfidence("Government announced chip production doubled in 2025", model.ClaimTypeObservedFact, 0.9))
	seedArticleClaims(t, st, "Google News API", "https://example.com/gn",
		claimWithConfidence("The government announced chip production doubled in 2025", model.ClaimTypeObservedFact, 0.8))
	seedArticleClaims(t, st, "Configured Webpages", "https://example.com/web",
		claimWithConfidence("Government chip production did not double in 2025", model.ClaimTypeObservedFact, 0.7))

	clusterEngine := cluster.NewEngine(st, nil)
	result, err := clusterEngine.BuildClusters(context.Background(), 72, 0.35)
	require.NoError(t, err)
	require.Equal(t, 1, result.ClustersCreated)
	require.Equal(t, 3, result.ClaimsClustered)
}

func TestBuildSummariesDisputedClusterEndToEnd(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedChipProductionCluster(t, st)

	engine := NewEngine(st, nil)
	result, err := engine.BuildSummaries(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.SummariesCreated)
	require.Equal(t, 3, result.RelationsCreated, "one supports pair, two contradictions")
	require.Equal(t, 4, result.CitationsCreated, "two agreed bullets plus two disputed bullets")

	summaries, err := store.LatestSummaries(ctx, st.DB(), 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	s := summaries[0]

	require.ElementsMatch(t, []string{
		"Government announced chip production doubled in 2025",
		"The government announced chip production doubled in 2025",
	}, s.AgreedFacts)

	require.Len(t, s.DisputedClaims, 2)
	for _, bullet := range s.DisputedClaims {
		require.Contains(t, bullet, " <> ")
		require.Contains(t, bullet, "Government chip production did not double in 2025")
	}

	require.Empty(t, s.Unknowns)

	// 3 claims, 3 sources, all texts unique; supports=1, contradicts=2 gives
	// a smoothed ratio of 0.40; claim confidences average 0.80.
	require.InDelta(t, 0.8, s.ConfidenceScore, 0.0005)
	require.Equal(t,
		"Derived from 3 factual claims across 3 sources; source_ratio=1.00, unique_claim_ratio=1.00, support_contradiction_ratio=0.40, supports=1, contradicts=2, mean_claim_confidence=0.80.",
		s.ConfidenceRationale)
}

func TestBuildSummariesEveryBulletIsCited(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedChipProductionCluster(t, st)

	engine := NewEngine(st, nil)
	_, err := engine.BuildSummaries(ctx, nil)
	require.NoError(t, err)

	claims, err := store.ClaimsInWindow(ctx, st.DB(), 0)
	require.NoError(t, err)

	cited := 0
	for _, c := range claims {
		count, err := store.CountCitationsForClaim(ctx, st.DB(), c.ID)
		require.NoError(t, err)
		cited += count
	}
	summaries, err := store.LatestSummaries(ctx, st.DB(), 10)
	require.NoError(t, err)
	bullets := len(summaries[0].AgreedFacts) + len(summaries[0].DisputedClaims) + len(summaries[0].Unknowns)
	require.Equal(t, bullets, cited, "every bullet carries exactly one citation")
}

func TestBuildSummariesNoRelationsStillSummarizes(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedArticleClaims(t, st, "Hacker News", "https://example.com/hn",
		claimWithConfidence("Regulators approved the carrier merger on Friday", model.ClaimTypeObservedFact, 0.9))
	clusterEngine := cluster.NewEngine(st, nil)
	_, err := clusterEngine.BuildClusters(ctx, 72, 0.35)
	require.NoError(t, err)

	engine := NewEngine(st, nil)
	result, err := engine.BuildSummaries(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.SummariesCreated)
	require.Zero(t, result.RelationsCreated)

	summaries, err := store.LatestSummaries(ctx, st.DB(), 10)
	require.NoError(t, err)
	s := summaries[0]
	require.Equal(t, []string{"Regulators approved the carrier merger on Friday"}, s.AgreedFacts,
		"a lone factual claim becomes the fallback agreed bullet")
	require.Empty(t, s.DisputedClaims)
	require.Contains(t, s.ConfidenceRationale, "support_contradiction_ratio=0.50")
}

func TestBuildSummariesRejectsClusterWithoutFactualClaims(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedArticleClaims(t, st, "Hacker News", "https://example.com/hn",
		claimWithConfidence("The launch felt rushed to most observers", model.ClaimTypeOpinion, 0.5))

	// The cluster engine never builds such a cluster; force the state.
	var clusterID string
	err := st.InTx(ctx, func(q store.Querier) error {
		founded, err := store.InsertCluster(ctx, q, "launch reception")
		if err != nil {
			return err
		}
		clusterID = founded.ID
		claims, err := store.ClaimsInWindow(ctx, q, 0)
		if err != nil {
			return err
		}
		return store.AssignClaimToCluster(ctx, q, claims[0].ID, founded.ID)
	})
	require.NoError(t, err)

	engine := NewEngine(st, nil)
	result, err := engine.BuildSummaries(ctx, []string{clusterID})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrNoFactualClaims))
	require.Zero(t, result.SummariesCreated)

	summaries, err := store.LatestSummaries(ctx, st.DB(), 10)
	require.NoError(t, err)
	require.Empty(t, summaries, "the failed cluster's transaction must roll back")
}

func factClaim(text string) extract.ExtractedClaim {
	return extract.ExtractedClaim{
		ClaimText: text,
		ClaimType: model.ClaimTypeObservedFact,
		Evidence: []extract.ExtractedEvidence{
			{EvidenceText: text, EvidenceType: model.EvidenceTypeReportedFact},
		},
	}
}

// clusterConfidence seeds one cluster, summarizes it, and returns the score.
func clusterConfidence(t *testing.T, seed func(st *store.Store)) float64 {
	t.Helper()
	st := newTestStore(t)
	ctx := context.Background()
	seed(st)

	_, err := cluster.NewEngine(st, nil).BuildClusters(ctx, 72, 0.35)
	require.NoError(t, err)
	result, err := NewEngine(st, nil).BuildSummaries(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.SummariesCreated)

	summaries, err := store.LatestSummaries(ctx, st.DB(), 1)
	require.NoError(t, err)
	return summaries[0].ConfidenceScore
}

func TestConfidenceDoesNotDecreaseWithMoreSources(t *testing.T) {
	texts := []string{
		"Government announced chip production doubled in 2025",
		"The government announced chip production doubled in 2025",
	}
	oneSource := clusterConfidence(t, func(st *store.Store) {
		seedArticleClaims(t, st, "Hacker News", "https://example.com/a", factClaim(texts[0]))
		seedArticleClaims(t, st, "Hacker News", "https://example.com/b", factClaim(texts[1]))
	})
	twoSources := clusterConfidence(t, func(st *store.Store) {
		seedArticleClaims(t, st, "Hacker News", "https://example.com/a", factClaim(texts[0]))
		seedArticleClaims(t, st, "Google News API", "https://example.com/b", factClaim(texts[1]))
	})

	require.Greater(t, twoSources, oneSource,
		"the same claims spread across more sources must not score lower")
}

func TestConfidenceDropsWithContradictions(t *testing.T) {
	// Two clusters identical in claim count, source count, and uniqueness;
	// only the third claim flips from agreement to contradiction.
	agreeing := clusterConfidence(t, func(st *store.Store) {
		seedArticleClaims(t, st, "Hacker News", "https://example.com/hn",
			factClaim("Government announced chip production doubled in 2025"))
		seedArticleClaims(t, st, "Google News API", "https://example.com/gn",
			factClaim("The government announced chip production doubled in 2025"))
		seedArticleClaims(t, st, "Configured Webpages", "https://example.com/web",
			factClaim("Government announced that chip production doubled in 2025"))
	})
	disputed := clusterConfidence(t, func(st *store.Store) {
		seedArticleClaims(t, st, "Hacker News", "https://example.com/hn",
			factClaim("Government announced chip production doubled in 2025"))
		seedArticleClaims(t, st, "Google News API", "https://example.com/gn",
			factClaim("The government announced chip production doubled in 2025"))
		seedArticleClaims(t, st, "Configured Webpages", "https://example.com/web",
			factClaim("Government chip production did not double in 2025"))
	})

	require.Greater(t, agreeing, disputed,
		"a higher contradiction share must strictly lower the score")
	// supports=3 gives a smoothed ratio of 0.80; supports=1, contradicts=2
	// gives 0.40. Source and uniqueness ratios are 1.00 in both.
	require.InDelta(t, 0.933, agreeing, 0.0005)
	require.InDelta(t, 0.8, disputed, 0.0005)
}

func TestBuildSummariesAppendOnlyLatestWins(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedChipProductionCluster(t, st)

	engine := NewEngine(st, nil)
	_, err := engine.BuildSummaries(ctx, nil)
	require.NoError(t, err)
	_, err = engine.BuildSummaries(ctx, nil)
	require.NoError(t, err)

	// Summaries are append-only: each build adds a row and the feed returns
	// one card per summary, newest first.
	events, err := engine.LatestEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, events[0].ClusterID, events[1].ClusterID)

	ev := events[0]
	require.NotEmpty(t, ev.ClusterTitle)
	require.True(t, strings.Contains(ev.ClusterTitle, "chip production") ||
		strings.Contains(ev.ClusterTitle, "Government"))
	require.ElementsMatch(t, []string{
		"https://example.com/hn",
		"https://example.com/gn",
		"https://example.com/web",
	}, ev.SourceLinks)
	require.InDelta(t, 0.8, ev.ConfidenceScore, 0.0005)
}
