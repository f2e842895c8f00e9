package relation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

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

func seedClaims(t *testing.T, st *store.Store, claims ...extract.ExtractedClaim) []model.Claim {
	t.Helper()
	ctx := context.Background()
	cleaner := normalize.NewCleaner(25)
	cleaned := cleaner.CleanForKeywords("seed article")
	created, err := st.CreateArticleFromRaw(ctx, model.RawItem{
		SourceName: "Hacker News", SourceType: "api",
		URL: "https://example.com/seed", Title: "seed",
	}, cleaned.CleanedText, cleaned.ContentHash)
	require.NoError(t, err)

	_, err = st.PersistExtraction(ctx, created.ArticleID, &extract.ExtractionResult{Claims: claims}, "", "")
	require.NoError(t, err)

	stored, err := store.ClaimsInWindow(ctx, st.DB(), 0)
	require.NoError(t, err)
	require.Len(t, stored, len(claims))
	return stored
}

func claimOf(text string, claimType model.ClaimType) extract.ExtractedClaim {
	return extract.ExtractedClaim{
		ClaimText: text,
		ClaimType: claimType,
		Evidence: []extract.ExtractedEvidence{
			{EvidenceText: text, EvidenceType: model.EvidenceTypeReportedFact},
		},
	}
}

func recompute(t *testing.T, st *store.Store, claims []model.Claim) int {
	t.Helper()
	var created int
	err := st.InTx(context.Background(), func(q store.Querier) error {
		var err error
		created, err = Recompute(context.Background(), q, claims)
		return err
	})
	require.NoError(t, err)
	return created
}

func relationsFor(t *testing.T, st *store.Store, claims []model.Claim) []model.ClaimRelation {
	t.Helper()
	ids := make([]string, len(claims))
	for i, c := range claims {
		ids[i] = c.ID
	}
	relations, err := store.RelationsAmong(context.Background(), st.DB(), ids)
	require.NoError(t, err)
	return relations
}

func TestRecomputeSupportForHighOverlap(t *testing.T) {
	st := newTestStore(t)
	claims := seedClaims(t, st,
		claimOf("Government announced chip production doubled in 2025", model.ClaimTypeObservedFact),
		claimOf("The government announced chip production doubled in 2025", model.ClaimTypeObservedFact),
	)

	created := recompute(t, st, claims)
	require.Equal(t, 1, created)

	relations := relationsFor(t, st, claims)
	require.Len(t, relations, 1)
	require.Equal(t, model.RelationSupports, relations[0].RelationType)
	require.GreaterOrEqual(t, relations[0].Score, 0.6)
}

func TestRecomputeContradictionBeatsSupport(t *testing.T) {
	st := newTestStore(t)
	// Near-identical texts differing only by negation: overlap clears the
	// support bar too, but the negation mismatch must win.
	claims := seedClaims(t, st,
		claimOf("The chip plant opened ahead of schedule this March", model.ClaimTypeObservedFact),
		claimOf("The chip plant never opened ahead of schedule this March", model.ClaimTypeObservedFact),
	)

	created := recompute(t, st, claims)
	require.Equal(t, 1, created)

	relations := relationsFor(t, st, claims)
	require.Len(t, relations, 1)
	require.Equal(t, model.RelationContradicts, relations[0].RelationType)
	require.GreaterOrEqual(t, relations[0].Score, 0.6,
		"pair overlaps above the support bar yet must classify as contradiction")
}

func TestRecomputeShortNegationCueDetected(t *testing.T) {
	st := newTestStore(t)
	// "no" is below the similarity tokenizer's length cutoff; the negation
	// check must still see it.
	claims := seedClaims(t, st,
		claimOf("Regulators found evidence of price fixing among carriers", model.ClaimTypeObservedFact),
		claimOf("Regulators found no evidence of price fixing among carriers", model.ClaimTypeObservedFact),
	)

	created := recompute(t, st, claims)
	require.Equal(t, 1, created)

	relations := relationsFor(t, st, claims)
	require.Len(t, relations, 1)
	require.Equal(t, model.RelationContradicts, relations[0].RelationType)
}

func TestRecomputeNoRelationBelowThresholds(t *testing.T) {
	st := newTestStore(t)
	claims := seedClaims(t, st,
		claimOf("Government announced chip production doubled in 2025", model.ClaimTypeObservedFact),
		claimOf("Datacenter water usage tripled across the region last summer", model.ClaimTypeObservedFact),
	)

	created := recompute(t, st, claims)
	require.Zero(t, created)
	require.Empty(t, relationsFor(t, st, claims))
}

func TestRecomputeIgnoresNonFactualClaims(t *testing.T) {
	st := newTestStore(t)
	claims := seedClaims(t, st,
		claimOf("Chip production doubled in 2025 according to regulators", model.ClaimTypeObservedFact),
		claimOf("Chip production doubled in 2025 according to most regulators", model.ClaimTypeOpinion),
	)

	created := recompute(t, st, claims)
	require.Zero(t, created, "a factual/opinion pair produces no relation")
}

func TestRecomputeReplacesPriorRelations(t *testing.T) {
	st := newTestStore(t)
	claims := seedClaims(t, st,
		claimOf("Government announced chip production doubled in 2025", model.ClaimTypeObservedFact),
		claimOf("The government announced chip production doubled in 2025", model.ClaimTypeObservedFact),
	)

	require.Equal(t, 1, recompute(t, st, claims))
	require.Equal(t, 1, recompute(t, st, claims), "recompute replaces, never accumulates")
	require.Len(t, relationsFor(t, st, claims), 1)
}
