package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tkarpov/claimscope/internal/errors"
	"github.com/tkarpov/claimscope/internal/extract"
	"github.com/tkarpov/claimscope/internal/model"
	"github.com/tkarpov/claimscope/internal/normalize"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func seedArticle(t *testing.T, st *Store, sourceName, url, text string) string {
	t.Helper()
	cleaner := normalize.NewCleaner(25)
	cleaned := cleaner.CleanForKeywords(text)
	result, err := st.CreateArticleFromRaw(context.Background(), model.RawItem{
		SourceName: sourceName,
		SourceType: "api",
		URL:        url,
		Title:      "Test article",
		RawText:    text,
	}, cleaned.CleanedText, cleaned.ContentHash)
	require.NoError(t, err)
	require.False(t, result.Deduped)
	return result.ArticleID
}

func factualClaim(text string, confidence float64) extract.ExtractedClaim {
	return extract.ExtractedClaim{
		ClaimText:  text,
		ClaimType:  model.ClaimTypeObservedFact,
		Confidence: &confidence,
		Evidence: []extract.ExtractedEvidence{
			{EvidenceText: "…" + text + "…", EvidenceType: model.EvidenceTypeReportedFact},
		},
	}
}

func TestInitIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	db, err := Init(dir)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Init(dir)
	require.NoError(t, err)
	defer db.Close()

	version, err := getUserVersion(db)
	require.NoError(t, err)
	require.Equal(t, CurrentSchemaVersion, version)
}

func TestCreateArticleFromRawDedupesByFingerprint(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	cleaner := normalize.NewCleaner(25)

	text := "Government announces chip production doubled this year"
	cleaned := cleaner.CleanForKeywords(text)

	first, err := st.CreateArticleFromRaw(ctx, model.RawItem{
		SourceName: "Hacker News", SourceType: "api",
		URL: "https://example.com/a", Title: "Chip production doubled",
	}, cleaned.CleanedText, cleaned.ContentHash)
	require.NoError(t, err)
	require.False(t, first.Deduped)

	// Different URL, equivalent content: dedupe to the first row.
	reworded := cleaner.CleanForKeywords("Chip production DOUBLED, government announces this year")
	require.Equal(t, cleaned.ContentHash, reworded.ContentHash)

	second, err := st.CreateArticleFromRaw(ctx, model.RawItem{
		SourceName: "Google News API", SourceType: "api",
		URL: "https://example.com/b", Title: "Production of chips doubled",
	}, reworded.CleanedText, reworded.ContentHash)
	require.NoError(t, err)
	require.True(t, second.Deduped)
	require.Equal(t, first.ArticleID, second.ArticleID)
}

func TestCreateArticleFromRawDedupesByURL(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	cleaner := normalize.NewCleaner(25)

	a := cleaner.CleanForKeywords("chip production doubled")
	first, err := st.CreateArticleFromRaw(ctx, model.RawItem{
		SourceName: "Hacker News", SourceType: "api",
		URL: "https://example.com/story", Title: "v1",
	}, a.CleanedText, a.ContentHash)
	require.NoError(t, err)

	// Same URL, updated content: the URL index wins and reports a dedupe.
	b := cleaner.CleanForKeywords("chip production doubled and then some more happened")
	require.NotEqual(t, a.ContentHash, b.ContentHash)

	second, err := st.CreateArticleFromRaw(ctx, model.RawItem{
		SourceName: "Hacker News", SourceType: "api",
		URL: "https://example.com/story", Title: "v2",
	}, b.CleanedText, b.ContentHash)
	require.NoError(t, err)
	require.True(t, second.Deduped)
	require.Equal(t, first.ArticleID, second.ArticleID)
}

func TestGetOrCreateSourceReusesRow(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a := seedArticle(t, st, "Hacker News", "https://example.com/1", "chip production doubled")
	b := seedArticle(t, st, "Hacker News", "https://example.com/2", "datacenter emissions tripled")

	artA, err := st.GetArticleByID(ctx, a)
	require.NoError(t, err)
	artB, err := st.GetArticleByID(ctx, b)
	require.NoError(t, err)
	require.Equal(t, artA.SourceID, artB.SourceID)

	src, err := st.GetSourceByID(ctx, artA.SourceID)
	require.NoError(t, err)
	require.Equal(t, "Hacker News", src.Name)
}

func TestPersistExtractionReplacesClaimSet(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	articleID := seedArticle(t, st, "Hacker News", "https://example.com/1", "chip production doubled")

	first, err := st.PersistExtraction(ctx, articleID, &extract.ExtractionResult{
		Claims: []extract.ExtractedClaim{
			factualClaim("Chip production doubled in 2025", 0.9),
			factualClaim("The plant opened in March", 0.8),
		},
	}, "gpt-4o-mini", "v1")
	require.NoError(t, err)
	require.Equal(t, 2, first.ClaimsCreated)
	require.Equal(t, 2, first.EvidenceCreated)

	oldClaims, err := ClaimsInWindow(ctx, st.DB(), 0)
	require.NoError(t, err)
	require.Len(t, oldClaims, 2)

	// Relation between the old claims must not survive re-extraction.
	err = st.InTx(ctx, func(q Querier) error {
		return InsertRelation(ctx, q, oldClaims[0].ID, oldClaims[1].ID, model.RelationSupports, 0.8)
	})
	require.NoError(t, err)

	second, err := st.PersistExtraction(ctx, articleID, &extract.ExtractionResult{
		Claims: []extract.ExtractedClaim{
			factualClaim("Chip production doubled in 2025", 0.95),
		},
	}, "gpt-4o-mini", "v2")
	require.NoError(t, err)
	require.Equal(t, 1, second.ClaimsCreated)

	newClaims, err := ClaimsInWindow(ctx, st.DB(), 0)
	require.NoError(t, err)
	require.Len(t, newClaims, 1)
	require.NotEqual(t, oldClaims[0].ID, newClaims[0].ID)
	require.NotEqual(t, oldClaims[1].ID, newClaims[0].ID)
	require.Equal(t, "v2", newClaims[0].ExtractionVersion)

	for _, old := range oldClaims {
		count, err := CountRelationsForClaim(ctx, st.DB(), old.ID)
		require.NoError(t, err)
		require.Zero(t, count, "stale relations must be deleted")

		ev, err := FirstEvidenceForClaim(ctx, st.DB(), old.ID)
		require.NoError(t, err)
		require.Nil(t, ev, "stale evidence must be deleted")
	}

	ev, err := FirstEvidenceForClaim(ctx, st.DB(), newClaims[0].ID)
	require.NoError(t, err)
	require.NotNil(t, ev)
}

func TestPersistExtractionUnknownArticle(t *testing.T) {
	st := newTestStore(t)

	_, err := st.PersistExtraction(context.Background(), "01MISSING", &extract.ExtractionResult{
		Claims: []extract.ExtractedClaim{},
	}, "", "")
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestInTxRollsBackOnError(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.InTx(ctx, func(q Querier) error {
		_, err := InsertCluster(ctx, q, "doomed cluster")
		require.NoError(t, err)
		return errors.NewInternal(sql.ErrConnDone)
	})
	require.Error(t, err)

	clusters, err := ActiveClusters(ctx, st.DB())
	require.NoError(t, err)
	require.Empty(t, clusters)
}
