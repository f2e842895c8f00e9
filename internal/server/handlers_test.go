package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tkarpov/claimscope/internal/cluster"
	"github.com/tkarpov/claimscope/internal/ingest"
	"github.com/tkarpov/claimscope/internal/model"
	"github.com/tkarpov/claimscope/internal/normalize"
	"github.com/tkarpov/claimscope/internal/store"
	"github.com/tkarpov/claimscope/internal/summary"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st := store.New(db)

	runner := ingest.NewRunner(map[string]ingest.Adapter{}, st, normalize.NewCleaner(25), nil)
	cfg := model.DefaultConfig()
	return NewServer(st, runner, cluster.NewEngine(st, nil), summary.NewEngine(st, nil), cfg, zap.NewNop())
}

func doJSON(t *testing.T, s *Server, handler http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, s.handleHealth, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleSources(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, s.handleSources, http.MethodGet, "/sources", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Sources []ingest.SourceConfig `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Sources, len(ingest.Registry))
	// Sorted by key.
	require.Equal(t, "github_trending_stars", payload.Sources[0].Key)
}

func TestHandleCreateArticle(t *testing.T) {
	s := newTestServer(t)

	item := map[string]any{
		"source_name": "Hacker News",
		"source_type": "api",
		"url":         "https://example.com/story",
		"title":       "Chip production doubled",
		"raw_text":    "chip production doubled this year",
	}
	rec := doJSON(t, s, s.handleCreateArticle, http.MethodPost, "/articles", item)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.ArticleUpsertResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ArticleID)
	require.False(t, created.Deduped)

	// Resubmitting is a dedupe hit, not an error.
	rec = doJSON(t, s, s.handleCreateArticle, http.MethodPost, "/articles", item)
	require.Equal(t, http.StatusOK, rec.Code)
	var deduped model.ArticleUpsertResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deduped))
	require.True(t, deduped.Deduped)
	require.Equal(t, created.ArticleID, deduped.ArticleID)
}

func TestHandleCreateArticleMissingFields(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, s.handleCreateArticle, http.MethodPost, "/articles", map[string]any{
		"source_name": "Hacker News",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_REQUEST")
}

func TestHandleExtractClaims(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, s.handleCreateArticle, http.MethodPost, "/articles", map[string]any{
		"source_name": "Hacker News", "source_type": "api",
		"url": "https://example.com/story", "title": "Chips",
		"raw_text": "chip production doubled",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.ArticleUpsertResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	output := `{"claims":[{"claim_text":"Chip production doubled in 2025","claim_type":"observed_fact","evidence":[{"evidence_text":"production doubled","evidence_type":"reported_fact"}]}]}`
	rec = doJSON(t, s, s.handleExtractClaims, http.MethodPost, "/claims/extract", map[string]any{
		"article_id":   created.ArticleID,
		"model_output": output,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var persisted model.ClaimPersistResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &persisted))
	require.Equal(t, 1, persisted.ClaimsCreated)
	require.Equal(t, 1, persisted.EvidenceCreated)
}

func TestHandleExtractClaimsValidationFailure(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, s.handleExtractClaims, http.MethodPost, "/claims/extract", map[string]any{
		"article_id":   "01SOMEID",
		"model_output": `{"claims":[{"claim_text":"x","claim_type":"rumor","evidence":[]}]}`,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestHandleExtractClaimsUnknownArticle(t *testing.T) {
	s := newTestServer(t)

	output := `{"claims":[]}`
	rec := doJSON(t, s, s.handleExtractClaims, http.MethodPost, "/claims/extract", map[string]any{
		"article_id":   "01MISSING",
		"model_output": output,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestHandleBuildClustersRejectsOutOfRangeParams(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []map[string]any{
		{"lookback_hours": 10000},
		{"lookback_hours": -1},
		{"similarity_threshold": 1.5},
		{"similarity_threshold": -0.1},
	} {
		rec := doJSON(t, s, s.handleBuildClusters, http.MethodPost, "/clusters/build", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "body %v must be rejected", body)
		require.Contains(t, rec.Body.String(), "INVALID_REQUEST")
	}

	// Omitted fields still fall back to config defaults.
	rec := doJSON(t, s, s.handleBuildClusters, http.MethodPost, "/clusters/build", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleIngestRunRejectsOutOfRangeLimit(t *testing.T) {
	s := newTestServer(t)

	for _, limit := range []int{500, -1} {
		rec := doJSON(t, s, s.handleIngestRun, http.MethodPost, "/ingest/run", map[string]any{
			"limit_per_source": limit,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "INVALID_REQUEST")
	}
}

func TestHandleLatestEventsValidatesLimit(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, s.handleLatestEvents, http.MethodGet, "/events/latest?limit=nope", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, s.handleLatestEvents, http.MethodGet, "/events/latest?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"events":[]}`, rec.Body.String())
}

func TestPipelineOverHTTP(t *testing.T) {
	s := newTestServer(t)

	articles := []map[string]any{
		{"source_name": "Hacker News", "source_type": "api", "url": "https://example.com/hn",
			"title": "Chips", "raw_text": "government announced chip production doubled"},
		{"source_name": "Google News API", "source_type": "api", "url": "https://example.com/gn",
			"title": "Chips again", "raw_text": "the government says chip production has doubled"},
	}
	outputs := []string{
		`{"claims":[{"claim_text":"Government announced chip production doubled in 2025","claim_type":"observed_fact","confidence":0.9,"evidence":[{"evidence_text":"production doubled","evidence_type":"reported_fact"}]}]}`,
		`{"claims":[{"claim_text":"The government announced chip production doubled in 2025","claim_type":"observed_fact","confidence":0.8,"evidence":[{"evidence_text":"has doubled","evidence_type":"reported_fact"}]}]}`,
	}

	for i, article := range articles {
		rec := doJSON(t, s, s.handleCreateArticle, http.MethodPost, "/articles", article)
		require.Equal(t, http.StatusCreated, rec.Code)
		var created model.ArticleUpsertResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

		rec = doJSON(t, s, s.handleExtractClaims, http.MethodPost, "/claims/extract", map[string]any{
			"article_id": created.ArticleID, "model_output": outputs[i],
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, s, s.handleBuildClusters, http.MethodPost, "/clusters/build", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
	var clustered model.ClusterBuildResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clustered))
	require.Equal(t, 1, clustered.ClustersCreated)

	rec = doJSON(t, s, s.handleBuildSummaries, http.MethodPost, "/summaries/build", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
	var summarized model.SummaryBuildResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summarized))
	require.Equal(t, 1, summarized.SummariesCreated)

	rec = doJSON(t, s, s.handleLatestEvents, http.MethodGet, "/events/latest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var feed struct {
		Events []model.EventCard `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
	require.Len(t, feed.Events, 1)
	require.Len(t, feed.Events[0].AgreedFacts, 2)
	require.Empty(t, feed.Events[0].DisputedClaims)
	require.Contains(t, feed.Events[0].ConfidenceRationale, fmt.Sprintf("supports=%d", 1))
}
