package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"go.uber.org/zap"

	claimerr "github.com/tkarpov/claimscope/internal/errors"
	"github.com/tkarpov/claimscope/internal/extract"
	"github.com/tkarpov/claimscope/internal/ingest"
	"github.com/tkarpov/claimscope/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources := make([]ingest.SourceConfig, 0, len(ingest.Registry))
	for _, src := range ingest.Registry {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Key < sources[j].Key })
	s.respondJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var item model.RawItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		s.respondError(w, claimerr.NewInvalidRequest("invalid request body"))
		return
	}
	if item.SourceName == "" || item.URL == "" || item.Title == "" {
		s.respondError(w, claimerr.NewInvalidRequest("source_name, url and title are required"))
		return
	}
	if item.SourceType == "" {
		item.SourceType = "api"
	}

	result, err := s.runner.IngestItem(r.Context(), item)
	if err != nil {
		s.logger.Error("article create failed", zap.String("url", item.URL), zap.Error(err))
		s.respondError(w, err)
		return
	}
	status := http.StatusCreated
	if result.Deduped {
		status = http.StatusOK
	}
	s.respondJSON(w, status, result)
}

type ingestRunRequest struct {
	Sources        []string `json:"sources"`
	LimitPerSource int      `json:"limit_per_source"`
}

func (s *Server) handleIngestRun(w http.ResponseWriter, r *http.Request) {
	var req ingestRunRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, claimerr.NewInvalidRequest("invalid request body"))
			return
		}
	}
	if req.LimitPerSource < 0 || req.LimitPerSource > model.MaxLimitPerSource {
		s.respondError(w, claimerr.NewInvalidRequest(fmt.Sprintf("limit_per_source must be between 1 and %d", model.MaxLimitPerSource)))
		return
	}
	if req.LimitPerSource == 0 {
		req.LimitPerSource = s.config.Ingest.LimitPerSource
	}

	result, err := s.runner.Run(r.Context(), req.Sources, req.LimitPerSource)
	if err != nil {
		s.logger.Error("ingestion run failed", zap.Error(err))
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

type extractRequest struct {
	ArticleID         string `json:"article_id"`
	ModelOutput       string `json:"model_output"`
	ExtractionModel   string `json:"extraction_model"`
	ExtractionVersion string `json:"extraction_version"`
}

func (s *Server) handleExtractClaims(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, claimerr.NewInvalidRequest("invalid request body"))
		return
	}
	if req.ArticleID == "" || req.ModelOutput == "" {
		s.respondError(w, claimerr.NewInvalidRequest("article_id and model_output are required"))
		return
	}

	parsed, err := extract.ParseExtraction(req.ModelOutput)
	if err != nil {
		s.respondError(w, err)
		return
	}

	result, err := s.store.PersistExtraction(r.Context(), req.ArticleID, parsed, req.ExtractionModel, req.ExtractionVersion)
	if err != nil {
		s.logger.Error("extraction persist failed", zap.String("article_id", req.ArticleID), zap.Error(err))
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

type clusterBuildRequest struct {
	LookbackHours       int     `json:"lookback_hours"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

func (s *Server) handleBuildClusters(w http.ResponseWriter, r *http.Request) {
	var req clusterBuildRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, claimerr.NewInvalidRequest("invalid request body"))
			return
		}
	}
	if req.LookbackHours < 0 || req.LookbackHours > model.MaxLookbackHours {
		s.respondError(w, claimerr.NewInvalidRequest(fmt.Sprintf("lookback_hours must be between 1 and %d", model.MaxLookbackHours)))
		return
	}
	if req.SimilarityThreshold < 0 || req.SimilarityThreshold > 1 {
		s.respondError(w, claimerr.NewInvalidRequest("similarity_threshold must be between 0 and 1"))
		return
	}
	if req.LookbackHours == 0 {
		req.LookbackHours = s.config.Cluster.LookbackHours
	}
	if req.SimilarityThreshold == 0 {
		req.SimilarityThreshold = s.config.Cluster.SimilarityThreshold
	}

	result, err := s.clusters.BuildClusters(r.Context(), req.LookbackHours, req.SimilarityThreshold)
	if err != nil {
		s.logger.Error("cluster build failed", zap.Error(err))
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

type summaryBuildRequest struct {
	ClusterIDs []string `json:"cluster_ids"`
}

func (s *Server) handleBuildSummaries(w http.ResponseWriter, r *http.Request) {
	var req summaryBuildRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, claimerr.NewInvalidRequest("invalid request body"))
			return
		}
	}

	result, err := s.summaries.BuildSummaries(r.Context(), req.ClusterIDs)
	if err != nil {
		s.logger.Error("summary build failed", zap.Error(err))
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleLatestEvents(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.respondError(w, claimerr.NewInvalidRequest("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	events, err := s.summaries.LatestEvents(r.Context(), limit)
	if err != nil {
		s.logger.Error("latest events failed", zap.Error(err))
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"events": events})
}
