// Package server provides the HTTP API over the claim pipeline.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tkarpov/claimscope/internal/cluster"
	"github.com/tkarpov/claimscope/internal/ingest"
	"github.com/tkarpov/claimscope/internal/model"
	"github.com/tkarpov/claimscope/internal/store"
	"github.com/tkarpov/claimscope/internal/summary"
)

// Server is the HTTP server for the claimscope API.
type Server struct {
	store     *store.Store
	runner    *ingest.Runner
	clusters  *cluster.Engine
	summaries *summary.Engine
	config    *model.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	st *store.Store,
	runner *ingest.Runner,
	clusters *cluster.Engine,
	summaries *summary.Engine,
	cfg *model.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		store:     st,
		runner:    runner,
		clusters:  clusters,
		summaries: summaries,
		config:    cfg,
		logger:    logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/sources", s.handleSources)
	r.Post("/articles", s.handleCreateArticle)
	r.Post("/ingest/run", s.handleIngestRun)
	r.Post("/claims/extract", s.handleExtractClaims)
	r.Post("/clusters/build", s.handleBuildClusters)
	r.Post("/summaries/build", s.handleBuildSummaries)
	r.Get("/events/latest", s.handleLatestEvents)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
