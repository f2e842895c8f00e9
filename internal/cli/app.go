package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tkarpov/claimscope/internal/cache"
	"github.com/tkarpov/claimscope/internal/cluster"
	"github.com/tkarpov/claimscope/internal/ingest"
	"github.com/tkarpov/claimscope/internal/model"
	"github.com/tkarpov/claimscope/internal/normalize"
	"github.com/tkarpov/claimscope/internal/store"
	"github.com/tkarpov/claimscope/internal/summary"
	"github.com/tkarpov/claimscope/internal/worker"
)

// app bundles the wired components each subcommand needs.
type app struct {
	cfg       *model.Config
	logger    *zap.Logger
	store     *store.Store
	runner    *ingest.Runner
	clusters  *cluster.Engine
	summaries *summary.Engine
}

// newApp opens the database and wires the full pipeline from config.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := buildLogger()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := store.Init(cfg.Database.Dir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	st := store.New(db)

	cleaner := normalize.NewCleaner(cfg.Ingest.KeywordLimit)
	limiter := worker.NewLimiter(cfg.Ingest.RequestsPerSecond, cfg.Ingest.Burst)

	var fetchCache cache.Cache
	if cfg.Cache.Enabled {
		fetchCache = cache.NewMemory(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}
	fetcher := ingest.NewFetcher(cfg.HTTP, limiter, fetchCache, cfg.Cache.TTL)
	robots := ingest.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	pool := worker.NewPool(4)

	adapters := map[string]ingest.Adapter{
		"hacker_news":           ingest.NewHackerNewsAdapter(fetcher, ""),
		"github_trending_stars": ingest.NewGitHubTrendingAdapter(fetcher, ""),
		"google_news_api":       ingest.NewGoogleNewsAdapter(fetcher, ""),
		"webpage":               ingest.NewWebpageAdapter(fetcher, robots, pool, cfg.Ingest.WebpageURLs, logger),
	}
	runner := ingest.NewRunner(adapters, st, cleaner, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		runner:    runner,
		clusters:  cluster.NewEngine(st, logger),
		summaries: summary.NewEngine(st, logger),
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	_ = a.logger.Sync()
	_ = a.store.DB().Close()
}

func buildLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
