package commands

import (
	"fmt"

	"github.com/jmcarbo/clioscope/internal/borders"
	"github.com/jmcarbo/clioscope/internal/cache"
	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/internal/external/gdelt"
	"github.com/jmcarbo/clioscope/internal/external/imf"
	"github.com/jmcarbo/clioscope/internal/external/wikicpi"
	"github.com/jmcarbo/clioscope/internal/external/worldbank"
	"github.com/jmcarbo/clioscope/internal/indicators"
	"github.com/jmcarbo/clioscope/internal/pipeline"
	"github.com/jmcarbo/clioscope/internal/results"
	"github.com/jmcarbo/clioscope/internal/scoring"
	"github.com/jmcarbo/clioscope/pkg/config"
	"github.com/jmcarbo/clioscope/pkg/database"
	"github.com/jmcarbo/clioscope/pkg/httputil"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

// app bundles the long-lived components a command needs.
type app struct {
	cfg          *config.Config
	logger       *logger.Logger
	runner       *pipeline.Runner
	resultsStore *results.Store
	db           *database.DB // nil when no database is configured
}

// close releases held resources.
func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

// buildApp wires the full pipeline from config: HTTP clients with
// per-provider rate limits, the indicator cache, the resolver, the
// scoring engine, stores and the runner.
func buildApp(cfg *config.Config, log *logger.Logger) (*app, error) {
	wbClient := worldbank.NewClient(
		httputil.NewWithTimeout(log, cfg.Pipeline.FetchTimeout).WithRateLimit(cfg.WorldBank.RateLimit),
		log, cfg.WorldBank.BaseURL)
	imfClient := imf.NewClient(
		httputil.NewWithTimeout(log, cfg.Pipeline.FetchTimeout).WithRateLimit(cfg.IMF.RateLimit),
		log, cfg.IMF.BaseURL)
	gdeltClient := gdelt.NewClient(
		httputil.NewWithTimeout(log, cfg.Pipeline.FetchTimeout).WithRateLimit(cfg.GDELT.RateLimit),
		log, cfg.GDELT.BaseURL, indicators.SourceCodes())
	cpiClient := wikicpi.NewClient(
		httputil.NewWithTimeout(log, cfg.Pipeline.FetchTimeout),
		log, "", indicators.Names())

	cacheStore := cache.NewStore(cfg.CacheFile, log)
	if err := cacheStore.Load(); err != nil {
		return nil, fmt.Errorf("load indicator cache: %w", err)
	}

	resolver := indicators.NewResolver(
		[]contracts.Provider{wbClient, imfClient, gdeltClient},
		cacheStore, cfg.Pipeline.HistoryYears, log)

	scoringCfg := scoring.DefaultConfig()
	if cfg.ScoringConfig != "" {
		loaded, err := scoring.Load(cfg.ScoringConfig)
		if err != nil {
			return nil, fmt.Errorf("load scoring config: %w", err)
		}
		scoringCfg = loaded
	}
	if hash, err := scoringCfg.Hash(); err == nil {
		log.WithField("config_hash", hash).Info("Scoring parameters loaded")
	}

	engine := scoring.NewEngine(scoringCfg, indicators.CatalogByName(), log)
	resultsStore := results.NewStore(cfg.ResultsFile, log)

	var db *database.DB
	var repo contracts.RunRepository
	if cfg.Database.URL != "" {
		var err error
		db, err = database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		repo = results.NewRepository(db, log)
	}

	runner := pipeline.NewRunner(
		resolver, engine, cacheStore, borders.DefaultGraph(),
		gdeltClient, cpiClient, cpiClient,
		resultsStore, repo,
		pipeline.Config{
			Workers:       cfg.Pipeline.Workers,
			EntityTimeout: cfg.Pipeline.EntityTimeout,
			Entities:      cfg.Countries,
		},
		log)

	return &app{
		cfg:          cfg,
		logger:       log,
		runner:       runner,
		resultsStore: resultsStore,
		db:           db,
	}, nil
}
