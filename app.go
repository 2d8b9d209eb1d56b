package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"investment-research/auth"
	"investment-research/cleaner"
	"investment-research/collector"
	"investment-research/config"
	"investment-research/database"
	"investment-research/eodhd"
	"investment-research/llm"
	"investment-research/logging"
	"investment-research/report"
	"investment-research/services"
)

// app holds the components built from configuration.
type app struct {
	cfg       *config.Config
	logger    arbor.ILogger
	source    collector.Source
	cleaner   *cleaner.Cleaner
	provider  llm.Provider
	agent     *llm.Agent
	reports   *report.Generator
	store     *database.Store
	research  *services.Research
	tokens    *auth.Manager
	reportFmt report.Format
}

func loadApp(ctx context.Context, cfgFile string, withStore bool) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger := logging.Init(cfg.Logging)

	a := &app{cfg: cfg, logger: logger}

	if cfg.Data.EODHDAPIKey == "" {
		logger.Warn().Msg("No EODHD API key configured; fundamentals, prices and news will be unavailable")
	}
	client := eodhd.NewClient(cfg.Data.EODHDAPIKey,
		eodhd.WithBaseURL(cfg.Data.EODHDBaseURL),
		eodhd.WithHTTPClient(&http.Client{Timeout: cfg.Data.Timeout}),
		eodhd.WithRateLimit(cfg.Data.RateLimit),
		eodhd.WithLogger(logger),
	)
	coll := collector.New(client, collector.NewYahooQuotes(cfg.Data.QuoteTimeout), logger, collector.Options{
		Exchange:  cfg.Data.Exchange,
		NewsDays:  cfg.Data.NewsDays,
		NewsLimit: cfg.Data.NewsLimit,
		PeerLimit: cfg.Data.PeerLimit,
	})
	a.source = collector.NewCachedCollector(coll, cfg.Data.CacheTTL, cfg.Data.CacheSize)

	if a.cleaner, err = cleaner.New(cleaner.WithWeights(cfg.Scoring.Weights)); err != nil {
		return nil, err
	}

	if a.provider, err = llm.NewProvider(ctx, cfg.LLM); err != nil {
		return nil, err
	}
	logger.Info().Str("provider", a.provider.Name()).Str("model", a.provider.Model()).Msg("Narrative backend ready")
	a.agent = llm.NewAgent(a.provider, logger)

	a.reports = report.NewGenerator(cfg.Reports.Dir, logger)
	if a.reportFmt, err = report.ParseFormat(cfg.Reports.DefaultFormat); err != nil {
		return nil, err
	}

	if withStore {
		if a.store, err = database.Open(cfg.Database.Path, logger); err != nil {
			return nil, err
		}
		a.research = services.NewResearch(a.source, a.cleaner, a.agent, a.reports, a.store, cfg.Reports.Retention, logger)
		a.tokens = auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	}
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close database")
		}
	}
}

// cleanTicker collects and cleans without touching the database.
func (a *app) cleanTicker(ctx context.Context, ticker string) (*cleaner.CleanDataset, error) {
	t, err := services.NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	raw, err := a.source.Collect(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", t, err)
	}
	return a.cleaner.Process(raw), nil
}
