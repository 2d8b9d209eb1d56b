// Package cleaner turns raw, partially-missing market data into a normalized,
// scored and LLM-ready dataset. Every function in the package is pure; the
// pipeline has no failure path once constructed.
package cleaner

import (
	"strings"
	"time"
)

// Cleaner runs the full pipeline. It holds no per-call state and is safe for concurrent use.
type Cleaner struct {
	scorer *Scorer
	now    func() time.Time
}

type Option func(*config)

type config struct {
	weights Weights
	now     func() time.Time
}

// WithWeights overrides the composite score weights.
func WithWeights(w Weights) Option {
	return func(c *config) { c.weights = w }
}

// WithClock sets the processing timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// New builds a Cleaner. It fails only when the configured weights are invalid.
func New(opts ...Option) (*Cleaner, error) {
	cfg := config{weights: DefaultWeights(), now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	scorer, err := NewScorer(cfg.weights)
	if err != nil {
		return nil, err
	}
	return &Cleaner{scorer: scorer, now: cfg.now}, nil
}

// Process cleans every source, derives features and scores and assembles the dataset.
func (c *Cleaner) Process(raw *RawDataset) *CleanDataset {
	if raw == nil {
		raw = &RawDataset{}
	}
	ticker := strings.TrimSpace(raw.Ticker)
	if ticker == "" {
		ticker = "UNKNOWN"
	}

	src := raw.DataSources
	var log []string

	basic, entries := CleanBasicInfo(src.BasicInfo, ticker)
	log = append(log, entries...)
	fin, entries := CleanFinancialData(src.FinancialData, ticker)
	log = append(log, entries...)
	news, entries := CleanNewsData(src.NewsData, ticker)
	log = append(log, entries...)
	peers, entries := CleanPeerData(src.PeerComparison, ticker)
	log = append(log, entries...)

	features := DeriveFeatures(basic, fin, news, peers)
	scores := c.scorer.Score(basic, fin, news, peers)

	return &CleanDataset{
		Ticker:              ticker,
		CompanyName:         basic.CompanyName,
		ProcessingTimestamp: c.now().Format(time.RFC3339),
		CompanyOverview:     basic,
		FinancialMetrics:    fin,
		MarketSentiment:     news,
		CompetitivePosition: peers,
		InvestmentAnalysis:  features,
		InvestmentScores:    scores,
		LLMContext:          BuildLLMContext(basic, fin, news, peers, features, scores),
		DataQuality:         AssessQuality(basic, fin, news, peers),
		CleaningLog:         log,
		ReadyForLLM:         true,
	}
}

func (c *Cleaner) Weights() Weights { return c.scorer.Weights() }
