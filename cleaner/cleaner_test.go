package cleaner

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedClock = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func newTestCleaner(t *testing.T) *Cleaner {
	t.Helper()
	c, err := New(WithClock(fixedClock))
	require.NoError(t, err)
	return c
}

func basicOnly() *RawDataset {
	return &RawDataset{
		Ticker: "ACME",
		DataSources: DataSources{
			BasicInfo: &RawBasicInfo{
				CompanyName:  "Acme",
				Sector:       "technology",
				Industry:     "Software",
				CurrentPrice: 42,
				MarketCap:    50e9,
				PERatio:      20,
			},
		},
	}
}

func fullDataset() *RawDataset {
	ds := basicOnly()
	ds.DataSources.FinancialData = &RawFinancialData{CurrentPrice: 42, MonthHigh: 45, MonthLow: 35, Volatility: 12.3}
	ds.DataSources.NewsData = &RawNewsData{Articles: articles(6, 0.7)}
	ds.DataSources.PeerComparison = peerComparison(0.85)
	return ds
}

func TestProcess_BasicOnly(t *testing.T) {
	out := newTestCleaner(t).Process(basicOnly())

	scores := out.InvestmentScores
	assert.Equal(t, 85.0, scores.FinancialHealthScore)
	assert.Equal(t, 50.0, scores.MarketSentimentScore)
	assert.Equal(t, 50.0, scores.CompetitivePositionScore)
	assert.Equal(t, 50.0, scores.MomentumScore)
	assert.Equal(t, 60.5, scores.OverallScore)
	assert.Equal(t, "C+", scores.OverallGrade)
	assert.Equal(t, "A", scores.FinancialGrade)
	assert.Equal(t, Hold, scores.Recommendation)
	assert.Equal(t, ConfidenceLow, scores.ConfidenceLevel)

	assert.Equal(t, DataQuality{BasicInfoQuality: true}, out.DataQuality)
	assert.Equal(t, []string{
		"INFO: Basic info cleaned: Acme (Technology)",
		"No financial data available for ACME",
		"No news data available for ACME",
		"No peer data available for ACME",
	}, out.CleaningLog)

	features := out.InvestmentAnalysis
	assert.Equal(t, LargeCap, features.CompanySize)
	assert.Equal(t, 70.0, features.ValuationAttractiveness)
	assert.Equal(t, 50.0, features.VolatilityRisk)
	assert.Equal(t, []string{"Large, established company"}, features.KeyStrengths)
	assert.Equal(t, []string{"Limited recent news coverage"}, features.KeyRisks)
	assert.Equal(t, []string{
		"Acme operates in Technology sector",
		"Current price: $42.00",
		"Large Cap company",
	}, features.InvestmentHighlights)

	ctx := out.LLMContext
	assert.Equal(t, "Acme (ACME)", ctx.ExecutiveSummary.Company)
	assert.Equal(t, "Technology - Software", ctx.ExecutiveSummary.Sector)
	assert.Equal(t, "$50.0B (large_cap)", ctx.ExecutiveSummary.MarketCap)
	assert.Equal(t, "$42.00", ctx.ExecutiveSummary.CurrentPrice)
	assert.Equal(t, "0.0%", ctx.ExecutiveSummary.KeyMetrics.Volatility)
	assert.Equal(t, "P/E 20.0 (fair_value)", ctx.FinancialHighlights.Valuation)
	assert.Equal(t, "Price at 50% of 30-day range", ctx.FinancialHighlights.Performance)
	assert.Equal(t, "Avg relevance 0.00", ctx.MarketContext.NewsQuality)
	assert.Equal(t, "50/100", ctx.CompetitivePosition.CompetitiveScore)
	assert.Equal(t, 60.5, ctx.InvestmentThesis.OverallScore)

	assert.Equal(t, "2024-05-01T12:00:00Z", out.ProcessingTimestamp)
	assert.True(t, out.ReadyForLLM)
}

func TestProcess_ProfileOnlyScenario(t *testing.T) {
	raw := &RawDataset{
		Ticker: "ACME",
		DataSources: DataSources{
			BasicInfo: &RawBasicInfo{
				CompanyName:  "Acme Corp",
				Sector:       "Technology",
				PERatio:      18,
				MarketCap:    50e9,
				CurrentPrice: 120,
			},
		},
	}
	out := newTestCleaner(t).Process(raw)

	assert.Equal(t, DataQuality{BasicInfoQuality: true}, out.DataQuality)
	assert.Equal(t, ConfidenceLow, out.InvestmentScores.ConfidenceLevel)
	assert.Equal(t, LargeCap, out.CompanyOverview.MarketCapCategory)
	assert.Equal(t, PEFairValue, out.CompanyOverview.PECategory)
	assert.Equal(t, "Acme Corp", out.CompanyName)

	// 85*0.30 + 50*0.25 + 50*0.25 + 50*0.20
	scores := out.InvestmentScores
	assert.Equal(t, 85.0, scores.FinancialHealthScore)
	assert.Equal(t, 60.5, scores.OverallScore)
	assert.Equal(t, Hold, scores.Recommendation)
	assert.True(t, out.ReadyForLLM)
}

func TestProcess_AllSourcesAbsent(t *testing.T) {
	out := newTestCleaner(t).Process(&RawDataset{Ticker: "ZZZ"})

	assert.Equal(t, "ZZZ", out.Ticker)
	assert.Equal(t, "Unknown", out.CompanyName)
	assert.Equal(t, "UNKNOWN", out.CompanyOverview.Ticker)
	assert.Equal(t, 53.0, out.InvestmentScores.OverallScore)
	assert.Equal(t, WeakHold, out.InvestmentScores.Recommendation)
	assert.Equal(t, ConfidenceLow, out.InvestmentScores.ConfidenceLevel)
	assert.Equal(t, DataQuality{}, out.DataQuality)
	assert.Len(t, out.CleaningLog, 4)
	assert.Equal(t, []string{"Unknown operates in Unknown sector"}, out.InvestmentAnalysis.InvestmentHighlights)
	assert.True(t, out.ReadyForLLM)
}

func TestProcess_NilDataset(t *testing.T) {
	out := newTestCleaner(t).Process(nil)
	assert.Equal(t, "UNKNOWN", out.Ticker)
	assert.Equal(t, "No basic info available for UNKNOWN", out.CleaningLog[0])
}

func TestProcess_FullDataset(t *testing.T) {
	out := newTestCleaner(t).Process(fullDataset())

	assert.Equal(t, ConfidenceHigh, out.InvestmentScores.ConfidenceLevel)
	assert.Equal(t, 4, out.DataQuality.Count())
	assert.Equal(t, VolatilityLow, out.FinancialMetrics.VolatilityCategory)
	assert.Contains(t, out.InvestmentAnalysis.KeyStrengths, "Low volatility profile")
	assert.Equal(t, []string{"Attractive valuation vs peers"}, out.LLMContext.CompetitivePosition.Advantages)
	assert.Equal(t, []string{"Reuters"}, out.LLMContext.MarketContext.TopSources)
	assert.Len(t, out.CleaningLog, 4)
	for _, entry := range out.CleaningLog {
		assert.Contains(t, entry, "INFO:")
	}
}

func TestProcess_Idempotent(t *testing.T) {
	c := newTestCleaner(t)
	first := c.Process(fullDataset())
	second := c.Process(fullDataset())
	assert.Equal(t, first, second)
}

func TestProcess_ConcurrentCallsKeepSeparateLogs(t *testing.T) {
	c := newTestCleaner(t)
	var wg sync.WaitGroup
	results := make([]*CleanDataset, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Process(&RawDataset{Ticker: fmt.Sprintf("T%d", i)})
		}(i)
	}
	wg.Wait()

	for i, out := range results {
		require.Len(t, out.CleaningLog, 4)
		assert.Equal(t, fmt.Sprintf("No basic info available for T%d", i), out.CleaningLog[0])
	}
}

func TestProcess_JSONSerializable(t *testing.T) {
	out := newTestCleaner(t).Process(&RawDataset{
		Ticker: "BAD",
		DataSources: DataSources{
			BasicInfo:     &RawBasicInfo{CompanyName: 17, MarketCap: "NaN", PERatio: []string{"x"}},
			FinancialData: &RawFinancialData{CurrentPrice: "inf", Volatility: "n/a"},
		},
	})

	b, err := json.Marshal(out)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	for _, key := range []string{
		"ticker", "company_name", "processing_timestamp", "company_overview",
		"financial_metrics", "market_sentiment", "competitive_position",
		"investment_analysis", "investment_scores", "llm_context",
		"data_quality", "cleaning_log", "ready_for_llm",
	} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, "17", out.CompanyName)
}

func TestNew_RejectsInvalidWeights(t *testing.T) {
	_, err := New(WithWeights(Weights{FinancialHealth: 0.5, MarketSentiment: 0.5, PeerPerformance: 0.5}))
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = New(WithWeights(Weights{FinancialHealth: 1.2, MarketSentiment: -0.2}))
	assert.ErrorIs(t, err, ErrInvalidWeights)

	c, err := New(WithWeights(Weights{FinancialHealth: 0.25, MarketSentiment: 0.25, PeerPerformance: 0.25, MarketPosition: 0.25}))
	require.NoError(t, err)
	assert.Equal(t, 0.25, c.Weights().MarketPosition)
}
