package cleaner

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanBasicInfo(t *testing.T) {
	raw := &RawBasicInfo{
		CompanyName:         "  Apple Inc. ",
		Sector:              "technology",
		Industry:            "Consumer Electronics",
		Country:             "United States",
		CurrentPrice:        "189.5",
		MarketCap:           2.9e12,
		PERatio:             29.3,
		EmployeeCount:       "161000",
		LongBusinessSummary: strings.Repeat("x", 400),
	}

	info, log := CleanBasicInfo(raw, "AAPL")

	assert.Equal(t, "AAPL", info.Ticker)
	assert.Equal(t, "Apple Inc.", info.CompanyName)
	assert.Equal(t, "Technology", info.Sector)
	assert.Equal(t, 189.5, info.CurrentPrice)
	assert.Equal(t, 2900.0, info.MarketCapBillions)
	assert.Equal(t, MegaCap, info.MarketCapCategory)
	assert.Equal(t, PEOvervalued, info.PECategory)
	assert.Equal(t, 161000, info.EmployeeCount)
	assert.Len(t, []rune(info.BusinessDescription), 303)
	assert.Equal(t, "N/A", info.Website)
	assert.Equal(t, []string{"INFO: Basic info cleaned: Apple Inc. (Technology)"}, log)
}

func TestCleanBasicInfo_Absent(t *testing.T) {
	for name, raw := range map[string]*RawBasicInfo{"nil": nil, "all fields nil": {}} {
		t.Run(name, func(t *testing.T) {
			info, log := CleanBasicInfo(raw, "MSFT")
			assert.Equal(t, EmptyBasicInfo(), info)
			assert.Equal(t, "UNKNOWN", info.Ticker)
			assert.Equal(t, []string{"No basic info available for MSFT"}, log)
		})
	}
}

func TestCleanBasicInfo_ShortNameFallback(t *testing.T) {
	info, _ := CleanBasicInfo(&RawBasicInfo{CompanyName: "N/A", ShortName: "Apple"}, "AAPL")
	assert.Equal(t, "Apple", info.CompanyName)
}

func TestCategorizeMarketCap(t *testing.T) {
	tests := []struct {
		cap  float64
		want MarketCapCategory
	}{
		{0, MarketCapUnknown},
		{200_000_000_000, MegaCap},
		{199_999_999_999, LargeCap},
		{10_000_000_000, LargeCap},
		{9_999_999_999, MidCap},
		{2_000_000_000, MidCap},
		{300_000_000, SmallCap},
		{299_999_999, MicroCap},
		{-5, MicroCap},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.0f", tt.cap), func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeMarketCap(tt.cap))
		})
	}
}

func TestCategorizePE(t *testing.T) {
	tests := []struct {
		pe   float64
		want PECategory
	}{
		{0, PENegativeOrNone},
		{-4, PENegativeOrNone},
		{14.99, PEUndervalued},
		{15, PEFairValue},
		{24.99, PEFairValue},
		{25, PEOvervalued},
		{39.99, PEOvervalued},
		{40, PEHighlyOvervalued},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.pe), func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizePE(tt.pe))
		})
	}
}

func TestCleanFinancialData(t *testing.T) {
	fin, log := CleanFinancialData(&RawFinancialData{
		CurrentPrice: 110,
		MonthHigh:    120,
		MonthLow:     100,
		Volatility:   18.456,
	}, "AAPL")

	assert.Equal(t, 20.0, fin.PriceRange)
	assert.Equal(t, 0.5, fin.PricePositionInRange)
	assert.Equal(t, 8.3, fin.DistanceFromHigh)
	assert.Equal(t, 10.0, fin.DistanceFromLow)
	assert.Equal(t, 18.46, fin.VolatilityPercent)
	assert.Equal(t, VolatilityMedium, fin.VolatilityCategory)
	assert.Equal(t, RiskConservative, fin.RiskLevel)
	assert.Equal(t, 50.0, fin.MomentumScore)
	assert.Equal(t, 70.0, fin.StabilityScore)
	assert.Equal(t, StrengthNeutral, fin.PriceStrength)
	assert.Equal(t, []string{"INFO: Financial data cleaned: Price $110.00, Vol 18.5%"}, log)
}

func TestCleanFinancialData_DegenerateRange(t *testing.T) {
	tests := []struct {
		name string
		raw  *RawFinancialData
	}{
		{"high equals low", &RawFinancialData{CurrentPrice: 50, MonthHigh: 50, MonthLow: 50}},
		{"missing low", &RawFinancialData{CurrentPrice: 50, MonthHigh: 60}},
		{"missing current", &RawFinancialData{MonthHigh: 60, MonthLow: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fin, _ := CleanFinancialData(tt.raw, "X")
			assert.Equal(t, 0.5, fin.PricePositionInRange)
			assert.Equal(t, 50.0, fin.MomentumScore)
			assert.Equal(t, StrengthNeutral, fin.PriceStrength)
			assert.Equal(t, VolatilityUnknown, fin.VolatilityCategory)
			assert.Equal(t, RiskUnknown, fin.RiskLevel)
			assert.Equal(t, 50.0, fin.StabilityScore)
		})
	}
}

func TestCleanFinancialData_PositionClamped(t *testing.T) {
	fin, _ := CleanFinancialData(&RawFinancialData{CurrentPrice: 130, MonthHigh: 120, MonthLow: 100}, "X")
	assert.Equal(t, 1.0, fin.PricePositionInRange)
	assert.Equal(t, StrengthStrong, fin.PriceStrength)
}

func TestVolatilityBands(t *testing.T) {
	tests := []struct {
		vol       float64
		category  VolatilityCategory
		risk      RiskLevel
		stability float64
	}{
		{10, VolatilityLow, RiskConservative, 90},
		{15, VolatilityMedium, RiskConservative, 70},
		{20, VolatilityMedium, RiskModerate, 70},
		{25, VolatilityMedium, RiskModerate, 50},
		{30, VolatilityHigh, RiskModerate, 50},
		{35, VolatilityHigh, RiskAggressive, 25},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.vol), func(t *testing.T) {
			assert.Equal(t, tt.category, categorizeVolatility(tt.vol))
			assert.Equal(t, tt.risk, assessRisk(tt.vol))
			assert.Equal(t, tt.stability, stabilityScore(tt.vol))
		})
	}
}

func TestCleanFinancialData_Absent(t *testing.T) {
	fin, log := CleanFinancialData(nil, "TSLA")
	assert.Equal(t, 0.0, fin.CurrentPrice)
	assert.Equal(t, 0.0, fin.VolatilityPercent)
	assert.Equal(t, RiskUnknown, fin.RiskLevel)
	assert.Equal(t, []string{"No financial data available for TSLA"}, log)
}

func articles(n int, relevance float64) []RawArticle {
	out := make([]RawArticle, n)
	for i := range out {
		out[i] = RawArticle{
			Title:          fmt.Sprintf("Headline %d", i+1),
			Description:    "Quarterly results beat analyst expectations.",
			Source:         "Reuters",
			PublishedAt:    "2024-05-01T10:00:00Z",
			URL:            fmt.Sprintf("https://example.com/%d", i+1),
			RelevanceScore: relevance,
		}
	}
	return out
}

func TestCleanNewsData(t *testing.T) {
	news, log := CleanNewsData(&RawNewsData{Articles: articles(12, 0.8)}, "AAPL")

	assert.Equal(t, 12, news.TotalArticles)
	assert.Len(t, news.Articles, 10)
	assert.Equal(t, "Headline 1", news.Articles[0].Title)
	assert.Equal(t, 0.8, news.AverageRelevance)
	assert.Equal(t, CoverageHigh, news.NewsCoverage)
	assert.Equal(t, 90.0, news.MediaAttentionScore)
	assert.Equal(t, "Headline 1; Headline 2; Headline 3", news.RecentNewsSummary)
	assert.Equal(t, "recent", news.NewsFreshness)
	assert.Equal(t, 1, news.SourceDiversity)
	assert.Equal(t, []string{"INFO: News data cleaned: 12 articles, avg relevance 0.80"}, log)
}

func TestCleanNewsData_AttentionCapped(t *testing.T) {
	news, _ := CleanNewsData(&RawNewsData{Articles: articles(100, 1.0)}, "AAPL")
	assert.Equal(t, 100, news.TotalArticles)
	assert.Equal(t, 1.0, news.AverageRelevance)
	// min(100*5, 50) + 1.0*50
	assert.Equal(t, 100.0, news.MediaAttentionScore)
}

func TestCleanNewsData_TopSourcesStableOrder(t *testing.T) {
	raw := &RawNewsData{Articles: []RawArticle{
		{Title: "a", Source: "CNBC"},
		{Title: "b", Source: "Bloomberg"},
		{Title: "c", Source: "Bloomberg"},
		{Title: "d", Source: "CNBC"},
		{Title: "e", Source: "WSJ"},
		{Title: "f", Source: "Yahoo"},
		{Title: "g"},
	}}

	news, _ := CleanNewsData(raw, "X")

	assert.Equal(t, []string{"CNBC", "Bloomberg", "WSJ"}, news.TopSources)
	assert.Equal(t, 5, news.SourceDiversity)
	assert.Equal(t, "Unknown", news.Articles[6].Source)
	assert.Equal(t, CoverageMedium, news.NewsCoverage)
}

func TestCleanNewsData_RelevanceDefault(t *testing.T) {
	news, _ := CleanNewsData(&RawNewsData{Articles: []RawArticle{{Title: "x"}, {Title: "y", RelevanceScore: "n/a"}}}, "X")
	require.Len(t, news.Articles, 2)
	assert.Equal(t, 0.5, news.Articles[0].RelevanceScore)
	assert.Equal(t, 0.0, news.Articles[1].RelevanceScore)
	assert.Equal(t, 0.25, news.AverageRelevance)
	assert.Equal(t, CoverageLow, news.NewsCoverage)
	// min(2*5, 50) + 0.25*50
	assert.Equal(t, 22.5, news.MediaAttentionScore)
}

func TestCleanNewsData_Absent(t *testing.T) {
	for name, raw := range map[string]*RawNewsData{"nil": nil, "no articles": {Articles: []RawArticle{}}} {
		t.Run(name, func(t *testing.T) {
			news, log := CleanNewsData(raw, "AAPL")
			assert.Equal(t, 0, news.TotalArticles)
			assert.Empty(t, news.Articles)
			assert.Equal(t, CoverageNone, news.NewsCoverage)
			assert.Equal(t, []string{"No news data available for AAPL"}, log)
		})
	}
}

func TestCoverageBands(t *testing.T) {
	assert.Equal(t, CoverageNone, categorizeCoverage(0))
	assert.Equal(t, CoverageLow, categorizeCoverage(1))
	assert.Equal(t, CoverageLow, categorizeCoverage(4))
	assert.Equal(t, CoverageMedium, categorizeCoverage(5))
	assert.Equal(t, CoverageMedium, categorizeCoverage(9))
	assert.Equal(t, CoverageHigh, categorizeCoverage(10))
}

func peerComparison(relPE any) *RawPeerComparison {
	return &RawPeerComparison{
		Sector:   "Technology",
		Industry: "Software",
		PeerCompanies: []RawPeer{
			{Ticker: "MSFT", CompanyName: "Microsoft", MarketCap: 3.1e12, PERatio: "35.2"},
			{Ticker: "GOOGL", CompanyName: "N/A", MarketCap: "n/a", PERatio: 24.1},
		},
		CurrentCompanyMetrics: map[string]any{"pe_ratio": 29.3, "market_cap": "2900000000000"},
		RelativePositioning:   map[string]any{"pe_ratio_vs_sector": relPE},
	}
}

func TestCleanPeerData(t *testing.T) {
	peers, log := CleanPeerData(peerComparison(0.8), "AAPL")

	require.Len(t, peers.Peers, 2)
	assert.Equal(t, 2, peers.PeerCount)
	assert.Equal(t, 35.2, peers.Peers[0].PERatio)
	assert.Equal(t, "Unknown", peers.Peers[1].CompanyName)
	assert.Equal(t, 0.0, peers.Peers[1].MarketCap)
	assert.Equal(t, 2.9e12, peers.CurrentCompanyMetrics["market_cap"])
	assert.Equal(t, 60.0, peers.OverallCompetitiveScore)
	assert.InDelta(t, 60.0, peers.ValuationVsPeers, 1e-9)
	assert.Equal(t, []string{"Attractive valuation vs peers"}, peers.CompetitiveAdvantages)
	assert.Empty(t, peers.CompetitiveWeaknesses)
	assert.Equal(t, "average", peers.SectorPositioning.OverallPosition)
	assert.Equal(t, []string{"INFO: Peer data cleaned: 2 peers in Technology"}, log)
}

func TestCleanPeerData_RelativeValuation(t *testing.T) {
	tests := []struct {
		name       string
		relPE      any
		valuation  float64
		advantages []string
		weaknesses []string
	}{
		{"capped at 75", 0.2, 75, []string{"Attractive valuation vs peers"}, []string{}},
		{"just under parity", 0.95, 52.5, []string{}, []string{}},
		{"parity", 1.0, 50, []string{}, []string{}},
		{"premium", 1.4, 50, []string{}, []string{"Premium valuation vs peers"}},
		{"absent", nil, 50, []string{}, []string{}},
		{"garbage", "n/a", 50, []string{}, []string{}},
		{"negative ratio", -0.5, 75, []string{"Attractive valuation vs peers"}, []string{}},
		{"zero ratio keeps neutral valuation", 0.0, 50, []string{"Attractive valuation vs peers"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peers, _ := CleanPeerData(peerComparison(tt.relPE), "AAPL")
			assert.InDelta(t, tt.valuation, peers.ValuationVsPeers, 1e-9)
			assert.Equal(t, tt.advantages, peers.CompetitiveAdvantages)
			assert.Equal(t, tt.weaknesses, peers.CompetitiveWeaknesses)
		})
	}
}

func TestCleanPeerData_Absent(t *testing.T) {
	peers, log := CleanPeerData(&RawPeerComparison{Sector: "Technology"}, "AAPL")
	assert.Equal(t, "Unknown", peers.Sector)
	assert.Equal(t, 0, peers.PeerCount)
	assert.Empty(t, peers.Peers)
	assert.Equal(t, 50.0, peers.OverallCompetitiveScore)
	assert.Equal(t, []string{"No peer data available for AAPL"}, log)
}
