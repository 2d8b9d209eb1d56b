package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investment-research/cleaner"
	"investment-research/eodhd"
)

var testNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

type fakeMarket struct {
	mu           sync.Mutex
	fundamentals map[string]*eodhd.FundamentalsResponse
	bars         eodhd.EODResponse
	news         eodhd.NewsResponse
	eodErr       error
	newsErr      error
	calls        map[string]int
}

func (f *fakeMarket) record(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[key]++
}

func (f *fakeMarket) GetEOD(ctx context.Context, symbol string, opts ...eodhd.QueryOption) (eodhd.EODResponse, error) {
	f.record("eod:" + symbol)
	return f.bars, f.eodErr
}

func (f *fakeMarket) GetFundamentals(ctx context.Context, symbol string) (*eodhd.FundamentalsResponse, error) {
	f.record("fund:" + symbol)
	if fund, ok := f.fundamentals[symbol]; ok {
		return fund, nil
	}
	return nil, &eodhd.APIError{StatusCode: 404, Endpoint: "/fundamentals/" + symbol}
}

func (f *fakeMarket) GetNews(ctx context.Context, symbols []string, opts ...eodhd.QueryOption) (eodhd.NewsResponse, error) {
	f.record("news")
	return f.news, f.newsErr
}

type fakeQuotes struct {
	quotes map[string]Quote
}

func (f fakeQuotes) Quote(ctx context.Context, ticker string) (Quote, error) {
	if q, ok := f.quotes[ticker]; ok {
		return q, nil
	}
	return Quote{}, errors.New("no quote")
}

func fundamentals(name, sector string, cap, pe, pb float64) *eodhd.FundamentalsResponse {
	return &eodhd.FundamentalsResponse{
		General:    &eodhd.GeneralInfo{Name: name, Sector: sector, Industry: "Software", CountryName: "USA", FullTimeEmployees: 1000},
		Highlights: &eodhd.Highlights{MarketCapitalization: cap, PERatio: pe, ProfitMargin: 0.2},
		Valuation:  &eodhd.Valuation{PriceBookMRQ: pb},
	}
}

func newsItem(title, content, link string, at time.Time) eodhd.NewsItem {
	return eodhd.NewsItem{Title: title, Content: content, Link: link, Date: at, DateStr: at.Format(time.RFC3339)}
}

func newMarket() *fakeMarket {
	return &fakeMarket{
		fundamentals: map[string]*eodhd.FundamentalsResponse{
			"AAPL.US":  fundamentals("Apple Inc", "Technology", 2.9e12, 30, 40),
			"MSFT.US":  fundamentals("Microsoft Corp", "Technology", 3.0e12, 35, 12),
			"GOOGL.US": fundamentals("Alphabet Inc", "Technology", 2.0e12, 25, 6),
			"META.US":  fundamentals("Meta Platforms", "Technology", 1.2e12, 0, 8),
		},
		bars: eodhd.EODResponse{
			{Close: 100, High: 102, Low: 98},
			{Close: 110, High: 111, Low: 99},
			{Close: 99, High: 108, Low: 97},
		},
		news: eodhd.NewsResponse{
			newsItem("Apple earnings beat estimates", "Apple Inc reported quarterly revenue above analyst estimates.", "https://www.reuters.com/apple", testNow.Add(-time.Hour)),
			newsItem("Tech roundup", "A look at technology companies this week and what comes next.", "https://news.example.com/roundup", testNow),
			newsItem("AAPL", "too short", "https://x.com/a", testNow),
			newsItem("No link article", "This article has content but no link attached to it.", "", testNow),
		},
	}
}

func newTestCollector(m MarketData, q QuoteSource) *Collector {
	c := New(m, q, nil, DefaultOptions())
	c.now = func() time.Time { return testNow }
	return c
}

func TestCollect_AllSources(t *testing.T) {
	market := newMarket()
	quotes := fakeQuotes{quotes: map[string]Quote{"AAPL": {Symbol: "AAPL", Name: "Apple", Price: 189.5}}}

	raw, err := newTestCollector(market, quotes).Collect(context.Background(), " aapl ")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", raw.Ticker)
	assert.Equal(t, "2024-05-10T15:00:00Z", raw.CollectionTimestamp)

	basic := raw.DataSources.BasicInfo
	require.NotNil(t, basic)
	assert.Equal(t, "Apple Inc", basic.CompanyName)
	assert.Equal(t, "Apple", basic.ShortName)
	assert.Equal(t, "Technology", basic.Sector)
	assert.Equal(t, 189.5, basic.CurrentPrice)
	assert.Equal(t, 2.9e12, basic.MarketCap)
	assert.Equal(t, 30.0, basic.PERatio)
	assert.Equal(t, 1000, basic.EmployeeCount)

	fin := raw.DataSources.FinancialData
	require.NotNil(t, fin)
	assert.Equal(t, 99.0, fin.CurrentPrice)
	assert.Equal(t, 111.0, fin.MonthHigh)
	assert.Equal(t, 97.0, fin.MonthLow)
	assert.InDelta(t, 14.1421, fin.Volatility, 1e-4)

	news := raw.DataSources.NewsData
	require.NotNil(t, news)
	require.Len(t, news.Articles, 2)
	assert.Equal(t, "Apple earnings beat estimates", news.Articles[0].Title)
	assert.Equal(t, "reuters.com", news.Articles[0].Source)
	assert.Greater(t, news.Articles[0].RelevanceScore, news.Articles[1].RelevanceScore)

	peers := raw.DataSources.PeerComparison
	require.NotNil(t, peers)
	assert.Equal(t, "Technology", peers.Sector)
	require.Len(t, peers.PeerCompanies, 3, "NVDA has no fundamentals")
	for _, p := range peers.PeerCompanies {
		assert.NotEqual(t, "AAPL", p.Ticker)
	}
	assert.Equal(t, "MSFT", peers.PeerCompanies[0].Ticker)
	assert.Equal(t, 1.0, peers.RelativePositioning["pe_ratio_vs_sector"])
	assert.Equal(t, "average", peers.RelativePositioning["pe_ratio_category"])

	out := cleaner.Round(2.9e12/((3.0e12+2.0e12+1.2e12)/3), 2)
	assert.Equal(t, out, peers.RelativePositioning["market_cap_vs_sector"])
}

func TestCollect_CleansEndToEnd(t *testing.T) {
	raw, err := newTestCollector(newMarket(), nil).Collect(context.Background(), "AAPL")
	require.NoError(t, err)

	c, err := cleaner.New()
	require.NoError(t, err)
	clean := c.Process(raw)
	assert.Equal(t, 4, clean.DataQuality.Count())
	assert.Equal(t, "Apple Inc", clean.CompanyName)
}

func TestCollect_MissingProfile(t *testing.T) {
	market := newMarket()
	_, err := newTestCollector(market, nil).Collect(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrNoBasicInfo)
}

func TestCollect_QuoteOnlyProfile(t *testing.T) {
	market := newMarket()
	quotes := fakeQuotes{quotes: map[string]Quote{"ZZZZ": {Name: "Zed Corp", Price: 12}}}

	raw, err := newTestCollector(market, quotes).Collect(context.Background(), "ZZZZ")
	require.NoError(t, err)
	require.NotNil(t, raw.DataSources.BasicInfo)
	assert.Equal(t, "Zed Corp", raw.DataSources.BasicInfo.ShortName)
	assert.Nil(t, raw.DataSources.BasicInfo.CompanyName)
	assert.Nil(t, raw.DataSources.PeerComparison)
}

func TestCollect_FailedSourcesAreAbsent(t *testing.T) {
	market := newMarket()
	market.eodErr = errors.New("eod down")
	market.newsErr = errors.New("news down")

	raw, err := newTestCollector(market, nil).Collect(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Nil(t, raw.DataSources.FinancialData)
	assert.Nil(t, raw.DataSources.NewsData)
	assert.NotNil(t, raw.DataSources.PeerComparison)
	assert.Nil(t, raw.DataSources.BasicInfo.CurrentPrice, "no quote and no bars")
}

func TestCollect_NoValidArticles(t *testing.T) {
	market := newMarket()
	market.news = eodhd.NewsResponse{newsItem("Hi", "short", "https://a.com", testNow)}

	raw, err := newTestCollector(market, nil).Collect(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, raw.DataSources.NewsData)
	assert.Empty(t, raw.DataSources.NewsData.Articles)
}

func TestCollect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestCollector(newMarket(), nil).Collect(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFinancialData_FewBars(t *testing.T) {
	fd := financialData(eodhd.EODResponse{{Close: 10, High: 11, Low: 9}, {Close: 12, High: 12.5, Low: 10}})
	require.NotNil(t, fd)
	assert.Nil(t, fd.Volatility)
	assert.Equal(t, 12.5, fd.MonthHigh)
	assert.Nil(t, financialData(nil))
}

func TestRelevance(t *testing.T) {
	tests := []struct {
		name        string
		title, desc string
		want        float64
	}{
		{"nothing", "Weather today", "Sunny with clouds", 0},
		{"ticker only", "AAPL rallies", "", 0.3},
		{"ticker and name", "AAPL rallies", "apple inc gains", 0.6},
		{"keywords", "Quarterly earnings", "revenue and profit", 0.2},
		{"capped", "AAPL Apple Inc earnings revenue profit sales quarterly financial stock shares market investors analyst upgrade downgrade target price", "", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Relevance(tt.title, tt.desc, "AAPL", "Apple Inc"), 1e-9)
		})
	}
}

func TestPeersFor(t *testing.T) {
	assert.Equal(t, []string{"MSFT", "GOOGL", "META", "NVDA"}, PeersFor("Technology", "AAPL", 4))
	assert.Equal(t, []string{"AAPL", "MSFT"}, PeersFor("Technology", "TSLA", 2))
	assert.Empty(t, PeersFor("Utilities", "NEE", 4))
}

func TestSectorAveragesAndPositioning(t *testing.T) {
	avgs := SectorAverages([]map[string]float64{
		{"pe_ratio": 10, "market_cap": 100},
		{"pe_ratio": 20, "market_cap": 0},
		{"pe_ratio": 40, "market_cap": -5},
	})
	assert.InDelta(t, 70.0/3, avgs["avg_pe_ratio"], 1e-9)
	assert.Equal(t, 20.0, avgs["median_pe_ratio"])
	assert.Equal(t, 100.0, avgs["avg_market_cap"])
	assert.Equal(t, 0.0, avgs["avg_debt_to_equity"])

	rel := RelativePositioning(map[string]float64{"pe_ratio": 35, "market_cap": 50, "debt_to_equity": 1}, avgs)
	assert.Equal(t, 1.5, rel["pe_ratio_vs_sector"])
	assert.Equal(t, "above_average", rel["pe_ratio_category"])
	assert.Equal(t, 0.5, rel["market_cap_vs_sector"])
	assert.Equal(t, "below_average", rel["market_cap_category"])
	assert.Nil(t, rel["debt_to_equity_vs_sector"])
	assert.Equal(t, "unknown", rel["debt_to_equity_category"])
}

type countingSource struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *countingSource) Collect(ctx context.Context, ticker string) (*cleaner.RawDataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &cleaner.RawDataset{Ticker: ticker}, nil
}

func TestCachedCollector(t *testing.T) {
	src := &countingSource{}
	ttl := 50 * time.Millisecond
	cache := NewCachedCollector(src, ttl, 2)
	ctx := context.Background()

	_, err := cache.Collect(ctx, "AAPL")
	require.NoError(t, err)
	_, err = cache.Collect(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls, "second call is a hit")

	time.Sleep(2 * ttl)
	_, err = cache.Collect(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "expired entry is refetched")

	_, _ = cache.Collect(ctx, "MSFT")
	_, _ = cache.Collect(ctx, "GOOGL")
	assert.Equal(t, 2, cache.Len())
	_, _ = cache.Collect(ctx, "AAPL")
	assert.Equal(t, 5, src.calls, "oldest entry was evicted")
}

func TestCachedCollector_DoesNotCacheErrors(t *testing.T) {
	src := &countingSource{err: ErrNoBasicInfo}
	cache := NewCachedCollector(src, time.Minute, 4)

	_, err := cache.Collect(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNoBasicInfo)
	_, err = cache.Collect(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNoBasicInfo)
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, 0, cache.Len())
}

func TestCachedCollector_Disabled(t *testing.T) {
	src := &countingSource{}
	cache := NewCachedCollector(src, 0, 4)

	_, _ = cache.Collect(context.Background(), "AAPL")
	_, _ = cache.Collect(context.Background(), "AAPL")
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, 0, cache.Len())
}
