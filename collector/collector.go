// Package collector gathers the raw per-ticker dataset consumed by the cleaner
// from EODHD and a quote source.
package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"investment-research/cleaner"
	"investment-research/eodhd"
	"investment-research/logging"
)

// ErrNoBasicInfo means neither fundamentals nor a quote could be found for the ticker.
var ErrNoBasicInfo = errors.New("no basic info available")

const (
	maxArticles   = 10
	minBarsForVol = 3
	peerFetchers  = 4
)

// MarketData is the subset of the EODHD client the collector needs.
type MarketData interface {
	GetEOD(ctx context.Context, symbol string, opts ...eodhd.QueryOption) (eodhd.EODResponse, error)
	GetFundamentals(ctx context.Context, symbol string) (*eodhd.FundamentalsResponse, error)
	GetNews(ctx context.Context, symbols []string, opts ...eodhd.QueryOption) (eodhd.NewsResponse, error)
}

// Source produces a raw dataset for a ticker.
type Source interface {
	Collect(ctx context.Context, ticker string) (*cleaner.RawDataset, error)
}

type Options struct {
	Exchange  string
	NewsDays  int
	NewsLimit int
	PeerLimit int
}

func DefaultOptions() Options {
	return Options{Exchange: "US", NewsDays: 7, NewsLimit: 15, PeerLimit: 4}
}

type Collector struct {
	data   MarketData
	quotes QuoteSource
	logger arbor.ILogger
	opts   Options
	now    func() time.Time
}

// New builds a Collector. quotes may be nil.
func New(data MarketData, quotes QuoteSource, logger arbor.ILogger, opts Options) *Collector {
	if logger == nil {
		logger = logging.Get()
	}
	return &Collector{data: data, quotes: quotes, logger: logger, opts: opts, now: time.Now}
}

// Collect fetches the company profile first, then prices, news, quote and
// peers concurrently. A failed source is left nil. Only context
// cancellation or a missing profile produce an error.
func (c *Collector) Collect(ctx context.Context, ticker string) (*cleaner.RawDataset, error) {
	ticker = normalizeTicker(ticker)
	symbol := eodhd.Symbol(ticker, c.opts.Exchange)
	start := c.now()

	fund, err := c.data.GetFundamentals(ctx, symbol)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn().Str("ticker", ticker).Err(err).Msg("Fundamentals unavailable")
		fund = nil
	}

	var (
		quote    *Quote
		bars     eodhd.EODResponse
		barsErr  error
		news     *cleaner.RawNewsData
		peerData *cleaner.RawPeerComparison
	)
	name := companyName(fund, ticker)
	g, gctx := errgroup.WithContext(ctx)

	if c.quotes != nil {
		g.Go(func() error {
			q, err := c.quotes.Quote(gctx, ticker)
			if err != nil {
				c.logger.Warn().Str("ticker", ticker).Err(err).Msg("Quote unavailable")
				return nil
			}
			quote = &q
			return nil
		})
	}
	g.Go(func() error {
		to := c.now()
		bars, barsErr = c.data.GetEOD(gctx, symbol, eodhd.WithDateRange(to.AddDate(0, -1, 0), to))
		if barsErr != nil {
			c.logger.Warn().Str("ticker", ticker).Err(barsErr).Msg("Price history unavailable")
		}
		return nil
	})
	g.Go(func() error {
		news = c.collectNews(gctx, ticker, symbol, name)
		return nil
	})
	if fund != nil {
		g.Go(func() error {
			peerData = c.collectPeers(gctx, ticker, fund)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if barsErr != nil {
		bars = nil
	}

	raw := &cleaner.RawDataset{
		Ticker:              ticker,
		CollectionTimestamp: start.Format(time.RFC3339),
		DataSources: cleaner.DataSources{
			BasicInfo:      basicInfo(fund, quote, bars),
			FinancialData:  financialData(bars),
			NewsData:       news,
			PeerComparison: peerData,
		},
	}
	if raw.DataSources.BasicInfo == nil {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoBasicInfo)
	}

	c.logger.Info().
		Str("ticker", ticker).
		Int("sources", countSources(raw.DataSources)).
		Dur("elapsed", c.now().Sub(start)).
		Msg("Dataset collected")
	return raw, nil
}

func countSources(ds cleaner.DataSources) int {
	n := 0
	if ds.BasicInfo != nil {
		n++
	}
	if ds.FinancialData != nil {
		n++
	}
	if ds.NewsData != nil && len(ds.NewsData.Articles) > 0 {
		n++
	}
	if ds.PeerComparison != nil && len(ds.PeerComparison.PeerCompanies) > 0 {
		n++
	}
	return n
}

func companyName(fund *eodhd.FundamentalsResponse, ticker string) string {
	if fund != nil && fund.General != nil && strings.TrimSpace(fund.General.Name) != "" {
		return fund.General.Name
	}
	return ticker
}

func basicInfo(fund *eodhd.FundamentalsResponse, quote *Quote, bars eodhd.EODResponse) *cleaner.RawBasicInfo {
	if fund == nil && quote == nil {
		return nil
	}
	info := &cleaner.RawBasicInfo{}
	if fund != nil {
		if g := fund.General; g != nil {
			info.CompanyName = text(g.Name)
			info.Sector = text(firstNonEmpty(g.Sector, g.GicSector))
			info.Industry = text(g.Industry)
			info.Country = text(g.CountryName)
			info.LongBusinessSummary = text(g.Description)
			info.CompanyWebsite = text(g.WebURL)
			if g.FullTimeEmployees > 0 {
				info.EmployeeCount = g.FullTimeEmployees
			}
		}
		if h := fund.Highlights; h != nil {
			info.MarketCap = number(h.MarketCapitalization)
			info.PERatio = number(h.PERatio)
		}
		if v := fund.Valuation; v != nil && v.TrailingPE != 0 {
			info.PERatio = v.TrailingPE
		}
	}
	switch {
	case quote != nil && quote.Price > 0:
		info.CurrentPrice = quote.Price
	case len(bars) > 0:
		info.CurrentPrice = number(bars[len(bars)-1].Close)
	}
	if quote != nil {
		info.ShortName = text(quote.Name)
	}
	if info.CompanyName == nil && info.ShortName == nil && info.MarketCap == nil && info.CurrentPrice == nil {
		return nil
	}
	return info
}

// financialData summarizes a month of daily bars. Volatility is the sample
// standard deviation of close-to-close returns in percent.
func financialData(bars eodhd.EODResponse) *cleaner.RawFinancialData {
	if len(bars) == 0 {
		return nil
	}
	high, low := bars[0].High, bars[0].Low
	for _, b := range bars[1:] {
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
	}
	fd := &cleaner.RawFinancialData{
		CurrentPrice: bars[len(bars)-1].Close,
		MonthHigh:    high,
		MonthLow:     low,
	}
	if vol, ok := volatility(bars); ok {
		fd.Volatility = vol
	}
	return fd
}

func volatility(bars eodhd.EODResponse) (float64, bool) {
	if len(bars) < minBarsForVol {
		return 0, false
	}
	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (bars[i].Close-prev)/prev)
	}
	if len(returns) < 2 {
		return 0, false
	}
	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	var ss float64
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}
	return math.Sqrt(ss/float64(len(returns)-1)) * 100, true
}

var financialKeywords = []string{
	"earnings", "revenue", "profit", "sales", "quarterly",
	"financial", "stock", "shares", "market", "investors",
	"analyst", "upgrade", "downgrade", "target price",
}

func (c *Collector) collectNews(ctx context.Context, ticker, symbol, name string) *cleaner.RawNewsData {
	to := c.now()
	items, err := c.data.GetNews(ctx, []string{symbol},
		eodhd.WithDateRange(to.AddDate(0, 0, -c.opts.NewsDays), to),
		eodhd.WithLimit(c.opts.NewsLimit))
	if err != nil {
		c.logger.Warn().Str("ticker", ticker).Err(err).Msg("News unavailable")
		return nil
	}

	type scored struct {
		article   cleaner.RawArticle
		relevance float64
		published time.Time
	}
	var kept []scored
	for _, item := range items {
		if !validArticle(item) {
			continue
		}
		rel := Relevance(item.Title, item.Content, ticker, name)
		published := item.DateStr
		if !item.Date.IsZero() {
			published = item.Date.UTC().Format(time.RFC3339)
		}
		kept = append(kept, scored{
			article: cleaner.RawArticle{
				Title:          strings.TrimSpace(item.Title),
				Description:    strings.TrimSpace(item.Content),
				Source:         sourceName(item.Link),
				PublishedAt:    published,
				URL:            item.Link,
				RelevanceScore: rel,
			},
			relevance: rel,
			published: item.Date,
		})
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].relevance != kept[j].relevance {
			return kept[i].relevance > kept[j].relevance
		}
		return kept[i].published.After(kept[j].published)
	})
	if len(kept) > maxArticles {
		kept = kept[:maxArticles]
	}

	out := &cleaner.RawNewsData{Articles: make([]cleaner.RawArticle, 0, len(kept))}
	for _, s := range kept {
		out.Articles = append(out.Articles, s.article)
	}
	c.logger.Debug().Str("ticker", ticker).Int("fetched", len(items)).Int("kept", len(kept)).Msg("News collected")
	return out
}

func validArticle(item eodhd.NewsItem) bool {
	return len(strings.TrimSpace(item.Title)) > 2 &&
		len(strings.TrimSpace(item.Content)) > 20 &&
		item.DateStr != "" &&
		item.Link != ""
}

// Relevance scores an article between 0 and 1 by ticker, company name and
// financial keyword mentions.
func Relevance(title, description, ticker, name string) float64 {
	body := strings.ToLower(title + " " + description)
	score := 0.0
	if ticker != "" && strings.Contains(body, strings.ToLower(ticker)) {
		score += 0.3
	}
	if name != "" && strings.Contains(body, strings.ToLower(name)) {
		score += 0.3
	}
	for _, kw := range financialKeywords {
		if strings.Contains(body, kw) {
			score += 0.05
		}
	}
	return math.Min(cleaner.Round(score, 2), 1.0)
}

func sourceName(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return "Unknown"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func text(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

func number(f float64) any {
	if f == 0 || math.IsNaN(f) {
		return nil
	}
	return f
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
