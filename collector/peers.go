package collector

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"investment-research/cleaner"
	"investment-research/eodhd"
)

var sectorPeers = map[string][]string{
	"Technology":         {"AAPL", "MSFT", "GOOGL", "META", "NVDA", "TSLA"},
	"Healthcare":         {"JNJ", "PFE", "UNH", "ABBV", "MRK"},
	"Financial Services": {"JPM", "BAC", "WFC", "GS", "MS"},
	"Consumer Cyclical":  {"AMZN", "TSLA", "HD", "MCD", "NKE"},
	"Energy":             {"XOM", "CVX", "COP", "EOG", "SLB"},
	"Industrials":        {"BA", "CAT", "GE", "MMM", "HON"},
}

// Compared metrics, in output order.
var peerMetricKeys = []string{
	"market_cap", "pe_ratio", "price_to_book", "profit_margin", "debt_to_equity", "return_on_equity",
}

// PeersFor returns up to limit peer tickers for sector, excluding ticker itself.
func PeersFor(sector, ticker string, limit int) []string {
	var out []string
	for _, p := range sectorPeers[sector] {
		if p == ticker {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, p)
	}
	return out
}

func (c *Collector) collectPeers(ctx context.Context, ticker string, fund *eodhd.FundamentalsResponse) *cleaner.RawPeerComparison {
	var sector, industry string
	if fund.General != nil {
		sector = firstNonEmpty(fund.General.Sector, fund.General.GicSector)
		industry = fund.General.Industry
	}
	candidates := PeersFor(sector, ticker, c.opts.PeerLimit)
	if len(candidates) == 0 {
		c.logger.Debug().Str("ticker", ticker).Str("sector", sector).Msg("No peers for sector")
		return nil
	}

	results := make([]*cleaner.RawPeer, len(candidates))
	metrics := make([]map[string]float64, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(peerFetchers)
	for i, peer := range candidates {
		g.Go(func() error {
			pf, err := c.data.GetFundamentals(gctx, eodhd.Symbol(peer, c.opts.Exchange))
			if err != nil {
				c.logger.Warn().Str("ticker", ticker).Str("peer", peer).Err(err).Msg("Peer fundamentals unavailable")
				return nil
			}
			m := metricsOf(pf)
			raw := &cleaner.RawPeer{
				Ticker:         peer,
				CompanyName:    companyName(pf, peer),
				MarketCap:      m["market_cap"],
				PERatio:        m["pe_ratio"],
				PriceToBook:    m["price_to_book"],
				ProfitMargin:   m["profit_margin"],
				DebtToEquity:   m["debt_to_equity"],
				ReturnOnEquity: m["return_on_equity"],
				CurrentPrice:   0.0,
			}
			if c.quotes != nil {
				if q, err := c.quotes.Quote(gctx, peer); err == nil {
					raw.CurrentPrice = q.Price
				}
			}
			results[i] = raw
			metrics[i] = m
			return nil
		})
	}
	_ = g.Wait()

	var peers []cleaner.RawPeer
	var peerMetrics []map[string]float64
	for i, r := range results {
		if r != nil {
			peers = append(peers, *r)
			peerMetrics = append(peerMetrics, metrics[i])
		}
	}
	if len(peers) == 0 {
		c.logger.Warn().Str("ticker", ticker).Msg("No peer data collected")
		return nil
	}

	current := metricsOf(fund)
	averages := SectorAverages(peerMetrics)
	return &cleaner.RawPeerComparison{
		Sector:                text(sector),
		Industry:              text(industry),
		PeerCompanies:         peers,
		CurrentCompanyMetrics: anyMap(current),
		SectorAverages:        anyMap(averages),
		RelativePositioning:   RelativePositioning(current, averages),
	}
}

func metricsOf(f *eodhd.FundamentalsResponse) map[string]float64 {
	m := make(map[string]float64, len(peerMetricKeys))
	for _, k := range peerMetricKeys {
		m[k] = 0
	}
	if f == nil {
		return m
	}
	if h := f.Highlights; h != nil {
		m["market_cap"] = h.MarketCapitalization
		m["pe_ratio"] = h.PERatio
		m["profit_margin"] = h.ProfitMargin
		m["return_on_equity"] = h.ReturnOnEquityTTM
	}
	if v := f.Valuation; v != nil {
		if v.TrailingPE != 0 {
			m["pe_ratio"] = v.TrailingPE
		}
		m["price_to_book"] = v.PriceBookMRQ
	}
	return m
}

// SectorAverages computes avg_<metric> and median_<metric> over the positive
// values of each metric. A metric with no positive values averages to 0.
func SectorAverages(peers []map[string]float64) map[string]float64 {
	out := make(map[string]float64, 2*len(peerMetricKeys))
	for _, k := range peerMetricKeys {
		var vals []float64
		for _, p := range peers {
			if v := p[k]; v > 0 {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			out["avg_"+k] = 0
			out["median_"+k] = 0
			continue
		}
		var sum float64
		for _, v := range vals {
			sum += v
		}
		sort.Float64s(vals)
		out["avg_"+k] = sum / float64(len(vals))
		out["median_"+k] = vals[len(vals)/2]
	}
	return out
}

// RelativePositioning compares each current metric to its sector average as
// <metric>_vs_sector and <metric>_category.
func RelativePositioning(current, averages map[string]float64) map[string]any {
	out := make(map[string]any, 2*len(current))
	for metric, value := range current {
		avg := averages["avg_"+metric]
		if avg <= 0 || value <= 0 {
			out[metric+"_vs_sector"] = nil
			out[metric+"_category"] = "unknown"
			continue
		}
		ratio := value / avg
		out[metric+"_vs_sector"] = cleaner.Round(ratio, 2)
		switch {
		case ratio > 1.2:
			out[metric+"_category"] = "above_average"
		case ratio < 0.8:
			out[metric+"_category"] = "below_average"
		default:
			out[metric+"_category"] = "average"
		}
	}
	return out
}

func anyMap(m map[string]float64) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
