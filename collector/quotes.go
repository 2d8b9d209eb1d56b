package collector

import (
	"context"
	"fmt"
	"time"

	yfgo "github.com/komsit37/yf-go"
)

// Quote is a live price snapshot.
type Quote struct {
	Symbol        string
	Name          string
	Price         float64
	ChangePercent float64
}

// QuoteSource fetches a live quote for a plain ticker.
type QuoteSource interface {
	Quote(ctx context.Context, ticker string) (Quote, error)
}

// YahooQuotes implements QuoteSource using yf-go.
type YahooQuotes struct {
	client  *yfgo.Client
	timeout time.Duration
}

func NewYahooQuotes(timeout time.Duration) *YahooQuotes {
	return &YahooQuotes{client: yfgo.NewClient(), timeout: timeout}
}

func (s *YahooQuotes) Quote(ctx context.Context, ticker string) (Quote, error) {
	if ticker == "" {
		return Quote{}, fmt.Errorf("empty ticker")
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.client.QuoteSummaryTyped(cctx, ticker, []yfgo.QuoteSummaryModule{yfgo.ModulePrice})
	if err != nil {
		return Quote{}, fmt.Errorf("quote %s: %w", ticker, err)
	}
	if res.Price == nil {
		return Quote{}, fmt.Errorf("no price for %s", ticker)
	}

	q := Quote{Symbol: ticker}
	if p := res.Price.RegularMarketPrice.Raw; p != nil {
		q.Price = *p
	}
	if cp := res.Price.RegularMarketChangePercent.Raw; cp != nil {
		q.ChangePercent = *cp
	}
	if res.Price.ShortName != "" {
		q.Name = res.Price.ShortName
	} else if res.Price.LongName != "" {
		q.Name = res.Price.LongName
	}
	return q, nil
}
