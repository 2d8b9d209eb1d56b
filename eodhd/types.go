package eodhd

import (
	"fmt"
	"time"
)

type QueryOption func(*queryParams)

type queryParams struct {
	From   time.Time
	To     time.Time
	Period string // d, w, m
	Order  string // a, d
	Limit  int
}

func WithDateRange(from, to time.Time) QueryOption {
	return func(p *queryParams) {
		p.From = from
		p.To = to
	}
}

func WithOrder(order string) QueryOption {
	return func(p *queryParams) { p.Order = order }
}

func WithLimit(limit int) QueryOption {
	return func(p *queryParams) { p.Limit = limit }
}

// APIError is a non-200 response.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eodhd: %s returned %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// NotFound reports whether the symbol or endpoint does not exist.
func (e *APIError) NotFound() bool { return e.StatusCode == 404 }

type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("eodhd: rate limited, retry after %v", e.RetryAfter)
}

// EODData is one daily bar.
type EODData struct {
	Date          time.Time `json:"-"`
	DateStr       string    `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	AdjustedClose float64   `json:"adjusted_close"`
	Volume        int64     `json:"volume"`
}

type EODResponse []EODData

type NewsItem struct {
	Date      time.Time      `json:"-"`
	DateStr   string         `json:"date"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Link      string         `json:"link"`
	Symbols   []string       `json:"symbols"`
	Tags      []string       `json:"tags"`
	Sentiment *NewsSentiment `json:"sentiment,omitempty"`
}

type NewsSentiment struct {
	Polarity float64 `json:"polarity"`
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
	Pos      float64 `json:"pos"`
}

type NewsResponse []NewsItem

// FundamentalsResponse holds the sections of the fundamentals document this client reads.
type FundamentalsResponse struct {
	General    *GeneralInfo `json:"General"`
	Highlights *Highlights  `json:"Highlights"`
	Valuation  *Valuation   `json:"Valuation"`
	Technicals *Technicals  `json:"Technicals"`
}

type GeneralInfo struct {
	Code              string `json:"Code"`
	Name              string `json:"Name"`
	Exchange          string `json:"Exchange"`
	CurrencyCode      string `json:"CurrencyCode"`
	CountryName       string `json:"CountryName"`
	Sector            string `json:"Sector"`
	Industry          string `json:"Industry"`
	GicSector         string `json:"GicSector"`
	Description       string `json:"Description"`
	WebURL            string `json:"WebURL"`
	FullTimeEmployees int    `json:"FullTimeEmployees"`
}

type Highlights struct {
	MarketCapitalization  float64 `json:"MarketCapitalization"`
	PERatio               float64 `json:"PERatio"`
	ProfitMargin          float64 `json:"ProfitMargin"`
	ReturnOnEquityTTM     float64 `json:"ReturnOnEquityTTM"`
	EarningsShare         float64 `json:"EarningsShare"`
	DividendYield         float64 `json:"DividendYield"`
	WallStreetTargetPrice float64 `json:"WallStreetTargetPrice"`
}

type Valuation struct {
	TrailingPE   float64 `json:"TrailingPE"`
	ForwardPE    float64 `json:"ForwardPE"`
	PriceBookMRQ float64 `json:"PriceBookMRQ"`
}

type Technicals struct {
	Beta             float64 `json:"Beta"`
	FiftyTwoWeekHigh float64 `json:"52WeekHigh"`
	FiftyTwoWeekLow  float64 `json:"52WeekLow"`
}
