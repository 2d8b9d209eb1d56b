// Package eodhd is a small client for the EODHD market data API covering
// fundamentals, daily prices and company news.
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5.0

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Client talks to the EODHD REST API. Requests share one rate limiter.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), int(DefaultRateLimit)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Symbol joins a ticker and exchange code, e.g. AAPL + US = AAPL.US.
func Symbol(ticker, exchange string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if exchange == "" || strings.Contains(ticker, ".") {
		return ticker
	}
	return ticker + "." + exchange
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &RateLimitError{RetryAfter: time.Second}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().Str("endpoint", path).Msg("EODHD request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("eodhd %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: retryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body)), Endpoint: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func retryAfter(h string) time.Duration {
	if secs, err := strconv.Atoi(h); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Minute
}

func (p *queryParams) values() url.Values {
	v := url.Values{}
	if !p.From.IsZero() {
		v.Set("from", p.From.Format(dateLayout))
	}
	if !p.To.IsZero() {
		v.Set("to", p.To.Format(dateLayout))
	}
	if p.Period != "" {
		v.Set("period", p.Period)
	}
	if p.Order != "" {
		v.Set("order", p.Order)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}

// GetEOD returns daily bars for symbol in ascending date order by default.
func (c *Client) GetEOD(ctx context.Context, symbol string, opts ...QueryOption) (EODResponse, error) {
	p := &queryParams{Period: "d", Order: "a"}
	for _, opt := range opts {
		opt(p)
	}

	var bars EODResponse
	if err := c.get(ctx, "/eod/"+symbol, p.values(), &bars); err != nil {
		return nil, err
	}
	for i := range bars {
		bars[i].Date, _ = time.Parse(dateLayout, bars[i].DateStr)
	}
	return bars, nil
}

// GetFundamentals returns the fundamentals document for symbol.
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*FundamentalsResponse, error) {
	var f FundamentalsResponse
	if err := c.get(ctx, "/fundamentals/"+symbol, nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// GetNews returns recent articles tagged with any of symbols.
func (c *Client) GetNews(ctx context.Context, symbols []string, opts ...QueryOption) (NewsResponse, error) {
	p := &queryParams{Limit: 50}
	for _, opt := range opts {
		opt(p)
	}
	v := p.values()
	v.Set("s", strings.Join(symbols, ","))

	var items NewsResponse
	if err := c.get(ctx, "/news", v, &items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Date = parseNewsDate(items[i].DateStr)
	}
	return items, nil
}

func parseNewsDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, dateTimeLayout, dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
