package eodhd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(100))
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "AAPL.US", Symbol(" aapl ", "US"))
	assert.Equal(t, "BHP.AU", Symbol("BHP.AU", "US"))
	assert.Equal(t, "MSFT", Symbol("msft", ""))
}

func TestGetEOD(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eod/AAPL.US", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		assert.Equal(t, "2024-04-01", r.URL.Query().Get("from"))
		assert.Equal(t, "a", r.URL.Query().Get("order"))
		w.Write([]byte(`[
			{"date":"2024-04-01","open":170,"high":172,"low":169,"close":171,"adjusted_close":171,"volume":1000},
			{"date":"2024-04-02","open":171,"high":175,"low":170,"close":174,"adjusted_close":174,"volume":1200}
		]`))
	})

	from := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	bars, err := client.GetEOD(context.Background(), "AAPL.US", WithDateRange(from, from.AddDate(0, 1, 0)))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 174.0, bars[1].Close)
	assert.Equal(t, 2, bars[1].Date.Day())
}

func TestGetFundamentals(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"General": {"Name":"Apple Inc","Sector":"Technology","Industry":"Consumer Electronics","CountryName":"USA","FullTimeEmployees":161000},
			"Highlights": {"MarketCapitalization": 2900000000000, "PERatio": 29.3, "ProfitMargin": 0.25},
			"Valuation": {"TrailingPE": 29.1, "PriceBookMRQ": 45.2}
		}`))
	})

	f, err := client.GetFundamentals(context.Background(), "AAPL.US")
	require.NoError(t, err)
	require.NotNil(t, f.General)
	assert.Equal(t, "Apple Inc", f.General.Name)
	assert.Equal(t, 161000, f.General.FullTimeEmployees)
	assert.Equal(t, 29.3, f.Highlights.PERatio)
	assert.Equal(t, 45.2, f.Valuation.PriceBookMRQ)
	assert.Nil(t, f.Technicals)
}

func TestGetNews(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news", r.URL.Path)
		assert.Equal(t, "AAPL.US", r.URL.Query().Get("s"))
		assert.Equal(t, "15", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"date":"2024-05-01T13:30:00+00:00","title":"Apple earnings","content":"Apple reported...","link":"https://www.reuters.com/a","symbols":["AAPL.US"]}]`))
	})

	items, err := client.GetNews(context.Background(), []string{"AAPL.US"}, WithLimit(15))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Apple earnings", items[0].Title)
	assert.Equal(t, 13, items[0].Date.Hour())
}

func TestGet_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"not found", http.StatusNotFound, func(t *testing.T, err error) {
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.True(t, apiErr.NotFound())
			assert.Equal(t, "/fundamentals/NOPE.US", apiErr.Endpoint)
		}},
		{"rate limited", http.StatusTooManyRequests, func(t *testing.T, err error) {
			var rlErr *RateLimitError
			require.True(t, errors.As(err, &rlErr))
			assert.Equal(t, 2*time.Second, rlErr.RetryAfter)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "2")
				w.WriteHeader(tt.status)
				w.Write([]byte("nope"))
			})
			_, err := client.GetFundamentals(context.Background(), "NOPE.US")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestGet_CancelledContext(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.GetFundamentals(ctx, "AAPL.US")
	assert.Error(t, err)
}
