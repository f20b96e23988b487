package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deriv_terminal/internal/interval"
)

func TestCandlesticks(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/get-candlestick", r.URL.Path)
		query = r.URL.Query()
		w.Write([]byte(`{
			"code": 0,
			"result": {
				"data": [
					{"o":"100","h":"110","l":"95","c":"105","v":"3.2","t":1755734400000},
					{"o":"105","h":"112","l":"101","c":"108","v":"1.1","t":1755738000000}
				]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.Candlesticks(context.Background(), "BTCUSD-PERP", interval.H1, 1755000000000, 1755738000000)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, int64(1755734400000), got[0].Timestamp)
	assert.Equal(t, "108", got[1].Close)

	assert.Equal(t, "BTCUSD-PERP", query.Get("instrument_name"))
	assert.Equal(t, "1h", query.Get("timeframe"))
	assert.Equal(t, "300", query.Get("count"))
	assert.Equal(t, "1755000000000", query.Get("start_ts"))
	assert.Equal(t, "1755738000000", query.Get("end_ts"))
}

func TestCandlesticksEmptyWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"result":{"data":[]}}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).Candlesticks(context.Background(), "BTCUSD-PERP", interval.D1, 0, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNonZeroCodeIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":40004,"result":{}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Candlesticks(context.Background(), "BTCUSD-PERP", interval.D1, 0, 1)
	assert.ErrorContains(t, err, "40004")
}

func TestHTTPErrorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Tickers(context.Background())
	assert.ErrorContains(t, err, "502")
}

func TestTickers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/get-tickers", r.URL.Path)
		w.Write([]byte(`{
			"code": 0,
			"result": {
				"data": [
					{"i":"BTCUSD-PERP","a":"65000.5"},
					{"i":"BTCUSD-INDEX","a":"64999.1"}
				]
			}
		}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).Tickers(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "BTCUSD-PERP", got[0].Instrument)
	assert.Equal(t, "65000.5", got[0].Last)
}

func TestNewClientDefaultBase(t *testing.T) {
	assert.Equal(t, "https://deriv-api.crypto.com/v1/public", NewClient("").BaseURL)
	assert.Equal(t, "http://x", NewClient("http://x/").BaseURL)
}
