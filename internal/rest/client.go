// Package rest is the stateless request/response side of the feed: paginated
// historical candles and the instrument catalog.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"deriv_terminal/internal/interval"
	"deriv_terminal/internal/models"
)

const defaultBaseURL = "https://deriv-api.crypto.com/v1/public"

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a client for the public REST endpoints. Requests carry no
// client-side timeout; cancellation comes from the caller's context, which
// the session ties to the active selection.
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{},
	}
}

// Candlesticks fetches one page of candles for [startMs, endMs]. The page
// size rides along as the count hint the endpoint expects. An empty slice
// with a nil error means the window genuinely holds no data; any transport
// or server failure is returned as an error so callers can tell the two
// apart.
func (c *Client) Candlesticks(ctx context.Context, name string, iv interval.Interval, startMs, endMs int64) ([]models.Candlestick, error) {
	u := fmt.Sprintf("%s/get-candlestick?count=%d&end_ts=%d&instrument_name=%s&start_ts=%d&timeframe=%s",
		c.BaseURL, iv.PageSize(), endMs, url.QueryEscape(name), startMs, url.QueryEscape(string(iv)))

	var out []models.Candlestick
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, fmt.Errorf("rest: get-candlestick: %w", err)
	}
	return out, nil
}

// Tickers fetches the full instrument catalog.
func (c *Client) Tickers(ctx context.Context) ([]models.Ticker, error) {
	var out []models.Ticker
	if err := c.getJSON(ctx, c.BaseURL+"/get-tickers", &out); err != nil {
		return nil, fmt.Errorf("rest: get-tickers: %w", err)
	}
	return out, nil
}

// getJSON performs one GET and decodes the feed's response envelope into
// data, which must be a pointer to the expected result slice.
func (c *Client) getJSON(ctx context.Context, u string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	var payload struct {
		Code   int `json:"code"`
		Result struct {
			Data json.RawMessage `json:"data"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if payload.Code != 0 {
		return fmt.Errorf("response code %d", payload.Code)
	}
	if len(payload.Result.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload.Result.Data, data); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
