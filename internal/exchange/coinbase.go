package exchange

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
)

const coinbaseBaseURL = "https://api.coinbase.com"

// CoinbaseFeed reads the spot price from Coinbase's public price endpoint.
type CoinbaseFeed struct {
	baseURL    string
	pair       string
	timeout    time.Duration
	httpClient *http.Client
}

func NewCoinbaseFeed(pair string, timeout time.Duration) *CoinbaseFeed {
	if pair == "" {
		pair = "ICP-USD"
	}
	return &CoinbaseFeed{
		baseURL:    coinbaseBaseURL,
		pair:       pair,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

func (f *CoinbaseFeed) Symbol() string {
	return f.pair
}

type coinbaseSpotPayload struct {
	Data struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	} `json:"data"`
}

// SpotPrice returns the current spot price for the pair.
func (f *CoinbaseFeed) SpotPrice(ctx context.Context) (float64, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/v2/prices/%s/spot", strings.TrimRight(f.baseURL, "/"), url.PathEscape(f.pair))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch coinbase spot price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("coinbase api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload coinbaseSpotPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode coinbase payload: %w", err)
	}

	price, err := strconv.ParseFloat(payload.Data.Amount, 64)
	if err != nil {
		return 0, fmt.Errorf("parse coinbase price %q: %w", payload.Data.Amount, err)
	}
	return price, nil
}
