// Package ledger reads ICP account balances from the public ledger HTTP
// API.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultHost is the public ledger API endpoint.
const DefaultHost = "https://ledger-api.internetcomputer.org"

// e8sDecimals converts e8s (10^-8 ICP) into whole ICP.
const e8sDecimals = 8

const maxErrorBodyBytes = 1024

// Client fetches account balances with a fixed per-request timeout.
type Client struct {
	host       string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(host string, timeout time.Duration) *Client {
	if host == "" {
		host = DefaultHost
	}
	return &Client{
		host:       strings.TrimRight(host, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

type accountPayload struct {
	Balance json.Number `json:"balance"`
}

// AccountBalance returns the account's balance in ICP.
func (c *Client) AccountBalance(ctx context.Context, accountHex string) (decimal.Decimal, error) {
	if accountHex == "" {
		return decimal.Zero, fmt.Errorf("account id is required")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/accounts/%s", c.host, url.PathEscape(accountHex))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch account balance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return decimal.Zero, fmt.Errorf("ledger api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload accountPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("decode account payload: %w", err)
	}

	e8s, err := decimal.NewFromString(payload.Balance.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance %q: %w", payload.Balance, err)
	}
	return e8s.Shift(-e8sDecimals), nil
}
