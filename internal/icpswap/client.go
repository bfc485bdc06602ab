// Package icpswap is a thin client for the ICPSwap info REST API.
package icpswap

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

	"poolPulse/internal/model"
)

// DefaultBaseURL is the public ICPSwap API endpoint.
const DefaultBaseURL = "https://api.icpswap.com"

const maxErrorBodyBytes = 2048

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("icpswap api status %d: %s", e.StatusCode, e.Body)
}

// CodeError reports an application-level non-success code embedded in an
// otherwise well-formed payload.
type CodeError struct {
	Code int
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("icpswap api returned non-success code %d", e.Code)
}

// Page is one page of pool transactions.
type Page struct {
	PoolID        string
	TotalElements int64
	Content       []model.RawTransaction
}

// Client fetches pool transactions over HTTP with a fixed per-request
// timeout.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient builds a Client. An empty baseURL falls back to the public API;
// a zero timeout disables the per-request bound.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

type transactionsPayload struct {
	Code int `json:"code"`
	Data struct {
		TotalElements int64                  `json:"totalElements"`
		Content       []model.RawTransaction `json:"content"`
	} `json:"data"`
}

// PoolTransactions fetches one page of transactions for a pool, newest
// first.
func (c *Client) PoolTransactions(ctx context.Context, poolID string, page, limit int) (Page, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/info/pool/%s/transaction", c.baseURL, url.PathEscape(poolID))
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch pool transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return Page{}, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload transactionsPayload
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return Page{}, fmt.Errorf("decode payload: %w", err)
	}
	if payload.Code != 200 {
		return Page{}, &CodeError{Code: payload.Code}
	}

	return Page{
		PoolID:        poolID,
		TotalElements: payload.Data.TotalElements,
		Content:       payload.Data.Content,
	}, nil
}
