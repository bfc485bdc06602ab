package exchange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
)

// BinanceFeed reads the spot price from Binance's public ticker endpoint.
// No API credentials are needed for price data.
type BinanceFeed struct {
	client  *binance.Client
	symbol  string
	timeout time.Duration
}

func NewBinanceFeed(symbol string, timeout time.Duration) *BinanceFeed {
	if symbol == "" {
		symbol = "ICPUSDT"
	}
	return &BinanceFeed{
		client:  binance.NewClient("", ""),
		symbol:  symbol,
		timeout: timeout,
	}
}

func (f *BinanceFeed) Symbol() string {
	return f.symbol
}

// SpotPrice returns the latest traded price for the symbol.
func (f *BinanceFeed) SpotPrice(ctx context.Context) (float64, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	prices, err := f.client.NewListPricesService().Symbol(f.symbol).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("binance list prices: %w", err)
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("binance returned no price for %s", f.symbol)
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, fmt.Errorf("parse binance price %q: %w", prices[0].Price, err)
	}
	return price, nil
}
