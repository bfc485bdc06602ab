// Package exchange fetches spot reference-asset prices from centralized
// exchanges.
package exchange

import "context"

// Feed returns the current spot price for its configured symbol.
type Feed interface {
	Symbol() string
	SpotPrice(ctx context.Context) (float64, error)
}
