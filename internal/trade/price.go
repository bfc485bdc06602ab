// Package trade derives directional prices from raw swap transactions and
// normalizes them into storable records.
package trade

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"poolPulse/internal/model"
)

// DefaultReferenceLedgerID is the ICP ledger canister id, used to detect
// which side of a pool is the reference asset.
const DefaultReferenceLedgerID = "ryjl3-tyaaa-aaaaa-aaaba-cai"

// Price is the outcome of deriving a directional price from a swap.
// Price is nil when no inflow/outflow pair was simultaneously positive.
type Price struct {
	Direction   model.Direction
	Price       *float64
	QuoteSymbol string
}

// ComputeTradePrice expresses a swap's price in reference-asset terms when
// either side of the pair is the reference asset, falling back to a generic
// token-pair price otherwise. Rules are checked in priority order and only
// one fires per call.
func ComputeTradePrice(tx model.RawTransaction, referenceLedgerID string) Price {
	token0In, ok0In := parseAmount(tx.Token0AmountIn)
	token0Out, ok0Out := parseAmount(tx.Token0AmountOut)
	token1In, ok1In := parseAmount(tx.Token1AmountIn)
	token1Out, ok1Out := parseAmount(tx.Token1AmountOut)

	isToken0Ref := tx.Token0LedgerID == referenceLedgerID
	isToken1Ref := tx.Token1LedgerID == referenceLedgerID

	if isToken0Ref {
		if positive(token0In, ok0In) && positive(token1Out, ok1Out) {
			return pricedResult(model.DirectionRefSell, token1Out/token0In, tx.Token1Symbol)
		}
		if positive(token0Out, ok0Out) && positive(token1In, ok1In) {
			return pricedResult(model.DirectionRefBuy, token1In/token0Out, tx.Token1Symbol)
		}
	}

	if isToken1Ref {
		if positive(token1In, ok1In) && positive(token0Out, ok0Out) {
			return pricedResult(model.DirectionRefSell, token0Out/token1In, tx.Token0Symbol)
		}
		if positive(token1Out, ok1Out) && positive(token0In, ok0In) {
			return pricedResult(model.DirectionRefBuy, token0In/token1Out, tx.Token0Symbol)
		}
	}

	if positive(token0In, ok0In) && positive(token1Out, ok1Out) {
		return pricedResult(model.DirectionToken0Sell, token1Out/token0In, tx.Token1Symbol)
	}

	if positive(token1In, ok1In) && positive(token0Out, ok0Out) {
		return pricedResult(model.DirectionToken1Sell, token1In/token0Out, tx.Token0Symbol)
	}

	quote := tx.Token1Symbol
	if quote == "" {
		quote = tx.Token0Symbol
	}
	return Price{Direction: model.DirectionUnknown, QuoteSymbol: quote}
}

func pricedResult(direction model.Direction, price float64, quote string) Price {
	return Price{Direction: direction, Price: &price, QuoteSymbol: quote}
}

// parseAmount converts a raw decimal-string amount to a float. Missing or
// unparseable values are reported as absent, not zero.
func parseAmount(raw json.Number) (float64, bool) {
	s := strings.TrimSpace(raw.String())
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func positive(value float64, ok bool) bool {
	return ok && value > 0
}
