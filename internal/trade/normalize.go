package trade

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"poolPulse/internal/model"
)

// fallbackKeyDelimiter joins the fallback key tuple. The field order is
// fixed: pool id, raw tx time, action type, token0 amount in, token1 amount
// out.
const fallbackKeyDelimiter = ":"

// placeholderHashSuffix marks per-pool dummy hashes emitted by some pools.
const placeholderHashSuffix = "_hash"

// Normalizer maps raw API transactions into canonical swap records.
type Normalizer struct {
	ReferenceLedgerID string
}

// NewNormalizer returns a Normalizer, defaulting to the ICP ledger as the
// reference asset.
func NewNormalizer(referenceLedgerID string) Normalizer {
	if referenceLedgerID == "" {
		referenceLedgerID = DefaultReferenceLedgerID
	}
	return Normalizer{ReferenceLedgerID: referenceLedgerID}
}

// IsSwap reports whether the transaction is a swap. Only swaps are
// persisted; every other action type is dropped upstream.
func (n Normalizer) IsSwap(tx model.RawTransaction) bool {
	return strings.EqualFold(tx.ActionType, "swap")
}

// Normalize converts a raw transaction into a SwapRecord. It returns an
// error when the timestamp cannot be interpreted, so the caller can skip
// the record before it reaches persistence.
func (n Normalizer) Normalize(pool model.Pool, tx model.RawTransaction) (model.SwapRecord, error) {
	txTime, err := parseTxTime(tx.TxTime)
	if err != nil {
		return model.SwapRecord{}, fmt.Errorf("transaction %q: %w", tx.TxHash, err)
	}

	priceInfo := ComputeTradePrice(tx, n.ReferenceLedgerID)

	record := model.SwapRecord{
		PoolID:       pool.ID,
		PoolLabel:    pool.Title,
		TxHash:       DeriveTxHash(pool, tx),
		TxTime:       txTime,
		ActionType:   tx.ActionType,
		Direction:    priceInfo.Direction,
		Token0Symbol: tx.Token0Symbol,
		Token1Symbol: tx.Token1Symbol,
		TradePrice:   priceInfo.Price,
		QuoteSymbol:  priceInfo.QuoteSymbol,
	}
	if v, ok := parseAmount(tx.Token0AmountIn); ok {
		record.Token0AmountIn = &v
	}
	if v, ok := parseAmount(tx.Token1AmountOut); ok {
		record.Token1AmountOut = &v
	}
	return record, nil
}

// DeriveTxHash returns the source hash when it looks real, otherwise a
// deterministic fallback key. Some pools report a fixed placeholder hash for
// every transaction, so the fallback joins the pool id, raw timestamp,
// action type, and the two amount fields. This is a best-effort uniqueness
// heuristic: two distinct transactions with identical timestamp and amounts
// collide.
func DeriveTxHash(pool model.Pool, tx model.RawTransaction) string {
	raw := strings.TrimSpace(tx.TxHash)
	placeholder := raw == "" || raw == pool.ID || strings.HasSuffix(raw, placeholderHashSuffix)
	if !placeholder {
		return raw
	}
	return FallbackKey(pool.ID, tx.TxTime, tx.ActionType, tx.Token0AmountIn, tx.Token1AmountOut)
}

// FallbackKey builds the synthetic transaction key from its fixed ordered
// tuple of fields.
func FallbackKey(poolID string, txTime json.Number, actionType string, token0In, token1Out json.Number) string {
	rawTime := txTime.String()
	if rawTime == "" {
		rawTime = "0"
	}
	if actionType == "" {
		actionType = "swap"
	}
	parts := []string{poolID, rawTime, actionType, token0In.String(), token1Out.String()}
	return strings.Join(parts, fallbackKeyDelimiter)
}

// parseTxTime interprets the raw epoch-millisecond timestamp. A missing
// value maps to the zero epoch; a non-numeric or non-finite value is an
// error.
func parseTxTime(raw json.Number) (time.Time, error) {
	s := strings.TrimSpace(raw.String())
	if s == "" {
		return time.UnixMilli(0).UTC(), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid tx time %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, fmt.Errorf("non-finite tx time %q", s)
	}
	return time.UnixMilli(int64(f)).UTC(), nil
}
