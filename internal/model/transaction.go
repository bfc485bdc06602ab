package model

import (
	"encoding/json"
	"time"
)

// Direction classifies which side of a swap moved relative to the
// reference asset.
type Direction string

const (
	DirectionRefSell    Direction = "REF_SELL"
	DirectionRefBuy     Direction = "REF_BUY"
	DirectionToken0Sell Direction = "TOKEN0_SELL"
	DirectionToken1Sell Direction = "TOKEN1_SELL"
	DirectionUnknown    Direction = "UNKNOWN"
)

// RawTransaction is a pool transaction as returned by the ICPSwap REST API.
// Amounts and the timestamp arrive as JSON numbers or numeric strings, so
// they are kept raw until normalization.
type RawTransaction struct {
	ActionType      string      `json:"actionType"`
	TxHash          string      `json:"txHash"`
	TxTime          json.Number `json:"txTime"`
	Token0Symbol    string      `json:"token0Symbol"`
	Token1Symbol    string      `json:"token1Symbol"`
	Token0LedgerID  string      `json:"token0LedgerId"`
	Token1LedgerID  string      `json:"token1LedgerId"`
	Token0AmountIn  json.Number `json:"token0AmountIn"`
	Token0AmountOut json.Number `json:"token0AmountOut"`
	Token1AmountIn  json.Number `json:"token1AmountIn"`
	Token1AmountOut json.Number `json:"token1AmountOut"`
}

// SwapRecord is the canonical stored representation of a swap, unique by
// TxHash across all pools.
type SwapRecord struct {
	PoolID          string    `json:"pool_id"`
	PoolLabel       string    `json:"pool_label"`
	TxHash          string    `json:"tx_hash"`
	TxTime          time.Time `json:"tx_time"`
	ActionType      string    `json:"action_type"`
	Direction       Direction `json:"direction"`
	Token0Symbol    string    `json:"token0_symbol"`
	Token1Symbol    string    `json:"token1_symbol"`
	Token0AmountIn  *float64  `json:"token0_amount_in"`
	Token1AmountOut *float64  `json:"token1_amount_out"`
	TradePrice      *float64  `json:"trade_price"`
	QuoteSymbol     string    `json:"quote_symbol"`
}

// SwapCursor marks the newest stored transaction for a pool, used as the
// incremental sync cursor.
type SwapCursor struct {
	TxHash string
	TxTime time.Time
}
