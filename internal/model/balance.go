package model

import "time"

// ExchangeAccount maps a named exchange wallet to its ledger account and an
// optional price source.
type ExchangeAccount struct {
	Name        string `json:"name" mapstructure:"name"`
	AccountHex  string `json:"account_hex" mapstructure:"account_hex"`
	PriceSource string `json:"price_source" mapstructure:"price_source"`
}

// AccountBalance is one account's observation within a snapshot. A failed
// balance or price fetch is recorded as a message rather than failing the
// whole snapshot.
type AccountBalance struct {
	Account      ExchangeAccount
	BalanceICP   *float64
	BalanceError string
	PriceUSD     *float64
	PriceError   string
	PriceSymbol  string
}

// BalanceSnapshot aggregates per-account balances and exchange prices at a
// point in time. TotalICP is nil when any account failed.
type BalanceSnapshot struct {
	TakenAt  time.Time
	TotalICP *float64
	HadError bool
	Entries  []AccountBalance
}
