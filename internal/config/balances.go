package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"poolPulse/internal/model"
)

// BalancesConfig holds configuration for the balance snapshot command.
type BalancesConfig struct {
	PGDSN            string
	LedgerHost       string
	SnapshotInterval time.Duration
	LedgerTimeout    time.Duration
	PriceTimeout     time.Duration
	BinanceSymbol    string
	CoinbasePair     string
	Accounts         []model.ExchangeAccount
	LogLevel         string
}

// LoadBalances merges config file, environment variables, and flags into
// BalancesConfig.
func LoadBalances(cfgFile string, flags *pflag.FlagSet) (BalancesConfig, error) {
	v := newViper()

	v.SetDefault("ledger-host", "https://ledger-api.internetcomputer.org")
	v.SetDefault("snapshot-interval", 5*time.Minute)
	v.SetDefault("ledger-timeout", 20*time.Second)
	v.SetDefault("price-timeout", 10*time.Second)
	v.SetDefault("binance-symbol", "ICPUSDT")
	v.SetDefault("coinbase-pair", "ICP-USD")
	v.SetDefault("log-level", "info")

	if err := readInto(v, cfgFile, flags); err != nil {
		return BalancesConfig{}, err
	}

	cfg := BalancesConfig{
		PGDSN:            v.GetString("pg-dsn"),
		LedgerHost:       v.GetString("ledger-host"),
		SnapshotInterval: v.GetDuration("snapshot-interval"),
		LedgerTimeout:    v.GetDuration("ledger-timeout"),
		PriceTimeout:     v.GetDuration("price-timeout"),
		BinanceSymbol:    v.GetString("binance-symbol"),
		CoinbasePair:     v.GetString("coinbase-pair"),
		LogLevel:         v.GetString("log-level"),
	}

	if v.IsSet("accounts") {
		if err := v.UnmarshalKey("accounts", &cfg.Accounts); err != nil {
			return BalancesConfig{}, fmt.Errorf("parse accounts: %w", err)
		}
	}
	if len(cfg.Accounts) == 0 {
		cfg.Accounts = DefaultExchangeAccounts()
	}

	return cfg, nil
}
