package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolPulse/internal/balance"
	"poolPulse/internal/config"
	"poolPulse/internal/exchange"
	"poolPulse/internal/ledger"
	"poolPulse/internal/storage/postgres"
)

func runBalances(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBalances(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}
	if len(cfg.Accounts) == 0 {
		return fmt.Errorf("account list is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	ledgerClient := ledger.NewClient(cfg.LedgerHost, cfg.LedgerTimeout)
	feeds := map[string]exchange.Feed{
		"binance":  exchange.NewBinanceFeed(cfg.BinanceSymbol, cfg.PriceTimeout),
		"coinbase": exchange.NewCoinbaseFeed(cfg.CoinbasePair, cfg.PriceTimeout),
	}

	job := balance.NewJob(balance.Config{SnapshotInterval: cfg.SnapshotInterval},
		ledgerClient, feeds, store, cfg.Accounts, logger)

	logger.Info("balance snapshots start",
		zap.String("ledger_host", cfg.LedgerHost),
		zap.Int("accounts", len(cfg.Accounts)),
		zap.Duration("interval", cfg.SnapshotInterval),
	)

	if err := job.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
