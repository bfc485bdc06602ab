// Package balance snapshots exchange-held ICP balances together with
// centralized-exchange prices.
package balance

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"poolPulse/internal/exchange"
	"poolPulse/internal/model"
	"poolPulse/internal/storage"
)

// LedgerClient reads an account balance in ICP.
type LedgerClient interface {
	AccountBalance(ctx context.Context, accountHex string) (decimal.Decimal, error)
}

// Config holds snapshot job timing.
type Config struct {
	SnapshotInterval time.Duration
}

// Job captures one snapshot per interval: every configured account's
// balance plus the spot price from each configured feed. Individual fetch
// failures are recorded in the snapshot instead of failing the run.
type Job struct {
	cfg      Config
	ledger   LedgerClient
	feeds    map[string]exchange.Feed
	store    storage.BalanceStore
	accounts []model.ExchangeAccount
	logger   *zap.Logger
	now      func() time.Time
	inFlight atomic.Bool
}

func NewJob(cfg Config, ledgerClient LedgerClient, feeds map[string]exchange.Feed, store storage.BalanceStore, accounts []model.ExchangeAccount, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		cfg:      cfg,
		ledger:   ledgerClient,
		feeds:    feeds,
		store:    store,
		accounts: accounts,
		logger:   logger,
		now:      time.Now,
	}
}

// Run captures one snapshot immediately, then one per interval until the
// context is canceled. An interval firing mid-capture is skipped.
func (j *Job) Run(ctx context.Context) error {
	if j.cfg.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot interval must be positive")
	}

	j.runScheduled(ctx)

	ticker := time.NewTicker(j.cfg.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.runScheduled(ctx)
		}
	}
}

func (j *Job) runScheduled(ctx context.Context) {
	if !j.inFlight.CompareAndSwap(false, true) {
		j.logger.Warn("previous snapshot still in progress, skipping this interval")
		return
	}
	defer j.inFlight.Store(false)

	snapshot, err := j.Snapshot(ctx)
	if err != nil {
		j.logger.Error("snapshot failed", zap.Error(err))
		return
	}
	j.logger.Info("snapshot stored",
		zap.Bool("had_error", snapshot.HadError),
		zap.Int("accounts", len(snapshot.Entries)),
	)
}

// Snapshot collects balances and prices, then persists the result. The
// total is omitted when any account failed.
func (j *Job) Snapshot(ctx context.Context) (model.BalanceSnapshot, error) {
	if j.ledger == nil {
		return model.BalanceSnapshot{}, fmt.Errorf("ledger client is nil")
	}
	if j.store == nil {
		return model.BalanceSnapshot{}, fmt.Errorf("store is nil")
	}

	prices := j.fetchPrices(ctx)

	snapshot := model.BalanceSnapshot{TakenAt: j.now()}
	total := 0.0
	for _, account := range j.accounts {
		entry := model.AccountBalance{Account: account}

		icp, err := j.ledger.AccountBalance(ctx, account.AccountHex)
		if err != nil {
			entry.BalanceError = err.Error()
			snapshot.HadError = true
			j.logger.Warn("balance fetch failed", zap.String("account", account.Name), zap.Error(err))
		} else {
			value, _ := icp.Float64()
			entry.BalanceICP = &value
			total += value
		}

		if account.PriceSource != "" {
			quote, ok := prices[account.PriceSource]
			if !ok {
				entry.PriceError = fmt.Sprintf("price source %q not configured", account.PriceSource)
			} else {
				entry.PriceUSD = quote.price
				entry.PriceError = quote.err
				entry.PriceSymbol = quote.symbol
			}
		}

		snapshot.Entries = append(snapshot.Entries, entry)
	}
	if !snapshot.HadError {
		snapshot.TotalICP = &total
	}

	if err := j.store.InsertBalanceSnapshot(ctx, snapshot); err != nil {
		return model.BalanceSnapshot{}, fmt.Errorf("persist snapshot: %w", err)
	}
	return snapshot, nil
}

type priceQuote struct {
	price  *float64
	err    string
	symbol string
}

func (j *Job) fetchPrices(ctx context.Context) map[string]priceQuote {
	quotes := make(map[string]priceQuote, len(j.feeds))
	for source, feed := range j.feeds {
		quote := priceQuote{symbol: feed.Symbol()}
		price, err := feed.SpotPrice(ctx)
		if err != nil {
			quote.err = err.Error()
			j.logger.Warn("price fetch failed", zap.String("source", source), zap.Error(err))
		} else {
			quote.price = &price
		}
		quotes[source] = quote
	}
	return quotes
}
