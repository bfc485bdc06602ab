// Package syncer keeps the stored transaction history of each pool in step
// with the ICPSwap API, without re-downloading history it already has.
package syncer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"poolPulse/internal/icpswap"
	"poolPulse/internal/model"
	"poolPulse/internal/storage"
	"poolPulse/internal/trade"
)

// Sync modes reported in a Result.
const (
	ModeInitial     = "initial"
	ModeIncremental = "incremental"
)

// Client fetches one page of pool transactions, newest first.
type Client interface {
	PoolTransactions(ctx context.Context, poolID string, page, limit int) (icpswap.Page, error)
}

// Config bounds the two sync modes. PageLimit/MaxPages drive the initial
// backfill; BaseLimit/MaxLimit bound the adaptive incremental window.
type Config struct {
	PageLimit int
	MaxPages  int
	BaseLimit int
	MaxLimit  int
}

// Engine synchronizes pool transactions into a TransactionStore.
type Engine struct {
	cfg        Config
	client     Client
	store      storage.TransactionStore
	normalizer trade.Normalizer
	logger     *zap.Logger
}

// Result summarizes one pool's sync.
type Result struct {
	PoolID   string
	Mode     string
	Inserted int
}

func NewEngine(cfg Config, client Client, store storage.TransactionStore, normalizer trade.Normalizer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:        cfg,
		client:     client,
		store:      store,
		normalizer: normalizer,
		logger:     logger,
	}
}

// SyncPool runs a full backfill when the pool has no stored history, or an
// incremental catch-up from the newest stored transaction otherwise. A
// transport failure fails the pool's sync immediately; the next scheduled
// tick is the retry.
func (e *Engine) SyncPool(ctx context.Context, pool model.Pool) (Result, error) {
	if e.client == nil {
		return Result{}, fmt.Errorf("client is nil")
	}
	if e.store == nil {
		return Result{}, fmt.Errorf("store is nil")
	}

	latest, err := e.store.LatestTransaction(ctx, pool.ID)
	if err != nil {
		return Result{}, err
	}

	if latest == nil {
		inserted, err := e.runInitialSync(ctx, pool)
		if err != nil {
			return Result{}, err
		}
		return Result{PoolID: pool.ID, Mode: ModeInitial, Inserted: inserted}, nil
	}

	inserted, err := e.runIncrementalSync(ctx, pool, *latest)
	if err != nil {
		return Result{}, err
	}
	return Result{PoolID: pool.ID, Mode: ModeIncremental, Inserted: inserted}, nil
}

// runInitialSync paginates from page 1 until a short page (natural end of
// history) or the page cap (safety bound against unbounded backfill).
func (e *Engine) runInitialSync(ctx context.Context, pool model.Pool) (int, error) {
	totalInserted := 0

	for page := 1; page <= e.cfg.MaxPages; page++ {
		result, err := e.client.PoolTransactions(ctx, pool.ID, page, e.cfg.PageLimit)
		if err != nil {
			return totalInserted, fmt.Errorf("fetch page %d: %w", page, err)
		}

		records := e.normalizeSwaps(pool, result.Content)
		if len(records) > 0 {
			inserted, err := e.store.UpsertTransactions(ctx, records)
			if err != nil {
				return totalInserted, fmt.Errorf("upsert page %d: %w", page, err)
			}
			totalInserted += inserted
		}

		if len(result.Content) < e.cfg.PageLimit {
			break
		}
	}

	return totalInserted, nil
}

// runIncrementalSync fetches the most recent transactions with an
// adaptively widening limit, scanning newest to oldest until the fetch
// window provably covers the gap back to the stored cursor. The limit
// doubles while the window may have missed history, capped at MaxLimit.
func (e *Engine) runIncrementalSync(ctx context.Context, pool model.Pool, cursor model.SwapCursor) (int, error) {
	limit := e.cfg.BaseLimit
	inserted := 0
	hitKnownRecord := false

	for limit <= e.cfg.MaxLimit {
		result, err := e.client.PoolTransactions(ctx, pool.ID, 1, limit)
		if err != nil {
			return inserted, fmt.Errorf("fetch limit %d: %w", limit, err)
		}
		if len(result.Content) == 0 {
			break
		}

		records, reachedKnownRecord := e.extractNewRecords(pool, result.Content, cursor)
		if reachedKnownRecord {
			hitKnownRecord = true
		}

		if len(records) > 0 {
			count, err := e.store.UpsertTransactions(ctx, records)
			if err != nil {
				return inserted, fmt.Errorf("upsert limit %d: %w", limit, err)
			}
			inserted += count
		}

		if reachedKnownRecord || len(result.Content) < limit {
			break
		}
		if limit >= e.cfg.MaxLimit {
			break
		}
		limit *= 2
		if limit > e.cfg.MaxLimit {
			limit = e.cfg.MaxLimit
		}
	}

	if !hitKnownRecord && inserted == 0 && limit >= e.cfg.MaxLimit {
		e.logger.Warn("max incremental limit reached without hitting known record",
			zap.String("pool", pool.Title),
			zap.Int("max_limit", e.cfg.MaxLimit),
		)
	}

	return inserted, nil
}

// extractNewRecords scans newest-to-oldest, collecting swaps strictly newer
// than the cursor. It reports whether the scan reached the known record: a
// transaction strictly older than the cursor, or the exact cursor
// transaction itself. Collected records come back in chronological order.
func (e *Engine) extractNewRecords(pool model.Pool, content []model.RawTransaction, cursor model.SwapCursor) ([]model.SwapRecord, bool) {
	var records []model.SwapRecord
	reachedKnownRecord := false

	for _, tx := range content {
		if !e.normalizer.IsSwap(tx) {
			continue
		}

		record, err := e.normalizer.Normalize(pool, tx)
		if err != nil {
			e.logger.Warn("skip malformed transaction", zap.String("pool", pool.Title), zap.Error(err))
			continue
		}

		if record.TxTime.Before(cursor.TxTime) {
			reachedKnownRecord = true
			break
		}
		if record.TxTime.Equal(cursor.TxTime) && record.TxHash == cursor.TxHash {
			reachedKnownRecord = true
			continue
		}

		records = append(records, record)
	}

	reverse(records)
	return records, reachedKnownRecord
}

// normalizeSwaps filters to swap transactions and normalizes them, skipping
// records with malformed timestamps.
func (e *Engine) normalizeSwaps(pool model.Pool, content []model.RawTransaction) []model.SwapRecord {
	records := make([]model.SwapRecord, 0, len(content))
	for _, tx := range content {
		if !e.normalizer.IsSwap(tx) {
			continue
		}
		record, err := e.normalizer.Normalize(pool, tx)
		if err != nil {
			e.logger.Warn("skip malformed transaction", zap.String("pool", pool.Title), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	return records
}

func reverse(records []model.SwapRecord) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
}
