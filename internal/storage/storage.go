// Package storage defines the persistence ports consumed by the sync
// engine, the alert evaluators, and the balance snapshot job.
package storage

import (
	"context"
	"time"

	"poolPulse/internal/model"
)

// TransactionStore persists and reads back pool swap transactions.
type TransactionStore interface {
	// LatestTransaction returns the most recent stored transaction for the
	// pool by tx_time, or nil when the pool has no history yet.
	LatestTransaction(ctx context.Context, poolID string) (*model.SwapCursor, error)

	// UpsertTransactions writes records idempotently, conflict-keyed on
	// tx_hash. The batch is deduped by hash before writing; the returned
	// count is the number of rows actually written, so a conflicting hash
	// contributes zero.
	UpsertTransactions(ctx context.Context, records []model.SwapRecord) (int, error)

	// TransactionsSince returns the pool's transactions with tx_time at or
	// after since, ascending by tx_time.
	TransactionsSince(ctx context.Context, poolID string, since time.Time) ([]model.SwapRecord, error)
}

// BalanceStore persists exchange balance snapshots.
type BalanceStore interface {
	InsertBalanceSnapshot(ctx context.Context, snapshot model.BalanceSnapshot) error
}
