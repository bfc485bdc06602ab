package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poolPulse/internal/model"
)

// Store provides Postgres persistence for pool transactions and balance
// snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// LatestTransaction returns the newest stored transaction for a pool.
func (s *Store) LatestTransaction(ctx context.Context, poolID string) (*model.SwapCursor, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT tx_hash, tx_time
		FROM pool_transactions
		WHERE pool_id = $1
		ORDER BY tx_time DESC
		LIMIT 1
	`, poolID)

	var cursor model.SwapCursor
	if err := row.Scan(&cursor.TxHash, &cursor.TxTime); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load latest transaction for %s: %w", poolID, err)
	}
	return &cursor, nil
}

// UpsertTransactions inserts records, ignoring rows whose tx_hash already
// exists. Records are deduped by hash in-batch first so a single batch
// cannot conflict with itself. The returned count is rows actually
// written; conflicting hashes count zero.
func (s *Store) UpsertTransactions(ctx context.Context, records []model.SwapRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	deduped := dedupeByHash(records)

	batch := &pgx.Batch{}
	for _, r := range deduped {
		batch.Queue(`
			INSERT INTO pool_transactions (
				pool_id, pool_label, tx_hash, tx_time, action_type, direction,
				token0_symbol, token1_symbol, token0_amount_in, token1_amount_out,
				trade_price, quote_symbol, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now())
			ON CONFLICT (tx_hash) DO NOTHING
		`,
			r.PoolID,
			r.PoolLabel,
			r.TxHash,
			r.TxTime,
			r.ActionType,
			string(r.Direction),
			r.Token0Symbol,
			r.Token1Symbol,
			r.Token0AmountIn,
			r.Token1AmountOut,
			r.TradePrice,
			nullableString(r.QuoteSymbol),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range deduped {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("upsert transactions: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// TransactionsSince returns a pool's transactions from since onward,
// ascending by tx_time.
func (s *Store) TransactionsSince(ctx context.Context, poolID string, since time.Time) ([]model.SwapRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pool_id, pool_label, tx_hash, tx_time, action_type, direction,
			token0_symbol, token1_symbol, token0_amount_in, token1_amount_out,
			trade_price, quote_symbol
		FROM pool_transactions
		WHERE pool_id = $1 AND tx_time >= $2
		ORDER BY tx_time ASC
	`, poolID, since)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions for %s: %w", poolID, err)
	}
	defer rows.Close()

	var records []model.SwapRecord
	for rows.Next() {
		var r model.SwapRecord
		var direction string
		var quote *string
		if err := rows.Scan(
			&r.PoolID, &r.PoolLabel, &r.TxHash, &r.TxTime, &r.ActionType, &direction,
			&r.Token0Symbol, &r.Token1Symbol, &r.Token0AmountIn, &r.Token1AmountOut,
			&r.TradePrice, &quote,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		r.Direction = model.Direction(direction)
		if quote != nil {
			r.QuoteSymbol = *quote
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	return records, nil
}

// InsertBalanceSnapshot writes one snapshot row plus its per-account
// entries.
func (s *Store) InsertBalanceSnapshot(ctx context.Context, snapshot model.BalanceSnapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var snapshotID int64
	row := tx.QueryRow(ctx, `
		INSERT INTO balance_snapshots (taken_at, total_icp, had_error)
		VALUES ($1, $2, $3)
		RETURNING id
	`, snapshot.TakenAt, snapshot.TotalICP, snapshot.HadError)
	if err := row.Scan(&snapshotID); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	batch := &pgx.Batch{}
	for _, entry := range snapshot.Entries {
		batch.Queue(`
			INSERT INTO balance_snapshot_entries (
				snapshot_id, exchange_name, account_hex, balance_icp, error_message,
				price_usd, price_error_message, price_source, price_symbol
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
			snapshotID,
			entry.Account.Name,
			entry.Account.AccountHex,
			entry.BalanceICP,
			nullableString(entry.BalanceError),
			entry.PriceUSD,
			nullableString(entry.PriceError),
			nullableString(entry.Account.PriceSource),
			nullableString(entry.PriceSymbol),
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range snapshot.Entries {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert snapshot entries: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close snapshot batch: %w", err)
	}

	return tx.Commit(ctx)
}

func dedupeByHash(records []model.SwapRecord) []model.SwapRecord {
	seen := make(map[string]struct{}, len(records))
	deduped := make([]model.SwapRecord, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.TxHash]; ok {
			continue
		}
		seen[r.TxHash] = struct{}{}
		deduped = append(deduped, r)
	}
	return deduped
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
