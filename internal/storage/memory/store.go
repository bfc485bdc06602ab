// Package memory provides in-memory implementations of the storage ports,
// used by unit tests and dry runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"poolPulse/internal/model"
)

// Store is an in-memory TransactionStore and BalanceStore.
type Store struct {
	mu           sync.RWMutex
	transactions map[string]model.SwapRecord // keyed by tx_hash
	snapshots    []model.BalanceSnapshot
}

func NewStore() *Store {
	return &Store{
		transactions: make(map[string]model.SwapRecord),
	}
}

// LatestTransaction returns the newest stored transaction for a pool, or
// nil when none exists.
func (s *Store) LatestTransaction(_ context.Context, poolID string) (*model.SwapCursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *model.SwapRecord
	for hash := range s.transactions {
		record := s.transactions[hash]
		if record.PoolID != poolID {
			continue
		}
		if latest == nil || record.TxTime.After(latest.TxTime) {
			copied := record
			latest = &copied
		}
	}
	if latest == nil {
		return nil, nil
	}
	return &model.SwapCursor{TxHash: latest.TxHash, TxTime: latest.TxTime}, nil
}

// UpsertTransactions stores records keyed by tx_hash. Existing hashes keep
// their first-stored values, matching the conflict-do-nothing semantics of
// the Postgres store; only newly written rows are counted.
func (s *Store) UpsertTransactions(_ context.Context, records []model.SwapRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(records))
	count := 0
	for _, record := range records {
		if _, dup := seen[record.TxHash]; dup {
			continue
		}
		seen[record.TxHash] = struct{}{}
		if _, exists := s.transactions[record.TxHash]; exists {
			continue
		}
		s.transactions[record.TxHash] = record
		count++
	}
	return count, nil
}

// TransactionsSince returns a pool's transactions with tx_time at or after
// since, ascending by tx_time.
func (s *Store) TransactionsSince(_ context.Context, poolID string, since time.Time) ([]model.SwapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []model.SwapRecord
	for _, record := range s.transactions {
		if record.PoolID != poolID || record.TxTime.Before(since) {
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].TxTime.Before(records[j].TxTime)
	})
	return records, nil
}

// InsertBalanceSnapshot appends a snapshot.
func (s *Store) InsertBalanceSnapshot(_ context.Context, snapshot model.BalanceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

// TransactionCount returns the number of stored transactions.
func (s *Store) TransactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}

// Transaction returns the stored record for a hash.
func (s *Store) Transaction(hash string) (model.SwapRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.transactions[hash]
	return record, ok
}

// Snapshots returns all stored balance snapshots.
func (s *Store) Snapshots() []model.BalanceSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.BalanceSnapshot, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}
