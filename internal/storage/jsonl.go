package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"poolPulse/internal/model"
)

// JSONLExport appends swap records to a JSONL file, one record per line.
type JSONLExport struct {
	path string
	mu   sync.Mutex
}

func NewJSONLExport(path string) *JSONLExport {
	return &JSONLExport{path: path}
}

// AppendTransactions appends a batch of swap records as JSON lines.
func (e *JSONLExport) AppendTransactions(records []model.SwapRecord) error {
	if len(records) == 0 {
		return nil
	}

	dir := filepath.Dir(e.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	file, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open export file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal swap record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write swap record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}

	return nil
}

// ExportStore decorates a TransactionStore, appending every upserted batch
// to a JSONL export. Reads pass through to the wrapped store.
type ExportStore struct {
	inner  TransactionStore
	export *JSONLExport
}

func NewExportStore(inner TransactionStore, export *JSONLExport) *ExportStore {
	return &ExportStore{inner: inner, export: export}
}

func (s *ExportStore) LatestTransaction(ctx context.Context, poolID string) (*model.SwapCursor, error) {
	return s.inner.LatestTransaction(ctx, poolID)
}

func (s *ExportStore) UpsertTransactions(ctx context.Context, records []model.SwapRecord) (int, error) {
	count, err := s.inner.UpsertTransactions(ctx, records)
	if err != nil {
		return count, err
	}
	if err := s.export.AppendTransactions(records); err != nil {
		return count, fmt.Errorf("export transactions: %w", err)
	}
	return count, nil
}

func (s *ExportStore) TransactionsSince(ctx context.Context, poolID string, since time.Time) ([]model.SwapRecord, error) {
	return s.inner.TransactionsSince(ctx, poolID, since)
}
