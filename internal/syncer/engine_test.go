package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"poolPulse/internal/icpswap"
	"poolPulse/internal/model"
	"poolPulse/internal/storage/memory"
	"poolPulse/internal/trade"
)

type fetchCall struct {
	page  int
	limit int
}

type fakeClient struct {
	calls   []fetchCall
	handler func(poolID string, page, limit int) (icpswap.Page, error)
}

func (c *fakeClient) PoolTransactions(_ context.Context, poolID string, page, limit int) (icpswap.Page, error) {
	c.calls = append(c.calls, fetchCall{page: page, limit: limit})
	return c.handler(poolID, page, limit)
}

func rawSwap(hash string, at time.Time) model.RawTransaction {
	return model.RawTransaction{
		ActionType:      "swap",
		TxHash:          hash,
		TxTime:          json.Number(strconv.FormatInt(at.UnixMilli(), 10)),
		Token0Symbol:    "ICP",
		Token1Symbol:    "CHAT",
		Token0LedgerID:  trade.DefaultReferenceLedgerID,
		Token1LedgerID:  "ne2vj-6yaaa-aaaag-qb3ia-cai",
		Token0AmountIn:  json.Number("1"),
		Token1AmountOut: json.Number("2"),
	}
}

func newEngine(cfg Config, client Client, store *memory.Store, logger *zap.Logger) *Engine {
	return NewEngine(cfg, client, store, trade.NewNormalizer(""), logger)
}

var testPool = model.Pool{ID: "pool-1", Title: "ICP/CHAT"}

func TestInitialSyncStopsAtMaxPages(t *testing.T) {
	base := time.UnixMilli(1700000000000).UTC()
	client := &fakeClient{
		handler: func(_ string, page, limit int) (icpswap.Page, error) {
			content := make([]model.RawTransaction, limit)
			for i := range content {
				content[i] = rawSwap(fmt.Sprintf("h-%d-%d", page, i), base.Add(time.Duration(page*limit+i)*time.Second))
			}
			return icpswap.Page{Content: content}, nil
		},
	}
	store := memory.NewStore()
	engine := newEngine(Config{PageLimit: 2, MaxPages: 3, BaseLimit: 10, MaxLimit: 640}, client, store, nil)

	result, err := engine.SyncPool(context.Background(), testPool)
	require.NoError(t, err)
	require.Equal(t, ModeInitial, result.Mode)
	require.Equal(t, 6, result.Inserted)
	require.Equal(t, 6, store.TransactionCount())
	require.Equal(t, []fetchCall{{1, 2}, {2, 2}, {3, 2}}, client.calls)
}

func TestInitialSyncStopsAtShortPage(t *testing.T) {
	base := time.UnixMilli(1700000000000).UTC()
	client := &fakeClient{
		handler: func(_ string, page, limit int) (icpswap.Page, error) {
			return icpswap.Page{Content: []model.RawTransaction{rawSwap("only", base)}}, nil
		},
	}
	store := memory.NewStore()
	engine := newEngine(Config{PageLimit: 2, MaxPages: 20, BaseLimit: 10, MaxLimit: 640}, client, store, nil)

	result, err := engine.SyncPool(context.Background(), testPool)
	require.NoError(t, err)
	require.Equal(t, 1, result.Inserted)
	require.Len(t, client.calls, 1)
}

func TestIncrementalSyncInsertsOnlyNewerThanCursor(t *testing.T) {
	base := time.UnixMilli(1700000000000).UTC()
	store := memory.NewStore()
	seed, err := trade.NewNormalizer("").Normalize(testPool, rawSwap("h1", base))
	require.NoError(t, err)
	_, err = store.UpsertTransactions(context.Background(), []model.SwapRecord{seed})
	require.NoError(t, err)

	client := &fakeClient{
		handler: func(_ string, page, limit int) (icpswap.Page, error) {
			return icpswap.Page{Content: []model.RawTransaction{
				rawSwap("h3", base.Add(2*time.Minute)),
				rawSwap("h2", base.Add(time.Minute)),
				rawSwap("h1", base),
				rawSwap("h0", base.Add(-time.Minute)),
			}}, nil
		},
	}
	engine := newEngine(Config{PageLimit: 300, MaxPages: 20, BaseLimit: 10, MaxLimit: 640}, client, store, nil)

	result, err := engine.SyncPool(context.Background(), testPool)
	require.NoError(t, err)
	require.Equal(t, ModeIncremental, result.Mode)
	require.Equal(t, 2, result.Inserted)
	require.Equal(t, 3, store.TransactionCount())
	_, exists := store.Transaction("h0")
	require.False(t, exists, "records at or before the cursor must not be re-inserted")
	require.Equal(t, []fetchCall{{1, 10}}, client.calls)
}

func TestIncrementalSyncStopsOnExactCursorMatch(t *testing.T) {
	base := time.UnixMilli(1700000000000).UTC()
	store := memory.NewStore()
	seed, err := trade.NewNormalizer("").Normalize(testPool, rawSwap("h1", base))
	require.NoError(t, err)
	_, err = store.UpsertTransactions(context.Background(), []model.SwapRecord{seed})
	require.NoError(t, err)

	client := &fakeClient{
		handler: func(_ string, page, limit int) (icpswap.Page, error) {
			return icpswap.Page{Content: []model.RawTransaction{
				rawSwap("h2", base.Add(time.Minute)),
				rawSwap("h1", base),
			}}, nil
		},
	}
	engine := newEngine(Config{BaseLimit: 2, MaxLimit: 640}, client, store, nil)

	result, err := engine.SyncPool(context.Background(), testPool)
	require.NoError(t, err)
	require.Equal(t, 1, result.Inserted)
	require.Len(t, client.calls, 1)
}

func TestIncrementalSyncDoublesLimitUpToMax(t *testing.T) {
	base := time.UnixMilli(1700000000000).UTC()
	store := memory.NewStore()
	seed, err := trade.NewNormalizer("").Normalize(testPool, rawSwap("cursor", base))
	require.NoError(t, err)
	_, err = store.UpsertTransactions(context.Background(), []model.SwapRecord{seed})
	require.NoError(t, err)

	// Every fetch returns a full page of records newer than the cursor, so
	// the window never provably covers the gap and the limit keeps doubling.
	client := &fakeClient{
		handler: func(_ string, page, limit int) (icpswap.Page, error) {
			content := make([]model.RawTransaction, limit)
			for i := range content {
				content[i] = rawSwap(fmt.Sprintf("n-%d-%d", limit, i), base.Add(time.Duration(limit+i)*time.Minute))
			}
			return icpswap.Page{Content: content}, nil
		},
	}
	engine := newEngine(Config{BaseLimit: 10, MaxLimit: 40}, client, store, nil)

	_, err = engine.SyncPool(context.Background(), testPool)
	require.NoError(t, err)
	require.Equal(t, []fetchCall{{1, 10}, {1, 20}, {1, 40}}, client.calls)
}

func TestIncrementalSyncWarnsOnGap(t *testing.T) {
	base := time.UnixMilli(1700000000000).UTC()
	store := memory.NewStore()
	seed, err := trade.NewNormalizer("").Normalize(testPool, rawSwap("cursor", base))
	require.NoError(t, err)
	_, err = store.UpsertTransactions(context.Background(), []model.SwapRecord{seed})
	require.NoError(t, err)

	// Full pages of non-swap activity: nothing inserted, cursor never seen.
	client := &fakeClient{
		handler: func(_ string, page, limit int) (icpswap.Page, error) {
			content := make([]model.RawTransaction, limit)
			for i := range content {
				tx := rawSwap(fmt.Sprintf("lp-%d-%d", limit, i), base.Add(time.Duration(i)*time.Minute))
				tx.ActionType = "addLiquidity"
				content[i] = tx
			}
			return icpswap.Page{Content: content}, nil
		},
	}
	core, logs := observer.New(zap.WarnLevel)
	engine := newEngine(Config{BaseLimit: 10, MaxLimit: 40}, client, store, zap.New(core))

	result, err := engine.SyncPool(context.Background(), testPool)
	require.NoError(t, err)
	require.Equal(t, 0, result.Inserted)
	require.Equal(t, 1, logs.FilterMessage("max incremental limit reached without hitting known record").Len())
}

func TestSyncPoolFailsFastOnFetchError(t *testing.T) {
	attempts := 0
	client := &fakeClient{
		handler: func(_ string, page, limit int) (icpswap.Page, error) {
			attempts++
			return icpswap.Page{}, fmt.Errorf("connection reset")
		},
	}
	engine := newEngine(Config{PageLimit: 300, MaxPages: 20, BaseLimit: 10, MaxLimit: 640}, client, memory.NewStore(), nil)

	_, err := engine.SyncPool(context.Background(), testPool)
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection reset")
	// Transport errors fail the pool's sync in one attempt; the next tick
	// is the only retry.
	require.Equal(t, 1, attempts)
}

func TestIncrementalSyncFailsFastOnFetchError(t *testing.T) {
	base := time.UnixMilli(1700000000000).UTC()
	store := memory.NewStore()
	seed, err := trade.NewNormalizer("").Normalize(testPool, rawSwap("cursor", base))
	require.NoError(t, err)
	_, err = store.UpsertTransactions(context.Background(), []model.SwapRecord{seed})
	require.NoError(t, err)

	client := &fakeClient{
		handler: func(_ string, page, limit int) (icpswap.Page, error) {
			return icpswap.Page{}, fmt.Errorf("gateway timeout")
		},
	}
	engine := newEngine(Config{BaseLimit: 10, MaxLimit: 640}, client, store, nil)

	_, err = engine.SyncPool(context.Background(), testPool)
	require.Error(t, err)
	require.Equal(t, []fetchCall{{1, 10}}, client.calls)
}
