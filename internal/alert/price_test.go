package alert

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"poolPulse/internal/model"
	"poolPulse/internal/storage/memory"
)

type fakeNotifier struct {
	messages []string
	err      error
}

func (n *fakeNotifier) Notify(_ context.Context, message string) error {
	n.messages = append(n.messages, message)
	return n.err
}

var alertPool = model.Pool{ID: "pool-1", Title: "ICP/CHAT"}

func pricedRecord(hash string, at time.Time, price float64) model.SwapRecord {
	return model.SwapRecord{
		PoolID:       alertPool.ID,
		PoolLabel:    alertPool.Title,
		TxHash:       hash,
		TxTime:       at,
		ActionType:   "swap",
		Direction:    model.DirectionRefSell,
		Token0Symbol: "ICP",
		Token1Symbol: "CHAT",
		TradePrice:   &price,
		QuoteSymbol:  "CHAT",
	}
}

func seedRecords(t *testing.T, store *memory.Store, records ...model.SwapRecord) {
	t.Helper()
	_, err := store.UpsertTransactions(context.Background(), records)
	require.NoError(t, err)
}

func priceConfig() PriceConfig {
	return PriceConfig{
		Enabled:          true,
		ThresholdPercent: 15,
		Window:           time.Hour,
		MinSamples:       2,
		Cooldown:         10 * time.Minute,
	}
}

func TestPriceAlertFiresOnThreshold(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	// Stored prices are quote-per-reference; the display value inverts, so
	// 0.5 -> 0.4 reads as 2.0 -> 2.5, a +25% move.
	seedRecords(t, store,
		pricedRecord("p1", now.Add(-30*time.Minute), 0.5),
		pricedRecord("p2", now.Add(-5*time.Minute), 0.4),
	)

	notifier := &fakeNotifier{}
	a := NewPriceAlert(priceConfig(), store, notifier, NewState(), nil)
	a.now = func() time.Time { return now }

	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Len(t, notifier.messages, 1)
	require.Contains(t, notifier.messages[0], "ICPSwap price alert")
	require.Contains(t, notifier.messages[0], "ICP/CHAT: up 25.0%")
	require.Contains(t, notifier.messages[0], "price 2.000 → 2.500")
}

func TestPriceAlertBelowThreshold(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	seedRecords(t, store,
		pricedRecord("p1", now.Add(-30*time.Minute), 0.50),
		pricedRecord("p2", now.Add(-5*time.Minute), 0.49),
	)

	notifier := &fakeNotifier{}
	a := NewPriceAlert(priceConfig(), store, notifier, NewState(), nil)
	a.now = func() time.Time { return now }

	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Empty(t, notifier.messages)
}

func TestPriceAlertRequiresMinSamples(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	seedRecords(t, store, pricedRecord("p1", now.Add(-5*time.Minute), 0.4))

	notifier := &fakeNotifier{}
	a := NewPriceAlert(priceConfig(), store, notifier, NewState(), nil)
	a.now = func() time.Time { return now }

	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Empty(t, notifier.messages)
}

func TestPriceAlertIgnoresUnpricedRecords(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	unpriced := pricedRecord("p1", now.Add(-30*time.Minute), 0.5)
	unpriced.TradePrice = nil
	seedRecords(t, store, unpriced, pricedRecord("p2", now.Add(-5*time.Minute), 0.4))

	notifier := &fakeNotifier{}
	a := NewPriceAlert(priceConfig(), store, notifier, NewState(), nil)
	a.now = func() time.Time { return now }

	// Only one usable sample remains, below MinSamples.
	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Empty(t, notifier.messages)
}

func TestPriceAlertRespectsCooldown(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	seedRecords(t, store,
		pricedRecord("p1", now.Add(-30*time.Minute), 0.5),
		pricedRecord("p2", now.Add(-5*time.Minute), 0.4),
	)

	notifier := &fakeNotifier{}
	a := NewPriceAlert(priceConfig(), store, notifier, NewState(), nil)
	current := now
	a.now = func() time.Time { return current }

	require.NoError(t, a.Check(context.Background(), alertPool))
	current = now.Add(3 * time.Minute)
	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Len(t, notifier.messages, 1)

	current = now.Add(11 * time.Minute)
	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Len(t, notifier.messages, 2)
}

func TestPriceAlertDisabled(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	seedRecords(t, store,
		pricedRecord("p1", now.Add(-30*time.Minute), 0.5),
		pricedRecord("p2", now.Add(-5*time.Minute), 0.4),
	)

	cfg := priceConfig()
	cfg.Enabled = false
	notifier := &fakeNotifier{}
	a := NewPriceAlert(cfg, store, notifier, NewState(), nil)
	a.now = func() time.Time { return now }

	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Empty(t, notifier.messages)
}

func TestPriceAlertCooldownStampedOnNotifyFailure(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	seedRecords(t, store,
		pricedRecord("p1", now.Add(-30*time.Minute), 0.5),
		pricedRecord("p2", now.Add(-5*time.Minute), 0.4),
	)

	notifier := &fakeNotifier{err: fmt.Errorf("webhook down")}
	a := NewPriceAlert(priceConfig(), store, notifier, NewState(), nil)
	current := now
	a.now = func() time.Time { return current }

	require.Error(t, a.Check(context.Background(), alertPool))
	require.Len(t, notifier.messages, 1)

	// Inside the cooldown the failed alert is not retried.
	current = now.Add(3 * time.Minute)
	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Len(t, notifier.messages, 1)
}
