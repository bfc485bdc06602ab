package alert

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"poolPulse/internal/model"
	"poolPulse/internal/storage/memory"
)

func icpInRecord(hash string, at time.Time, icpIn float64) model.SwapRecord {
	return model.SwapRecord{
		PoolID:         alertPool.ID,
		PoolLabel:      alertPool.Title,
		TxHash:         hash,
		TxTime:         at,
		ActionType:     "swap",
		Direction:      model.DirectionRefSell,
		Token0Symbol:   "ICP",
		Token1Symbol:   "CHAT",
		Token0AmountIn: &icpIn,
	}
}

func volumeConfig() VolumeConfig {
	return VolumeConfig{
		Enabled:         true,
		Window:          time.Hour,
		Baseline:        24 * time.Hour,
		IncreasePercent: 100,
		Cooldown:        30 * time.Minute,
		ReferenceSymbol: "ICP",
	}
}

func TestVolumeAlertFiresOnSurge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	// Baseline 2400 ICP over 24h averages 100 per hour; the last hour saw
	// 250, a +150% surge.
	seedRecords(t, store,
		icpInRecord("v1", now.Add(-2*time.Hour), 2150),
		icpInRecord("v2", now.Add(-30*time.Minute), 250),
	)

	notifier := &fakeNotifier{}
	a := NewVolumeAlert(volumeConfig(), store, notifier, NewState(), nil)
	a.now = func() time.Time { return now }

	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Len(t, notifier.messages, 1)
	require.Contains(t, notifier.messages[0], "ICPSwap volume alert")
	require.Contains(t, notifier.messages[0], "last 60m volume +150% vs average")
	require.Contains(t, notifier.messages[0], "current 250.00 ICP / average 100.00 ICP")
}

func TestVolumeAlertBelowIncrease(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	// Same 100-per-hour average with only 150 in the last hour: +50%.
	seedRecords(t, store,
		icpInRecord("v1", now.Add(-2*time.Hour), 2250),
		icpInRecord("v2", now.Add(-30*time.Minute), 150),
	)

	notifier := &fakeNotifier{}
	a := NewVolumeAlert(volumeConfig(), store, notifier, NewState(), nil)
	a.now = func() time.Time { return now }

	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Empty(t, notifier.messages)
}

func TestVolumeAlertMisconfiguredBaseline(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	seedRecords(t, store,
		icpInRecord("v1", now.Add(-2*time.Hour), 2150),
		icpInRecord("v2", now.Add(-30*time.Minute), 250),
	)

	cfg := volumeConfig()
	cfg.Baseline = 30 * time.Minute
	notifier := &fakeNotifier{}
	a := NewVolumeAlert(cfg, store, notifier, NewState(), nil)
	a.now = func() time.Time { return now }

	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Empty(t, notifier.messages)
}

func TestVolumeAlertMinBaselineGate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	seedRecords(t, store,
		icpInRecord("v1", now.Add(-2*time.Hour), 2150),
		icpInRecord("v2", now.Add(-30*time.Minute), 250),
	)

	cfg := volumeConfig()
	cfg.MinBaselineVolume = 200
	notifier := &fakeNotifier{}
	a := NewVolumeAlert(cfg, store, notifier, NewState(), nil)
	a.now = func() time.Time { return now }

	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Empty(t, notifier.messages)
}

func TestVolumeAlertIgnoresNonReferencePairs(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	amount := 5000.0
	foreign := model.SwapRecord{
		PoolID:         alertPool.ID,
		TxHash:         "v1",
		TxTime:         now.Add(-30 * time.Minute),
		ActionType:     "swap",
		Token0Symbol:   "CHAT",
		Token1Symbol:   "KINIC",
		Token0AmountIn: &amount,
	}
	seedRecords(t, store, foreign)

	notifier := &fakeNotifier{}
	a := NewVolumeAlert(volumeConfig(), store, notifier, NewState(), nil)
	a.now = func() time.Time { return now }

	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Empty(t, notifier.messages)
}

func TestVolumeAlertToken1Reference(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	build := func(hash string, at time.Time, icpOut float64) model.SwapRecord {
		return model.SwapRecord{
			PoolID:          alertPool.ID,
			TxHash:          hash,
			TxTime:          at,
			ActionType:      "swap",
			Token0Symbol:    "CHAT",
			Token1Symbol:    "ICP",
			Token1AmountOut: &icpOut,
		}
	}
	seedRecords(t, store,
		build("v1", now.Add(-2*time.Hour), 2150),
		build("v2", now.Add(-30*time.Minute), 250),
	)

	notifier := &fakeNotifier{}
	a := NewVolumeAlert(volumeConfig(), store, notifier, NewState(), nil)
	a.now = func() time.Time { return now }

	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Len(t, notifier.messages, 1)
}

func TestVolumeAlertRespectsCooldown(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	seedRecords(t, store,
		icpInRecord("v1", now.Add(-2*time.Hour), 2150),
		icpInRecord("v2", now.Add(-30*time.Minute), 250),
	)

	notifier := &fakeNotifier{}
	a := NewVolumeAlert(volumeConfig(), store, notifier, NewState(), nil)
	current := now
	a.now = func() time.Time { return current }

	require.NoError(t, a.Check(context.Background(), alertPool))
	current = now.Add(10 * time.Minute)
	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Len(t, notifier.messages, 1)

	// Keep the surge inside the window once the cooldown has elapsed.
	seedRecords(t, store, icpInRecord("v3", now.Add(20*time.Minute), 250))
	current = now.Add(31 * time.Minute)
	require.NoError(t, a.Check(context.Background(), alertPool))
	require.Len(t, notifier.messages, 2)
}
