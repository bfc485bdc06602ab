package alert

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"poolPulse/internal/model"
	"poolPulse/internal/storage"
)

// VolumeConfig controls the volume surge evaluator. Baseline must strictly
// contain the recent window.
type VolumeConfig struct {
	Enabled           bool
	Window            time.Duration
	Baseline          time.Duration
	IncreasePercent   float64
	MinBaselineVolume float64
	Cooldown          time.Duration
	ReferenceSymbol   string
}

// VolumeAlert fires when the recent window's reference-asset volume exceeds
// the baseline per-window average by the configured percentage.
type VolumeAlert struct {
	cfg      VolumeConfig
	store    storage.TransactionStore
	notifier Notifier
	state    *State
	logger   *zap.Logger
	now      func() time.Time
}

func NewVolumeAlert(cfg VolumeConfig, store storage.TransactionStore, notifier Notifier, state *State, logger *zap.Logger) *VolumeAlert {
	if cfg.ReferenceSymbol == "" {
		cfg.ReferenceSymbol = "ICP"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VolumeAlert{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		state:    state,
		logger:   logger,
		now:      time.Now,
	}
}

// Check compares the recent window's volume against the baseline average
// and notifies on a surge outside the cooldown.
func (a *VolumeAlert) Check(ctx context.Context, pool model.Pool) error {
	if !a.cfg.Enabled {
		return nil
	}
	if a.cfg.Window <= 0 || a.cfg.Baseline <= 0 || a.cfg.Baseline <= a.cfg.Window {
		return nil
	}

	now := a.now()
	records, err := a.store.TransactionsSince(ctx, pool.ID, now.Add(-a.cfg.Baseline))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	windowStart := now.Add(-a.cfg.Window)
	var baselineVolume, windowVolume float64
	for _, record := range records {
		volume, ok := a.referenceVolume(record)
		if !ok {
			continue
		}
		baselineVolume += volume
		if !record.TxTime.Before(windowStart) {
			windowVolume += volume
		}
	}
	if baselineVolume <= 0 {
		return nil
	}

	windowsInBaseline := float64(a.cfg.Baseline) / float64(a.cfg.Window)
	averageWindowVolume := baselineVolume / windowsInBaseline
	if averageWindowVolume <= 0 || averageWindowVolume < a.cfg.MinBaselineVolume {
		return nil
	}

	increasePercent := (windowVolume - averageWindowVolume) / averageWindowVolume * 100
	if math.IsNaN(increasePercent) || math.IsInf(increasePercent, 0) {
		return nil
	}
	if increasePercent < a.cfg.IncreasePercent {
		return nil
	}

	if last, ok := a.state.lastVolumeAlert(pool.ID); ok && a.cfg.Cooldown > 0 && now.Sub(last) < a.cfg.Cooldown {
		return nil
	}

	message := strings.Join([]string{
		"ICPSwap volume alert",
		fmt.Sprintf("%s: last %dm volume +%.0f%% vs average", pool.Title, int(a.cfg.Window.Minutes()), increasePercent),
		fmt.Sprintf("current %s / average %s", a.formatVolume(windowVolume), a.formatVolume(averageWindowVolume)),
		fmt.Sprintf("baseline: per-window average over the trailing %dh", int(a.cfg.Baseline.Hours())),
		fmt.Sprintf("range %s → %s", formatTimestampLabel(windowStart), formatTimestampLabel(now)),
	}, "\n")

	a.state.markVolumeAlert(pool.ID, now)

	if err := a.notifier.Notify(ctx, message); err != nil {
		return fmt.Errorf("notify volume alert: %w", err)
	}
	return nil
}

// referenceVolume extracts the reference-asset side of a swap: token0's
// inflow when token0 is the reference symbol, token1's outflow when token1
// is. Other records contribute no volume.
func (a *VolumeAlert) referenceVolume(record model.SwapRecord) (float64, bool) {
	ref := strings.ToUpper(a.cfg.ReferenceSymbol)
	if strings.ToUpper(record.Token0Symbol) == ref {
		return positiveVolume(record.Token0AmountIn)
	}
	if strings.ToUpper(record.Token1Symbol) == ref {
		return positiveVolume(record.Token1AmountOut)
	}
	return 0, false
}

func positiveVolume(value *float64) (float64, bool) {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) || *value <= 0 {
		return 0, false
	}
	return *value, true
}

func (a *VolumeAlert) formatVolume(value float64) string {
	return fmt.Sprintf("%s %s", formatAmount(value), a.cfg.ReferenceSymbol)
}
