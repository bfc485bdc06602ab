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

// PriceConfig controls the price change evaluator.
type PriceConfig struct {
	Enabled          bool
	ThresholdPercent float64
	Window           time.Duration
	MinSamples       int
	Cooldown         time.Duration
}

// PriceAlert fires when the displayed price moved more than the threshold
// within the window. Prices are stored as quote-per-reference; messages
// show the inverse, reference units per quote token.
type PriceAlert struct {
	cfg      PriceConfig
	store    storage.TransactionStore
	notifier Notifier
	state    *State
	logger   *zap.Logger
	now      func() time.Time
}

func NewPriceAlert(cfg PriceConfig, store storage.TransactionStore, notifier Notifier, state *State, logger *zap.Logger) *PriceAlert {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceAlert{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		state:    state,
		logger:   logger,
		now:      time.Now,
	}
}

// Check evaluates the pool's recent price movement and notifies when it
// crosses the threshold outside the cooldown.
func (a *PriceAlert) Check(ctx context.Context, pool model.Pool) error {
	if !a.cfg.Enabled {
		return nil
	}
	if a.cfg.Window <= 0 {
		return nil
	}

	now := a.now()
	records, err := a.store.TransactionsSince(ctx, pool.ID, now.Add(-a.cfg.Window))
	if err != nil {
		return err
	}

	priced := make([]model.SwapRecord, 0, len(records))
	for _, record := range records {
		if validPrice(record.TradePrice) {
			priced = append(priced, record)
		}
	}
	if len(priced) < a.cfg.MinSamples {
		return nil
	}

	first := priced[0]
	latest := priced[len(priced)-1]
	displayBase := 1 / *first.TradePrice
	displayCurrent := 1 / *latest.TradePrice

	changePercent := (displayCurrent - displayBase) / displayBase * 100
	if math.IsNaN(changePercent) || math.IsInf(changePercent, 0) {
		return nil
	}
	if math.Abs(changePercent) < a.cfg.ThresholdPercent {
		return nil
	}

	if last, ok := a.state.lastPriceAlert(pool.ID); ok && a.cfg.Cooldown > 0 && now.Sub(last) < a.cfg.Cooldown {
		return nil
	}

	direction := "up"
	if changePercent < 0 {
		direction = "down"
	}
	message := strings.Join([]string{
		"ICPSwap price alert",
		fmt.Sprintf("%s: %s %.1f%%", pool.Title, direction, changePercent),
		fmt.Sprintf("price %s → %s", formatPrice(displayBase), formatPrice(displayCurrent)),
		fmt.Sprintf("range %s → %s (last %dm)",
			formatTimestampLabel(first.TxTime), formatTimestampLabel(latest.TxTime),
			int(a.cfg.Window.Minutes())),
	}, "\n")

	// The cooldown stamp does not depend on delivery succeeding.
	a.state.markPriceAlert(pool.ID, now)

	if err := a.notifier.Notify(ctx, message); err != nil {
		return fmt.Errorf("notify price alert: %w", err)
	}
	return nil
}

func validPrice(value *float64) bool {
	return value != nil && !math.IsNaN(*value) && !math.IsInf(*value, 0) && *value > 0
}
