// Package monitor drives the periodic sync-and-alert cycle across all
// configured pools.
package monitor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"poolPulse/internal/alert"
	"poolPulse/internal/model"
	"poolPulse/internal/syncer"
)

// PoolSyncer synchronizes one pool's transaction history.
type PoolSyncer interface {
	SyncPool(ctx context.Context, pool model.Pool) (syncer.Result, error)
}

// Checker evaluates one alert type for a pool.
type Checker interface {
	Check(ctx context.Context, pool model.Pool) error
}

// PoolOutcome is one pool's result within a tick. SyncErr is fatal for the
// pool's tick; alert errors are advisory.
type PoolOutcome struct {
	Pool      model.Pool
	Sync      syncer.Result
	SyncErr   error
	PriceErr  error
	VolumeErr error
}

// TickReport collects every pool's outcome for one scheduler tick.
type TickReport struct {
	StartedAt time.Time
	Duration  time.Duration
	Skipped   bool
	Outcomes  []PoolOutcome
}

// Config holds scheduler timing.
type Config struct {
	PollInterval time.Duration
}

// Runner processes all pools strictly sequentially on each tick. A tick
// that fires while the previous one is still running is skipped, not
// queued.
type Runner struct {
	cfg      Config
	pools    []model.Pool
	syncer   PoolSyncer
	price    Checker
	volume   Checker
	notifier alert.Notifier
	logger   *zap.Logger
	inFlight atomic.Bool
}

func NewRunner(cfg Config, pools []model.Pool, poolSyncer PoolSyncer, price, volume Checker, notifier alert.Notifier, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:      cfg,
		pools:    pools,
		syncer:   poolSyncer,
		price:    price,
		volume:   volume,
		notifier: notifier,
		logger:   logger,
	}
}

// Run executes one tick immediately, then one per poll interval until the
// context is canceled.
func (r *Runner) Run(ctx context.Context) error {
	if r.cfg.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	r.RunOnce(ctx)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce processes every pool once and reports per-pool outcomes. No pool
// failure aborts the tick or the process; sync failures are reported via
// the notifier, and notifier failures are only logged.
func (r *Runner) RunOnce(ctx context.Context) TickReport {
	startedAt := time.Now()
	report := TickReport{StartedAt: startedAt}

	if !r.inFlight.CompareAndSwap(false, true) {
		r.logger.Warn("previous run still in progress, skipping this interval")
		report.Skipped = true
		return report
	}
	defer r.inFlight.Store(false)

	r.logger.Info("tick start", zap.Int("pools", len(r.pools)))

	for _, pool := range r.pools {
		report.Outcomes = append(report.Outcomes, r.processPool(ctx, pool))
	}

	report.Duration = time.Since(startedAt)
	r.logger.Info("tick finished", zap.Duration("took", report.Duration))
	if r.cfg.PollInterval > 0 && report.Duration > r.cfg.PollInterval {
		r.logger.Warn("tick exceeded poll interval",
			zap.Duration("took", report.Duration),
			zap.Duration("interval", r.cfg.PollInterval),
		)
	}
	return report
}

func (r *Runner) processPool(ctx context.Context, pool model.Pool) PoolOutcome {
	outcome := PoolOutcome{Pool: pool}
	poolStart := time.Now()

	result, err := r.syncer.SyncPool(ctx, pool)
	if err != nil {
		outcome.SyncErr = err
		r.logger.Error("pool sync failed", zap.String("pool", pool.Title), zap.Error(err))
		r.notifyFailure(ctx, fmt.Sprintf("ICPSwap monitor sync failed: %s - %v", pool.Title, err))
		return outcome
	}
	outcome.Sync = result
	r.logger.Info("pool synced",
		zap.String("pool", pool.Title),
		zap.String("mode", result.Mode),
		zap.Int("inserted", result.Inserted),
		zap.Duration("took", time.Since(poolStart)),
	)

	// Alert evaluation is secondary monitoring: failures are logged but
	// never stop the loop.
	if r.price != nil {
		if err := r.price.Check(ctx, pool); err != nil {
			outcome.PriceErr = err
			r.logger.Error("price alert evaluation failed", zap.String("pool", pool.Title), zap.Error(err))
		}
	}
	if r.volume != nil {
		if err := r.volume.Check(ctx, pool); err != nil {
			outcome.VolumeErr = err
			r.logger.Error("volume alert evaluation failed", zap.String("pool", pool.Title), zap.Error(err))
		}
	}

	return outcome
}

func (r *Runner) notifyFailure(ctx context.Context, message string) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Notify(ctx, message); err != nil {
		r.logger.Error("notify failed", zap.Error(err))
	}
}
