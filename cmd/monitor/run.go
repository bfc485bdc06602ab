package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolPulse/internal/alert"
	"poolPulse/internal/config"
	"poolPulse/internal/icpswap"
	"poolPulse/internal/monitor"
	"poolPulse/internal/notify"
	"poolPulse/internal/storage"
	"poolPulse/internal/storage/postgres"
	"poolPulse/internal/syncer"
	"poolPulse/internal/trade"
)

func runMonitor(cmd *cobra.Command, _ []string) error {
	return startMonitor(cmd, false)
}

func runSyncOnce(cmd *cobra.Command, _ []string) error {
	return startMonitor(cmd, true)
}

func startMonitor(cmd *cobra.Command, once bool) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadMonitor(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}
	if len(cfg.Pools) == 0 {
		return fmt.Errorf("pool list is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	var txStore storage.TransactionStore = store
	if cfg.ExportJSONL != "" {
		txStore = storage.NewExportStore(store, storage.NewJSONLExport(cfg.ExportJSONL))
	}

	client := icpswap.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	notifier := notify.NewDiscord(cfg.WebhookURL, cfg.RequestTimeout)
	normalizer := trade.NewNormalizer("")

	engine := syncer.NewEngine(syncer.Config{
		PageLimit: cfg.InitialPageLimit,
		MaxPages:  cfg.InitialMaxPages,
		BaseLimit: cfg.IncrementalBaseLimit,
		MaxLimit:  cfg.IncrementalMaxLimit,
	}, client, txStore, normalizer, logger)

	state := alert.NewState()
	priceAlert := alert.NewPriceAlert(alert.PriceConfig{
		Enabled:          cfg.PriceAlert.Enabled,
		ThresholdPercent: cfg.PriceAlert.ThresholdPercent,
		Window:           cfg.PriceAlert.Window,
		MinSamples:       cfg.PriceAlert.MinSamples,
		Cooldown:         cfg.PriceAlert.Cooldown,
	}, store, notifier, state, logger)
	volumeAlert := alert.NewVolumeAlert(alert.VolumeConfig{
		Enabled:           cfg.VolumeAlert.Enabled,
		Window:            cfg.VolumeAlert.Window,
		Baseline:          cfg.VolumeAlert.Baseline,
		IncreasePercent:   cfg.VolumeAlert.IncreasePercent,
		MinBaselineVolume: cfg.VolumeAlert.MinBaselineVolume,
		Cooldown:          cfg.VolumeAlert.Cooldown,
	}, store, notifier, state, logger)

	runner := monitor.NewRunner(monitor.Config{PollInterval: cfg.PollInterval},
		cfg.Pools, engine, priceAlert, volumeAlert, notifier, logger)

	logger.Info("monitor start",
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.Int("pools", len(cfg.Pools)),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Bool("price_alert", cfg.PriceAlert.Enabled),
		zap.Bool("volume_alert", cfg.VolumeAlert.Enabled),
		zap.Bool("once", once),
	)

	if once {
		report := runner.RunOnce(ctx)
		for _, outcome := range report.Outcomes {
			if outcome.SyncErr != nil {
				return fmt.Errorf("sync %s: %w", outcome.Pool.Title, outcome.SyncErr)
			}
		}
		return nil
	}

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
