package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Optional .env for local runs; deployments set real env vars.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "monitor",
		Short:        "ICPSwap pool monitor",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pool sync and alert loop",
		RunE:  runMonitor,
	}
	addMonitorFlags(runCmd)
	root.AddCommand(runCmd)

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a single sync and alert pass over all pools",
		RunE:  runSyncOnce,
	}
	addMonitorFlags(syncCmd)
	root.AddCommand(syncCmd)

	balancesCmd := &cobra.Command{
		Use:   "balances",
		Short: "Run the exchange balance snapshot loop",
		RunE:  runBalances,
	}
	balancesCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	balancesCmd.Flags().String("ledger-host", "", "ICP ledger API host")
	balancesCmd.Flags().Duration("snapshot-interval", 0, "interval between snapshots")
	balancesCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(balancesCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addMonitorFlags(cmd *cobra.Command) {
	cmd.Flags().String("api-base-url", "", "ICPSwap API base URL")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("webhook-url", "", "Discord webhook URL for alerts")
	cmd.Flags().Duration("poll-interval", 0, "interval between sync ticks")
	cmd.Flags().Duration("request-timeout", 0, "per-request API timeout")
	cmd.Flags().Int("initial-page-limit", 0, "page size for initial backfill")
	cmd.Flags().Int("initial-max-pages", 0, "page cap for initial backfill")
	cmd.Flags().Int("base-limit", 0, "starting limit for incremental fetch")
	cmd.Flags().Int("max-limit", 0, "limit cap for incremental fetch")
	cmd.Flags().String("export-jsonl", "", "also append synced swaps to this JSONL file")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
