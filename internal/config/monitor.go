package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"poolPulse/internal/model"
)

// PriceAlertConfig holds price alert thresholds and windows.
type PriceAlertConfig struct {
	Enabled          bool
	ThresholdPercent float64
	Window           time.Duration
	MinSamples       int
	Cooldown         time.Duration
}

// VolumeAlertConfig holds volume alert thresholds and windows.
type VolumeAlertConfig struct {
	Enabled           bool
	Window            time.Duration
	Baseline          time.Duration
	IncreasePercent   float64
	MinBaselineVolume float64
	Cooldown          time.Duration
}

// MonitorConfig holds configuration for the pool monitor commands.
type MonitorConfig struct {
	APIBaseURL     string
	PGDSN          string
	WebhookURL     string
	PollInterval   time.Duration
	RequestTimeout time.Duration

	InitialPageLimit     int
	InitialMaxPages      int
	IncrementalBaseLimit int
	IncrementalMaxLimit  int
	ExportJSONL          string

	PriceAlert  PriceAlertConfig
	VolumeAlert VolumeAlertConfig

	Pools    []model.Pool
	LogLevel string
}

// LoadMonitor merges config file, environment variables, and flags into
// MonitorConfig.
func LoadMonitor(cfgFile string, flags *pflag.FlagSet) (MonitorConfig, error) {
	v := newViper()

	v.SetDefault("api-base-url", "https://api.icpswap.com")
	v.SetDefault("poll-interval", time.Minute)
	v.SetDefault("request-timeout", 15*time.Second)
	v.SetDefault("initial-page-limit", 300)
	v.SetDefault("initial-max-pages", 20)
	v.SetDefault("base-limit", 10)
	v.SetDefault("max-limit", 640)
	v.SetDefault("price-alert-enabled", true)
	v.SetDefault("price-alert-threshold", 15.0)
	v.SetDefault("price-alert-window", time.Hour)
	v.SetDefault("price-alert-min-samples", 2)
	v.SetDefault("price-alert-cooldown", 10*time.Minute)
	v.SetDefault("volume-alert-enabled", true)
	v.SetDefault("volume-alert-window", time.Hour)
	v.SetDefault("volume-alert-baseline", 24*time.Hour)
	v.SetDefault("volume-alert-increase", 100.0)
	v.SetDefault("volume-alert-min-baseline", 0.0)
	v.SetDefault("volume-alert-cooldown", 30*time.Minute)
	v.SetDefault("log-level", "info")

	if err := readInto(v, cfgFile, flags); err != nil {
		return MonitorConfig{}, err
	}

	cfg := MonitorConfig{
		APIBaseURL:           v.GetString("api-base-url"),
		PGDSN:                v.GetString("pg-dsn"),
		WebhookURL:           v.GetString("webhook-url"),
		PollInterval:         v.GetDuration("poll-interval"),
		RequestTimeout:       v.GetDuration("request-timeout"),
		InitialPageLimit:     v.GetInt("initial-page-limit"),
		InitialMaxPages:      v.GetInt("initial-max-pages"),
		IncrementalBaseLimit: v.GetInt("base-limit"),
		IncrementalMaxLimit:  v.GetInt("max-limit"),
		ExportJSONL:          v.GetString("export-jsonl"),
		PriceAlert: PriceAlertConfig{
			Enabled:          v.GetBool("price-alert-enabled"),
			ThresholdPercent: v.GetFloat64("price-alert-threshold"),
			Window:           v.GetDuration("price-alert-window"),
			MinSamples:       v.GetInt("price-alert-min-samples"),
			Cooldown:         v.GetDuration("price-alert-cooldown"),
		},
		VolumeAlert: VolumeAlertConfig{
			Enabled:           v.GetBool("volume-alert-enabled"),
			Window:            v.GetDuration("volume-alert-window"),
			Baseline:          v.GetDuration("volume-alert-baseline"),
			IncreasePercent:   v.GetFloat64("volume-alert-increase"),
			MinBaselineVolume: v.GetFloat64("volume-alert-min-baseline"),
			Cooldown:          v.GetDuration("volume-alert-cooldown"),
		},
		LogLevel: v.GetString("log-level"),
	}

	if v.IsSet("pools") {
		if err := v.UnmarshalKey("pools", &cfg.Pools); err != nil {
			return MonitorConfig{}, fmt.Errorf("parse pools: %w", err)
		}
	}
	if len(cfg.Pools) == 0 {
		cfg.Pools = DefaultPools()
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("POOLPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func readInto(v *viper.Viper, cfgFile string, flags *pflag.FlagSet) error {
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}
