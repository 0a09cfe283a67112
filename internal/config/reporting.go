package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ReportingConfig tunes how reports classify and reconcile ledger rows.
type ReportingConfig struct {
	FixedAssetCategories []string `mapstructure:"fixedAssetCategories"`
	AdvanceWindowMinutes int      `mapstructure:"advanceWindowMinutes"`
	AdvanceMarker        string   `mapstructure:"advanceMarker"`
	TransactionListLimit int      `mapstructure:"transactionListLimit"`
}

func DefaultReportingConfig() ReportingConfig {
	return ReportingConfig{
		FixedAssetCategories: []string{"FIXED_ASSET_PURCHASE"},
		AdvanceWindowMinutes: 5,
		AdvanceMarker:        "advance payment for project",
		TransactionListLimit: 100,
	}
}

// IsFixedAsset reports whether category is one of the configured fixed asset categories.
func (c ReportingConfig) IsFixedAsset(category string) bool {
	category = strings.TrimSpace(category)
	for _, candidate := range c.FixedAssetCategories {
		if strings.EqualFold(candidate, category) {
			return true
		}
	}
	return false
}

// AdvanceRule builds the advance de-duplication rule from the configured window and marker.
func (c ReportingConfig) AdvanceRule() cashflow.AdvanceRule {
	return cashflow.AdvanceRule{
		Window: time.Duration(c.AdvanceWindowMinutes) * time.Minute,
		Marker: c.AdvanceMarker,
	}
}

type ReportingConfigHolder struct {
	current atomic.Value // holds ReportingConfig
}

// NewStaticReportingConfig returns a holder that never reloads.
func NewStaticReportingConfig(cfg ReportingConfig) *ReportingConfigHolder {
	holder := &ReportingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewReportingConfigHolder(log *zap.Logger) (*ReportingConfigHolder, error) {
	log = log.Named("config.reporting")
	v := viper.New()

	v.SetConfigName("reporting")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/bizledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BIZLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultReportingConfig()
	v.SetDefault("reporting.fixedAssetCategories", defaults.FixedAssetCategories)
	v.SetDefault("reporting.advanceWindowMinutes", defaults.AdvanceWindowMinutes)
	v.SetDefault("reporting.advanceMarker", defaults.AdvanceMarker)
	v.SetDefault("reporting.transactionListLimit", defaults.TransactionListLimit)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg ReportingConfig
	if err := v.UnmarshalKey("reporting", &cfg); err != nil {
		return nil, err
	}
	if err := validateReportingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ReportingConfigHolder{}
	holder.current.Store(cfg)

	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ReportingConfig
		if err := v.UnmarshalKey("reporting", &updated); err != nil {
			log.Warn("reporting config reload failed", zap.Error(err))
			return
		}
		if err := validateReportingConfig(updated); err != nil {
			log.Warn("invalid reporting config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reporting config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *ReportingConfigHolder) Get() ReportingConfig {
	if h == nil {
		return DefaultReportingConfig()
	}
	return h.current.Load().(ReportingConfig)
}

func validateReportingConfig(cfg ReportingConfig) error {
	if cfg.AdvanceWindowMinutes <= 0 {
		return errors.New("reporting.advanceWindowMinutes must be positive")
	}
	if strings.TrimSpace(cfg.AdvanceMarker) == "" {
		return errors.New("reporting.advanceMarker cannot be empty")
	}
	if cfg.TransactionListLimit <= 0 {
		return errors.New("reporting.transactionListLimit must be positive")
	}
	return nil
}
