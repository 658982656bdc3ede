package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// AnalyticsConfig carries tunables that can change without a restart.
type AnalyticsConfig struct {
	CashOutflowHorizonDays int `mapstructure:"cashOutflowHorizonDays"`
	TopVendorsLimit        int `mapstructure:"topVendorsLimit"`
	HistoryDefaultLimit    int `mapstructure:"historyDefaultLimit"`
	HistoryMaxLimit        int `mapstructure:"historyMaxLimit"`
}

func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		CashOutflowHorizonDays: 90,
		TopVendorsLimit:        10,
		HistoryDefaultLimit:    20,
		HistoryMaxLimit:        100,
	}
}

type AnalyticsConfigHolder struct {
	current atomic.Value // holds AnalyticsConfig
}

// NewStaticAnalyticsConfigHolder returns a holder that never reloads.
func NewStaticAnalyticsConfigHolder(cfg AnalyticsConfig) *AnalyticsConfigHolder {
	holder := &AnalyticsConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewAnalyticsConfigHolder(log *zap.Logger) (*AnalyticsConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("analytics-config")

	v := viper.New()

	v.SetConfigName("analytics")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/spendlens")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SPENDLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultAnalyticsConfig()
	v.SetDefault("analytics.cashOutflowHorizonDays", defaults.CashOutflowHorizonDays)
	v.SetDefault("analytics.topVendorsLimit", defaults.TopVendorsLimit)
	v.SetDefault("analytics.historyDefaultLimit", defaults.HistoryDefaultLimit)
	v.SetDefault("analytics.historyMaxLimit", defaults.HistoryMaxLimit)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg AnalyticsConfig
	if err := v.UnmarshalKey("analytics", &cfg); err != nil {
		return nil, err
	}
	if err := validateAnalyticsConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticAnalyticsConfigHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated AnalyticsConfig
		if err := v.UnmarshalKey("analytics", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateAnalyticsConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *AnalyticsConfigHolder) Get() AnalyticsConfig {
	return h.current.Load().(AnalyticsConfig)
}

func validateAnalyticsConfig(cfg AnalyticsConfig) error {
	if cfg.CashOutflowHorizonDays <= 0 {
		return errors.New("analytics.cashOutflowHorizonDays must be positive")
	}
	if cfg.TopVendorsLimit <= 0 || cfg.TopVendorsLimit > 100 {
		return errors.New("analytics.topVendorsLimit must be between 1 and 100")
	}
	if cfg.HistoryMaxLimit <= 0 {
		return errors.New("analytics.historyMaxLimit must be positive")
	}
	if cfg.HistoryDefaultLimit <= 0 || cfg.HistoryDefaultLimit > cfg.HistoryMaxLimit {
		return errors.New("analytics.historyDefaultLimit must be between 1 and historyMaxLimit")
	}
	return nil
}
