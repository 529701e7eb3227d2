package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AnalyticsConfig tunes aggregation defaults without a redeploy.
type AnalyticsConfig struct {
	// Weight applied to a gallery interaction relative to a view when
	// ranking designs.
	InteractionWeight int `mapstructure:"interactionWeight"`
	TopDesignsLimit   int `mapstructure:"topDesignsLimit"`
	TopPagesLimit     int `mapstructure:"topPagesLimit"`
}

func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		InteractionWeight: 2,
		TopDesignsLimit:   10,
		TopPagesLimit:     10,
	}
}

// AnalyticsConfigHolder exposes the current analytics tuning config and
// hot-reloads it when the backing file changes.
type AnalyticsConfigHolder struct {
	current atomic.Value // holds AnalyticsConfig
}

func NewAnalyticsConfigHolder() (*AnalyticsConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("analytics")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/inkhaus")
	v.AddConfigPath(".")

	v.SetEnvPrefix("INKHAUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultAnalyticsConfig()
		v.SetDefault("analytics.interactionWeight", defaults.InteractionWeight)
		v.SetDefault("analytics.topDesignsLimit", defaults.TopDesignsLimit)
		v.SetDefault("analytics.topPagesLimit", defaults.TopPagesLimit)
	}

	var cfg AnalyticsConfig
	if err := v.UnmarshalKey("analytics", &cfg); err != nil {
		return nil, err
	}
	cfg = withAnalyticsDefaults(cfg)
	if err := validateAnalyticsConfig(cfg); err != nil {
		return nil, err
	}

	holder := &AnalyticsConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated AnalyticsConfig
		if err := v.UnmarshalKey("analytics", &updated); err != nil {
			log.Printf("[analytics-config] reload failed: %v", err)
			return
		}
		updated = withAnalyticsDefaults(updated)
		if err := validateAnalyticsConfig(updated); err != nil {
			log.Printf("[analytics-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[analytics-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticAnalyticsConfigHolder wraps a fixed config with no file watching.
func NewStaticAnalyticsConfigHolder(cfg AnalyticsConfig) *AnalyticsConfigHolder {
	holder := &AnalyticsConfigHolder{}
	holder.current.Store(withAnalyticsDefaults(cfg))
	return holder
}

func (h *AnalyticsConfigHolder) Get() AnalyticsConfig {
	return h.current.Load().(AnalyticsConfig)
}

func withAnalyticsDefaults(cfg AnalyticsConfig) AnalyticsConfig {
	defaults := DefaultAnalyticsConfig()
	if cfg.InteractionWeight == 0 {
		cfg.InteractionWeight = defaults.InteractionWeight
	}
	if cfg.TopDesignsLimit == 0 {
		cfg.TopDesignsLimit = defaults.TopDesignsLimit
	}
	if cfg.TopPagesLimit == 0 {
		cfg.TopPagesLimit = defaults.TopPagesLimit
	}
	return cfg
}

func validateAnalyticsConfig(cfg AnalyticsConfig) error {
	if cfg.InteractionWeight < 0 {
		return errors.New("analytics.interactionWeight cannot be negative")
	}
	if cfg.TopDesignsLimit <= 0 {
		return errors.New("analytics.topDesignsLimit must be positive")
	}
	if cfg.TopPagesLimit <= 0 {
		return errors.New("analytics.topPagesLimit must be positive")
	}
	return nil
}
