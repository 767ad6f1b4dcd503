package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load builds the effective configuration: defaults, overlaid with whatever
// the given viper instance read from file, environment, or bound flags.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if cfg.Cache.MaxEntries <= 0 {
		return nil, fmt.Errorf("cache.max_entries must be positive, got %d", cfg.Cache.MaxEntries)
	}
	return cfg, nil
}
