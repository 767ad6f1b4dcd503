// Package config holds the upgrade tool's configuration.
package config

import "github.com/concolato/flask-upgrade/internal/scan"

// Config is the complete configuration. It can be loaded from
// .flask-upgrade.yaml with environment variable overrides; flags take
// precedence over both.
type Config struct {
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Templates TemplatesConfig `yaml:"templates" mapstructure:"templates"`
	Rewrite   RewriteConfig   `yaml:"rewrite" mapstructure:"rewrite"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
}

// PathsConfig controls traversal.
type PathsConfig struct {
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to skip
}

// TemplatesConfig controls which non-source files are treated as templates.
type TemplatesConfig struct {
	Markers []string `yaml:"markers" mapstructure:"markers"` // substrings marking a template
	All     bool     `yaml:"all" mapstructure:"all"`         // treat every non-source file as a template
}

// RewriteConfig controls the transformation pipeline.
type RewriteConfig struct {
	TeardownDetection bool `yaml:"teardown_detection" mapstructure:"teardown_detection"`
}

// CacheConfig controls the in-memory result cache.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Ignore: scan.DefaultIgnorePatterns(),
		},
		Templates: TemplatesConfig{
			Markers: scan.DefaultTemplateMarkers(),
		},
		Rewrite: RewriteConfig{
			TeardownDetection: true,
		},
		Cache: CacheConfig{
			MaxEntries: 4096,
		},
	}
}
