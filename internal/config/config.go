// Package config provides configuration loading for the instinct CLI.
//
// Configuration is layered: hardcoded defaults, an optional YAML file in the
// homunculus directory, then HOMUNCULUS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultDirName is the homunculus directory relative to the user's home.
var DefaultDirName = filepath.Join(".claude", "homunculus")

// Config holds the complete instinct CLI configuration.
type Config struct {
	// Dir is the homunculus root holding instincts, evolved artifacts and
	// the observation log.
	Dir     string        `koanf:"dir"`
	Store   StoreConfig   `koanf:"store"`
	Evolve  EvolveConfig  `koanf:"evolve"`
	Observe ObserveConfig `koanf:"observe"`
	Watch   WatchConfig   `koanf:"watch"`
	Logging LoggingConfig `koanf:"logging"`
}

// StoreConfig controls record file discovery.
type StoreConfig struct {
	// Pattern is the doublestar glob matched against file names in each
	// tier directory.
	Pattern string `koanf:"pattern"`
}

// EvolveConfig holds clustering policy.
type EvolveConfig struct {
	MinInstincts   int     `koanf:"min_instincts"`
	TopN           int     `koanf:"top_n"`
	SampleSize     int     `koanf:"sample_size"`
	HighConfidence float64 `koanf:"high_confidence"`
	WordBoundary   bool    `koanf:"word_boundary"`
}

// ObserveConfig holds observation log settings.
type ObserveConfig struct {
	MaxFileSizeMB int `koanf:"max_file_size_mb"`
	MaxFieldChars int `koanf:"max_field_chars"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Debounce Duration `koanf:"debounce"`
}

// LoggingConfig selects log level and encoding.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// Caller adds the calling file and line to each entry.
	Caller bool `koanf:"caller"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Validate validates the configuration.
//
// Returns an error if:
//   - Dir is empty
//   - any evolve or observe limit is not positive
//   - high confidence is outside [0, 1]
//   - logging format is not console or json
func (c *Config) Validate() error {
	if c.Dir == "" {
		return errors.New("dir cannot be empty")
	}
	if c.Store.Pattern == "" {
		return errors.New("store pattern cannot be empty")
	}
	if c.Evolve.MinInstincts < 1 {
		return fmt.Errorf("invalid evolve.min_instincts: %d (must be >= 1)", c.Evolve.MinInstincts)
	}
	if c.Evolve.TopN < 1 {
		return fmt.Errorf("invalid evolve.top_n: %d (must be >= 1)", c.Evolve.TopN)
	}
	if c.Evolve.SampleSize < 1 {
		return fmt.Errorf("invalid evolve.sample_size: %d (must be >= 1)", c.Evolve.SampleSize)
	}
	if c.Evolve.HighConfidence < 0 || c.Evolve.HighConfidence > 1 {
		return fmt.Errorf("invalid evolve.high_confidence: %v (must be 0-1)", c.Evolve.HighConfidence)
	}
	if c.Observe.MaxFileSizeMB < 1 {
		return fmt.Errorf("invalid observe.max_file_size_mb: %d (must be >= 1)", c.Observe.MaxFileSizeMB)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging.format: %q (must be console or json)", c.Logging.Format)
	}
	return nil
}

// DefaultDir returns ~/.claude/homunculus.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Dir == "" {
		if dir, err := DefaultDir(); err == nil {
			cfg.Dir = dir
		}
	}
	cfg.Dir = expandHome(cfg.Dir)

	if cfg.Store.Pattern == "" {
		cfg.Store.Pattern = "*.yaml"
	}

	if cfg.Evolve.MinInstincts == 0 {
		cfg.Evolve.MinInstincts = 3
	}
	if cfg.Evolve.TopN == 0 {
		cfg.Evolve.TopN = 5
	}
	if cfg.Evolve.SampleSize == 0 {
		cfg.Evolve.SampleSize = 3
	}
	if cfg.Evolve.HighConfidence == 0 {
		cfg.Evolve.HighConfidence = 0.8
	}

	if cfg.Observe.MaxFileSizeMB == 0 {
		cfg.Observe.MaxFileSizeMB = 10
	}
	if cfg.Observe.MaxFieldChars == 0 {
		cfg.Observe.MaxFieldChars = 5000
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = Duration(500 * time.Millisecond)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}
