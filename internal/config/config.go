// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings shared by every command.
type Config struct {
	// DataDir is where the statefile, backups, and archive live.
	// Defaults to ~/.tend.
	DataDir string `env:"TEND_DATA_DIR"`

	// Locale is a BCP 47 tag for the Today label (en, ru).
	Locale string `env:"TEND_LOCALE" envDefault:"en"`

	// Device is an optional label recorded in state metadata at first run.
	Device string `env:"TEND_DEVICE"`

	// Seasonal enables folding winter/humidity multipliers into plant
	// scheduling. Off by default.
	Seasonal bool `env:"TEND_SEASONAL" envDefault:"false"`

	// Catalog is an optional path to a YAML catalog replacing the
	// embedded default. The file must pass schema validation.
	Catalog string `env:"TEND_CATALOG"`
}

// Load parses the environment and fills in defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".tend")
	}
	return cfg, nil
}
