package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Reconcile.Interval == 0 {
		cfg.Reconcile.Interval = 5 * time.Minute
	}
	if cfg.Reconcile.PageSize == 0 {
		cfg.Reconcile.PageSize = 100
	}
	if cfg.Reconcile.LockTTL == 0 {
		cfg.Reconcile.LockTTL = 10 * time.Minute
	}
	if cfg.Reconcile.MigrationsDir == "" {
		cfg.Reconcile.MigrationsDir = "migrations"
	}
	if cfg.Source.Timeout == 0 {
		cfg.Source.Timeout = 10 * time.Second
	}

	return &cfg, nil
}
