package config

import (
	"time"

	"github.com/harrydhillon-synapse/cosmosToDb/internal/infra/logsource"
	redisclient "github.com/harrydhillon-synapse/cosmosToDb/internal/infra/redis"
	"github.com/harrydhillon-synapse/cosmosToDb/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Reconcile ReconcileConfig    `yaml:"reconcile"`
	Source    logsource.Config   `yaml:"source"`
	Redis     redisclient.Config `yaml:"redis"`
	Logging   LoggingConfig      `yaml:"logging"`
	Database  postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ReconcileConfig holds settings for the reconciliation loop.
type ReconcileConfig struct {
	Interval      time.Duration `yaml:"interval"`
	PageSize      int           `yaml:"page_size"`
	LockTTL       time.Duration `yaml:"lock_ttl"`
	MigrationsDir string        `yaml:"migrations_dir"`
}
