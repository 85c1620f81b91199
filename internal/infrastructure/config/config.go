package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// Report
	OutputPrecision int32 `env:"OUTPUT_PRECISION" envDefault:"4"`

	// Metrics (empty disables the textfile dump)
	MetricsFile string `env:"METRICS_FILE" envDefault:""`

	// PostgreSQL snapshot export (empty disables)
	DatabaseURL      string        `env:"DATABASE_URL"       envDefault:""`
	DatabaseMaxConns int           `env:"DATABASE_MAX_CONNS" envDefault:"4"`
	DatabaseMinConns int           `env:"DATABASE_MIN_CONNS" envDefault:"0"`
	DatabaseTimeout  time.Duration `env:"DATABASE_TIMEOUT"   envDefault:"30s"`
	MigrationsPath   string        `env:"MIGRATIONS_PATH"    envDefault:"internal/infrastructure/postgres/migrations"`

	// Redis snapshot export (empty disables)
	RedisURL         string        `env:"REDIS_URL"          envDefault:""`
	RedisSnapshotTTL time.Duration `env:"REDIS_SNAPSHOT_TTL" envDefault:"24h"`

	// Upper bound for all export sinks together
	ExportTimeout time.Duration `env:"EXPORT_TIMEOUT" envDefault:"1m"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// PostgresEnabled reports whether snapshots are exported to PostgreSQL.
func (c *Config) PostgresEnabled() bool {
	return c.DatabaseURL != ""
}

// RedisEnabled reports whether snapshots are exported to Redis.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}
