// internal/config/config.go
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration, populated from the environment.
// Redis and Postgres are optional: leave their addresses empty to run the
// server without the audit feed or results persistence.
type Config struct {
	Addr             string `env:"ADDR" envDefault:":8080"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	DisconnectPolicy string `env:"DISCONNECT_POLICY" envDefault:"auto_pass"`

	// TokenExpire is the session-token lifetime ("never" or a Go duration).
	TokenExpire string `env:"TOKEN_EXPIRE_TIME" envDefault:"never"`

	RedisAddr    string `env:"REDIS_ADDR"`
	RedisDB      int    `env:"REDIS_DB" envDefault:"0"`
	HistoryQueue string `env:"HISTORY_QUEUE_NAME" envDefault:"tankard_actions"`
	PostgresUser string `env:"POSTGRES_USER"`
	PostgresPass string `env:"POSTGRES_PASSWORD"`
	PostgresHost string `env:"PG_HOST"`
	PostgresPort string `env:"PG_PORT" envDefault:"5432"`
	PostgresDB   string `env:"PG_DATABASE"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// PostgresURL assembles the pgx connection string, or "" when no host is
// configured.
func (c Config) PostgresURL() string {
	if c.PostgresHost == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB,
	)
}
