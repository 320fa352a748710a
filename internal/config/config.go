// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "SPLITTER"

// Config holds runtime configuration for the CLI and the server.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Unit is the currency label printed next to amounts. No conversion is applied.
	Unit string `envconfig:"UNIT" default:"PLN"`

	Addr   string `envconfig:"ADDR" default:":8080"`
	DBPath string `envconfig:"DB_PATH" default:"./data/ledgers.db"`

	// JWTSecret enables bearer authentication on the API when set.
	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
}

// Load reads configuration from SPLITTER_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &cfg, nil
}

// AuthEnabled reports whether the API requires bearer tokens.
func (c *Config) AuthEnabled() bool {
	return c != nil && c.JWTSecret != ""
}
