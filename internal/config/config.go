// Package config loads the engine configuration from a YAML file with
// environment-variable overrides for deployment-specific settings.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Decimal wraps decimal.Decimal with YAML decoding. yaml.v3 cannot populate
// decimal.Decimal's unexported fields from a scalar node.
type Decimal struct {
	decimal.Decimal
}

// UnmarshalYAML parses a YAML scalar (number or string) into the decimal.
func (d *Decimal) UnmarshalYAML(value *yaml.Node) error {
	dec, err := decimal.NewFromString(value.Value)
	if err != nil {
		return fmt.Errorf("config: invalid decimal %q: %w", value.Value, err)
	}
	d.Decimal = dec
	return nil
}

// Config is the top-level engine configuration.
type Config struct {
	Server      ServerConfig       `yaml:"server"`
	Database    DatabaseConfig     `yaml:"database"`
	Game        GameConfig         `yaml:"game"`
	Instruments []InstrumentConfig `yaml:"instruments"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string `yaml:"port"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	IdleTimeoutSec  int    `yaml:"idle_timeout_sec"`
}

// DatabaseConfig holds PostgreSQL and Redis connection settings. Empty URLs
// select the in-memory store.
type DatabaseConfig struct {
	PostgresURL string `yaml:"postgres_url"`
	RedisURL    string `yaml:"redis_url"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"`
}

// GameConfig holds competition parameters.
type GameConfig struct {
	StartingCash Decimal `yaml:"starting_cash"`
	// ShockMagnitudes maps news severity to the maximum fractional price
	// move, e.g. moderate: 0.06. Empty entries keep the defaults.
	ShockMagnitudes map[string]Decimal `yaml:"shock_magnitudes"`
	RoundSeconds    int                `yaml:"round_seconds"`
}

// InstrumentConfig seeds one instrument at market initialization.
type InstrumentConfig struct {
	Symbol string  `yaml:"symbol"`
	Name   string  `yaml:"name"`
	Price  Decimal `yaml:"price"`
}

// Load reads the YAML file at path, applies defaults and env overrides, and
// validates the result. A missing file is not an error; defaults apply, so
// the engine runs with zero configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Run on defaults.
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides deployment settings from the environment.
func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.PostgresURL = url
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		c.Database.RedisURL = url
	}
}
