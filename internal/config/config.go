// Package config loads process configuration from the environment and
// exposes the embedded rules tables.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// Config holds settings shared by every command. Cobra flags override these.
type Config struct {
	DBPath     string        `env:"COMPENDIUM_DB_PATH"      envDefault:"compendium.db"`
	RedisAddr  string        `env:"COMPENDIUM_REDIS_ADDR"   envDefault:"localhost:6379"`
	ImportDir  string        `env:"COMPENDIUM_IMPORT_DIR"   envDefault:"import-files"`
	GRPCPort   int           `env:"COMPENDIUM_GRPC_PORT"    envDefault:"50051"`
	SRDBaseURL string        `env:"COMPENDIUM_SRD_BASE_URL" envDefault:"https://www.dnd5eapi.co/api/2014/"`
	CacheTTL   time.Duration `env:"COMPENDIUM_CACHE_TTL"    envDefault:"15m"`
}

// Load parses the environment into a Config and validates it
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("COMPENDIUM_DB_PATH", c.DBPath, vb)
	errors.ValidateRange("COMPENDIUM_GRPC_PORT", c.GRPCPort, 1, 65535, vb)
	if c.CacheTTL <= 0 {
		vb.Field("COMPENDIUM_CACHE_TTL", "must be positive")
	}
	return vb.Build()
}
