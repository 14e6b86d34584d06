// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config reads the Jasht runtime settings from the environment.

	cfg, err := config.Load()

Every field has an env tag; required ones fail [Load] when unset. The
returned value is passed down by pointer and never mutated afterwards.
*/
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
)

// Environments accepted in ENVIRONMENT.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// # Configuration Schema

// Config holds all runtime configuration for the Jasht API server.
type Config struct {

	// ## HTTP
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// AllowedOriginSuffix is the CORS domain outside development.
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"jasht.app"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"100"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"150"`

	// ## PostgreSQL
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`
	DBMaxConns    int32  `env:"DB_MAX_CONNS"   envDefault:"25"`
	DBMinConns    int32  `env:"DB_MIN_CONNS"   envDefault:"5"`

	// StoreTimeout bounds every catalog/library operation. Expiry surfaces as STORE_UNAVAILABLE.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	// ## Redis
	RedisURL      string `env:"REDIS_URL,required"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// StatsCacheTTL is how long the admin dashboard aggregates are served from Redis.
	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL" envDefault:"60s"`

	// ## Identity
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// AdminEmails are promoted to the admin role when they register.
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	// ## Error Reporting
	// SentryDSN empty disables Sentry.
	SentryDSN string `env:"SENTRY_DSN"`
}

// # Configuration Loading

// Load parses the environment into a [Config] and rejects inconsistent values.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var problems []error

	if !slices.Contains([]string{EnvDevelopment, EnvStaging, EnvProduction}, c.Environment) {
		problems = append(problems, fmt.Errorf("ENVIRONMENT %q is not one of development, staging, production", c.Environment))
	}
	if c.StoreTimeout <= 0 {
		problems = append(problems, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		problems = append(problems, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.DBMinConns > c.DBMaxConns {
		problems = append(problems, errors.New("DB_MIN_CONNS exceeds DB_MAX_CONNS"))
	}

	return errors.Join(problems...)
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// OriginSuffix returns the domain suffix accepted by the CORS middleware outside development.
func (c *Config) OriginSuffix() string {
	return c.AllowedOriginSuffix
}
