// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres opens the pgx pool shared by the game and auth repositories.
package postgres

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
	maxConnLifetime   = time.Hour
	maxConnIdleTime   = 10 * time.Minute
	healthCheckPeriod = time.Minute
)

// Options tunes the pool. Zero values keep the pgxpool defaults.
type Options struct {
	MaxConns int32
	MinConns int32

	// StatementTimeout is set on every new connection so a runaway catalog
	// scan cannot outlive the request that started it.
	StatementTimeout time.Duration
}

// Config parses dsn and applies options without connecting.
func Config(dsn string, options Options) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}

	if options.MaxConns > 0 {
		config.MaxConns = options.MaxConns
	}
	if options.MinConns > 0 && options.MinConns <= config.MaxConns {
		config.MinConns = options.MinConns
	}
	config.MaxConnLifetime = maxConnLifetime
	config.MaxConnIdleTime = maxConnIdleTime
	config.HealthCheckPeriod = healthCheckPeriod
	config.ConnConfig.ConnectTimeout = connectTimeout

	if options.StatementTimeout > 0 {
		statement := fmt.Sprintf("SET statement_timeout = %d", options.StatementTimeout.Milliseconds())
		config.AfterConnect = func(context stdctx.Context, connection *pgx.Conn) error {
			_, err := connection.Exec(context, statement)
			return err
		}
	}

	return config, nil
}

// NewPool connects and pings before returning, so a bad DATABASE_URL fails startup.
func NewPool(context stdctx.Context, dsn string, options Options, logger *slog.Logger) (*pgxpool.Pool, error) {
	config, err := Config(dsn, options)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(context, config)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := Ping(context, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_connected",
		slog.String("host", config.ConnConfig.Host),
		slog.String("database", config.ConnConfig.Database),
		slog.Int("max_conns", int(config.MaxConns)),
	)
	return pool, nil
}

// Ping is the readiness probe for the pool.
func Ping(context stdctx.Context, pool *pgxpool.Pool) error {
	probeContext, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := pool.Ping(probeContext); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}
