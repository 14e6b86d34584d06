// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis opens the go-redis client behind the volatile parts of Jasht:
password reset and email verification tokens, and the cached admin
statistics snapshot. Nothing stored here is authoritative; losing it only
forces users to request a new token or the dashboard to recompute.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 2 * time.Second
	pingTimeout = 2 * time.Second
)

// Options tunes the client. A zero PoolSize keeps the go-redis default.
type Options struct {
	PoolSize int
}

// ClientOptions parses redisURL and applies options without dialing.
func ClientOptions(redisURL string, options Options) (*redis.Options, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	if options.PoolSize > 0 {
		parsed.PoolSize = options.PoolSize
		parsed.MaxIdleConns = max(1, options.PoolSize/2)
	}
	parsed.DialTimeout = dialTimeout
	parsed.ReadTimeout = ioTimeout
	parsed.WriteTimeout = ioTimeout
	return parsed, nil
}

// NewClient connects and pings before returning.
func NewClient(context stdctx.Context, redisURL string, options Options, logger *slog.Logger) (*redis.Client, error) {
	clientOptions, err := ClientOptions(redisURL, options)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(clientOptions)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_connected",
		slog.String("addr", clientOptions.Addr),
		slog.Int("db", clientOptions.DB),
	)
	return client, nil
}

// Ping is the readiness probe for the client.
func Ping(context stdctx.Context, client redis.UniversalClient) error {
	probeContext, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(probeContext).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}
