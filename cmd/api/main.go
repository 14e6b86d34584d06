// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api serves the Jasht catalog, library and identity endpoints.
//
// Startup connects PostgreSQL and Redis, applies pending migrations, wires
// the auth and game services and listens until SIGINT or SIGTERM. Any
// startup failure exits with status 1 after a structured log line.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/jasht/internal/api"
	"github.com/taibuivan/jasht/internal/core/game"
	"github.com/taibuivan/jasht/internal/platform/config"
	"github.com/taibuivan/jasht/internal/platform/constants"
	"github.com/taibuivan/jasht/internal/platform/metrics"
	"github.com/taibuivan/jasht/internal/platform/migration"
	pgstore "github.com/taibuivan/jasht/internal/platform/postgres"
	redisstore "github.com/taibuivan/jasht/internal/platform/redis"
	"github.com/taibuivan/jasht/internal/platform/sec"
	"github.com/taibuivan/jasht/internal/users/auth"
)

// startupTimeout bounds connecting to PostgreSQL and Redis.
const startupTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := newLogger(slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
	}
	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Int("admin_emails", len(cfg.AdminEmails)),
	)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          constants.AppName + "@" + constants.AppVersion,
			AttachStacktrace: true,
		}); err != nil {
			return fmt.Errorf("sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	pool, rdb, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()
	defer rdb.Close()

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return err
	}

	signer, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return err
	}

	instruments := metrics.New()
	server := api.NewServer(ctx, cfg, log, signer, instruments, wire(cfg, log, pool, rdb, signer, instruments))
	return serve(ctx, server, log)
}

// connect opens both stores under one startup deadline.
func connect(ctx context.Context, cfg *config.Config, log *slog.Logger) (*pgxpool.Pool, *goredis.Client, error) {
	startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, pgstore.Options{
		MaxConns:         cfg.DBMaxConns,
		MinConns:         cfg.DBMinConns,
		StatementTimeout: constants.GlobalRequestTimeout,
	}, log)
	if err != nil {
		return nil, nil, err
	}

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, redisstore.Options{PoolSize: cfg.RedisPoolSize}, log)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pool, rdb, nil
}

// wire builds the domain services and their handlers.
func wire(
	cfg *config.Config,
	log *slog.Logger,
	pool *pgxpool.Pool,
	rdb *goredis.Client,
	signer *sec.TokenService,
	instruments *metrics.Metrics,
) api.Handlers {
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}, log)

	authService := auth.NewService(
		auth.NewUserRepository(pool),
		auth.NewSessionRepository(pool),
		auth.NewResetTokenRepository(rdb),
		auth.NewVerificationTokenRepository(rdb),
		signer,
		log,
		auth.Options{AdminEmails: cfg.AdminEmails},
	)

	gameService := game.NewService(game.NewPostgresRepository(pool), log, game.Options{
		Timeout:  cfg.StoreTimeout,
		StatsTTL: cfg.StatsCacheTTL,
		Cache:    game.NewRedisStatsCache(rdb),
		Metrics:  instruments,
	})

	return api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, cfg.IsDevelopment()),
		Game:      game.NewHandler(gameService),
		Metrics:   instruments.Handler(),
	}
}

// serve blocks until ctx is cancelled or the listener fails, then drains
// in-flight requests for up to [constants.ShutdownTimeout].
func serve(ctx context.Context, server *api.Server, log *slog.Logger) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- server.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutdown_requested", slog.Duration("grace", constants.ShutdownTimeout))
	}

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server_stopped")
	return nil
}

// newLogger builds the process-wide JSON logger and installs it as the default.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).With(
		slog.String(constants.FieldApp, constants.AppName),
		slog.String(constants.FieldVersion, constants.AppVersion),
	)
	slog.SetDefault(log)
	return log
}
