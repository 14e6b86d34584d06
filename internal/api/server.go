// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api assembles the chi router, the middleware chain and the domain
handlers into the Jasht [http.Server].

Routes:

	/health, /ready, /metrics   infrastructure
	/api/v1/auth/...            identity
	/api/v1/...                 catalog, library, shared reviews, admin
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/jasht/internal/core/game"
	"github.com/taibuivan/jasht/internal/platform/config"
	"github.com/taibuivan/jasht/internal/platform/constants"
	"github.com/taibuivan/jasht/internal/platform/middleware"
	"github.com/taibuivan/jasht/internal/users/auth"
)

// Handlers groups the handler sets mounted by [NewServer].
type Handlers struct {
	Liveness  http.HandlerFunc
	Readiness http.HandlerFunc

	Auth *auth.Handler
	Game *game.Handler

	// Metrics exposes the Prometheus registry. Nil leaves /metrics unmounted.
	Metrics http.Handler
}

// Server owns the router and the listening [http.Server].
type Server struct {
	router     chi.Router
	httpServer *http.Server
	log        *slog.Logger
}

// NewServer builds the router. context bounds background middleware work
// such as rate limiter eviction. A nil observer disables request metrics.
func NewServer(
	context context.Context,
	cfg *config.Config,
	log *slog.Logger,
	verifier middleware.TokenVerifier,
	observer middleware.HTTPObserver,
	handlers Handlers,
) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID(), middleware.StructuredLogger(log))
	if observer != nil {
		router.Use(middleware.Metrics(observer))
	}
	router.Use(
		chimw.Timeout(constants.GlobalRequestTimeout),
		middleware.NewRateLimiter(context, cfg.RateLimitRPS, cfg.RateLimitBurst).Handler,
		middleware.PanicRecovery(log),
		middleware.ErrorReporting(),
		middleware.Authenticate(verifier),
		middleware.CORS(cfg),
		chimw.CleanPath,
	)

	mount(router, handlers)

	return &Server{
		router: router,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
		},
	}
}

func mount(router chi.Router, handlers Handlers) {
	router.Get("/health", handlers.Liveness)
	router.Get("/ready", handlers.Readiness)
	if handlers.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", handlers.Metrics)
	}

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Mount("/auth", handlers.Auth.Routes())
		v1.Mount("/", handlers.Game.Routes())
	})
}

// Handler exposes the assembled router, mainly for httptest.
func (server *Server) Handler() http.Handler {
	return server.router
}

// ListenAndServe blocks until the server is shut down or fails to bind.
func (server *Server) ListenAndServe() error {
	server.log.Info("server_listening", slog.String("addr", server.httpServer.Addr))
	return server.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits up to timeout for in-flight requests.
func (server *Server) Shutdown(timeout time.Duration) error {
	shutdownContext, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.httpServer.Shutdown(shutdownContext)
}
