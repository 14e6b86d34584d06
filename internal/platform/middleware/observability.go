// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// # Metrics

// HTTPObserver records finished requests. [*metrics.Metrics] satisfies it.
type HTTPObserver interface {
	ObserveHTTP(route, method string, status int, elapsed time.Duration)
}

// Metrics reports request count and latency per chi route pattern.
//
// The pattern is read after the handler ran, when chi has finished matching,
// so "/games/{id}" is recorded instead of every concrete id.
func Metrics(observer HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			startTime := time.Now()
			recorder := chimw.NewWrapResponseWriter(writer, request.ProtoMajor)

			next.ServeHTTP(recorder, request)

			route := "unmatched"
			if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
				if pattern := routeContext.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			observer.ObserveHTTP(route, request.Method, statusOf(recorder), time.Since(startTime))
		})
	}
}

// # Error Reporting

// ErrorReporting attaches a Sentry hub to every request and reports panics.
//
// It re-panics so that [PanicRecovery], mounted before it, still writes the
// JSON 500 response. Without a configured Sentry client the hub is a no-op.
func ErrorReporting() func(http.Handler) http.Handler {
	handler := sentryhttp.New(sentryhttp.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
	return handler.Handle
}
