// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes the Prometheus instruments of the Jasht API.

Every instrument lives on a private registry so that /metrics only publishes
what the application declares.

Instruments:

  - HTTP: request count and latency per route pattern.
  - Library: copies created and reviews submitted.
  - Propagation: per-record outcome of admin edit/delete fan-out.
  - Stats cache: hit, miss and error counts of the dashboard cache.

All recording methods are safe on a nil [*Metrics], which lets services run
without instrumentation in tests.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "jasht"
)

// Outcome labels shared by the propagation counters.
const (
	OutcomeApplied = "applied"
	OutcomeFailed  = "failed"
)

// Cache result labels.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics groups the instruments of one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP Performance
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Library Activity
	libraryCopies    prometheus.Counter
	reviewsSubmitted prometheus.Counter

	// Catalog Maintenance
	propagationRecords *prometheus.CounterVec

	// Statistics
	statsCache *prometheus.CounterVec
}

// New registers every instrument on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &Metrics{
		registry: registry,

		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status code",
		}, []string{"route", "method", "status_code"}),

		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern and method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),

		libraryCopies: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "library",
			Name:      "copies_created_total",
			Help:      "Private library copies created from catalog entries",
		}),

		reviewsSubmitted: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "library",
			Name:      "reviews_submitted_total",
			Help:      "Reviews appended to private copies and the shared pool",
		}),

		propagationRecords: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "propagation_records_total",
			Help:      "Private copies touched by catalog edit/delete propagation",
		}, []string{"operation", "outcome"}),

		statsCache: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "cache_requests_total",
			Help:      "Admin statistics cache lookups by result",
		}, []string{"result"}),
	}
}

// Registry returns the private registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// # Recording

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// LibraryCopyCreated counts a successful copy-to-library.
func (m *Metrics) LibraryCopyCreated() {
	if m == nil {
		return
	}
	m.libraryCopies.Inc()
}

// ReviewSubmitted counts a committed review.
func (m *Metrics) ReviewSubmitted() {
	if m == nil {
		return
	}
	m.reviewsSubmitted.Inc()
}

// PropagationRecord counts one private copy processed by an edit or delete fan-out.
func (m *Metrics) PropagationRecord(operation, outcome string) {
	if m == nil {
		return
	}
	m.propagationRecords.WithLabelValues(operation, outcome).Inc()
}

// StatsCache counts one dashboard cache lookup.
func (m *Metrics) StatsCache(result string) {
	if m == nil {
		return
	}
	m.statsCache.WithLabelValues(result).Inc()
}
