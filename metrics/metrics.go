// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts served requests by route template and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspection_api",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route template.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "inspection_api",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// RateLimited counts requests rejected by the global limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inspection_api",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the global rate limiter.",
	})

	// Reconciliations counts identity reconciliation outcomes.
	Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspection_api",
		Name:      "identity_reconciliations_total",
		Help:      "Identity reconciliation runs, by outcome.",
	}, []string{"outcome"})
)
