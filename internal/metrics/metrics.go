// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the domain Prometheus metrics of the dealflow service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
	OutcomeInvalid = "invalid"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealflow_configuration_submissions_total",
		Help: "Configuration submissions by channel and outcome",
	}, []string{"channel", "outcome"}) // channel=form|json

	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealflow_configuration_loads_total",
		Help: "Saved configuration lookups by outcome",
	}, []string{"outcome"}) // outcome=success|empty|error

	storeOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dealflow_store_operation_duration_seconds",
		Help:    "Configuration store call latency",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"backend", "operation", "outcome"})

	configReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealflow_config_reloads_total",
		Help: "Daemon configuration reloads by outcome",
	}, []string{"outcome"})

	csrfRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealflow_csrf_rejections_total",
		Help: "Requests rejected by CSRF protection",
	}, []string{"reason"}) // reason=origin|token

	rateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealflow_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"route"})
)

// RecordSubmission counts one configuration submission.
func RecordSubmission(channel, outcome string) {
	submissionsTotal.WithLabelValues(channel, outcome).Inc()
}

// RecordLoad counts one saved configuration lookup.
func RecordLoad(outcome string) {
	loadsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStoreOp records the latency of one store call.
func ObserveStoreOp(backend, operation, outcome string, d time.Duration) {
	storeOpDuration.WithLabelValues(backend, operation, outcome).Observe(d.Seconds())
}

// RecordConfigReload counts one configuration reload.
func RecordConfigReload(outcome string) {
	configReloadsTotal.WithLabelValues(outcome).Inc()
}

// RecordCSRFRejection counts one rejected request.
func RecordCSRFRejection(reason string) {
	csrfRejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordRateLimited counts one rate limited request.
func RecordRateLimited(route string) {
	rateLimitedTotal.WithLabelValues(route).Inc()
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
