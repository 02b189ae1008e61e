// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/dealflow/internal/log"
)

// StackConfig selects the router-wide middleware. CSRF and rate limiting are
// route scoped and applied by the API server.
type StackConfig struct {
	EnableSecurityHeaders bool
	CSP                   string

	EnableMetrics bool
	// TracingService names server spans; empty disables tracing.
	TracingService string
	EnableLogging  bool
}

// Chain returns the router-wide middleware, outermost first. Recovery and
// request IDs are always on.
func Chain(cfg StackConfig) []func(http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{Recoverer, RequestID}
	if cfg.EnableSecurityHeaders {
		chain = append(chain, SecurityHeaders(cfg.CSP))
	}
	if cfg.EnableMetrics {
		chain = append(chain, Metrics())
	}
	if cfg.TracingService != "" {
		chain = append(chain, OTelHTTP(cfg.TracingService))
	}
	// Innermost so the logged latency covers the handler only.
	if cfg.EnableLogging {
		chain = append(chain, log.Middleware())
	}
	return chain
}

// NewRouter returns a chi router with Chain(cfg) installed.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(Chain(cfg)...)
	return r
}
