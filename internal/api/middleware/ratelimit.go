// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/ManuGH/dealflow/internal/metrics"
)

const rateLimitedBody = `{"status":"error","message":"Too many requests. Please try again later."}`

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	RequestLimit int
	WindowSize   time.Duration
	// KeyFuncs build the bucket key; nil means per client IP and path.
	KeyFuncs []httprate.KeyFunc
}

// RateLimit applies a sliding window limit. Rejected requests get a JSON 429
// with Retry-After set to the window length.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	keys := cfg.KeyFuncs
	if len(keys) == 0 {
		keys = []httprate.KeyFunc{httprate.KeyByIP, httprate.KeyByEndpoint}
	}
	retryAfter := strconv.Itoa(int(cfg.WindowSize.Seconds()))

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keys...),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RecordRateLimited(r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", retryAfter)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(rateLimitedBody))
		}),
	)
}

// SubmitRateLimit limits saves per client and endpoint, so form posts and
// JSON submissions draw from separate budgets.
func SubmitRateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{
		RequestLimit: requestsPerMinute,
		WindowSize:   time.Minute,
	})
}
