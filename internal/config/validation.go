// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"time"

	"github.com/ManuGH/dealflow/internal/store"
	"github.com/ManuGH/dealflow/internal/validate"
)

// Validate checks cfg and returns a validate.ValidationError listing every
// problem, or nil. The data directory is created when missing.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.ListenAddr("listen_addr", cfg.ListenAddr)
	v.Directory("data_dir", cfg.DataDir, false)
	v.NotEmpty("owner", cfg.Owner)
	v.LogLevel("log.level", cfg.Log.Level)

	v.OneOf("store.backend", cfg.Store.Backend, store.Backends)
	if cfg.Store.Backend == store.BackendRedis {
		v.NotEmpty("store.redis.addr", cfg.Store.Redis.Addr)
		v.Range("store.redis.db", cfg.Store.Redis.DB, 0, 15)
	}

	v.RedirectTarget("submit.next_url", cfg.Submit.NextURL)

	if cfg.CSRF.Enabled {
		v.NotEmpty("csrf.cookie_name", cfg.CSRF.CookieName)
		for i, origin := range cfg.CSRF.AllowedOrigins {
			v.Origin(fmt.Sprintf("csrf.allowed_origins[%d]", i), origin)
		}
	}

	if cfg.RateLimit.Enabled {
		v.Range("rate_limit.requests_per_minute", cfg.RateLimit.RequestsPerMinute, 1, 100000)
	}

	if cfg.Metrics.Enabled {
		v.ListenAddr("metrics.addr", cfg.Metrics.Addr)
	}

	if cfg.Tracing.Enabled {
		v.OneOf("tracing.exporter", cfg.Tracing.Exporter, []string{"grpc", "http"})
		v.NotEmpty("tracing.endpoint", cfg.Tracing.Endpoint)
		v.FloatRange("tracing.sampling_rate", cfg.Tracing.SamplingRate, 0, 1)
	}

	for _, d := range []struct {
		field string
		value time.Duration
	}{
		{"server.read_timeout", cfg.Server.ReadTimeout},
		{"server.write_timeout", cfg.Server.WriteTimeout},
		{"server.idle_timeout", cfg.Server.IdleTimeout},
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeout},
	} {
		if d.value < 0 {
			v.AddError(d.field, "duration cannot be negative", d.value)
		}
	}

	return v.Err()
}
