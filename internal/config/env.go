// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/dealflow/internal/log"
)

// Environment variable names.
const (
	EnvListenAddr       = "DEALFLOW_LISTEN_ADDR"
	EnvDataDir          = "DEALFLOW_DATA_DIR"
	EnvOwner            = "DEALFLOW_OWNER"
	EnvLogLevel         = "DEALFLOW_LOG_LEVEL"
	EnvLogService       = "DEALFLOW_LOG_SERVICE"
	EnvStoreBackend     = "DEALFLOW_STORE_BACKEND"
	EnvStorePath        = "DEALFLOW_STORE_PATH"
	EnvRedisAddr        = "DEALFLOW_REDIS_ADDR"
	EnvRedisPassword    = "DEALFLOW_REDIS_PASSWORD"
	EnvRedisDB          = "DEALFLOW_REDIS_DB"
	EnvRedisPrefix      = "DEALFLOW_REDIS_PREFIX"
	EnvSubmitNextURL    = "DEALFLOW_SUBMIT_NEXT_URL"
	EnvCSRFEnabled      = "DEALFLOW_CSRF_ENABLED"
	EnvCSRFCookieName   = "DEALFLOW_CSRF_COOKIE_NAME"
	EnvCSRFOrigins      = "DEALFLOW_CSRF_ALLOWED_ORIGINS"
	EnvRateLimitEnabled = "DEALFLOW_RATE_LIMIT_ENABLED"
	EnvRateLimitRPM     = "DEALFLOW_RATE_LIMIT_RPM"
	EnvMetricsEnabled   = "DEALFLOW_METRICS_ENABLED"
	EnvMetricsAddr      = "DEALFLOW_METRICS_ADDR"
	EnvTracingEnabled   = "DEALFLOW_TRACING_ENABLED"
	EnvTracingExporter  = "DEALFLOW_TRACING_EXPORTER"
	EnvTracingEndpoint  = "DEALFLOW_TRACING_ENDPOINT"
	EnvTracingSampling  = "DEALFLOW_TRACING_SAMPLING_RATE"
	EnvReadTimeout      = "DEALFLOW_SERVER_READ_TIMEOUT"
	EnvWriteTimeout     = "DEALFLOW_SERVER_WRITE_TIMEOUT"
	EnvIdleTimeout      = "DEALFLOW_SERVER_IDLE_TIMEOUT"
	EnvShutdownTimeout  = "DEALFLOW_SERVER_SHUTDOWN_TIMEOUT"
)

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "token") || strings.Contains(lower, "password")
}

// ParseString reads a string from environment variable or returns default value.
// It logs the source (environment or default) for observability.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	switch {
	case !exists:
		return defaultValue
	case value == "":
		logger.Debug().
			Str("key", key).
			Str("source", "default").
			Msg("using default value (environment variable is empty)")
		return defaultValue
	case isSensitive(key):
		logger.Debug().
			Str("key", key).
			Str("source", "environment").
			Bool("sensitive", true).
			Msg("using environment variable")
	default:
		logger.Debug().
			Str("key", key).
			Str("value", value).
			Str("source", "environment").
			Msg("using environment variable")
	}
	return value
}

// ParseInt reads an integer from environment variable or returns default value.
// It falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, strconv.Atoi)
}

// ParseFloat reads a float from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseDuration reads a Go duration ("5s") from environment variable.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, time.ParseDuration)
}

// ParseBool accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, strconv.ErrSyntax
	})
}

// ParseList reads a comma separated list, dropping blank entries.
func ParseList(key string, defaultValue []string) []string {
	return parseEnv(key, defaultValue, func(s string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	})
}

func parseEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	if v == "" {
		logger.Debug().
			Str("key", key).
			Str("source", "default").
			Msg("using default value (environment variable is empty)")
		return defaultValue
	}
	parsed, err := parse(v)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Interface("default", defaultValue).
			Msg("invalid value in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Interface("value", parsed).
		Str("source", "environment").
		Msg("using environment variable")
	return parsed
}
