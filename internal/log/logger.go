// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const defaultService = "dealflow"

// Config configures the process-wide logger.
type Config struct {
	Level   string    // zerolog level name; empty or unknown means info
	Output  io.Writer // defaults to os.Stdout
	Service string    // defaults to "dealflow"
	Version string
}

var base atomic.Pointer[zerolog.Logger]

// Configure replaces the base logger. The daemon calls it once with bootstrap
// defaults and again after the config file has been loaded.
func Configure(cfg Config) {
	level, ok := parseLevel(cfg.Level)
	if !ok {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	service := cfg.Service
	if service == "" {
		service = defaultService
	}

	l := zerolog.New(out).With().
		Timestamp().
		Str(FieldService, service).
		Str(FieldVersion, cfg.Version).
		Logger()
	base.Store(&l)
}

// SetLevel changes the global level in place and reports whether level was
// recognised.
func SetLevel(level string) bool {
	parsed, ok := parseLevel(level)
	if ok {
		zerolog.SetGlobalLevel(parsed)
	}
	return ok
}

func parseLevel(s string) (zerolog.Level, bool) {
	if s == "" {
		return zerolog.NoLevel, false
	}
	l, err := zerolog.ParseLevel(s)
	return l, err == nil
}

// Base returns the current base logger.
func Base() zerolog.Logger { return *base.Load() }

// WithComponent returns a child of the base logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str(FieldComponent, component).Logger()
}

func init() {
	Configure(Config{})
}
