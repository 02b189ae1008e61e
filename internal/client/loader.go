// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package client

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ManuGH/dealflow/internal/tiering"
)

// Fetcher returns the saved configuration.
type Fetcher interface {
	Fetch(ctx context.Context) (tiering.Configuration, error)
}

// Loader fetches the saved configuration for pre-filling a form. Failures
// are not fatal: they are logged and yield an empty configuration.
type Loader struct {
	Fetcher Fetcher
	Logger  zerolog.Logger
}

// Load returns the saved configuration, or an empty one when nothing is saved
// or the fetch fails.
func (l Loader) Load(ctx context.Context) tiering.Configuration {
	cfg, err := l.Fetcher.Fetch(ctx)
	switch {
	case err == nil:
		return cfg
	case errors.Is(err, ErrNoConfiguration):
		l.Logger.Debug().Str("event", "configuration.empty").Msg("no saved configuration, using defaults")
	default:
		l.Logger.Warn().Err(err).Str("event", "configuration.load_failed").Msg("failed to load configuration, using defaults")
	}
	return tiering.Configuration{}
}
