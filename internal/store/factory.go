// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Backend names accepted by Open.
const (
	BackendSqlite = "sqlite"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Backends lists every supported backend.
var Backends = []string{BackendSqlite, BackendMemory, BackendFile, BackendBadger, BackendRedis}

// Config selects and parameterizes a backend.
type Config struct {
	Backend string
	// Path is the sqlite database file, or the directory of the file and
	// badger backends.
	Path  string
	Redis RedisConfig
}

// Open creates the Store selected by cfg.Backend. An empty backend means
// sqlite.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (Store, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendSqlite
	}

	logger.Debug().Str("event", "store.open").Str("backend", backend).Str("path", cfg.Path).Msg("opening configuration store")

	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSqlite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("store: %s backend requires a path", backend)
		}
		return NewSqliteStore(ctx, cfg.Path)
	case BackendFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("store: %s backend requires a path", backend)
		}
		return NewFileStore(cfg.Path)
	case BackendBadger:
		if cfg.Path == "" {
			return nil, fmt.Errorf("store: %s backend requires a path", backend)
		}
		return OpenBadgerStore(cfg.Path)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis, logger)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}
}
