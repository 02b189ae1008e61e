// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/dealflow/internal/config"
	"github.com/ManuGH/dealflow/internal/log"
	"github.com/ManuGH/dealflow/internal/store"
)

// PerformStartupChecks validates the environment before the server starts.
// Hard failures return an error; risky but valid settings are logged.
func PerformStartupChecks(_ context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")

	if err := checkWritableDir(cfg.DataDir); err != nil {
		return fmt.Errorf("data directory check failed: %w", err)
	}
	logger.Info().Str("path", cfg.DataDir).Msg("data directory is writable")

	if cfg.Store.Backend == store.BackendMemory {
		logger.Warn().
			Str("event", "startup.volatile_store").
			Msg("memory store in use; configurations are lost on restart")
	}

	tempDir := filepath.Clean(os.TempDir())
	dataDir := filepath.Clean(cfg.DataDir)
	if tempDir != "." && (dataDir == tempDir || strings.HasPrefix(dataDir, tempDir+string(filepath.Separator))) {
		logger.Warn().
			Str("data_dir", cfg.DataDir).
			Msg("data directory is under temp; saved configurations may be lost on reboot")
	}

	if !cfg.CSRF.Enabled {
		logger.Warn().
			Str("event", "startup.csrf_disabled").
			Msg("CSRF protection is disabled")
	}

	return nil
}
