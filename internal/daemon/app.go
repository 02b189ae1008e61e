// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/dealflow/internal/config"
	"github.com/ManuGH/dealflow/internal/log"
)

// App runs the Manager next to the config reload machinery: the file
// watcher, SIGHUP and applying reloaded settings.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.Holder
	reloadSignal os.Signal
}

// NewApp returns an App. cfgHolder may be nil, which disables reloading.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.Holder) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run blocks until ctx is cancelled or the servers fail.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)
	if a.cfgHolder != nil {
		updates := make(chan config.AppConfig, 1)
		a.cfgHolder.RegisterListener(updates)

		g.Go(func() error { return a.watch(ctx) })
		g.Go(func() error { return a.applyUpdates(ctx, updates) })
		if a.reloadSignal != nil {
			g.Go(func() error { return a.reloadOnSignal(ctx) })
		}
	}
	g.Go(func() error { return a.serve(ctx) })

	return g.Wait()
}

func (a *App) serve(ctx context.Context) error {
	err := a.manager.Start(ctx)
	if err != nil {
		_ = a.manager.Shutdown(context.Background())
	}
	return err
}

// watch never fails the group; without a watcher SIGHUP still reloads.
func (a *App) watch(ctx context.Context) error {
	if err := a.cfgHolder.Watch(ctx); err != nil {
		a.logger.Warn().Err(err).Str("event", "config.watcher_failed").Msg("config watcher stopped")
	}
	return nil
}

func (a *App) reloadOnSignal(ctx context.Context) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, a.reloadSignal)
	defer signal.Stop(sig)

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-sig:
			a.logger.Info().Str("event", "config.reload_signal").Str("signal", s.String()).Msg("reloading config")
			if err := a.cfgHolder.Reload(ctx); err != nil {
				a.logger.Warn().Err(err).Str("event", "config.reload_failed").Msg("config reload failed")
			}
		}
	}
}

// applyUpdates activates the live parts of each reloaded config. Owner and
// next URL are read per request and need nothing here.
func (a *App) applyUpdates(ctx context.Context, updates <-chan config.AppConfig) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg := <-updates:
			if log.SetLevel(cfg.Log.Level) {
				a.logger.Info().Str("event", "log.level_applied").Str("level", cfg.Log.Level).Msg("applied reloaded log level")
			}
		}
	}
}
