// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// defaultShutdownTimeout applies when the config leaves it unset.
const defaultShutdownTimeout = 15 * time.Second

// Listener names used in logs and errors.
const (
	listenerAPI     = "api"
	listenerMetrics = "metrics"
)

// ShutdownHook releases a resource during graceful shutdown.
// Hooks run in reverse registration order.
type ShutdownHook func(ctx context.Context) error

// Manager runs the HTTP listeners of the daemon and tears them down.
type Manager interface {
	// Start serves until ctx is cancelled or a listener fails.
	Start(ctx context.Context) error

	// Shutdown drains every listener, then runs the shutdown hooks.
	Shutdown(ctx context.Context) error

	RegisterShutdownHook(name string, hook ShutdownHook)
}

type listener struct {
	name string
	srv  *http.Server
}

type namedHook struct {
	name string
	hook ShutdownHook
}

type manager struct {
	serverCfg ServerConfig
	deps      Deps
	logger    zerolog.Logger

	mu        sync.Mutex
	listeners []listener
	hooks     []namedHook
	started   bool
	stopping  bool
}

// NewManager validates deps and returns a Manager for serverCfg.
func NewManager(serverCfg ServerConfig, deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	if serverCfg.ShutdownTimeout <= 0 {
		serverCfg.ShutdownTimeout = defaultShutdownTimeout
	}

	return &manager{
		serverCfg: serverCfg,
		deps:      deps,
		logger:    deps.Logger.With().Str("component", "manager").Logger(),
	}, nil
}

// buildListeners returns the API listener and, when configured, the metrics
// listener.
func (m *manager) buildListeners() []listener {
	cfg := m.serverCfg
	out := []listener{{
		name: listenerAPI,
		srv: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           m.deps.APIHandler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout / 2,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
		},
	}}

	if m.deps.MetricsHandler != nil && cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.deps.MetricsHandler)
		out = append(out, listener{
			name: listenerMetrics,
			srv: &http.Server{
				Addr:              cfg.MetricsAddr,
				Handler:           mux,
				ReadHeaderTimeout: cfg.ReadTimeout / 2,
			},
		})
	}
	return out
}

func (m *manager) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("daemon: start context is nil")
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrManagerAlreadyStarted
	}
	m.started = true
	m.listeners = m.buildListeners()
	listeners := m.listeners
	m.mu.Unlock()

	m.logger.Info().
		Str("event", "manager.starting").
		Str("listen", m.serverCfg.ListenAddr).
		Str("metrics", m.serverCfg.MetricsAddr).
		Dur("shutdown_timeout", m.serverCfg.ShutdownTimeout).
		Msg("starting listeners")

	errChan := make(chan error, len(listeners))
	for _, l := range listeners {
		go m.serve(l, errChan)
	}

	var cause error
	select {
	case cause = <-errChan:
		m.logger.Error().Err(cause).Str("event", "manager.listener_failed").Msg("listener failed, shutting down")
	case <-ctx.Done():
		m.logger.Info().Str("event", "manager.stop_requested").Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.serverCfg.ShutdownTimeout)
	defer cancel()
	shutdownErr := m.Shutdown(shutdownCtx)

	switch {
	case cause != nil && shutdownErr != nil:
		return fmt.Errorf("server error and shutdown failure: %w", errors.Join(cause, shutdownErr))
	case cause != nil:
		return cause
	default:
		return shutdownErr
	}
}

func (m *manager) serve(l listener, errChan chan<- error) {
	m.logger.Info().Str("listener", l.name).Str("addr", l.srv.Addr).Msg("listening")

	if err := l.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errChan <- fmt.Errorf("%s server: %w", l.name, err)
	}
}

func (m *manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("daemon: shutdown context is nil")
	}

	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	m.stopping = true
	listeners := m.listeners
	hooks := append([]namedHook(nil), m.hooks...)
	m.mu.Unlock()

	m.logger.Info().Str("event", "manager.stopping").Msg("shutting down")

	// The caller's cancellation must not cut the drain short.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.serverCfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, l := range listeners {
		if err := l.srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("%s server shutdown: %w", l.name, err))
		}
	}

	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		start := time.Now()
		err := h.hook(shutdownCtx)
		ev := m.logger.Debug()
		if err != nil {
			ev = m.logger.Error().Err(err)
			errs = append(errs, fmt.Errorf("hook %s: %w", h.name, err))
		}
		ev.Str("hook", h.name).Dur("duration", time.Since(start)).Msg("shutdown hook finished")
	}

	if len(errs) > 0 {
		m.logger.Error().Int("error_count", len(errs)).Str("event", "manager.stopped_with_errors").Msg("shutdown completed with errors")
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	m.logger.Info().Str("event", "manager.stopped").Msg("stopped cleanly")
	return nil
}

func (m *manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, namedHook{name: name, hook: hook})
}
