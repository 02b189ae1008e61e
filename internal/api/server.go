// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the tiering configuration form and its JSON endpoints.
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ManuGH/dealflow/internal/api/middleware"
	"github.com/ManuGH/dealflow/internal/config"
	"github.com/ManuGH/dealflow/internal/health"
	"github.com/ManuGH/dealflow/internal/log"
	"github.com/ManuGH/dealflow/internal/store"
)

const (
	// maxBodyBytes bounds submitted configurations.
	maxBodyBytes = 1 << 20

	pageTitle = "Tiering Configuration"

	msgSaved     = "Configuration saved successfully!"
	msgSaveError = "Error saving configuration."
)

var (
	ErrMissingConfig = errors.New("api: config source is required")
	ErrMissingStore  = errors.New("api: store is required")
)

// ConfigSource yields the current application config. Implemented by
// config.Holder so reloaded values apply per request.
type ConfigSource interface {
	Get() config.AppConfig
}

// Deps holds all dependencies for the API server.
type Deps struct {
	Config ConfigSource
	Store  store.Store
	// Health is optional; a manager pinging Store is created when nil.
	Health *health.Manager
	Logger *zerolog.Logger
}

// Validate checks that required dependencies are present.
func (d Deps) Validate() error {
	if d.Config == nil {
		return ErrMissingConfig
	}
	if d.Store == nil {
		return ErrMissingStore
	}
	return nil
}

// Server represents the HTTP server for the configuration form.
type Server struct {
	cfg    ConfigSource
	store  store.Store
	health *health.Manager
	logger zerolog.Logger

	// ingress settings are fixed at construction; changing them needs a restart.
	ingress config.AppConfig
}

// New creates a server from deps.
func New(deps Deps) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}

	initial := deps.Config.Get()
	hm := deps.Health
	if hm == nil {
		hm = health.NewManager(initial.Version)
		hm.RegisterChecker(health.NewPingChecker("store", deps.Store))
	}
	logger := log.WithComponent("api")
	if deps.Logger != nil {
		logger = deps.Logger.With().Str("component", "api").Logger()
	}

	return &Server{
		cfg:     deps.Config,
		store:   deps.Store,
		health:  hm,
		logger:  logger,
		ingress: initial,
	}, nil
}

// HealthManager returns the server's health manager.
func (s *Server) HealthManager() *health.Manager {
	return s.health
}

// Handler returns the configured HTTP handler with all routes and middleware applied.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

func (s *Server) routes() http.Handler {
	tracingService := ""
	if s.ingress.Tracing.Enabled {
		tracingService = s.ingress.Log.Service
	}
	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		CSP:                   middleware.DefaultCSP,
		EnableMetrics:         true,
		TracingService:        tracingService,
		EnableLogging:         true,
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)

	r.Group(func(r chi.Router) {
		r.Use(s.ownerContext)
		if s.ingress.CSRF.Enabled {
			r.Use(middleware.CSRF(middleware.CSRFConfig{
				CookieName:     s.ingress.CSRF.CookieName,
				AllowedOrigins: s.ingress.CSRF.AllowedOrigins,
				Reject:         s.rejectCSRF,
			}))
		}
		limited := r.With(s.submitLimit()...)

		r.Get("/", s.handleFormPage)
		limited.Post("/", s.handleFormSubmit)
		r.Get("/get-configuration/", s.handleGetConfiguration)
		limited.HandleFunc("/submit-configuration/", s.handleSubmitConfiguration)
	})

	return r
}

// ownerContext resolves the configured owner once per request.
func (s *Server) ownerContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := log.ContextWithOwner(r.Context(), s.cfg.Get().Owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) submitLimit() []func(http.Handler) http.Handler {
	if !s.ingress.RateLimit.Enabled || s.ingress.RateLimit.RequestsPerMinute <= 0 {
		return nil
	}
	return []func(http.Handler) http.Handler{
		middleware.SubmitRateLimit(s.ingress.RateLimit.RequestsPerMinute),
	}
}

// rejectCSRF answers JSON callers with the envelope and form posts with a problem.
func (s *Server) rejectCSRF(w http.ResponseWriter, r *http.Request, reason string) {
	if r.URL.Path == "/submit-configuration/" {
		writeJSON(w, http.StatusForbidden, envelope{Status: statusError, Message: "CSRF verification failed."})
		return
	}
	writeProblem(w, r, http.StatusForbidden, ProblemCSRF, "Forbidden", "CSRF_FAILED", "CSRF verification failed: "+reason)
}
