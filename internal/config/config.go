// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the dealflow daemon configuration.
//
// Precedence is ENV > file > defaults. The YAML file is decoded strictly:
// unknown keys and multiple documents are rejected.
package config

import (
	"path/filepath"
	"time"

	"github.com/ManuGH/dealflow/internal/store"
)

// AppConfig is the complete daemon configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	ListenAddr string `yaml:"listen_addr"`
	DataDir    string `yaml:"data_dir"`
	// Owner is the key the form configuration is saved under.
	Owner string `yaml:"owner"`

	Log       LogConfig       `yaml:"log"`
	Store     StoreConfig     `yaml:"store"`
	Submit    SubmitConfig    `yaml:"submit"`
	CSRF      CSRFConfig      `yaml:"csrf"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Server    ServerConfig    `yaml:"server"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// SubmitConfig controls what happens after a successful save.
type SubmitConfig struct {
	// NextURL is returned as "next" and used as the redirect target.
	// Empty disables navigation.
	NextURL string `yaml:"next_url"`
}

type CSRFConfig struct {
	Enabled    bool   `yaml:"enabled"`
	CookieName string `yaml:"cookie_name"`
	// AllowedOrigins are accepted in addition to the request host.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"` // grpc or http
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// ServerConfig holds HTTP server timeouts.
type ServerConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default values.
const (
	DefaultListenAddr      = ":8000"
	DefaultDataDir         = "data"
	DefaultOwner           = "default"
	DefaultNextURL         = "/upload-csv/"
	DefaultCSRFCookie      = "csrftoken"
	DefaultRequestsPerMin  = 60
	DefaultMetricsAddr     = ":9090"
	DefaultTracingEndpoint = "localhost:4317"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
)

// Defaults returns the configuration used when neither file nor environment
// set a value.
func Defaults() AppConfig {
	return AppConfig{
		ListenAddr: DefaultListenAddr,
		DataDir:    DefaultDataDir,
		Owner:      DefaultOwner,
		Log: LogConfig{
			Level:   "info",
			Service: "dealflow",
		},
		Store: StoreConfig{
			Backend: store.BackendSqlite,
		},
		Submit: SubmitConfig{NextURL: DefaultNextURL},
		CSRF: CSRFConfig{
			Enabled:    true,
			CookieName: DefaultCSRFCookie,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: DefaultRequestsPerMin,
		},
		Metrics: MetricsConfig{Addr: DefaultMetricsAddr},
		Tracing: TracingConfig{
			Exporter:     "grpc",
			Endpoint:     DefaultTracingEndpoint,
			SamplingRate: 1.0,
		},
		Server: ServerConfig{
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
	}
}

// StoreOptions returns the store.Config for cfg, deriving a path under
// DataDir when none is configured.
func (cfg AppConfig) StoreOptions() store.Config {
	path := cfg.Store.Path
	if path == "" {
		switch cfg.Store.Backend {
		case store.BackendSqlite, "":
			path = filepath.Join(cfg.DataDir, "dealflow.sqlite")
		case store.BackendFile:
			path = filepath.Join(cfg.DataDir, "configurations")
		case store.BackendBadger:
			path = filepath.Join(cfg.DataDir, "badger")
		}
	}
	return store.Config{
		Backend: cfg.Store.Backend,
		Path:    path,
		Redis: store.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			Prefix:   cfg.Store.Redis.Prefix,
		},
	}
}
