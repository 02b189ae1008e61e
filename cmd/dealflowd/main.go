// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command dealflowd serves the tiering configuration form and its JSON API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/ManuGH/dealflow/internal/api"
	"github.com/ManuGH/dealflow/internal/config"
	"github.com/ManuGH/dealflow/internal/daemon"
	"github.com/ManuGH/dealflow/internal/health"
	"github.com/ManuGH/dealflow/internal/log"
	"github.com/ManuGH/dealflow/internal/metrics"
	"github.com/ManuGH/dealflow/internal/store"
	"github.com/ManuGH/dealflow/internal/telemetry"
	"github.com/ManuGH/dealflow/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "healthcheck":
			os.Exit(runHealthcheckCLI(os.Args[2:]))
		case "storage":
			os.Exit(runStorageCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Safe defaults until config is loaded
	log.Configure(log.Config{
		Level:   "info",
		Service: "dealflow",
		Version: version.Version,
	})
	logger := log.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Precedence: ENV > File > Defaults
	loader := config.NewLoader(strings.TrimSpace(*configPath), version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", loader.Path()).
			Msg("failed to load configuration")
	}

	log.Configure(log.Config{
		Level:   cfg.Log.Level,
		Service: cfg.Log.Service,
		Version: cfg.Version,
	})
	logger = log.WithComponent("daemon")

	source := "env+defaults"
	if loader.Path() != "" {
		source = "file"
	}
	logger.Info().
		Str("event", "config.loaded").
		Str("source", source).
		Str("path", loader.Path()).
		Strs("env_overrides", envOverrides(loader)).
		Msg("configuration loaded")

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.check_failed").
			Msg("Startup checks failed. Please verify configuration and permissions.")
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", cfg.ListenAddr).
		Str("store", cfg.Store.Backend).
		Str("owner", cfg.Owner).
		Msg("starting dealflowd")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.Log.Service,
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("event", "telemetry.init_failed").Msg("failed to initialise tracing")
	}

	storeOpts := cfg.StoreOptions()
	backend, err := store.Open(ctx, storeOpts, log.WithComponent("store"))
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "store.open_failed").
			Str("backend", storeOpts.Backend).
			Msg("failed to open configuration store")
	}
	st := store.Instrument(backend, storeOpts.Backend)

	cfgHolder := config.NewHolder(cfg, loader)

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewPingChecker("store", st))
	hm.RegisterChecker(health.NewDirChecker("data_dir", cfg.DataDir))

	srv, err := api.New(api.Deps{
		Config: cfgHolder,
		Store:  st,
		Health: hm,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("event", "api.init_failed").Msg("failed to create API server")
	}

	mgr, err := daemon.NewManager(daemon.ServerConfigFrom(cfg), daemon.Deps{
		Logger:         logger,
		APIHandler:     srv.Handler(),
		MetricsHandler: metrics.Handler(),
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "manager.creation.failed").
			Msg("failed to create daemon manager")
	}

	// LIFO: the store closes after telemetry has flushed its spans.
	mgr.RegisterShutdownHook("store", func(context.Context) error { return st.Close() })
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)

	app := daemon.NewApp(logger, mgr, cfgHolder)
	if err := app.Run(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "manager.failed").
			Msg("daemon app failed")
	}

	logger.Info().Msg("server exiting")
}

// envOverrides lists the environment keys the loader found set.
func envOverrides(l *config.Loader) []string {
	keys := make([]string, 0, len(l.ConsumedEnvKeys))
	for k := range l.ConsumedEnvKeys {
		if _, ok := os.LookupEnv(k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
