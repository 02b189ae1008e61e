// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ManuGH/dealflow/internal/config"
	"github.com/ManuGH/dealflow/internal/persistence/sqlite"
	"github.com/ManuGH/dealflow/internal/store"
	"github.com/ManuGH/dealflow/internal/version"
)

func runStorageCLI(args []string) int {
	return runStorage(args, os.Stdout, os.Stderr)
}

func runStorage(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printStorageUsage(stdout)
		return 0
	}

	switch args[0] {
	case "verify":
		return runStorageVerify(args[1:], stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printStorageUsage(stderr)
		return 2
	}
}

func printStorageUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  dealflowd storage verify [--path PATH | --config FILE] [--mode quick|full] [--owner NAME]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Flags:")
	_, _ = fmt.Fprintln(w, "  --path string    Path to the SQLite configuration database")
	_, _ = fmt.Fprintln(w, "  --config string  Resolve the database path from this config file")
	_, _ = fmt.Fprintln(w, "  --mode string    Verification mode: quick (default) or full")
	_, _ = fmt.Fprintln(w, "  --owner string   Report when this owner last saved (default: configured owner)")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Subcommands:")
	_, _ = fmt.Fprintln(w, "  verify    Check database integrity")
}

func runStorageVerify(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dealflowd storage verify", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var path, configPath, modeFlag, owner string
	fs.StringVar(&path, "path", "", "Path to the SQLite database file")
	fs.StringVar(&configPath, "config", "", "Config file used to resolve the database path")
	fs.StringVar(&modeFlag, "mode", "quick", "Verification mode: quick or full")
	fs.StringVar(&owner, "owner", "", "Owner whose last save is reported")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	mode, err := sqlite.ParseVerifyMode(strings.ToLower(strings.TrimSpace(modeFlag)))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: invalid mode %q. Use 'quick' or 'full'.\n", modeFlag)
		return 2
	}

	if path == "" {
		resolved, configured, code := storePathFromConfig(configPath, stderr)
		if code != 0 {
			return code
		}
		path = resolved
		if owner == "" {
			owner = configured
		}
	}
	if owner == "" {
		owner = config.DefaultOwner
	}

	if _, err := os.Stat(path); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: database not found: %s\n", path)
		return 2
	}

	if code := doVerify(path, mode, stdout, stderr); code != 0 {
		return code
	}
	return reportLastSaved(path, owner, stdout, stderr)
}

// storePathFromConfig resolves the sqlite path and owner the daemon would use.
func storePathFromConfig(configPath string, stderr io.Writer) (string, string, int) {
	cfg, err := config.NewLoader(configPath, version.Version).Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: failed to load configuration: %v\n", err)
		return "", "", 2
	}
	opts := cfg.StoreOptions()
	if opts.Backend != store.BackendSqlite {
		_, _ = fmt.Fprintf(stderr, "Error: store backend %q is not sqlite; pass --path explicitly\n", opts.Backend)
		return "", "", 2
	}
	return opts.Path, cfg.Owner, 0
}

func doVerify(path string, mode sqlite.VerifyMode, stdout, stderr io.Writer) int {
	_, _ = fmt.Fprintf(stderr, "Verifying integrity of %s (mode: %s)...\n", path, mode)

	issues, err := sqlite.VerifyIntegrity(context.Background(), path, mode)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Verification interrupted by system error: %v\n", err)
		return 1
	}

	if len(issues) > 0 {
		_, _ = fmt.Fprintln(stderr, "CORRUPTION DETECTED!")
		for _, issue := range issues {
			_, _ = fmt.Fprintf(stderr, "  - %s\n", issue)
		}
		return 1
	}

	_, _ = fmt.Fprintln(stdout, "Integrity verified: ok")
	return 0
}

// reportLastSaved prints when owner last saved a configuration.
func reportLastSaved(path, owner string, stdout, stderr io.Writer) int {
	ctx := context.Background()
	st, err := store.NewSqliteStore(ctx, path)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: open configuration store: %v\n", err)
		return 1
	}
	defer func() { _ = st.Close() }()

	ts, err := st.UpdatedAt(ctx, owner)
	switch {
	case errors.Is(err, store.ErrNotFound):
		_, _ = fmt.Fprintf(stdout, "No configuration saved for owner %q\n", owner)
	case err != nil:
		_, _ = fmt.Fprintf(stderr, "Error: read last save for %q: %v\n", owner, err)
		return 1
	default:
		_, _ = fmt.Fprintf(stdout, "Last saved for owner %q: %s\n", owner, ts.Format(time.RFC3339))
	}
	return 0
}
