// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/dealflow/internal/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())

	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultOwner, cfg.Owner)
	assert.Equal(t, store.BackendSqlite, cfg.Store.Backend)
	assert.Equal(t, DefaultNextURL, cfg.Submit.NextURL)
	assert.True(t, cfg.CSRF.Enabled)
	assert.Equal(t, "csrftoken", cfg.CSRF.CookieName)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
}

func TestLoad_Precedence(t *testing.T) {
	dataDir := t.TempDir()
	path := writeConfig(t, `
data_dir: `+dataDir+`
owner: file-owner
log:
  level: debug
submit:
  next_url: /next/
server:
  read_timeout: 3s
csrf:
  allowed_origins: ["https://deals.example.com"]
`)
	t.Setenv(EnvOwner, "env-owner")
	t.Setenv(EnvWriteTimeout, "45s")
	t.Setenv(EnvCSRFOrigins, "https://a.example, https://b.example")

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "env-owner", cfg.Owner, "env beats file")
	assert.Equal(t, "debug", cfg.Log.Level, "file beats default")
	assert.Equal(t, "dealflow", cfg.Log.Service, "default kept for absent key")
	assert.Equal(t, "/next/", cfg.Submit.NextURL)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 45*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, DefaultIdleTimeout, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CSRF.AllowedOrigins)
}

func TestLoad_FileCanDisableDefaults(t *testing.T) {
	path := writeConfig(t, `
data_dir: `+t.TempDir()+`
csrf:
  enabled: false
rate_limit:
  enabled: false
submit:
  next_url: ""
`)
	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.False(t, cfg.CSRF.Enabled)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Empty(t, cfg.Submit.NextURL)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "data_dir: "+t.TempDir()+"\nlisten: \":9000\"\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict config parse error")
}

func TestLoad_RejectsMultipleDocuments(t *testing.T) {
	path := writeConfig(t, "owner: a\n---\nowner: b\n")
	_, err := NewLoader(path, "").Load()
	require.ErrorContains(t, err, "multiple documents")
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	cfg, err := NewLoader(writeConfig(t, ""), "").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultOwner, cfg.Owner)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml"), "").Load()
	require.ErrorContains(t, err, "read file")
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	t.Setenv(EnvStoreBackend, "bolt")
	t.Setenv(EnvSubmitNextURL, "javascript:alert(1)")

	_, err := NewLoader("", "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.backend")
	assert.Contains(t, err.Error(), "submit.next_url")
}

func TestStoreOptions_DerivesPaths(t *testing.T) {
	cfg := Defaults()
	cfg.DataDir = "/srv/dealflow"

	assert.Equal(t, "/srv/dealflow/dealflow.sqlite", cfg.StoreOptions().Path)

	cfg.Store.Backend = store.BackendFile
	assert.Equal(t, "/srv/dealflow/configurations", cfg.StoreOptions().Path)

	cfg.Store.Backend = store.BackendBadger
	assert.Equal(t, "/srv/dealflow/badger", cfg.StoreOptions().Path)

	cfg.Store.Backend = store.BackendRedis
	cfg.Store.Redis.Addr = "redis:6379"
	opts := cfg.StoreOptions()
	assert.Empty(t, opts.Path)
	assert.Equal(t, "redis:6379", opts.Redis.Addr)

	cfg.Store.Backend = store.BackendSqlite
	cfg.Store.Path = "/tmp/x.sqlite"
	assert.Equal(t, "/tmp/x.sqlite", cfg.StoreOptions().Path)
}
