// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/ManuGH/dealflow/internal/tiering"
)

// FileStore writes one JSON document per owner into a directory.
// Writes are atomic and durable: a reader sees either the old or the new
// document, never a partial one.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("file store: create %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// path escapes owner so it can never leave the store directory.
func (s *FileStore) path(owner string) string {
	return filepath.Join(s.dir, url.PathEscape(owner)+".json")
}

func (s *FileStore) Load(_ context.Context, owner string) (tiering.Configuration, error) {
	if err := checkOwner(owner); err != nil {
		return tiering.Configuration{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(owner))
	if errors.Is(err, fs.ErrNotExist) {
		return tiering.Configuration{}, ErrNotFound
	}
	if err != nil {
		return tiering.Configuration{}, fmt.Errorf("file store: read %q: %w", owner, err)
	}
	return decode(data)
}

func (s *FileStore) Save(_ context.Context, owner string, cfg tiering.Configuration) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	data, err := encode(cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := renameio.NewPendingFile(s.path(owner), renameio.WithPermissions(0o640))
	if err != nil {
		return fmt.Errorf("file store: create pending file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("file store: write %q: %w", owner, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("file store: replace %q: %w", owner, err)
	}
	return nil
}

func (s *FileStore) Ping(context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("file store: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("file store: %s is not a directory", s.dir)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
