// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"sync"

	"github.com/ManuGH/dealflow/internal/tiering"
)

// MemoryStore keeps configurations in process memory. It stores and returns
// deep copies so callers never share maps with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[string]tiering.Configuration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{configs: make(map[string]tiering.Configuration)}
}

func (s *MemoryStore) Load(_ context.Context, owner string) (tiering.Configuration, error) {
	if err := checkOwner(owner); err != nil {
		return tiering.Configuration{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[owner]
	if !ok {
		return tiering.Configuration{}, ErrNotFound
	}
	return cfg.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, owner string, cfg tiering.Configuration) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[owner] = cfg.Clone()
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
