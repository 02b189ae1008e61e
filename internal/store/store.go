// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package store persists one tiering configuration per owner.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ManuGH/dealflow/internal/tiering"
)

var (
	// ErrNotFound is returned by Load when nothing has been saved for the owner.
	ErrNotFound = errors.New("store: configuration not found")
	// ErrInvalidOwner is returned for blank owner names.
	ErrInvalidOwner = errors.New("store: invalid owner")
)

// Store is a configuration store. Implementations are safe for concurrent use.
type Store interface {
	// Load returns the owner's saved configuration or ErrNotFound.
	Load(ctx context.Context, owner string) (tiering.Configuration, error)
	// Save replaces the owner's configuration.
	Save(ctx context.Context, owner string, cfg tiering.Configuration) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

func checkOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return ErrInvalidOwner
	}
	return nil
}

func encode(cfg tiering.Configuration) ([]byte, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("store: encode configuration: %w", err)
	}
	return data, nil
}

func decode(data []byte) (tiering.Configuration, error) {
	cfg, err := tiering.Decode(data)
	if err != nil {
		return tiering.Configuration{}, fmt.Errorf("store: %w", err)
	}
	return cfg, nil
}
