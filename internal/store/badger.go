// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/ManuGH/dealflow/internal/tiering"
)

// BadgerStore keeps configurations under key "config:<owner>".
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens a badger database at path. An empty path opens an
// in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger store: open: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func badgerKey(owner string) []byte {
	return []byte("config:" + owner)
}

func (s *BadgerStore) Load(_ context.Context, owner string) (tiering.Configuration, error) {
	if err := checkOwner(owner); err != nil {
		return tiering.Configuration{}, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(owner))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return tiering.Configuration{}, ErrNotFound
	}
	if err != nil {
		return tiering.Configuration{}, fmt.Errorf("badger store: load %q: %w", owner, err)
	}
	return decode(data)
}

func (s *BadgerStore) Save(_ context.Context, owner string, cfg tiering.Configuration) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	data, err := encode(cfg)
	if err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(owner), data)
	}); err != nil {
		return fmt.Errorf("badger store: save %q: %w", owner, err)
	}
	return nil
}

func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger store: closed")
	}
	return nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }
