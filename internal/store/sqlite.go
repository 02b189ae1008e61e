// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/dealflow/internal/persistence/sqlite"
	"github.com/ManuGH/dealflow/internal/tiering"
)

const schemaVersion = 1

// SqliteStore keeps one row per owner holding the JSON document.
type SqliteStore struct {
	DB *sql.DB
}

// NewSqliteStore opens dbPath and migrates the schema.
func NewSqliteStore(ctx context.Context, dbPath string) (*SqliteStore, error) {
	db, err := sqlite.Open(ctx, dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}

	s := &SqliteStore{DB: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("config store: migration failed: %w", err)
	}
	return s, nil
}

func (s *SqliteStore) migrate(ctx context.Context) error {
	current, err := sqlite.UserVersion(ctx, s.DB)
	if err != nil {
		return err
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS configurations (
		owner TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SqliteStore) Load(ctx context.Context, owner string) (tiering.Configuration, error) {
	if err := checkOwner(owner); err != nil {
		return tiering.Configuration{}, err
	}
	var doc string
	err := s.DB.QueryRowContext(ctx, `SELECT document FROM configurations WHERE owner = ?`, owner).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return tiering.Configuration{}, ErrNotFound
	}
	if err != nil {
		return tiering.Configuration{}, fmt.Errorf("config store: load %q: %w", owner, err)
	}
	return decode([]byte(doc))
}

func (s *SqliteStore) Save(ctx context.Context, owner string, cfg tiering.Configuration) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	data, err := encode(cfg)
	if err != nil {
		return err
	}
	query := `
	INSERT INTO configurations (owner, document, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(owner) DO UPDATE SET
		document = excluded.document,
		updated_at = excluded.updated_at
	`
	if _, err := s.DB.ExecContext(ctx, query, owner, string(data), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("config store: save %q: %w", owner, err)
	}
	return nil
}

// UpdatedAt returns when the owner's configuration was last saved.
func (s *SqliteStore) UpdatedAt(ctx context.Context, owner string) (time.Time, error) {
	var raw string
	err := s.DB.QueryRowContext(ctx, `SELECT updated_at FROM configurations WHERE owner = ?`, owner).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("config store: updated_at %q: %w", owner, err)
	}
	return time.Parse(time.RFC3339Nano, raw)
}

func (s *SqliteStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}
