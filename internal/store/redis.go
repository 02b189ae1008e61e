// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ManuGH/dealflow/internal/tiering"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string // host:port
	Password string
	DB       int
	Prefix   string // prepended to every key
}

// RedisStore keeps configurations under key "<prefix>config:<owner>".
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis store: connection failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to Redis")

	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

func (s *RedisStore) key(owner string) string {
	return s.prefix + "config:" + owner
}

func (s *RedisStore) Load(ctx context.Context, owner string) (tiering.Configuration, error) {
	if err := checkOwner(owner); err != nil {
		return tiering.Configuration{}, err
	}
	data, err := s.client.Get(ctx, s.key(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return tiering.Configuration{}, ErrNotFound
	}
	if err != nil {
		return tiering.Configuration{}, fmt.Errorf("redis store: load %q: %w", owner, err)
	}
	return decode(data)
}

func (s *RedisStore) Save(ctx context.Context, owner string, cfg tiering.Configuration) error {
	if err := checkOwner(owner); err != nil {
		return err
	}
	data, err := encode(cfg)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(owner), data, 0).Err(); err != nil {
		return fmt.Errorf("redis store: save %q: %w", owner, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
