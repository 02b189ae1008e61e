// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/dealflow/internal/log"
	"github.com/ManuGH/dealflow/internal/metrics"
	"github.com/ManuGH/dealflow/internal/telemetry"
	"github.com/ManuGH/dealflow/internal/tiering"
)

// Instrumented wraps a Store with a span and a latency observation per call.
type Instrumented struct {
	next    Store
	backend string
	tracer  trace.Tracer
}

// Instrument wraps s. backend labels metrics and spans.
func Instrument(s Store, backend string) *Instrumented {
	return &Instrumented{
		next:    s,
		backend: backend,
		tracer:  telemetry.Tracer("dealflow/store"),
	}
}

// Unwrap returns the wrapped store.
func (s *Instrumented) Unwrap() Store { return s.next }

func (s *Instrumented) observe(ctx context.Context, op, owner string, call func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "store."+op, trace.WithAttributes(telemetry.StoreAttributes(s.backend, op, owner)...))
	defer span.End()

	start := time.Now()
	err := call(ctx)

	outcome := metrics.OutcomeSuccess
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = metrics.OutcomeEmpty
	case err != nil:
		outcome = metrics.OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	elapsed := time.Since(start)
	metrics.ObserveStoreOp(s.backend, op, outcome, elapsed)

	logger := log.WithComponentFromContext(ctx, "store")
	logger.Debug().
		Err(err).
		Str("event", "store."+op).
		Str(log.FieldBackend, s.backend).
		Str("outcome", outcome).
		Dur(log.FieldDuration, elapsed).
		Msg("store operation")
	return err
}

func (s *Instrumented) Load(ctx context.Context, owner string) (tiering.Configuration, error) {
	var cfg tiering.Configuration
	err := s.observe(ctx, "load", owner, func(ctx context.Context) error {
		var err error
		cfg, err = s.next.Load(ctx, owner)
		return err
	})
	return cfg, err
}

func (s *Instrumented) Save(ctx context.Context, owner string, cfg tiering.Configuration) error {
	return s.observe(ctx, "save", owner, func(ctx context.Context) error {
		return s.next.Save(ctx, owner, cfg)
	})
}

func (s *Instrumented) Ping(ctx context.Context) error {
	return s.observe(ctx, "ping", "", s.next.Ping)
}

func (s *Instrumented) Close() error { return s.next.Close() }
