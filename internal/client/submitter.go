// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package client

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ManuGH/dealflow/internal/form"
	"github.com/ManuGH/dealflow/internal/tiering"
)

// User-visible submit messages.
const (
	MessageSaved     = "Configuration saved successfully!"
	MessageSaveError = "Error saving configuration."
)

// Poster stores a configuration and returns the suggested next URL.
type Poster interface {
	Submit(ctx context.Context, cfg tiering.Configuration) (string, error)
}

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(message string, isError bool)
}

// Navigator moves the user to another page.
type Navigator interface {
	Navigate(url string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string, isError bool)

func (f NotifierFunc) Notify(message string, isError bool) { f(message, isError) }

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

// State is the submit state of a form session.
type State int32

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Submitter serializes a form, posts it and reports the outcome. Concurrent
// calls are not serialized; each runs its own single attempt.
type Submitter struct {
	poster    Poster
	notifier  Notifier
	navigator Navigator
	logger    zerolog.Logger

	inflight atomic.Int32
}

// NewSubmitter creates a Submitter. A nil navigator disables navigation.
func NewSubmitter(p Poster, n Notifier, nav Navigator, logger zerolog.Logger) *Submitter {
	return &Submitter{poster: p, notifier: n, navigator: nav, logger: logger}
}

// State reports whether a submission is in flight.
func (s *Submitter) State() State {
	if s.inflight.Load() > 0 {
		return StateSubmitting
	}
	return StateIdle
}

// Submit posts the serialized form. On success it notifies and navigates to
// the server's next URL when one is given. Any failure produces the generic
// error notice and no navigation. The error is returned for callers that
// need an exit status.
func (s *Submitter) Submit(ctx context.Context, f *form.Form) error {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	cfg := form.Serialize(f)
	next, err := s.poster.Submit(ctx, cfg)
	if err != nil {
		s.logger.Error().Err(err).Str("event", "configuration.submit_failed").Msg("failed to submit configuration")
		s.notifier.Notify(MessageSaveError, true)
		return err
	}

	s.logger.Info().Str("event", "configuration.submitted").Str("next", next).Msg("configuration submitted")
	s.notifier.Notify(MessageSaved, false)
	if next != "" && s.navigator != nil {
		s.navigator.Navigate(next)
	}
	return nil
}
