// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/ManuGH/dealflow/internal/api/middleware"
	"github.com/ManuGH/dealflow/internal/log"
	"github.com/ManuGH/dealflow/internal/metrics"
	"github.com/ManuGH/dealflow/internal/store"
	"github.com/ManuGH/dealflow/internal/telemetry"
	"github.com/ManuGH/dealflow/internal/tiering"
)

const (
	statusSuccess = "success"
	statusEmpty   = "empty"
	statusError   = "error"

	channelJSON = "json"
	channelForm = "form"
)

// envelope is the response body of the JSON endpoints.
type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Next    string `json:"next,omitempty"`
}

// handleGetConfiguration returns the saved configuration for the configured owner.
func (s *Server) handleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	owner := log.OwnerFromContext(r.Context())
	logger := s.requestLogger(r)

	saved, err := s.store.Load(r.Context(), owner)
	switch {
	case errors.Is(err, store.ErrNotFound):
		metrics.RecordLoad(metrics.OutcomeEmpty)
		writeJSON(w, http.StatusOK, envelope{Status: statusEmpty, Data: struct{}{}})
	case err != nil:
		metrics.RecordLoad(metrics.OutcomeError)
		logger.Error().Err(err).Str("event", "configuration.load_failed").Msg("failed to load configuration")
		writeJSON(w, http.StatusInternalServerError, envelope{Status: statusError, Message: "Failed to load configuration."})
	default:
		metrics.RecordLoad(metrics.OutcomeSuccess)
		writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: saved})
	}
}

// handleSubmitConfiguration stores a JSON configuration document.
func (s *Server) handleSubmitConfiguration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Invalid method"})
		return
	}

	nextURL := s.cfg.Get().Submit.NextURL
	owner := log.OwnerFromContext(r.Context())
	logger := s.requestLogger(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.recordSubmit(r, channelJSON, metrics.OutcomeInvalid)
		writeJSON(w, http.StatusBadRequest, envelope{Status: statusError, Message: "Request body too large or unreadable."})
		return
	}
	submitted, err := tiering.Decode(body)
	if err != nil {
		s.recordSubmit(r, channelJSON, metrics.OutcomeInvalid)
		logger.Warn().Err(err).Str("event", "configuration.invalid").Msg("rejected malformed configuration")
		writeJSON(w, http.StatusBadRequest, envelope{Status: statusError, Message: err.Error()})
		return
	}

	if err := s.store.Save(r.Context(), owner, tiering.Normalize(submitted)); err != nil {
		s.recordSubmit(r, channelJSON, metrics.OutcomeError)
		logger.Error().Err(err).Str("event", "configuration.save_failed").Msg("failed to save configuration")
		writeJSON(w, http.StatusInternalServerError, envelope{Status: statusError, Message: msgSaveError})
		return
	}

	s.recordSubmit(r, channelJSON, metrics.OutcomeSuccess)
	logger.Info().Str("event", "configuration.saved").Str("channel", channelJSON).Msg("configuration saved")
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Next: nextURL})
}

func (s *Server) recordSubmit(r *http.Request, channel, outcome string) {
	metrics.RecordSubmission(channel, outcome)
	middleware.AddSpanAttributes(r, telemetry.SubmitAttributes(channel, outcome)...)
}
