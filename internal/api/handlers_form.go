// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ManuGH/dealflow/internal/api/middleware"
	"github.com/ManuGH/dealflow/internal/form"
	"github.com/ManuGH/dealflow/internal/log"
	"github.com/ManuGH/dealflow/internal/metrics"
	"github.com/ManuGH/dealflow/internal/store"
	"github.com/ManuGH/dealflow/internal/tiering"
)

// handleFormPage renders the form pre-filled with the saved configuration.
// A failed load renders the blank form.
func (s *Server) handleFormPage(w http.ResponseWriter, r *http.Request) {
	owner := log.OwnerFromContext(r.Context())

	saved, err := s.store.Load(r.Context(), owner)
	switch {
	case errors.Is(err, store.ErrNotFound):
		metrics.RecordLoad(metrics.OutcomeEmpty)
		saved = tiering.Configuration{}
	case err != nil:
		metrics.RecordLoad(metrics.OutcomeError)
		logger := s.requestLogger(r)
		logger.Warn().Err(err).
			Str("event", "configuration.load_failed").
			Msg("failed to load configuration, rendering defaults")
		saved = tiering.Configuration{}
	default:
		metrics.RecordLoad(metrics.OutcomeSuccess)
	}

	s.renderForm(w, r, http.StatusOK, form.Build(saved), nil)
}

// handleFormSubmit applies posted control values to a fresh form and saves
// the serialized configuration.
func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	nextURL := s.cfg.Get().Submit.NextURL
	owner := log.OwnerFromContext(r.Context())
	logger := s.requestLogger(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.recordSubmit(r, channelForm, metrics.OutcomeInvalid)
		writeProblem(w, r, http.StatusBadRequest, ProblemBadRequest, "Bad Request", "INVALID_FORM", "form body could not be parsed")
		return
	}

	f := form.Build(tiering.Configuration{})
	f.Apply(r.PostForm)

	if err := s.store.Save(r.Context(), owner, form.Serialize(f)); err != nil {
		s.recordSubmit(r, channelForm, metrics.OutcomeError)
		logger.Error().Err(err).Str("event", "configuration.save_failed").Msg("failed to save configuration")
		s.renderForm(w, r, http.StatusInternalServerError, f, &form.Notice{Message: msgSaveError, Error: true})
		return
	}

	s.recordSubmit(r, channelForm, metrics.OutcomeSuccess)
	logger.Info().Str("event", "configuration.saved").Str("channel", channelForm).Msg("configuration saved")

	if nextURL != "" {
		http.Redirect(w, r, nextURL, http.StatusSeeOther)
		return
	}
	s.renderForm(w, r, http.StatusOK, f, &form.Notice{Message: msgSaved})
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, f *form.Form, notice *form.Notice) {
	page := form.Page{
		Title:  pageTitle,
		Action: "/",
		Form:   f,
		Notice: notice,
	}
	if token := middleware.TokenFromContext(r.Context()); token != "" {
		page.CSRFField = middleware.FormCSRFField
		page.CSRFToken = token
	}

	var buf bytes.Buffer
	if err := form.Render(&buf, page); err != nil {
		logger := s.requestLogger(r)
		logger.Error().Err(err).Str("event", "form.render_failed").Msg("failed to render form")
		writeProblem(w, r, http.StatusInternalServerError, ProblemInternal, "Internal Server Error", "RENDER_FAILED", "")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) requestLogger(r *http.Request) zerolog.Logger {
	return log.WithContext(r.Context(), s.logger)
}
