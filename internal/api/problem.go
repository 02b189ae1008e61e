// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/dealflow/internal/api/middleware"
	"github.com/ManuGH/dealflow/internal/log"
)

// Problem types.
const (
	ProblemBadRequest = "request/invalid"
	ProblemCSRF       = "request/csrf_failed"
	ProblemInternal   = "system/internal"
)

// writeProblem writes an RFC 7807 problem details response.
//
//   - type: canonical machine identifier (e.g. "request/invalid").
//   - title: short human-readable label.
//   - code: stable machine-readable short code.
//   - detail: explanation of this occurrence, omitted when empty.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, problemType, title, code, detail string) {
	reqID := log.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = w.Header().Get(middleware.HeaderRequestID)
	}

	res := map[string]any{
		"type":      problemType,
		"title":     title,
		"status":    status,
		"code":      code,
		"requestId": reqID,
	}
	if detail != "" {
		res["detail"] = detail
	}
	if instance := r.URL.EscapedPath(); instance != "" {
		res["instance"] = instance
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.FromContext(r.Context()).Error().
			Err(err).
			Str("type", problemType).
			Int("status", status).
			Msg("failed to encode problem response")
	}
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
