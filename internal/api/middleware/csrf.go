// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/ManuGH/dealflow/internal/log"
	"github.com/ManuGH/dealflow/internal/metrics"
)

const (
	// DefaultCSRFCookie is the cookie carrying the token.
	DefaultCSRFCookie = "csrftoken"
	// HeaderCSRFToken is the header JSON clients echo the token in.
	HeaderCSRFToken = "X-CSRFToken"
	// FormCSRFField is the hidden form field HTML forms echo the token in.
	FormCSRFField = "csrfmiddlewaretoken"

	maxTokenLen = 128
)

// CSRF rejection reasons, also used as metric labels.
const (
	ReasonOrigin        = "origin"
	ReasonMissingCookie = "missing_cookie"
	ReasonMissingToken  = "missing_token"
	ReasonMismatch      = "mismatch"
)

type csrfContextKey struct{}

// CSRFConfig configures the CSRF middleware.
type CSRFConfig struct {
	CookieName     string
	AllowedOrigins []string
	// Reject writes the response for a rejected request. Nil writes a JSON 403.
	Reject func(w http.ResponseWriter, r *http.Request, reason string)
}

// CSRF implements double-submit cookie protection.
//
// Safe requests get a token cookie when they carry none. Unsafe requests must
// echo the cookie value in the X-CSRFToken header or the csrfmiddlewaretoken
// form field. When the browser sends Origin or Referer it must be same-origin
// or in AllowedOrigins.
//
//	r.Use(middleware.CSRF(middleware.CSRFConfig{CookieName: "csrftoken"}))
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = DefaultCSRFCookie
	}
	originsMap := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		originsMap[strings.TrimSuffix(origin, "/")] = true
	}
	reject := cfg.Reject
	if reject == nil {
		reject = writeCSRFRejection
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookieToken(r, cookieName)

			if isSafeMethod(r.Method) {
				if token == "" {
					token = newToken()
					http.SetCookie(w, &http.Cookie{
						Name:     cookieName,
						Value:    token,
						Path:     "/",
						SameSite: http.SameSiteLaxMode,
						Secure:   r.TLS != nil,
					})
				}
				next.ServeHTTP(w, r.WithContext(withToken(r.Context(), token)))
				return
			}

			if reason := checkUnsafe(r, token, originsMap); reason != "" {
				metrics.RecordCSRFRejection(reason)
				logger := log.WithComponentFromContext(r.Context(), "csrf")
				logger.Warn().
					Str("event", "csrf.rejected").
					Str("reason", reason).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("csrf verification failed")
				reject(w, r, reason)
				return
			}

			next.ServeHTTP(w, r.WithContext(withToken(r.Context(), token)))
		})
	}
}

// TokenFromContext returns the CSRF token for the request, or "" when the
// middleware is not installed.
func TokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(csrfContextKey{}).(string); ok {
		return v
	}
	return ""
}

func withToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfContextKey{}, token)
}

func checkUnsafe(r *http.Request, token string, origins map[string]bool) string {
	if requestOrigin := getRequestOrigin(r); requestOrigin != "" {
		if !isOriginAllowed(requestOrigin, origins, r) {
			return ReasonOrigin
		}
	}
	if token == "" {
		return ReasonMissingCookie
	}
	submitted := r.Header.Get(HeaderCSRFToken)
	if submitted == "" {
		submitted = r.PostFormValue(FormCSRFField)
	}
	if submitted == "" {
		return ReasonMissingToken
	}
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
		return ReasonMismatch
	}
	return ""
}

func cookieToken(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil || len(c.Value) > maxTokenLen {
		return ""
	}
	return c.Value
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func writeCSRFRejection(w http.ResponseWriter, _ *http.Request, _ string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": "CSRF verification failed.",
	})
}

// getRequestOrigin extracts the origin from the request.
// It checks Origin header first, then falls back to Referer.
func getRequestOrigin(r *http.Request) string {
	origin := r.Header.Get("Origin")
	if origin != "" && origin != "null" {
		return strings.TrimSuffix(origin, "/")
	}

	referer := r.Header.Get("Referer")
	if referer == "" {
		return ""
	}
	refererURL, err := url.Parse(referer)
	if err != nil || refererURL.Host == "" {
		return ""
	}
	return refererURL.Scheme + "://" + refererURL.Host
}

// isOriginAllowed accepts configured origins and the request's own origin.
func isOriginAllowed(requestOrigin string, allowedOrigins map[string]bool, r *http.Request) bool {
	if allowedOrigins[requestOrigin] {
		return true
	}
	return isSameOrigin(requestOrigin, r)
}

// isSameOrigin checks if the request origin matches the request's target origin.
func isSameOrigin(requestOrigin string, r *http.Request) bool {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	host := r.Host
	if host == "" {
		return false
	}
	return requestOrigin == scheme+"://"+host
}
