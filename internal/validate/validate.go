// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package validate collects configuration errors so that every problem is
// reported at once.
package validate

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Error is one failed check.
type Error struct {
	Field   string
	Value   any
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// ValidationError bundles every failed check of one Validator.
type ValidationError struct {
	errs []Error
}

// Errors returns the individual failures.
func (e ValidationError) Errors() []Error { return e.errs }

func (e ValidationError) Error() string {
	msgs := make([]string, len(e.errs))
	for i, err := range e.errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validator accumulates failures. The zero value is ready to use.
type Validator struct {
	errs []Error
}

func New() *Validator { return &Validator{} }

func (v *Validator) AddError(field, message string, value any) {
	v.errs = append(v.errs, Error{Field: field, Value: value, Message: message})
}

func (v *Validator) addf(field string, value any, format string, args ...any) {
	v.AddError(field, fmt.Sprintf(format, args...), value)
}

// IsValid reports whether no check has failed.
func (v *Validator) IsValid() bool { return len(v.errs) == 0 }

// Errors returns the failures recorded so far.
func (v *Validator) Errors() []Error { return v.errs }

// Err returns a ValidationError holding a copy of the failures, or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return ValidationError{errs: slices.Clone(v.errs)}
}

// ListenAddr checks a "host:port" or ":port" address. Port 0 is allowed.
func (v *Validator) ListenAddr(field, addr string) {
	if addr == "" {
		v.AddError(field, "listen address cannot be empty", addr)
		return
	}
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		v.addf(field, addr, "invalid listen address: %v", err)
		return
	}
	if port, err := strconv.Atoi(portStr); err != nil || port < 0 || port > 65535 {
		v.addf(field, addr, "port must be between 0 and 65535, got %q", portStr)
	}
}

// Range checks minVal <= value <= maxVal.
func (v *Validator) Range(field string, value, minVal, maxVal int) {
	if value < minVal || value > maxVal {
		v.addf(field, value, "value must be between %d and %d, got %d", minVal, maxVal, value)
	}
}

// FloatRange checks minVal <= value <= maxVal.
func (v *Validator) FloatRange(field string, value, minVal, maxVal float64) {
	if value < minVal || value > maxVal {
		v.addf(field, value, "value must be between %g and %g, got %g", minVal, maxVal, value)
	}
}

// NotEmpty rejects empty and whitespace-only strings.
func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "value cannot be empty", value)
	}
}

// OneOf checks that value is one of allowed.
func (v *Validator) OneOf(field, value string, allowed []string) {
	if !slices.Contains(allowed, value) {
		v.addf(field, value, "value must be one of %v, got %q", allowed, value)
	}
}

// Directory checks that path is a directory. When mustExist is false a
// missing directory is created.
func (v *Validator) Directory(field, path string, mustExist bool) {
	if path == "" {
		v.AddError(field, "directory path cannot be empty", path)
		return
	}
	if strings.Contains(path, "..") {
		v.AddError(field, "path contains traversal sequences (..)", path)
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		v.addf(field, path, "invalid path: %v", err)
		return
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist) && mustExist:
		v.AddError(field, "directory does not exist", path)
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(abs, 0o750); err != nil {
			v.addf(field, path, "cannot create directory: %v", err)
		}
	case err != nil:
		v.addf(field, path, "cannot access directory: %v", err)
	case !info.IsDir():
		v.AddError(field, "path is not a directory", path)
	}
}

// RedirectTarget checks where a browser is sent after a save. Empty disables
// the redirect; otherwise it must be an absolute path or an http(s) URL.
// Protocol-relative targets ("//host") are rejected.
func (v *Validator) RedirectTarget(field, target string) {
	if target == "" {
		return
	}
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		if _, err := url.ParseRequestURI(target); err != nil {
			v.addf(field, target, "invalid path: %v", err)
		}
		return
	}
	if _, msg := parseHTTPURL(target); msg != "" {
		v.AddError(field, msg, target)
	}
}

// Origin checks a browser origin of the form scheme://host[:port].
func (v *Validator) Origin(field, origin string) {
	u, msg := parseHTTPURL(origin)
	if msg != "" {
		v.AddError(field, msg, origin)
		return
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
		v.AddError(field, "origin must be scheme://host[:port]", origin)
	}
}

// parseHTTPURL parses an absolute http(s) URL with a host. It returns a
// failure message instead of an error.
func parseHTTPURL(s string) (*url.URL, string) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Sprintf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Sprintf("unsupported URL scheme %q (allowed: http, https)", u.Scheme)
	}
	if u.Host == "" {
		return nil, "URL must have a host"
	}
	return u, ""
}
