// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validate

import (
	"errors"
	"slices"
	"strings"
)

// LogLevels are the level names accepted by the logger, most verbose first.
var LogLevels = []string{"trace", "debug", "info", "warn", "error"}

// ErrInvalidLogLevel is returned by ParseLogLevel.
var ErrInvalidLogLevel = errors.New("invalid log level (must be: " + strings.Join(LogLevels, ", ") + ")")

// ParseLogLevel normalizes a level name case-insensitively.
func ParseLogLevel(s string) (string, error) {
	level := strings.ToLower(strings.TrimSpace(s))
	if !slices.Contains(LogLevels, level) {
		return "", ErrInvalidLogLevel
	}
	return level, nil
}

// LogLevel checks a level name. Empty selects the default level.
func (v *Validator) LogLevel(field, level string) {
	if level == "" {
		return
	}
	if _, err := ParseLogLevel(level); err != nil {
		v.AddError(field, err.Error(), level)
	}
}
