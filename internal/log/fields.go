// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldOwner     = "owner"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldService   = "service"
	FieldVersion   = "version"

	// HTTP fields
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldBytes      = "bytes"
	FieldDuration   = "duration"
	FieldRemoteAddr = "remote_addr"

	// Storage fields
	FieldBackend = "backend"
)
