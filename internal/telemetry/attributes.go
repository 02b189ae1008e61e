// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by spans across the service.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	StoreBackendKey   = "store.backend"
	StoreOperationKey = "store.operation"
	ConfigOwnerKey    = "config.owner"

	SubmitOutcomeKey = "submit.outcome"
	SubmitChannelKey = "submit.channel" // form or json

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// StoreAttributes describes a configuration store call.
func StoreAttributes(backend, operation, owner string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(StoreBackendKey, backend),
		attribute.String(StoreOperationKey, operation),
		attribute.String(ConfigOwnerKey, owner),
	}
}

// SubmitAttributes describes a configuration submission.
func SubmitAttributes(channel, outcome string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(SubmitChannelKey, channel),
		attribute.String(SubmitOutcomeKey, outcome),
	}
}

// ErrorAttributes marks a span as failed with a coarse error type.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
