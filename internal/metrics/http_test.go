// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackInFlight(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsInFlight)
	done := TrackInFlight()
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsInFlight))
	done()
	assert.Equal(t, before, testutil.ToFloat64(httpRequestsInFlight))
}

func TestObserveHTTPRequest(t *testing.T) {
	ObserveHTTPRequest(http.MethodGet, "/get-configuration/", http.StatusOK, 512, 3*time.Millisecond)
	ObserveHTTPRequest(http.MethodPost, "/", http.StatusSeeOther, 0, time.Millisecond)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(httpRequestDuration), 2)
	// Empty bodies are not observed.
	assert.GreaterOrEqual(t, testutil.CollectAndCount(httpResponseSize), 1)
}
