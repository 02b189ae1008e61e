// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSubmission(t *testing.T) {
	before := testutil.ToFloat64(submissionsTotal.WithLabelValues("json", OutcomeSuccess))
	RecordSubmission("json", OutcomeSuccess)
	RecordSubmission("json", OutcomeSuccess)
	assert.Equal(t, before+2, testutil.ToFloat64(submissionsTotal.WithLabelValues("json", OutcomeSuccess)))
}

func TestRecordCounters(t *testing.T) {
	before := testutil.ToFloat64(loadsTotal.WithLabelValues(OutcomeEmpty))
	RecordLoad(OutcomeEmpty)
	assert.Equal(t, before+1, testutil.ToFloat64(loadsTotal.WithLabelValues(OutcomeEmpty)))

	before = testutil.ToFloat64(csrfRejectionsTotal.WithLabelValues("token"))
	RecordCSRFRejection("token")
	assert.Equal(t, before+1, testutil.ToFloat64(csrfRejectionsTotal.WithLabelValues("token")))

	before = testutil.ToFloat64(configReloadsTotal.WithLabelValues(OutcomeError))
	RecordConfigReload(OutcomeError)
	assert.Equal(t, before+1, testutil.ToFloat64(configReloadsTotal.WithLabelValues(OutcomeError)))

	before = testutil.ToFloat64(rateLimitedTotal.WithLabelValues("/submit-configuration/"))
	RecordRateLimited("/submit-configuration/")
	assert.Equal(t, before+1, testutil.ToFloat64(rateLimitedTotal.WithLabelValues("/submit-configuration/")))
}

func TestHandler_ExposesStoreHistogram(t *testing.T) {
	ObserveStoreOp("memory", "save", OutcomeSuccess, 3*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `dealflow_store_operation_duration_seconds_count{backend="memory",operation="save",outcome="success"}`)
}
