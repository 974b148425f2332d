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

func TestRecordPin(t *testing.T) {
	m := New()
	m.RecordPin(OutcomeSuccess, 2*time.Second)
	m.RecordPin(OutcomeSuccess, 0)
	m.RecordPin(OutcomeFailure, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pins.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pins.WithLabelValues(OutcomeFailure)))
}

func TestRequestStarted(t *testing.T) {
	m := New()
	done := m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))

	done("post", "/api/pin-image", http.StatusTooManyRequests)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/pin-image", "429")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.RecordRateLimited()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "algo_quickstart_http_rate_limited_total 1")
}
