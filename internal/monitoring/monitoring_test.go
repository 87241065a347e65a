package monitoring

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecorder_ObserveCalculation tests counters and the health feed
func TestRecorder_ObserveCalculation(t *testing.T) {
	health := NewHealthChecker(false)
	rec := NewRecorder(health)

	okBefore := testutil.ToFloat64(calculationsTotal.WithLabelValues("ok", "LONG"))
	marginBefore := testutil.ToFloat64(clampsTotal.WithLabelValues("margin"))

	rec.ObserveCalculation("LONG", 10, 100, true, true)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(calculationsTotal.WithLabelValues("ok", "LONG")))
	assert.Equal(t, marginBefore+1, testutil.ToFloat64(clampsTotal.WithLabelValues("margin")))

	status := health.Status()
	assert.Equal(t, int64(1), status.Calculations)
	require.NotNil(t, status.LastCalculation)
	assert.False(t, status.LastCalculation.IsZero())
}

// TestRecorder_ObserveRejected tests the invalid input counters
func TestRecorder_ObserveRejected(t *testing.T) {
	rec := NewRecorder(nil)
	before := testutil.ToFloat64(errorsTotal.WithLabelValues("invalid_sl_price"))

	rec.ObserveRejected("sl_price")

	assert.Equal(t, before+1, testutil.ToFloat64(errorsTotal.WithLabelValues("invalid_sl_price")))
}

// TestHealthChecker_Degraded tests that exchange failures degrade the status
func TestHealthChecker_Degraded(t *testing.T) {
	health := NewHealthChecker(true)
	rec := NewRecorder(health)

	rec.ObserveExchangeLookup(errors.New("API error: timeout"))
	assert.Equal(t, "degraded", health.Status().Status)

	rec.ObserveExchangeLookup(nil)
	assert.Equal(t, "healthy", health.Status().Status)
}

func TestHealthChecker_ServeHTTP(t *testing.T) {
	health := NewHealthChecker(false)
	w := httptest.NewRecorder()
	health.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var body HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.NotContains(t, w.Body.String(), "last_calculation")

	health.MarkCalculation()
	w = httptest.NewRecorder()
	health.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Contains(t, w.Body.String(), "last_calculation")
}

func TestMetricsHandler(t *testing.T) {
	RecordError("test")

	w := httptest.NewRecorder()
	NewMetricsHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "risk_calculator_errors_total")
}
