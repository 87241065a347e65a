package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/calculator"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/exchange"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/form"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/monitoring"
	"github.com/ducminhle1904/crypto-risk-calculator/pkg/reporting"
)

type fixedLimits struct {
	max float64
}

func (f fixedLimits) GetLeverageLimits(ctx context.Context, symbol string) (*exchange.LeverageLimits, error) {
	return &exchange.LeverageLimits{Exchange: "test", Symbol: symbol, MinLeverage: 1, MaxLeverage: f.max}, nil
}

func newTestRouter(opts ...calculator.Option) (*gin.Engine, *monitoring.HealthChecker) {
	gin.SetMode(gin.TestMode)
	health := monitoring.NewHealthChecker(false)
	opts = append(opts, calculator.WithMetrics(monitoring.NewRecorder(health)))
	server := NewServer(nil, calculator.New(opts...), health, Options{
		Defaults:       form.Defaults(),
		MetricsEnabled: true,
	})
	return server.Router(), health
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func referenceBody() map[string]interface{} {
	return map[string]interface{}{
		"account_size":       1000,
		"risk_percent":       2,
		"max_margin_percent": 75,
		"max_leverage":       125,
		"entry_price":        100,
		"sl_price":           97,
	}
}

// TestCalculate_Typed tests the typed JSON body
func TestCalculate_Typed(t *testing.T) {
	router, health := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/calculate", referenceBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report reporting.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Calculation.Result.Leverage)
	assert.InDelta(t, 666.67, report.Calculation.Result.PositionSize, 0.01)
	assert.Equal(t, "$666.67", report.Display.PositionSize)
	assert.Equal(t, int64(1), health.Status().Calculations)
}

// TestCalculate_EqualEntryAndSL tests that a zero stop distance names sl_price
func TestCalculate_EqualEntryAndSL(t *testing.T) {
	router, _ := newTestRouter()

	body := referenceBody()
	body["sl_price"] = 100

	w := doJSON(t, router, http.MethodPost, "/api/v1/calculate", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sl_price", resp.Field)
	assert.Contains(t, resp.Error, "sl_price")
}

// TestCalculate_OverflowingInput tests that inputs whose products overflow are a 400, not a 500
func TestCalculate_OverflowingInput(t *testing.T) {
	router, _ := newTestRouter()

	body := referenceBody()
	body["account_size"] = 1e308
	body["risk_percent"] = 200

	w := doJSON(t, router, http.MethodPost, "/api/v1/calculate", body)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "risk_percent", resp.Field)
}

// TestCalculate_BindingValidation tests validator errors for the typed body
func TestCalculate_BindingValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"zero account", "account_size", 0},
		{"negative risk", "risk_percent", -1},
		{"zero leverage", "max_leverage", 0},
		{"missing entry", "entry_price", nil},
	}

	router, _ := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := referenceBody()
			if tt.value == nil {
				delete(body, tt.key)
			} else {
				body[tt.key] = tt.value
			}

			w := doJSON(t, router, http.MethodPost, "/api/v1/calculate", body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.key, resp.Field)
		})
	}
}

// TestCalculate_MalformedBody tests a body that is not JSON
func TestCalculate_MalformedBody(t *testing.T) {
	router, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "malformed request body")
}

// TestCalculate_FormMode tests raw string input
func TestCalculate_FormMode(t *testing.T) {
	router, _ := newTestRouter()

	fields := form.Defaults()
	w := doJSON(t, router, http.MethodPost, "/api/v1/calculate?mode=form", fields)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	fields.EntryPrice = "abc"
	fields.SLPrice = ""
	w = doJSON(t, router, http.MethodPost, "/api/v1/calculate?mode=form", fields)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{"entry_price", "sl_price"}, resp.Fields)
}

// TestCalculate_FormEncoded tests url-encoded form input
func TestCalculate_FormEncoded(t *testing.T) {
	router, _ := newTestRouter()

	values := url.Values{}
	values.Set("account_size", "1000")
	values.Set("risk_percent", "2")
	values.Set("max_margin_percent", "75")
	values.Set("max_leverage", "125.9")
	values.Set("entry_price", "100")
	values.Set("sl_price", "103")
	values.Set("symbol", "ethusdt")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate?mode=form", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report reporting.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "ETHUSDT", report.Calculation.Symbol)
	assert.Equal(t, 125, report.Calculation.Input.MaxLeverage)
	assert.Equal(t, "SHORT", report.Display.Side)
}

// TestCalculate_ExchangeCeiling tests that the exchange limit reaches the response
func TestCalculate_ExchangeCeiling(t *testing.T) {
	router, _ := newTestRouter(calculator.WithLimitsProvider(fixedLimits{max: 25}))

	body := referenceBody()
	body["max_margin_percent"] = 1
	body["symbol"] = "BTCUSDT"

	w := doJSON(t, router, http.MethodPost, "/api/v1/calculate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report reporting.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 25, report.Calculation.Result.Leverage)
	assert.Equal(t, 25, report.Calculation.EffectiveInput.MaxLeverage)
	require.NotNil(t, report.Calculation.ExchangeLimits)
}

// TestDefaults tests the defaults endpoint
func TestDefaults(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/api/v1/defaults", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fields form.Fields
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fields))
	assert.Equal(t, form.Defaults(), fields)
}

// TestHealthAndMetrics tests the operational endpoints
func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	doJSON(t, router, http.MethodPost, "/api/v1/calculate", referenceBody())

	w = doJSON(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "risk_calculator_calculations_total")

	w = doJSON(t, router, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
