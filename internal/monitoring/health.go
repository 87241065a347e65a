package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

type HealthChecker struct {
	mu              sync.RWMutex
	lastCalculation time.Time
	exchangeEnabled bool
	exchangeError   string
	calculations    int64
}

type HealthStatus struct {
	Status          string     `json:"status"`
	Timestamp       time.Time  `json:"timestamp"`
	LastCalculation *time.Time `json:"last_calculation,omitempty"`
	Calculations    int64      `json:"calculations"`
	ExchangeEnabled bool       `json:"exchange_enabled"`
	ExchangeError   string     `json:"exchange_error,omitempty"`
	Uptime          string     `json:"uptime"`
}

func NewHealthChecker(exchangeEnabled bool) *HealthChecker {
	return &HealthChecker{exchangeEnabled: exchangeEnabled}
}

// MarkCalculation records that a calculation completed
func (h *HealthChecker) MarkCalculation() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastCalculation = time.Now()
	h.calculations++
}

// SetExchangeStatus stores the outcome of the last exchange lookup
func (h *HealthChecker) SetExchangeStatus(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.exchangeError = err.Error()
		return
	}
	h.exchangeError = ""
}

// Status returns a snapshot of the current health.
// A failing exchange only degrades the service: sizing still works without it.
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if h.exchangeEnabled && h.exchangeError != "" {
		status = "degraded"
	}

	hs := HealthStatus{
		Status:          status,
		Timestamp:       time.Now(),
		Calculations:    h.calculations,
		ExchangeEnabled: h.exchangeEnabled,
		ExchangeError:   h.exchangeError,
		Uptime:          time.Since(startTime).String(),
	}
	if !h.lastCalculation.IsZero() {
		last := h.lastCalculation
		hs.LastCalculation = &last
	}
	return hs
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(health)
}
