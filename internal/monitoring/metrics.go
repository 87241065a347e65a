package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Calculation metrics
	calculationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_calculator_calculations_total",
			Help: "Total number of sizing calculations by outcome",
		},
		[]string{"outcome", "side"},
	)

	clampsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_calculator_clamps_total",
			Help: "Calculations where a ceiling changed the target risk",
		},
		[]string{"kind"},
	)

	leverageChosen = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "risk_calculator_leverage",
			Help:    "Distribution of the leverage returned to callers",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 75, 100, 125},
		},
	)

	positionSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "risk_calculator_position_size",
			Help:    "Distribution of computed notional position sizes",
			Buckets: prometheus.ExponentialBuckets(10, 10, 7),
		},
	)

	// Exchange metrics
	exchangeLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_calculator_exchange_lookups_total",
			Help: "Leverage limit lookups against the exchange",
		},
		[]string{"result"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_calculator_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(calculationsTotal)
	prometheus.MustRegister(clampsTotal)
	prometheus.MustRegister(leverageChosen)
	prometheus.MustRegister(positionSize)
	prometheus.MustRegister(exchangeLookupsTotal)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordCalculation records a successful calculation
func RecordCalculation(side string, leverage int, size float64, leverageCapped, marginCapped bool) {
	calculationsTotal.WithLabelValues("ok", side).Inc()
	leverageChosen.Observe(float64(leverage))
	positionSize.Observe(size)

	if leverageCapped {
		clampsTotal.WithLabelValues("leverage").Inc()
	}
	if marginCapped {
		clampsTotal.WithLabelValues("margin").Inc()
	}
}

// RecordRejected records a calculation rejected for invalid input
func RecordRejected(field string) {
	calculationsTotal.WithLabelValues("invalid", "").Inc()
	errorsTotal.WithLabelValues("invalid_" + field).Inc()
}

// RecordExchangeLookup records the result of a leverage limit lookup
func RecordExchangeLookup(ok bool) {
	if ok {
		exchangeLookupsTotal.WithLabelValues("ok").Inc()
		return
	}
	exchangeLookupsTotal.WithLabelValues("error").Inc()
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}

// Recorder adapts the package level metric functions to the calculator's recorder interface
type Recorder struct {
	health *HealthChecker
}

// NewRecorder creates a recorder that also feeds the health checker when one is given
func NewRecorder(health *HealthChecker) *Recorder {
	return &Recorder{health: health}
}

// ObserveCalculation implements calculator.MetricsRecorder
func (r *Recorder) ObserveCalculation(side string, leverage int, size float64, leverageCapped, marginCapped bool) {
	RecordCalculation(side, leverage, size, leverageCapped, marginCapped)
	if r.health != nil {
		r.health.MarkCalculation()
	}
}

// ObserveRejected implements calculator.MetricsRecorder
func (r *Recorder) ObserveRejected(field string) {
	RecordRejected(field)
}

// ObserveExchangeLookup implements calculator.MetricsRecorder
func (r *Recorder) ObserveExchangeLookup(err error) {
	RecordExchangeLookup(err == nil)
	if r.health != nil {
		r.health.SetExchangeStatus(err)
	}
}
