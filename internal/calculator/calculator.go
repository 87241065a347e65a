package calculator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/exchange"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/form"
	"github.com/ducminhle1904/crypto-risk-calculator/internal/risk"
)

// MetricsRecorder receives calculation outcomes
type MetricsRecorder interface {
	ObserveCalculation(side string, leverage int, size float64, leverageCapped, marginCapped bool)
	ObserveRejected(field string)
	ObserveExchangeLookup(err error)
}

// Request is a single sizing request
type Request struct {
	Input  risk.Input
	Symbol string // optional; enables the exchange leverage ceiling
}

// Calculation is a computed result together with the inputs that produced it
type Calculation struct {
	ID                  string                   `json:"id"`
	Symbol              string                   `json:"symbol,omitempty"`
	Input               risk.Input               `json:"input"`
	EffectiveInput      risk.Input               `json:"effective_input"`
	Result              risk.Result              `json:"result"`
	ExchangeLimits      *exchange.LeverageLimits `json:"exchange_limits,omitempty"`
	ExchangeLimitsError string                   `json:"exchange_limits_error,omitempty"`
	CalculatedAt        time.Time                `json:"calculated_at"`
}

// Calculator runs the risk engine for the CLI and the API
type Calculator struct {
	logger   *zap.Logger
	limits   exchange.LimitsProvider
	recorder MetricsRecorder
	now      func() time.Time
}

// Option configures a Calculator
type Option func(*Calculator)

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Calculator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLimitsProvider enables the per-symbol exchange leverage ceiling
func WithLimitsProvider(p exchange.LimitsProvider) Option {
	return func(c *Calculator) {
		c.limits = p
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(r MetricsRecorder) Option {
	return func(c *Calculator) {
		c.recorder = r
	}
}

// New creates a calculator. Without options it only logs to a no-op logger.
func New(opts ...Option) *Calculator {
	c := &Calculator{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate sizes a position. When a symbol is given and a limits provider is
// configured, the exchange's max leverage lowers the caller's ceiling. A failed
// lookup is logged and the caller's ceiling is used unchanged.
func (c *Calculator) Calculate(ctx context.Context, req Request) (*Calculation, error) {
	calc := &Calculation{
		ID:             uuid.NewString(),
		Symbol:         exchange.NormalizeSymbol(req.Symbol),
		Input:          req.Input,
		EffectiveInput: req.Input,
	}

	if calc.Symbol != "" && c.limits != nil {
		limits, err := c.limits.GetLeverageLimits(ctx, calc.Symbol)
		if c.recorder != nil {
			c.recorder.ObserveExchangeLookup(err)
		}
		if err != nil {
			c.logger.Warn("leverage limit lookup failed, using requested max leverage",
				zap.String("symbol", calc.Symbol),
				zap.Error(err))
			calc.ExchangeLimitsError = err.Error()
		} else {
			calc.ExchangeLimits = limits
			if exchangeMax := limits.MaxWholeLeverage(); exchangeMax >= 1 && exchangeMax < calc.EffectiveInput.MaxLeverage {
				calc.EffectiveInput.MaxLeverage = exchangeMax
			}
		}
	}

	result, err := risk.Compute(calc.EffectiveInput)
	if err != nil {
		field := risk.FieldOf(err)
		if c.recorder != nil {
			c.recorder.ObserveRejected(field)
		}
		c.logger.Info("calculation rejected",
			zap.String("id", calc.ID),
			zap.String("field", field),
			zap.Error(err))
		return nil, err
	}

	calc.Result = result
	calc.CalculatedAt = c.now().UTC()

	if c.recorder != nil {
		c.recorder.ObserveCalculation(string(result.Side), result.Leverage, result.PositionSize,
			result.LeverageCapped, result.MarginCapped)
	}

	c.logger.Debug("calculation completed",
		zap.String("id", calc.ID),
		zap.String("symbol", calc.Symbol),
		zap.String("side", string(result.Side)),
		zap.Float64("position_size", result.PositionSize),
		zap.Int("leverage", result.Leverage),
		zap.Float64("margin_used", result.MarginUsed),
		zap.Float64("risk_percent_actual", result.RiskPercentActual),
		zap.Bool("margin_capped", result.MarginCapped))

	return calc, nil
}

// CalculateFields parses raw text fields and calculates
func (c *Calculator) CalculateFields(ctx context.Context, symbol string, fields form.Fields) (*Calculation, error) {
	in, err := form.Parse(fields)
	if err != nil {
		if c.recorder != nil {
			c.recorder.ObserveRejected(risk.FieldOf(err))
		}
		return nil, err
	}
	return c.Calculate(ctx, Request{Input: in, Symbol: symbol})
}
