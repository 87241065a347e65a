package exchange

import (
	"context"
	"strings"
)

// LeverageLimits is the leverage range an exchange allows for one instrument
type LeverageLimits struct {
	Exchange     string  `json:"exchange"`
	Symbol       string  `json:"symbol"`
	MinLeverage  float64 `json:"min_leverage"`
	MaxLeverage  float64 `json:"max_leverage"`
	LeverageStep float64 `json:"leverage_step"`
}

// MaxWholeLeverage returns the largest integer leverage the instrument allows
func (l LeverageLimits) MaxWholeLeverage() int {
	return int(l.MaxLeverage)
}

// LimitsProvider looks up per-symbol leverage ceilings
type LimitsProvider interface {
	GetLeverageLimits(ctx context.Context, symbol string) (*LeverageLimits, error)
}

// NormalizeSymbol turns user input like "btc/usdt" into "BTCUSDT"
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.NewReplacer("/", "", "-", "", "_", "", " ", "").Replace(s)
	return s
}
