package risk

// Side is the direction implied by where the stop-loss sits relative to the entry
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Input holds the trading parameters for a single sizing calculation
type Input struct {
	AccountSize      float64 `json:"account_size"`       // Account equity in quote currency
	RiskPercent      float64 `json:"risk_percent"`       // Percent of account to lose at SL (2 = 2%)
	MaxMarginPercent float64 `json:"max_margin_percent"` // Percent of account usable as margin
	MaxLeverage      int     `json:"max_leverage"`       // Upper bound for the leverage multiplier
	EntryPrice       float64 `json:"entry_price"`
	SLPrice          float64 `json:"sl_price"`
}

// Result is the outcome of a sizing calculation.
// It is recomputed from scratch for every input snapshot.
type Result struct {
	PositionSize      float64 `json:"position_size"`       // Notional value of the position
	Leverage          int     `json:"leverage"`            // 1..MaxLeverage
	MarginUsed        float64 `json:"margin_used"`         // Capital committed as margin
	RiskUSDActual     float64 `json:"risk_usd_actual"`     // Realized loss at SL after clamping
	RiskPercentActual float64 `json:"risk_percent_actual"` // Realized loss as percent of account
	SLDistancePercent float64 `json:"sl_distance_percent"` // |entry-sl|/entry as a fraction

	RiskUSDTarget  float64 `json:"risk_usd_target"`
	MaxMargin      float64 `json:"max_margin"`
	Side           Side    `json:"side"`
	LeverageCapped bool    `json:"leverage_capped"` // MaxLeverage bound the leverage
	MarginCapped   bool    `json:"margin_capped"`   // Position was reduced to fit MaxMargin
}

// IsClamped reports whether either ceiling changed the target risk
func (r Result) IsClamped() bool {
	return r.LeverageCapped || r.MarginCapped
}
