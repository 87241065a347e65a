package reporting

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/risk"
)

// Display holds the human-readable strings for a result
type Display struct {
	PositionSize      string   `json:"position_size"`       // "$666.67"
	CleanPositionSize string   `json:"clean_position_size"` // "666.67", ready to paste into an order form
	StopLoss          string   `json:"stop_loss"`
	Side              string   `json:"side"`
	Leverage          string   `json:"leverage"`
	MarginUsed        string   `json:"margin_used"`
	MaxMargin         string   `json:"max_margin"`
	SLDistance        string   `json:"sl_distance"`
	RiskTarget        string   `json:"risk_target"`
	RiskActual        string   `json:"risk_actual"`
	MaxLeverage       string   `json:"max_leverage"`
	Warnings          []string `json:"warnings,omitempty"`
}

// NewDisplay formats a result and the input it was computed from
func NewDisplay(result risk.Result, in risk.Input) Display {
	d := Display{
		PositionSize:      FormatCurrency(result.PositionSize),
		CleanPositionSize: CleanPositionSize(result.PositionSize),
		StopLoss:          CleanPrice(in.SLPrice),
		Side:              string(result.Side),
		Leverage:          fmt.Sprintf("%dx", result.Leverage),
		MarginUsed:        FormatCurrency(result.MarginUsed),
		MaxMargin:         fmt.Sprintf("%s (%s)", FormatCurrency(result.MaxMargin), FormatPercent(in.MaxMarginPercent)),
		SLDistance:        FormatPercent(result.SLDistancePercent * 100),
		RiskTarget:        fmt.Sprintf("$%s (%s of account)", fixed2(result.RiskUSDTarget), FormatPercent(in.RiskPercent)),
		RiskActual:        fmt.Sprintf("$%s (%s of account)", fixed2(result.RiskUSDActual), FormatPercent(result.RiskPercentActual)),
		MaxLeverage:       fmt.Sprintf("%dx", in.MaxLeverage),
	}

	if result.LeverageCapped {
		d.Warnings = append(d.Warnings, fmt.Sprintf("leverage capped at %dx", in.MaxLeverage))
	}
	if result.MarginCapped {
		d.Warnings = append(d.Warnings, fmt.Sprintf("position reduced to fit max margin; actual risk %s is below target %s",
			FormatPercent(result.RiskPercentActual), FormatPercent(in.RiskPercent)))
	}
	return d
}

// FormatCurrency renders a dollar amount with thousands separators and at most two decimals
func FormatCurrency(v float64) string {
	s := decimal.NewFromFloat(v).Round(2).String()

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, hasFrac := strings.Cut(s, ".")
	out := sign + "$" + groupThousands(intPart)
	if hasFrac {
		out += "." + frac
	}
	return out
}

// FormatPercent renders a percent value (2 = 2%) with two decimals
func FormatPercent(v float64) string {
	return fixed2(v) + "%"
}

// CleanPositionSize renders a position size as plain digits with two decimals
func CleanPositionSize(v float64) string {
	return fixed2(v)
}

// CleanPrice renders a price in its shortest exact form
func CleanPrice(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
