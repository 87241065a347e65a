// Package form turns the raw text of the calculator fields into a risk.Input.
package form

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/risk"
)

// Fields holds the raw text values of the six calculator inputs
type Fields struct {
	AccountSize      string `json:"account_size" form:"account_size"`
	RiskPercent      string `json:"risk_percent" form:"risk_percent"`
	MaxMarginPercent string `json:"max_margin_percent" form:"max_margin_percent"`
	MaxLeverage      string `json:"max_leverage" form:"max_leverage"`
	EntryPrice       string `json:"entry_price" form:"entry_price"`
	SLPrice          string `json:"sl_price" form:"sl_price"`
}

// Defaults returns the values the calculator starts with
func Defaults() Fields {
	return Fields{
		AccountSize:      "1000",
		RiskPercent:      "2",
		MaxMarginPercent: "75",
		MaxLeverage:      "125",
		EntryPrice:       "100",
		SLPrice:          "97",
	}
}

// FromInput renders a typed input back into form fields
func FromInput(in risk.Input) Fields {
	return Fields{
		AccountSize:      formatFloat(in.AccountSize),
		RiskPercent:      formatFloat(in.RiskPercent),
		MaxMarginPercent: formatFloat(in.MaxMarginPercent),
		MaxLeverage:      strconv.Itoa(in.MaxLeverage),
		EntryPrice:       formatFloat(in.EntryPrice),
		SLPrice:          formatFloat(in.SLPrice),
	}
}

// Parse converts every field to a number. All malformed fields are reported
// together, each as a *risk.InvalidInputError, so a caller can flag each one.
// Range checks are left to risk.Compute.
func Parse(f Fields) (risk.Input, error) {
	var (
		in   risk.Input
		errs []error
	)

	floats := []struct {
		field string
		raw   string
		dst   *float64
	}{
		{risk.FieldAccountSize, f.AccountSize, &in.AccountSize},
		{risk.FieldRiskPercent, f.RiskPercent, &in.RiskPercent},
		{risk.FieldMaxMarginPercent, f.MaxMarginPercent, &in.MaxMarginPercent},
		{risk.FieldEntryPrice, f.EntryPrice, &in.EntryPrice},
		{risk.FieldSLPrice, f.SLPrice, &in.SLPrice},
	}

	for _, fl := range floats {
		v, err := parseNumber(fl.field, fl.raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*fl.dst = v
	}

	leverage, err := parseInteger(risk.FieldMaxLeverage, f.MaxLeverage)
	if err != nil {
		errs = append(errs, err)
	} else {
		in.MaxLeverage = leverage
	}

	if len(errs) > 0 {
		return risk.Input{}, errors.Join(errs...)
	}
	return in, nil
}

// Merge fills empty fields of f from fallback
func Merge(f, fallback Fields) Fields {
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	return Fields{
		AccountSize:      pick(f.AccountSize, fallback.AccountSize),
		RiskPercent:      pick(f.RiskPercent, fallback.RiskPercent),
		MaxMarginPercent: pick(f.MaxMarginPercent, fallback.MaxMarginPercent),
		MaxLeverage:      pick(f.MaxLeverage, fallback.MaxLeverage),
		EntryPrice:       pick(f.EntryPrice, fallback.EntryPrice),
		SLPrice:          pick(f.SLPrice, fallback.SLPrice),
	}
}

func parseNumber(field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, risk.NewInvalidInputError(field, raw, "value is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, risk.NewInvalidInputError(field, raw, "not a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, risk.NewInvalidInputError(field, raw, "must be a finite number")
	}
	return v, nil
}

// parseInteger reads a whole leverage value the way the form field is typed:
// a fractional part is truncated ("12.7" is 12), while exponents and other
// suffixes ("1e3", "10x") are rejected. Values beyond int32 are out of range.
func parseInteger(field, raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, risk.NewInvalidInputError(field, raw, "value is required")
	}

	whole, frac, _ := strings.Cut(s, ".")
	if strings.TrimLeft(frac, "0123456789") != "" {
		return 0, risk.NewInvalidInputError(field, raw, "must be a whole number")
	}

	n, err := strconv.ParseInt(whole, 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, risk.NewInvalidInputError(field, raw, "out of range")
		}
		return 0, risk.NewInvalidInputError(field, raw, "must be a whole number")
	}
	return int(n), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
