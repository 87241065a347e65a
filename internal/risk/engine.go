package risk

import (
	"math"
	"strconv"
)

// Compute sizes a position so that hitting the stop-loss loses RiskPercent of the account,
// subject to the leverage ceiling and the margin ceiling.
//
// Formula:
//
//	riskTarget   = account * risk% / 100
//	slDistance   = |entry - sl| / entry
//	positionSize = riskTarget / slDistance
//	maxMargin    = account * maxMargin% / 100
//	leverage     = ceil(min(positionSize / maxMargin, maxLeverage)), clamped to [1, maxLeverage]
//	marginUsed   = positionSize / leverage, capped at maxMargin (position shrinks to maxMargin * leverage)
//
// Realized risk is recomputed from the final position size, so it is below the target
// whenever the margin cap kicks in. Compute is pure and safe for concurrent use.
func Compute(in Input) (Result, error) {
	if err := Validate(in); err != nil {
		return Result{}, err
	}

	riskUSDTarget := in.AccountSize * (in.RiskPercent / 100)
	if !usable(riskUSDTarget) {
		return Result{}, NewInvalidInputError(FieldRiskPercent, formatFloat(in.RiskPercent), "risk amount is out of range for this account size")
	}

	slDistancePercent := math.Abs(in.EntryPrice-in.SLPrice) / in.EntryPrice
	if slDistancePercent == 0 {
		// entry == sl would size an infinite position
		return Result{}, NewInvalidInputError(FieldSLPrice, formatFloat(in.SLPrice), "stop-loss must differ from entry price")
	}
	if math.IsInf(slDistancePercent, 0) || math.IsNaN(slDistancePercent) {
		return Result{}, NewInvalidInputError(FieldEntryPrice, formatFloat(in.EntryPrice), "stop-loss distance is out of range for this entry price")
	}

	positionSize := riskUSDTarget / slDistancePercent
	if !usable(positionSize) {
		return Result{}, NewInvalidInputError(FieldSLPrice, formatFloat(in.SLPrice), "position size is out of range for this stop-loss distance")
	}

	maxMargin := in.AccountSize * (in.MaxMarginPercent / 100)
	if !usable(maxMargin) {
		return Result{}, NewInvalidInputError(FieldMaxMarginPercent, formatFloat(in.MaxMarginPercent), "margin ceiling is out of range for this account size")
	}

	leverageCapped := false
	rawLeverage := positionSize / maxMargin
	if rawLeverage > float64(in.MaxLeverage) {
		rawLeverage = float64(in.MaxLeverage)
		leverageCapped = true
	}
	leverage := int(math.Ceil(rawLeverage))
	if leverage > in.MaxLeverage {
		leverage = in.MaxLeverage
	}
	if leverage < 1 {
		leverage = 1
	}

	marginCapped := false
	marginUsed := positionSize / float64(leverage)
	if marginUsed > maxMargin {
		positionSize = maxMargin * float64(leverage)
		marginUsed = maxMargin
		marginCapped = true
	}

	riskUSDActual := positionSize * slDistancePercent
	riskPercentActual := (riskUSDActual / in.AccountSize) * 100

	if !usable(positionSize) || !usable(marginUsed) {
		return Result{}, NewInvalidInputError(FieldMaxLeverage, strconv.Itoa(in.MaxLeverage), "position size is out of range for this leverage")
	}
	if math.IsInf(riskUSDActual, 0) || math.IsNaN(riskUSDActual) ||
		math.IsInf(riskPercentActual, 0) || math.IsNaN(riskPercentActual) {
		return Result{}, NewInvalidInputError(FieldAccountSize, formatFloat(in.AccountSize), "realized risk is out of range for this account size")
	}

	side := SideLong
	if in.SLPrice > in.EntryPrice {
		side = SideShort
	}

	return Result{
		PositionSize:      positionSize,
		Leverage:          leverage,
		MarginUsed:        marginUsed,
		RiskUSDActual:     riskUSDActual,
		RiskPercentActual: riskPercentActual,
		SLDistancePercent: slDistancePercent,
		RiskUSDTarget:     riskUSDTarget,
		MaxMargin:         maxMargin,
		Side:              side,
		LeverageCapped:    leverageCapped,
		MarginCapped:      marginCapped,
	}, nil
}

// Validate checks that every field of in is usable by Compute
func Validate(in Input) error {
	positives := []struct {
		field string
		value float64
	}{
		{FieldAccountSize, in.AccountSize},
		{FieldRiskPercent, in.RiskPercent},
		{FieldMaxMarginPercent, in.MaxMarginPercent},
		{FieldEntryPrice, in.EntryPrice},
		{FieldSLPrice, in.SLPrice},
	}

	for _, p := range positives {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return NewInvalidInputError(p.field, formatFloat(p.value), "must be a finite number")
		}
		if p.value <= 0 {
			return NewInvalidInputError(p.field, formatFloat(p.value), "must be greater than zero")
		}
	}

	if in.MaxLeverage < 1 {
		return NewInvalidInputError(FieldMaxLeverage, strconv.Itoa(in.MaxLeverage), "must be at least 1")
	}

	return nil
}

// usable reports whether v is finite and has not underflowed to zero
func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
