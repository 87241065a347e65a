package risk

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func referenceInput() Input {
	return Input{
		AccountSize:      1000,
		RiskPercent:      2,
		MaxMarginPercent: 75,
		MaxLeverage:      125,
		EntryPrice:       100,
		SLPrice:          97,
	}
}

// TestCompute_ReferenceExample tests the default screen values
func TestCompute_ReferenceExample(t *testing.T) {
	res, err := Compute(referenceInput())
	require.NoError(t, err)

	assert.InDelta(t, 0.03, res.SLDistancePercent, epsilon)
	assert.InDelta(t, 20.0, res.RiskUSDTarget, epsilon)
	assert.InDelta(t, 666.6667, res.PositionSize, 1e-4)
	assert.InDelta(t, 750.0, res.MaxMargin, epsilon)
	assert.Equal(t, 1, res.Leverage)
	assert.InDelta(t, 666.6667, res.MarginUsed, 1e-4)
	assert.InDelta(t, 20.0, res.RiskUSDActual, 1e-6)
	assert.InDelta(t, 2.0, res.RiskPercentActual, 1e-6)
	assert.Equal(t, SideLong, res.Side)
	assert.False(t, res.IsClamped())
}

// TestCompute_LeverageRoundsUp tests that leverage is the ceiling of position/maxMargin
func TestCompute_LeverageRoundsUp(t *testing.T) {
	in := referenceInput()
	in.MaxMarginPercent = 10 // maxMargin = 100, position/maxMargin = 6.67

	res, err := Compute(in)
	require.NoError(t, err)

	assert.Equal(t, 7, res.Leverage)
	assert.InDelta(t, 666.6667/7, res.MarginUsed, 1e-4)
	assert.False(t, res.MarginCapped)
	assert.False(t, res.LeverageCapped)
	assert.InDelta(t, 2.0, res.RiskPercentActual, 1e-6)
}

// TestCompute_MarginCapReducesRisk tests the margin ceiling shrinking the position
func TestCompute_MarginCapReducesRisk(t *testing.T) {
	in := referenceInput()
	in.MaxMarginPercent = 1 // maxMargin = 10
	in.MaxLeverage = 10

	res, err := Compute(in)
	require.NoError(t, err)

	assert.Equal(t, 10, res.Leverage)
	assert.True(t, res.LeverageCapped)
	assert.True(t, res.MarginCapped)
	assert.InDelta(t, 100.0, res.PositionSize, epsilon)
	assert.InDelta(t, 10.0, res.MarginUsed, epsilon)
	assert.InDelta(t, 3.0, res.RiskUSDActual, 1e-9)
	assert.InDelta(t, 0.3, res.RiskPercentActual, 1e-9)
	assert.Less(t, res.RiskPercentActual, in.RiskPercent)
}

// TestCompute_ShortSide tests a stop-loss above entry
func TestCompute_ShortSide(t *testing.T) {
	in := referenceInput()
	in.SLPrice = 103

	res, err := Compute(in)
	require.NoError(t, err)

	assert.Equal(t, SideShort, res.Side)
	assert.InDelta(t, 0.03, res.SLDistancePercent, epsilon)
	assert.InDelta(t, 666.6667, res.PositionSize, 1e-4)
}

// TestCompute_TinyPositionKeepsLeverageAtOne tests the lower leverage bound
func TestCompute_TinyPositionKeepsLeverageAtOne(t *testing.T) {
	in := referenceInput()
	in.RiskPercent = 0.0001

	res, err := Compute(in)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Leverage)
}

// TestCompute_EntryEqualsStopLoss tests that a zero SL distance is rejected
func TestCompute_EntryEqualsStopLoss(t *testing.T) {
	in := referenceInput()
	in.SLPrice = in.EntryPrice

	res, err := Compute(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, FieldSLPrice, FieldOf(err))
	assert.Equal(t, Result{}, res)
}

// TestCompute_InvalidInputs tests validation of every field
func TestCompute_InvalidInputs(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*Input)
		field string
	}{
		{"NaN account", func(in *Input) { in.AccountSize = math.NaN() }, FieldAccountSize},
		{"zero account", func(in *Input) { in.AccountSize = 0 }, FieldAccountSize},
		{"negative risk", func(in *Input) { in.RiskPercent = -1 }, FieldRiskPercent},
		{"infinite risk", func(in *Input) { in.RiskPercent = math.Inf(1) }, FieldRiskPercent},
		{"zero max margin", func(in *Input) { in.MaxMarginPercent = 0 }, FieldMaxMarginPercent},
		{"zero max leverage", func(in *Input) { in.MaxLeverage = 0 }, FieldMaxLeverage},
		{"negative entry", func(in *Input) { in.EntryPrice = -100 }, FieldEntryPrice},
		{"infinite stop-loss", func(in *Input) { in.SLPrice = math.Inf(-1) }, FieldSLPrice},
		{"risk amount overflows", func(in *Input) { in.AccountSize, in.RiskPercent = 1e308, 200 }, FieldRiskPercent},
		{"stop-loss distance overflows", func(in *Input) { in.EntryPrice, in.SLPrice = 1e-300, 1e10 }, FieldEntryPrice},
		{"margin ceiling overflows", func(in *Input) { in.AccountSize, in.MaxMarginPercent = 1e308, 500 }, FieldMaxMarginPercent},
		{"position size overflows", func(in *Input) {
			in.AccountSize, in.RiskPercent, in.EntryPrice, in.SLPrice = 1e300, 2, 1, 1-1e-15
		}, FieldSLPrice},
		{"risk amount underflows", func(in *Input) { in.AccountSize, in.RiskPercent = 1e-320, 1e-10 }, FieldRiskPercent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := referenceInput()
			tt.mut(&in)

			_, err := Compute(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, tt.field, FieldOf(err))
		})
	}
}

// TestCompute_Invariants checks the leverage and margin bounds on random inputs
func TestCompute_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		entry := 0.01 + rng.Float64()*50000
		sl := entry * (0.5 + rng.Float64())
		if sl == entry {
			continue
		}
		in := Input{
			AccountSize:      1 + rng.Float64()*1e6,
			RiskPercent:      0.01 + rng.Float64()*20,
			MaxMarginPercent: 0.5 + rng.Float64()*99.5,
			MaxLeverage:      1 + rng.Intn(200),
			EntryPrice:       entry,
			SLPrice:          sl,
		}

		res, err := Compute(in)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, res.Leverage, 1)
		assert.LessOrEqual(t, res.Leverage, in.MaxLeverage)
		assert.LessOrEqual(t, res.MarginUsed, res.MaxMargin*(1+epsilon))
		assert.False(t, math.IsNaN(res.PositionSize) || math.IsInf(res.PositionSize, 0))

		if !res.IsClamped() {
			assert.InDelta(t, in.RiskPercent, res.RiskPercentActual, in.RiskPercent*1e-9)
		} else {
			assert.LessOrEqual(t, res.RiskPercentActual, in.RiskPercent*(1+1e-9))
		}
	}
}

// TestInvalidInputError_Message tests the error text
func TestInvalidInputError_Message(t *testing.T) {
	err := NewInvalidInputError(FieldEntryPrice, "abc", "not a number")
	assert.Equal(t, `invalid entry_price "abc": not a number`, err.Error())

	err = NewInvalidInputError(FieldMaxLeverage, "", "is required")
	assert.Equal(t, "invalid max_leverage: is required", err.Error())
}
