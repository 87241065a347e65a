package reporting

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/calculator"
)

var csvHeader = []string{
	"ID",
	"Calculated_At",
	"Symbol",
	"Side",
	"Account_Size",
	"Risk_%",
	"Max_Margin_%",
	"Max_Leverage",
	"Entry_Price",
	"SL_Price",
	"Position_Size",
	"Leverage",
	"Margin_Used",
	"SL_Distance_%",
	"Risk_USD_Actual",
	"Risk_%_Actual",
	"Leverage_Capped",
	"Margin_Capped",
}

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// Write writes a header and a single calculation row to path
func (r *DefaultCSVReporter) Write(calc *calculator.Calculation, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	if err := w.Write(csvRow(calc)); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func csvRow(calc *calculator.Calculation) []string {
	in := calc.EffectiveInput
	res := calc.Result
	return []string{
		calc.ID,
		calc.CalculatedAt.Format(time.RFC3339),
		calc.Symbol,
		string(res.Side),
		CleanPrice(in.AccountSize),
		CleanPrice(in.RiskPercent),
		CleanPrice(in.MaxMarginPercent),
		strconv.Itoa(in.MaxLeverage),
		CleanPrice(in.EntryPrice),
		CleanPrice(in.SLPrice),
		CleanPositionSize(res.PositionSize),
		strconv.Itoa(res.Leverage),
		fixed2(res.MarginUsed),
		fixed2(res.SLDistancePercent * 100),
		fixed2(res.RiskUSDActual),
		fixed2(res.RiskPercentActual),
		strconv.FormatBool(res.LeverageCapped),
		strconv.FormatBool(res.MarginCapped),
	}
}

// WriteCSV is a convenience function using the default CSV reporter
func WriteCSV(calc *calculator.Calculation, path string) error {
	return NewDefaultCSVReporter().Write(calc, path)
}
