// Package reporting renders and exports risk calculations.
package reporting

import (
	"github.com/ducminhle1904/crypto-risk-calculator/internal/calculator"
)

// FileReporter writes a calculation to a file
type FileReporter interface {
	Write(calc *calculator.Calculation, path string) error
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle   int
	LabelStyle    int
	CurrencyStyle int
	PercentStyle  int
	NumberStyle   int
	WarningStyle  int
}

// Report is the serialized form of a calculation shared by JSON export and the API
type Report struct {
	Calculation *calculator.Calculation `json:"calculation"`
	Display     Display                 `json:"display"`
}

// NewReport pairs a calculation with its display strings
func NewReport(calc *calculator.Calculation) Report {
	return Report{
		Calculation: calc,
		Display:     NewDisplay(calc.Result, calc.EffectiveInput),
	}
}
