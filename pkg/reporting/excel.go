package reporting

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/calculator"
)

const (
	calculationSheet = "Calculation"
	inputsSheet      = "Inputs"
)

// excelCell is a single label/value row; kind picks the value style
type excelCell struct {
	label string
	value interface{}
	kind  cellKind
}

type cellKind int

const (
	cellText cellKind = iota
	cellCurrency
	cellPercent
	cellNumber
	cellWarning
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// Write writes a workbook with "Calculation" and "Inputs" sheets
func (r *DefaultExcelReporter) Write(calc *calculator.Calculation, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), calculationSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(inputsSheet); err != nil {
		return err
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeSheet(fx, calculationSheet, calculationRows(calc), styles); err != nil {
		return err
	}
	if err := r.writeSheet(fx, inputsSheet, inputRows(calc), styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

// createExcelStyles creates the workbook styles
func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}

	// Header style - Dark slate background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.LabelStyle, err = fx.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: border,
	})
	if err != nil {
		return styles, err
	}

	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    7, // $#,##0.00
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10, // 0.00%
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.NumberStyle, err = fx.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.WarningStyle, err = fx.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Color: "FF0000", Bold: true},
		Border: border,
	})
	return styles, err
}

func (r *DefaultExcelReporter) writeSheet(fx *excelize.File, sheet string, rows []excelCell, styles ExcelStyles) error {
	if err := fx.SetColWidth(sheet, "A", "A", 22); err != nil {
		return err
	}
	if err := fx.SetColWidth(sheet, "B", "B", 40); err != nil {
		return err
	}

	for i, h := range []string{"Field", "Value"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	for i, row := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+2)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+2)

		if err := fx.SetCellValue(sheet, labelCell, row.label); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, labelCell, err)
		}
		if err := fx.SetCellValue(sheet, valueCell, row.value); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, valueCell, err)
		}
		fx.SetCellStyle(sheet, labelCell, labelCell, styles.LabelStyle)

		style := styles.NumberStyle
		switch row.kind {
		case cellCurrency:
			style = styles.CurrencyStyle
		case cellPercent:
			style = styles.PercentStyle
		case cellWarning:
			style = styles.WarningStyle
		}
		fx.SetCellStyle(sheet, valueCell, valueCell, style)
	}
	return nil
}

// Percent cells hold fractions so the 0.00% format renders them correctly
func calculationRows(calc *calculator.Calculation) []excelCell {
	res := calc.Result
	d := NewDisplay(res, calc.EffectiveInput)

	rows := []excelCell{
		{"Position Size", res.PositionSize, cellCurrency},
		{"Stop Loss", calc.EffectiveInput.SLPrice, cellNumber},
		{"Side", string(res.Side), cellText},
		{"Leverage", res.Leverage, cellNumber},
		{"Margin Used", res.MarginUsed, cellCurrency},
		{"Max Margin", res.MaxMargin, cellCurrency},
		{"SL Distance", res.SLDistancePercent, cellPercent},
		{"Target Risk", res.RiskUSDTarget, cellCurrency},
		{"Actual Risk", res.RiskUSDActual, cellCurrency},
		{"Actual Risk %", res.RiskPercentActual / 100, cellPercent},
	}
	for _, w := range d.Warnings {
		rows = append(rows, excelCell{"Warning", w, cellWarning})
	}
	return rows
}

func inputRows(calc *calculator.Calculation) []excelCell {
	in := calc.Input
	rows := []excelCell{
		{"Calculation ID", calc.ID, cellText},
		{"Calculated At", calc.CalculatedAt.Format(time.RFC3339), cellText},
		{"Symbol", calc.Symbol, cellText},
		{"Account Size", in.AccountSize, cellCurrency},
		{"Risk", in.RiskPercent / 100, cellPercent},
		{"Max Margin", in.MaxMarginPercent / 100, cellPercent},
		{"Max Leverage", in.MaxLeverage, cellNumber},
		{"Entry Price", in.EntryPrice, cellNumber},
		{"SL Price", in.SLPrice, cellNumber},
	}
	if calc.EffectiveInput.MaxLeverage != in.MaxLeverage {
		rows = append(rows, excelCell{"Exchange Max Leverage", calc.EffectiveInput.MaxLeverage, cellNumber})
	}
	return rows
}

// WriteXLSX is a convenience function using the default Excel reporter
func WriteXLSX(calc *calculator.Calculation, path string) error {
	return NewDefaultExcelReporter().Write(calc, path)
}
