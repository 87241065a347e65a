package reporting

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/calculator"
	calcerrors "github.com/ducminhle1904/crypto-risk-calculator/internal/errors"
)

// FileReporterFor returns the file reporter matching the extension of path
func FileReporterFor(path string) (FileReporter, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return NewDefaultJSONReporter(), nil
	case ".csv":
		return NewDefaultCSVReporter(), nil
	case ".xlsx":
		return NewDefaultExcelReporter(), nil
	default:
		return nil, calcerrors.NewExportError("reporting", "export",
			fmt.Errorf("unsupported output format %q (use .json, .csv or .xlsx)", ext))
	}
}

// Export writes calc to path in the format chosen by its extension
func Export(calc *calculator.Calculation, path string) error {
	reporter, err := FileReporterFor(path)
	if err != nil {
		return err
	}
	if err := reporter.Write(calc, path); err != nil {
		return calcerrors.NewExportError("reporting", "export", err).WithContext("path", path)
	}
	return nil
}
