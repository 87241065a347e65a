package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/calculator"
)

// DefaultJSONReporter implements JSON output functionality
type DefaultJSONReporter struct{}

// NewDefaultJSONReporter creates a new JSON reporter
func NewDefaultJSONReporter() *DefaultJSONReporter {
	return &DefaultJSONReporter{}
}

// Format returns the indented JSON report for a calculation
func (r *DefaultJSONReporter) Format(calc *calculator.Calculation) ([]byte, error) {
	return json.MarshalIndent(NewReport(calc), "", "  ")
}

// Write writes the JSON report to path
func (r *DefaultJSONReporter) Write(calc *calculator.Calculation, path string) error {
	data, err := r.Format(calc)
	if err != nil {
		return fmt.Errorf("failed to encode calculation: %w", err)
	}

	if err := ensureDir(path); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// WriteJSON is a convenience function using the default JSON reporter
func WriteJSON(calc *calculator.Calculation, path string) error {
	return NewDefaultJSONReporter().Write(calc, path)
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
