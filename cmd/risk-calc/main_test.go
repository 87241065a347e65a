package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("RISK_LOGGING_LEVEL", "error")
	var stdout, stderr bytes.Buffer
	args = append([]string{"-env", filepath.Join(t.TempDir(), "missing.env")}, args...)
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// TestRun_Defaults tests the reference example table
func TestRun_Defaults(t *testing.T) {
	code, out, _ := runCLI(t, "-no-emojis")
	require.Equal(t, 0, code)

	assert.Contains(t, out, "What to enter on the exchange")
	assert.Contains(t, out, "$666.67")
	assert.Contains(t, out, "1x")
	assert.NotContains(t, out, "💰")
}

// TestRun_JSON tests machine readable output
func TestRun_JSON(t *testing.T) {
	code, out, _ := runCLI(t, "-json", "-account", "5000", "-risk", "1", "-entry", "64000", "-sl", "62500")
	require.Equal(t, 0, code)

	var report struct {
		Calculation struct {
			Input struct {
				AccountSize float64 `json:"account_size"`
				MaxLeverage int     `json:"max_leverage"`
			} `json:"input"`
			Result struct {
				Side     string `json:"side"`
				Leverage int    `json:"leverage"`
			} `json:"result"`
		} `json:"calculation"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 5000.0, report.Calculation.Input.AccountSize)
	assert.Equal(t, 125, report.Calculation.Input.MaxLeverage)
	assert.Equal(t, "LONG", report.Calculation.Result.Side)
	assert.GreaterOrEqual(t, report.Calculation.Result.Leverage, 1)
}

// TestRun_InvalidInput tests that every bad field is named with its flag
func TestRun_InvalidInput(t *testing.T) {
	code, out, _ := runCLI(t, "-no-emojis", "-entry", "abc", "-risk", "NaN")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "-entry:")
	assert.Contains(t, out, "-risk:")
}

// TestRun_EqualEntryAndSL tests the zero stop distance rejection
func TestRun_EqualEntryAndSL(t *testing.T) {
	code, out, _ := runCLI(t, "-no-emojis", "-entry", "100", "-sl", "100")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "-sl:")
}

// TestRun_Export tests file export
func TestRun_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trade.csv")
	code, out, _ := runCLI(t, "-silent", "-output", path)
	require.Equal(t, 0, code)

	assert.FileExists(t, path)
	assert.NotContains(t, out, "What to enter")

	code, _, _ = runCLI(t, "-silent", "-output", filepath.Join(t.TempDir(), "trade.pdf"))
	assert.Equal(t, 3, code)
}

// TestRun_BadFlags tests flag errors and version output
func TestRun_BadFlags(t *testing.T) {
	code, _, _ := runCLI(t, "-json", "-silent")
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t, "-unknown")
	assert.Equal(t, 2, code)

	code, out, _ := runCLI(t, "-version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, appName)
}

// TestRun_BadConfig tests configuration errors
func TestRun_BadConfig(t *testing.T) {
	t.Setenv("RISK_SERVER_PORT", "99999")

	code, _, _ := runCLI(t)
	assert.Equal(t, 2, code)

	t.Setenv("RISK_SERVER_PORT", "8080")
	t.Setenv("RISK_DEFAULTS_SL_PRICE", "100")
	code, _, _ = runCLI(t)
	assert.Equal(t, 2, code)
}

// TestFlagName tests the field to flag mapping
func TestFlagName(t *testing.T) {
	assert.Equal(t, "max-margin", flagName("max_margin_percent"))
	assert.Equal(t, "sl", flagName("sl_price"))
	assert.Equal(t, "other", flagName("other"))
}
