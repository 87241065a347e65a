package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/crypto-risk-calculator/internal/calculator"
)

// DefaultConsoleReporter renders calculations as a go-pretty table
type DefaultConsoleReporter struct {
	emojis bool
}

// NewDefaultConsoleReporter creates a new console reporter
func NewDefaultConsoleReporter(emojis bool) *DefaultConsoleReporter {
	return &DefaultConsoleReporter{emojis: emojis}
}

// Print writes the result table to w
func (r *DefaultConsoleReporter) Print(w io.Writer, calc *calculator.Calculation) {
	d := NewDisplay(calc.Result, calc.EffectiveInput)

	title := "RISK CALCULATION"
	if calc.Symbol != "" {
		title = fmt.Sprintf("RISK CALCULATION - %s", calc.Symbol)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)

	t.AppendRow(table.Row{r.label("📊", "What to enter on the exchange"), ""})
	t.AppendRows([]table.Row{
		{r.label("💰", "Position Size"), d.PositionSize},
		{r.label("📋", "Order Value"), d.CleanPositionSize},
		{r.label("🛑", "Stop Loss"), d.StopLoss},
		{r.label("🧭", "Side"), d.Side},
	})

	t.AppendSeparator()

	t.AppendRow(table.Row{r.label("⚙️", "Leverage & margin"), ""})
	t.AppendRows([]table.Row{
		{r.label("🔧", "Leverage"), d.Leverage},
		{r.label("💵", "Margin"), d.MarginUsed},
		{r.label("🏦", "Max Margin"), d.MaxMargin},
	})

	t.AppendSeparator()

	maxLeverage := d.MaxLeverage
	if calc.EffectiveInput.MaxLeverage != calc.Input.MaxLeverage {
		maxLeverage = fmt.Sprintf("%s (exchange limit, requested %dx)", d.MaxLeverage, calc.Input.MaxLeverage)
	}

	t.AppendRow(table.Row{r.label("📈", "Risk analysis"), ""})
	t.AppendRows([]table.Row{
		{r.label("📏", "SL Distance"), d.SLDistance},
		{r.label("🎯", "Target Risk"), d.RiskTarget},
		{r.label("⚠️", "Actual Risk"), d.RiskActual},
		{r.label("🔝", "Max Leverage"), maxLeverage},
	})

	if len(d.Warnings) > 0 || calc.ExchangeLimitsError != "" {
		t.AppendSeparator()
		for _, warning := range d.Warnings {
			t.AppendRow(table.Row{r.label("🚨", "Warning"), warning})
		}
		if calc.ExchangeLimitsError != "" {
			t.AppendRow(table.Row{r.label("🚨", "Exchange"), "limit lookup failed: " + calc.ExchangeLimitsError})
		}
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 32, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 60, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Fprintln(w)
}

func (r *DefaultConsoleReporter) label(emoji, name string) string {
	if !r.emojis {
		return name
	}
	return strings.TrimSpace(emoji + " " + name)
}
