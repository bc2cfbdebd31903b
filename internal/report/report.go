// Package report renders expense summaries for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// Formatter displays amounts in a fixed currency.
type Formatter struct {
	currency *money.Currency
}

// NewFormatter returns a Formatter for the ISO currency code.
func NewFormatter(code string) (*Formatter, error) {
	c := money.GetCurrency(strings.ToUpper(code))
	if c == nil {
		return nil, fmt.Errorf("unknown currency %q", code)
	}
	return &Formatter{currency: c}, nil
}

// Format renders m with the currency's symbol, separators and fraction.
func (f *Formatter) Format(m core.Money) string {
	minor := m.Decimal.Shift(int32(f.currency.Fraction)).Round(0).IntPart()
	return money.New(minor, f.currency.Code).Display()
}

// CategoryMarkdown builds a table of totals per category followed by the grand total.
func (f *Formatter) CategoryMarkdown(s core.CategorySummary) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Expenses by Category\n\n")
	if len(s) == 0 {
		fmt.Fprintln(&b, "No expenses recorded.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Category | Total |")
	fmt.Fprintln(&b, "|:---|---:|")
	total := core.Money{Decimal: decimal.Zero}
	for _, r := range s {
		fmt.Fprintf(&b, "| %s | %s |\n", r.Category, f.Format(r.Total))
		total = total.Add(r.Total)
	}
	fmt.Fprintf(&b, "| **%s** | **%s** |\n", "Total", f.Format(total))
	return b.String()
}

// MonthlyMarkdown builds a table of totals per month of year.
func (f *Formatter) MonthlyMarkdown(s core.MonthlySummary, year int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Monthly Expenses %d\n\n", year)
	if len(s) == 0 {
		fmt.Fprintln(&b, "No expenses recorded.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Month | Total |")
	fmt.Fprintln(&b, "|:---|---:|")
	total := core.Money{Decimal: decimal.Zero}
	for _, r := range s {
		fmt.Fprintf(&b, "| %s | %s |\n", core.MonthName(r.Month), f.Format(r.Total))
		total = total.Add(r.Total)
	}
	fmt.Fprintf(&b, "| **%s** | **%s** |\n", "Total", f.Format(total))
	return b.String()
}

// Render styles markdown for the terminal. style is a glamour standard style
// name such as "dark", "light" or "notty"; empty picks one from the terminal.
func Render(md, style string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(100)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out, nil
}

// RowsMarkdown lays out rows as a markdown table. The first row is the header.
func RowsMarkdown(rows [][]any) string {
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	writeRow := func(row []any) {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = strings.ReplaceAll(fmt.Sprint(v), "|", `\|`)
		}
		fmt.Fprintf(&b, "| %s |\n", strings.Join(cells, " | "))
	}

	writeRow(rows[0])
	fmt.Fprintf(&b, "|%s\n", strings.Repeat("---|", len(rows[0])))
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return b.String()
}
