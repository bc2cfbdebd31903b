package sheets

import (
	"context"

	"expensetracker/internal/core"
)

// Exporter mirrors the complete expense table to an external destination.
// Each call replaces whatever a previous call wrote.
type Exporter interface {
	Export(ctx context.Context, expenses []core.Expense) error
}

// Header is the first row of every export.
var Header = []any{"ID", "Date", "Category", "Amount", "Description"}

// Rows lays out expenses as a header row followed by one row per expense.
// Amounts are written with two decimals.
func Rows(expenses []core.Expense) [][]any {
	rows := make([][]any, 0, len(expenses)+1)
	rows = append(rows, Header)
	for _, e := range expenses {
		rows = append(rows, []any{
			e.ID,
			e.Date.String(),
			e.Category.String(),
			e.Amount.StringFixed(2),
			e.Description,
		})
	}
	return rows
}
