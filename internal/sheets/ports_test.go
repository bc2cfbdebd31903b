package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func TestRows(t *testing.T) {
	rows := Rows([]core.Expense{{
		ID:          3,
		Amount:      core.MustMoney("30"),
		Category:    core.CategoryFood,
		Date:        core.NewDate(2024, 2, 15),
		Description: "bakery",
	}})

	require.Len(t, rows, 2)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []any{int64(3), "2024-02-15", "FOOD", "30.00", "bakery"}, rows[1])
}

func TestRowsEmpty(t *testing.T) {
	assert.Equal(t, [][]any{Header}, Rows(nil))
}
