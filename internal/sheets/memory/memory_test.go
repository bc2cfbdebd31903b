package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func TestStoreExportReplacesRows(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := []core.Expense{
		{ID: 1, Amount: core.MustMoney("1"), Category: core.CategoryFood, Date: core.NewDate(2024, 1, 1)},
		{ID: 2, Amount: core.MustMoney("2"), Category: core.CategoryOther, Date: core.NewDate(2024, 1, 2)},
	}
	require.NoError(t, s.Export(ctx, first))
	assert.Len(t, s.Rows(), 3)

	require.NoError(t, s.Export(ctx, first[:1]))
	assert.Len(t, s.Rows(), 2)
	assert.Equal(t, 2, s.Exports())
}

func TestStoreExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New()
	assert.ErrorIs(t, s.Export(ctx, nil), context.Canceled)
	assert.Zero(t, s.Exports())
}
