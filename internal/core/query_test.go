package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleExpenses() []Expense {
	return []Expense{
		{ID: 1, Amount: MustMoney("100"), Category: CategoryFood, Date: NewDate(2024, time.January, 5)},
		{ID: 2, Amount: MustMoney("50"), Category: CategoryTransport, Date: NewDate(2024, time.February, 10)},
		{ID: 3, Amount: MustMoney("30"), Category: CategoryFood, Date: NewDate(2024, time.February, 15)},
	}
}

func ids(es []Expense) []int64 {
	out := make([]int64, 0, len(es))
	for _, e := range es {
		out = append(out, e.ID)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func bound(t *testing.T, s string) *Money {
	t.Helper()
	m, err := ParseBound(s)
	require.NoError(t, err)
	return &m
}

func TestParseSortKeyAndOrder(t *testing.T) {
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortByDate, k)

	k, err = ParseSortKey("AMOUNT")
	require.NoError(t, err)
	assert.Equal(t, SortByAmount, k)

	k, err = ParseSortKey("Category")
	require.NoError(t, err)
	assert.Equal(t, SortByCategory, k)

	_, err = ParseSortKey("description")
	assert.ErrorIs(t, err, ErrInvalidSortKey)

	o, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, Ascending, o)

	o, err = ParseSortOrder("DESC")
	require.NoError(t, err)
	assert.Equal(t, Descending, o)

	_, err = ParseSortOrder("up")
	assert.ErrorIs(t, err, ErrInvalidSortOrder)
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name  string
		query ListQuery
		want  []int64
	}{
		{"no filters", ListQuery{}, []int64{1, 2, 3}},
		{"category", ListQuery{Category: ptr(CategoryFood)}, []int64{1, 3}},
		{"start date inclusive", ListQuery{StartDate: ptr(NewDate(2024, time.February, 10))}, []int64{2, 3}},
		{"end date inclusive", ListQuery{EndDate: ptr(NewDate(2024, time.February, 10))}, []int64{1, 2}},
		{"date range", ListQuery{
			StartDate: ptr(NewDate(2024, time.February, 1)),
			EndDate:   ptr(NewDate(2024, time.February, 12)),
		}, []int64{2}},
		{"min amount inclusive", ListQuery{MinAmount: ptr(MustMoney("50"))}, []int64{1, 2}},
		{"max amount inclusive", ListQuery{MaxAmount: ptr(MustMoney("50"))}, []int64{2, 3}},
		{"all bounds", ListQuery{
			StartDate: ptr(NewDate(2024, time.January, 1)),
			EndDate:   ptr(NewDate(2024, time.December, 31)),
			Category:  ptr(CategoryFood),
			MinAmount: ptr(MustMoney("31")),
			MaxAmount: ptr(MustMoney("100")),
		}, []int64{1}},
		{"sub-cent min excludes equal cents", ListQuery{MinAmount: bound(t, "50.004")}, []int64{1}},
		{"sub-cent max excludes equal cents", ListQuery{MaxAmount: bound(t, "49.995")}, []int64{3}},
		{"min greater than max", ListQuery{MinAmount: ptr(MustMoney("60")), MaxAmount: ptr(MustMoney("40"))}, []int64{}},
		{"excludes everything", ListQuery{Category: ptr(CategoryTravel)}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(sampleExpenses(), tt.query)
			assert.Equal(t, tt.want, ids(got))
			for _, e := range got {
				assert.True(t, tt.query.Matches(e))
			}
		})
	}
}

func TestApplyEmptyInput(t *testing.T) {
	got := Apply(nil, ListQuery{Category: ptr(CategoryFood)})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApplySorting(t *testing.T) {
	in := []Expense{
		{ID: 1, Amount: MustMoney("20"), Category: CategoryTravel, Date: NewDate(2024, 3, 1)},
		{ID: 2, Amount: MustMoney("10"), Category: CategoryFood, Date: NewDate(2024, 1, 1)},
		{ID: 3, Amount: MustMoney("20"), Category: CategoryFood, Date: NewDate(2024, 2, 1)},
		{ID: 4, Amount: MustMoney("5"), Category: CategoryHealth, Date: NewDate(2024, 2, 1)},
	}

	tests := []struct {
		name  string
		key   SortKey
		order SortOrder
		want  []int64
	}{
		{"date asc", SortByDate, Ascending, []int64{2, 3, 4, 1}},
		{"date desc keeps tie order", SortByDate, Descending, []int64{1, 3, 4, 2}},
		{"amount asc keeps tie order", SortByAmount, Ascending, []int64{4, 2, 1, 3}},
		{"amount desc", SortByAmount, Descending, []int64{1, 3, 2, 4}},
		{"category asc nominal", SortByCategory, Ascending, []int64{2, 3, 4, 1}},
		{"category desc nominal", SortByCategory, Descending, []int64{1, 4, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(in, ListQuery{SortBy: tt.key, Order: tt.order})
			assert.Equal(t, tt.want, ids(got))
		})
	}

	// input untouched
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(in))
}

func TestApplyAmountOrderingIsMonotonic(t *testing.T) {
	in := []Expense{
		{ID: 1, Amount: MustMoney("3.10")},
		{ID: 2, Amount: MustMoney("0.99")},
		{ID: 3, Amount: MustMoney("12")},
		{ID: 4, Amount: MustMoney("3.1")},
		{ID: 5, Amount: MustMoney("7.25")},
	}
	asc := Apply(in, ListQuery{SortBy: SortByAmount, Order: Ascending})
	for i := 1; i < len(asc); i++ {
		assert.LessOrEqual(t, asc[i-1].Amount.Cmp(asc[i].Amount), 0)
	}
	desc := Apply(in, ListQuery{SortBy: SortByAmount, Order: Descending})
	for i := 1; i < len(desc); i++ {
		assert.GreaterOrEqual(t, desc[i-1].Amount.Cmp(desc[i].Amount), 0)
	}
}
