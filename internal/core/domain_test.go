package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	for _, bad := range []string{"", "2024-13-01", "29/02/2024", "2024-02-30"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, time.March, 7))
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-07"`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-07"`), &d))
	assert.Equal(t, 0, d.Compare(NewDate(2024, time.March, 7)))

	assert.Error(t, json.Unmarshal([]byte(`20240307`), &d))
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Amount:      MustMoney("100"),
		Category:    CategoryFood,
		Date:        NewDate(2025, 1, 1),
		Description: "groceries",
	}
	require.NoError(t, good.Validate())

	// description is optional
	good.Description = ""
	require.NoError(t, good.Validate())

	err := Expense{}.Validate()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)
	assert.Contains(t, verrs, "amount")
	assert.Contains(t, verrs, "category")
	assert.Contains(t, verrs, "date")

	neg := good
	neg.Amount = MustMoney("-5")
	require.True(t, errors.As(neg.Validate(), &verrs))
	assert.Equal(t, ValidationErrors{"amount": "amount must be positive"}, verrs)
}

func TestExpenseJSON(t *testing.T) {
	e := Expense{
		ID:          7,
		Amount:      MustMoney("30"),
		Category:    CategoryFood,
		Date:        NewDate(2024, time.February, 15),
		Description: "lunch",
	}
	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"amount":30,"category":"FOOD","date":"2024-02-15","description":"lunch"}`, string(b))
}
