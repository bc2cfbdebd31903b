package core

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// SortKey names the field used to order a listing.
type SortKey string

// SortOrder is the direction of a listing.
type SortOrder string

const (
	SortByDate     SortKey = "date"
	SortByAmount   SortKey = "amount"
	SortByCategory SortKey = "category"

	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

var (
	ErrInvalidSortKey   = errors.New("invalid sort key")
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

// ParseSortKey is case-insensitive; an empty string selects SortByDate.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByDate, nil
	case SortByDate, SortByAmount, SortByCategory:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
	}
}

// ParseSortOrder is case-insensitive; an empty string selects Ascending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return Ascending, nil
	case Ascending, Descending:
		return o, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortOrder, s)
	}
}

// ListQuery filters and orders a set of expenses. Nil bounds impose no
// constraint; present bounds are inclusive and combined with AND.
type ListQuery struct {
	StartDate *Date
	EndDate   *Date
	Category  *Category
	MinAmount *Money // not rounded, see ParseBound
	MaxAmount *Money
	SortBy    SortKey
	Order     SortOrder
}

// Matches reports whether e satisfies every bound present in q.
func (q ListQuery) Matches(e Expense) bool {
	if q.StartDate != nil && e.Date.Compare(*q.StartDate) < 0 {
		return false
	}
	if q.EndDate != nil && e.Date.Compare(*q.EndDate) > 0 {
		return false
	}
	if q.Category != nil && e.Category != *q.Category {
		return false
	}
	if q.MinAmount != nil && e.Amount.Cmp(*q.MinAmount) < 0 {
		return false
	}
	if q.MaxAmount != nil && e.Amount.Cmp(*q.MaxAmount) > 0 {
		return false
	}
	return true
}

func (q ListQuery) compare(a, b Expense) int {
	var c int
	switch q.SortBy {
	case SortByAmount:
		c = a.Amount.Cmp(b.Amount)
	case SortByCategory:
		c = cmp.Compare(a.Category, b.Category)
	default:
		c = a.Date.Compare(b.Date)
	}
	if q.Order == Descending {
		return -c
	}
	return c
}

// Apply returns the expenses matching q, stably sorted by q.SortBy in
// q.Order. Equal keys keep their input order. The input is not modified.
func Apply(expenses []Expense, q ListQuery) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if q.Matches(e) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, q.compare)
	return out
}
