package core

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// CategoryTotal represents an amount aggregated by category.
type CategoryTotal struct {
	Category Category
	Total    Money
}

// MonthTotal represents an amount aggregated by calendar month.
type MonthTotal struct {
	Month time.Month
	Total Money
}

// CategorySummary is an ordered category -> total mapping. It encodes to a
// JSON object whose keys follow the nominal category order.
type CategorySummary []CategoryTotal

// MonthlySummary is an ordered month -> total mapping. It encodes to a JSON
// object whose keys are upper-case month names in ascending month order.
type MonthlySummary []MonthTotal

// NewCategorySummary reshapes per-category rows. Rows for the same category
// are merged and rows with an unknown category are dropped.
func NewCategorySummary(rows []CategoryTotal) CategorySummary {
	merged := make(map[Category]Money, len(rows))
	for _, r := range rows {
		if !r.Category.IsValid() {
			continue
		}
		merged[r.Category] = merged[r.Category].Add(r.Total)
	}
	out := make(CategorySummary, 0, len(merged))
	for c, total := range merged {
		out = append(out, CategoryTotal{Category: c, Total: total})
	}
	slices.SortFunc(out, func(a, b CategoryTotal) int { return int(a.Category) - int(b.Category) })
	return out
}

// NewMonthlySummary reshapes per-month rows into ascending month order.
// Rows for months outside 1..12 are dropped.
func NewMonthlySummary(rows []MonthTotal) MonthlySummary {
	merged := make(map[time.Month]Money, len(rows))
	for _, r := range rows {
		if r.Month < time.January || r.Month > time.December {
			continue
		}
		merged[r.Month] = merged[r.Month].Add(r.Total)
	}
	out := make(MonthlySummary, 0, len(merged))
	for m, total := range merged {
		out = append(out, MonthTotal{Month: m, Total: total})
	}
	slices.SortFunc(out, func(a, b MonthTotal) int { return int(a.Month) - int(b.Month) })
	return out
}

// MonthName returns the upper-case English name of m, e.g. "JANUARY".
func MonthName(m time.Month) string {
	return strings.ToUpper(m.String())
}

// Map returns the summary keyed by category name.
func (s CategorySummary) Map() map[string]Money {
	out := make(map[string]Money, len(s))
	for _, r := range s {
		out[r.Category.String()] = r.Total
	}
	return out
}

// Keys returns the month names in order.
func (s MonthlySummary) Keys() []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, MonthName(r.Month))
	}
	return out
}

// Map returns the summary keyed by month name.
func (s MonthlySummary) Map() map[string]Money {
	out := make(map[string]Money, len(s))
	for _, r := range s {
		out[MonthName(r.Month)] = r.Total
	}
	return out
}

func (s CategorySummary) MarshalJSON() ([]byte, error) {
	keys := make([]string, len(s))
	values := make([]Money, len(s))
	for i, r := range s {
		keys[i] = r.Category.String()
		values[i] = r.Total
	}
	return orderedObject(keys, values)
}

func (s MonthlySummary) MarshalJSON() ([]byte, error) {
	keys := make([]string, len(s))
	values := make([]Money, len(s))
	for i, r := range s {
		keys[i] = MonthName(r.Month)
		values[i] = r.Total
	}
	return orderedObject(keys, values)
}

// orderedObject writes a JSON object preserving key order, which
// encoding/json does not do for maps.
func orderedObject(keys []string, values []Money) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := values[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
