// Package core provides money parsing and handling utilities.
//
// This file contains the Money type used for expense amounts. Amounts are
// kept at cent precision and persisted as integer cents.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount rounded to two places.
type Money struct {
	decimal.Decimal
}

// MaxMoney is the largest amount an expense may carry. Its value in cents
// stays well inside int64.
var MaxMoney = Money{Decimal: decimal.New(1, 12)}

// NewMoney rounds d half away from zero to cents.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// MoneyFromCents builds a Money from an integer amount of cents.
func MoneyFromCents(cents int64) Money {
	return Money{Decimal: decimal.New(cents, -2)}
}

// MustMoney parses s and panics on error. Intended for tests and constants.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseMoney converts a decimal string to Money with half-up rounding on the
// third decimal place.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Sign is
// preserved; positivity is a validation concern, not a parsing one.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34
//	ParseMoney("12,345") -> 12.35
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return NewMoney(d), nil
}

// Validate checks that m is positive and at most MaxMoney.
func (m Money) Validate() error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	if m.Cmp(MaxMoney) > 0 {
		return ErrAmountTooLarge
	}
	return nil
}

// Cents returns the amount in integer cents.
func (m Money) Cents() int64 {
	return m.Shift(2).Round(0).IntPart()
}

// ParseBound parses a filter bound such as a minimum or maximum amount.
// Unlike ParseMoney it keeps every decimal place, so a bound of 10.004
// excludes an amount of 10.00.
func ParseBound(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{Decimal: d}, nil
}

// Cmp compares two amounts: -1 if m < o, 0 if equal, +1 if m > o.
func (m Money) Cmp(o Money) int {
	return m.Decimal.Cmp(o.Decimal)
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Float64 returns the amount as a float for charting and display only.
func (m Money) Float64() float64 {
	f, _ := m.Decimal.Float64()
	return f
}

// MarshalJSON encodes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*m = Money{}
		return nil
	}
	s = strings.Trim(s, `"`)
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
