package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type (
	// Date is a calendar date without time component, stored at UTC midnight.
	Date struct {
		time.Time
	}

	Expense struct {
		ID          int64    `json:"id"`
		Amount      Money    `json:"amount"`
		Category    Category `json:"category"`
		Date        Date     `json:"date"`
		Description string   `json:"description"`
	}

	// ValidationErrors maps a field name to the reason it was rejected.
	ValidationErrors map[string]string
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrAmountTooLarge = errors.New("amount too large")
)

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Compare orders two dates: -1 when d is earlier, +1 when later.
func (d Date) Compare(o Date) int {
	return d.Time.Compare(o.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AmountTooLargeMessage is the field message for amounts above MaxMoney.
var AmountTooLargeMessage = "amount must be at most " + MaxMoney.String()

// Validate reports every missing or malformed field at once.
func (e Expense) Validate() error {
	errs := ValidationErrors{}
	if err := e.Amount.Validate(); errors.Is(err, ErrAmountTooLarge) {
		errs["amount"] = AmountTooLargeMessage
	} else if err != nil {
		errs["amount"] = "amount must be positive"
	}
	if !e.Category.IsValid() {
		errs["category"] = "category is required"
	}
	if err := e.Date.Validate(); err != nil {
		errs["date"] = "date is required"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// WithID returns a copy of the expense carrying the given id.
func (e Expense) WithID(id int64) Expense {
	e.ID = id
	return e
}
