// Package http provides HTTP server and handler implementations.
//
// This file implements parsing and validation of request data: listing
// query parameters, path ids and expense payloads.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"expensetracker/internal/core"
)

const maxBodyBytes = 1 << 20

// ParseListQuery builds a ListQuery from the filter and sort parameters.
// Absent or blank parameters impose no constraint.
func ParseListQuery(query url.Values) (core.ListQuery, error) {
	var q core.ListQuery
	var err error

	if q.StartDate, err = optional(query, "startDate", core.ParseDate); err != nil {
		return core.ListQuery{}, err
	}
	if q.EndDate, err = optional(query, "endDate", core.ParseDate); err != nil {
		return core.ListQuery{}, err
	}
	if q.Category, err = optional(query, "category", core.ParseCategory); err != nil {
		return core.ListQuery{}, err
	}
	if q.MinAmount, err = optional(query, "minAmount", core.ParseBound); err != nil {
		return core.ListQuery{}, err
	}
	if q.MaxAmount, err = optional(query, "maxAmount", core.ParseBound); err != nil {
		return core.ListQuery{}, err
	}
	if q.SortBy, err = core.ParseSortKey(query.Get("sortBy")); err != nil {
		return core.ListQuery{}, err
	}
	if q.Order, err = core.ParseSortOrder(query.Get("order")); err != nil {
		return core.ListQuery{}, err
	}
	return q, nil
}

func optional[T any](query url.Values, key string, parse func(string) (T, error)) (*T, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return nil, nil
	}
	parsed, err := parse(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &parsed, nil
}

// ParseYear reads the optional year parameter; 0 means not supplied.
func ParseYear(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("year"))
	if v == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(v)
	if err != nil || y < 1 || y > 9999 {
		return 0, fmt.Errorf("invalid year %q", v)
	}
	return y, nil
}

// ParseID reads the {id} path segment as a positive integer.
func ParseID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// ErrMalformedBody is returned when the payload is neither JSON nor a form.
var ErrMalformedBody = errors.New("malformed request body")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads at most 1 MiB of the body once and stores it.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, p.err)
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: %v", ErrMalformedBody, err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", ErrMalformedBody, p.err)
	}
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Raw returns the value for key as sent, without trimming. Only NUL bytes
// are removed.
func (p *RequestBodyParser) Raw(key string) string {
	var v string
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			v = stringValue(val)
		}
	} else if p.formData != nil {
		v = p.formData.Get(key)
	}
	return strings.ReplaceAll(v, "\x00", "")
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseExpense validates every field of the payload and reports all
// problems at once.
func ParseExpense(p *RequestBodyParser) (core.Expense, core.ValidationErrors) {
	var e core.Expense
	errs := core.ValidationErrors{}

	if v := p.Get("amount"); v == "" {
		errs["amount"] = "amount is required"
	} else if m, err := core.ParseMoney(v); err != nil {
		errs["amount"] = "amount must be a number"
	} else if err := m.Validate(); errors.Is(err, core.ErrAmountTooLarge) {
		errs["amount"] = core.AmountTooLargeMessage
	} else if err != nil {
		errs["amount"] = "amount must be positive"
	} else {
		e.Amount = m
	}

	if v := p.Get("category"); v == "" {
		errs["category"] = "category is required"
	} else if c, err := core.ParseCategory(v); err != nil {
		errs["category"] = "category must be one of " + categoryList()
	} else {
		e.Category = c
	}

	if v := p.Get("date"); v == "" {
		errs["date"] = "date is required"
	} else if d, err := core.ParseDate(v); err != nil {
		errs["date"] = "date must be formatted as YYYY-MM-DD"
	} else {
		e.Date = d
	}

	e.Description = p.Raw("description")

	if len(errs) > 0 {
		return core.Expense{}, errs
	}
	return e, nil
}

func categoryList() string {
	cats := core.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
