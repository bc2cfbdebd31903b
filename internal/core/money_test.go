package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", -100, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents() != tc.cents {
				t.Fatalf("%q expected %d cents, got %d (err=%v)", tc.in, tc.cents, got.Cents(), err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := MoneyFromCents(1).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := MoneyFromCents(0).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := MustMoney("-3").Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
	// 0.004 rounds to zero cents
	if err := MustMoney("0.004").Validate(); err == nil {
		t.Fatalf("expected error for sub-cent amount")
	}
	if err := MaxMoney.Validate(); err != nil {
		t.Fatalf("expected MaxMoney to be valid, got %v", err)
	}
	for _, s := range []string{"1000000000000.01", "200000000000000000"} {
		if err := MustMoney(s).Validate(); !errors.Is(err, ErrAmountTooLarge) {
			t.Fatalf("%s: expected ErrAmountTooLarge, got %v", s, err)
		}
	}
}

func TestMoneyCentsAtMax(t *testing.T) {
	if got := MaxMoney.Cents(); got != 100000000000000 {
		t.Fatalf("expected 100000000000000 cents, got %d", got)
	}
}

func TestParseBound(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"10.004", "10.004", true},
		{"9,995", "9.995", true},
		{" 50 ", "50", true},
		{"", "", false},
		{"ten", "", false},
	}
	for _, tc := range cases {
		got, err := ParseBound(tc.in)
		if !tc.ok {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			continue
		}
		if err != nil || got.String() != tc.want {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got.String(), err)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(MustMoney("12.50"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "12.5" {
		t.Fatalf("expected bare number 12.5, got %s", b)
	}

	for _, in := range []string{`99.99`, `"99.99"`, `"99,99"`} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if m.Cents() != 9999 {
			t.Fatalf("unmarshal %s: got %d cents", in, m.Cents())
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`"ten"`), &m); err == nil {
		t.Fatalf("expected error for non-numeric string")
	}
}
