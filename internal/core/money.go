// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents; decimal strings are parsed and
// rendered through shopspring/decimal so no float rounding leaks in.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxCents caps a single amount at ten billion currency units. At that cap
// int64 still holds the sum of more than nine million records.
var maxCents = decimal.NewFromInt(1_000_000_000_000)

type Money struct {
	Cents int64
}

// ParseAmount converts a decimal string to Money, rounding half-up to cents.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Zero is a valid
// amount; negative, empty and malformed inputs are rejected.
//
// Examples:
//
//	ParseAmount("125.5")  -> 12550
//	ParseAmount("0,005")  -> 1
//	ParseAmount("-1")     -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		// decimal accepts exponents, amounts typed by people never carry one
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Round(2).Shift(2)
	if cents.GreaterThan(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// FromCents builds Money from a cent value.
func FromCents(c int64) Money { return Money{Cents: c} }

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with exactly two decimals and no currency sign.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON emits the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	parsed, err := ParseAmount(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
