// Package core provides the expense domain types shared by the client and
// the reference backend.
//
// This file contains the Money type. Amounts are carried as decimals so that
// totals never pick up floating-point drift, but they travel over the wire
// as plain JSON numbers.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPrefix is prepended to every displayed amount.
const CurrencyPrefix = "$"

type Money struct {
	decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MoneyFromFloat is a convenience for tests and fixtures.
func MoneyFromFloat(f float64) Money {
	return Money{Decimal: decimal.NewFromFloat(f)}
}

// ParseAmount coerces a form value to a numeric amount.
//
// Only numeric parsing is enforced: surrounding whitespace is ignored and a
// leading "+" or "-" is accepted, but sign and magnitude are left to the
// backend. An empty or non-numeric value returns ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("3.5")   -> 3.5, nil
//	ParseAmount(" 12 ")  -> 12, nil
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Decimal: d}, nil
}

// Format renders the amount with the currency prefix and exactly two
// decimal places, e.g. 12.5 -> "$12.50".
func (m Money) Format() string {
	return CurrencyPrefix + m.StringFixed(2)
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// UnmarshalJSON accepts both numbers and quoted numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	return m.Decimal.UnmarshalJSON(data)
}
