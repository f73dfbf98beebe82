// Package money normalises the two monetary representations used by the
// storefront integrations: integer minor units (cents) and decimal major units.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder is shown wherever an amount is absent.
const Placeholder = "-"

var hundred = decimal.NewFromInt(100)

type kind uint8

const (
	kindNone kind = iota
	kindMinor
	kindMajor
)

// Money is either an amount in minor units, an amount in major units, or absent.
// The zero value is absent.
type Money struct {
	kind  kind
	minor int64
	major decimal.Decimal
}

// None returns an absent amount.
func None() Money { return Money{} }

// MinorUnits wraps an integer count of cents.
func MinorUnits(cents int64) Money { return Money{kind: kindMinor, minor: cents} }

// MajorUnits wraps a decimal amount in the store currency.
func MajorUnits(amount decimal.Decimal) Money { return Money{kind: kindMajor, major: amount} }

// FromMinor wraps an optional cent count; nil stays absent.
func FromMinor(cents *int64) Money {
	if cents == nil {
		return None()
	}
	return MinorUnits(*cents)
}

// FromMajor wraps an optional major amount; nil stays absent.
func FromMajor(amount *decimal.Decimal) Money {
	if amount == nil {
		return None()
	}
	return MajorUnits(*amount)
}

// FromFloat wraps a legacy float amount. NaN and infinities are absent.
func FromFloat(f float64) Money {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return None()
	}
	return MajorUnits(decimal.NewFromFloat(f))
}

// IsAbsent reports whether no amount is present.
func (m Money) IsAbsent() bool { return m.kind == kindNone }

// Major is the single normalisation point: every representation resolves to
// major units here.
func (m Money) Major() (decimal.Decimal, bool) {
	switch m.kind {
	case kindMinor:
		return decimal.NewFromInt(m.minor).Div(hundred), true
	case kindMajor:
		return m.major, true
	default:
		return decimal.Decimal{}, false
	}
}

// MajorPtr is Major with nil for absent amounts.
func (m Money) MajorPtr() *decimal.Decimal {
	d, ok := m.Major()
	if !ok {
		return nil
	}
	return &d
}

// String formats the amount with two decimals or the placeholder.
func (m Money) String() string {
	return FormatMajor(m.MajorPtr())
}

// MinorToMajor converts cents to major units. Absence propagates; it is never coerced to zero.
func MinorToMajor(cents *int64) *decimal.Decimal {
	return FromMinor(cents).MajorPtr()
}

// MajorToMinor converts a major amount to cents, rounding half away from zero.
func MajorToMinor(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FormatMajor renders amount with exactly two decimals, or the placeholder for nil.
func FormatMajor(amount *decimal.Decimal) string {
	if amount == nil {
		return Placeholder
	}
	return amount.StringFixed(2)
}

// Format renders "CHF 49.90"; absent amounts render as the bare placeholder.
func Format(currency string, m Money) string {
	d, ok := m.Major()
	if !ok {
		return Placeholder
	}
	cur := strings.ToUpper(strings.TrimSpace(currency))
	if cur == "" {
		return d.StringFixed(2)
	}
	return cur + " " + d.StringFixed(2)
}
