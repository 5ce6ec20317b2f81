// Package core provides money parsing and handling utilities.
//
// Amounts are decimal.Decimal throughout the domain. The store keeps them as
// integer cents so that sums stay exact; FromCents and ToCents convert at that
// boundary. Floats appear only when formatting for people.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount bounds every stored amount so that cents, and sums of cents,
// fit in an int64.
var MaxAmount = decimal.New(1, 12)

// WithinLimit reports whether |d| does not exceed MaxAmount.
func WithinLimit(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(MaxAmount)
}

// ParseAmount converts a user-entered decimal string to a positive amount
// rounded half-up to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.35, nil
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
//	ParseAmount("1e20")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() || !WithinLimit(d) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FromCents builds an amount from integer cents.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToCents rounds an amount half-up to whole cents.
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
