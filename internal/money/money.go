// Package money fixes the currency arithmetic rules for the whole system:
// amounts are shopspring decimals with at most two fractional digits, and
// rounding goes through Round2 so sums never drift.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest amount a single field may carry.
var MaxAmount = decimal.RequireFromString("999999.99")

// Parse parses a currency string with at most two fractional digits.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return d, nil
}

// Round2 rounds half-up to two places. Amounts in this system are never
// negative, so decimal's half-away-from-zero Round is half-up here.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// InRange reports whether d fits a payment/charge field: 0 <= d <= MaxAmount.
func InRange(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(MaxAmount)
}
