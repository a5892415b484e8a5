package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount in major currency units (e.g. 12.50 dollars).
type Money = decimal.Decimal

// Zero is the zero amount.
var Zero = decimal.Zero

// ParseAmount converts a decimal string from the read model into Money.
// Empty, non-numeric and negative inputs coerce to zero so callers can feed
// storage values straight into the calculator.
func ParseAmount(value string) Money {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Zero
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil || amount.IsNegative() {
		return Zero
	}
	return amount
}

// ParseOptionalAmount behaves like ParseAmount but keeps absence distinct from zero.
func ParseOptionalAmount(value *string) *Money {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	amount := ParseAmount(*value)
	return &amount
}

// Amount builds Money from a float literal. Intended for tests and fixtures.
func Amount(v float64) Money {
	return decimal.NewFromFloat(v)
}

func nonNegative(m Money) Money {
	if m.IsNegative() {
		return Zero
	}
	return m
}
