package model

import "github.com/shopspring/decimal"

// DefaultEpsilon is the tolerance used for balance and allocation comparisons.
var DefaultEpsilon = decimal.New(1, -2)

// WithinEpsilon reports whether |a-b| <= eps.
func WithinEpsilon(a, b, eps decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(eps)
}

// Round2 rounds to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
