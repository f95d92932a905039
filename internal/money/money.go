// Package money converts between stored minor units (cents) and the major
// unit floats used in API payloads.
package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// ErrOutOfRange is returned for amounts whose cents do not fit in an int64.
var ErrOutOfRange = errors.New("amount out of range")

// ToMajor converts cents to a major unit amount, 1999 -> 19.99.
func ToMajor(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}

// FromMajor converts a major unit amount to cents, rounding half away from
// zero. The multiplication happens in decimal so 19.99 becomes 1999.
func FromMajor(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrOutOfRange
	}
	cents := decimal.NewFromFloat(amount).Mul(hundred).Round(0)
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, ErrOutOfRange
	}
	return cents.IntPart(), nil
}

// Percent returns part/total*100 rounded to the given places, 0 when total is 0.
func Percent(part, total int64, places int32) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Mul(hundred).
		Div(decimal.NewFromInt(total)).
		Round(places).
		InexactFloat64()
}
