package core

import (
	"cmp"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/shopspring/decimal"
)

// Compare orders two currency amounts. It returns a negative number when
// a < b, zero when a == b and a positive number when a > b.
type Compare[C any] func(a, b C) int

// CompareDecimal compares fixed point amounts
func CompareDecimal(a, b fpdecimal.Decimal) int {
	switch {
	case a.LessThan(b):
		return -1
	case a.GreaterThan(b):
		return 1
	default:
		return 0
	}
}

// CompareBigDecimal compares arbitrary precision amounts
func CompareBigDecimal(a, b decimal.Decimal) int {
	return a.Cmp(b)
}

// CompareOrdered compares built-in ordered types (integers, floats)
func CompareOrdered[C cmp.Ordered](a, b C) int {
	return cmp.Compare(a, b)
}
