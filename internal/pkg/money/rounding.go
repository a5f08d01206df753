package money

import "github.com/shopspring/decimal"

var thousand = decimal.NewFromInt(1000)

// RoundHalfUp rounds to whole rupiah, halves away from zero.
// Every engine amount is non-negative, so this is plain half-up.
func RoundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// FloorToThousand drops everything below the next lower multiple of 1,000.
// Only taxable income (PKP) uses this policy.
func FloorToThousand(d decimal.Decimal) decimal.Decimal {
	return d.Div(thousand).Floor().Mul(thousand)
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// NonNegative returns d, or zero when d is negative.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
