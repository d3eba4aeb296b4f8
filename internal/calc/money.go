package calc

import "github.com/shopspring/decimal"

// MinorUnits is the number of decimals kept for money, quantities and percentages.
const MinorUnits = 2

// Round2 rounds to two decimals, half away from zero. For the non-negative
// amounts handled by the engine this is round-half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnits)
}

// Mean returns the arithmetic mean of values rounded to two decimals.
// It returns zero and false for an empty slice.
func Mean(values []decimal.Decimal) (decimal.Decimal, bool) {
	if len(values) == 0 {
		return decimal.Zero, false
	}
	sum := decimal.Sum(values[0], values[1:]...)
	return Round2(sum.Div(decimal.NewFromInt(int64(len(values))))), true
}

// NonNegative returns d, or zero when d is negative
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
