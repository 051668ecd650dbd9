package ledger

import "github.com/shopspring/decimal"

// Zero is the zero money amount.
var Zero = decimal.Zero

// Sum adds a list of amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// IsPositive reports whether the amount is strictly greater than zero.
func IsPositive(a decimal.Decimal) bool {
	return a.GreaterThan(decimal.Zero)
}

// IsNegative reports whether the amount is strictly less than zero.
func IsNegative(a decimal.Decimal) bool {
	return a.LessThan(decimal.Zero)
}

// OrZero returns the amount, or zero if it is nil.
func OrZero(a *decimal.Decimal) decimal.Decimal {
	if a == nil {
		return decimal.Zero
	}
	return *a
}
