package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Every monetary value in the system is a fixed-point decimal with two
// fraction digits.
const Scale = 2

// ValidateAmount rejects non-positive amounts and amounts with more than two
// decimal places before anything touches the database.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("ValidateAmount: amount %s is not positive", amount)
	}
	if amount.Exponent() < -Scale {
		return fmt.Errorf("ValidateAmount: amount %s has more than %d decimal places", amount, Scale)
	}
	return nil
}

// SplitInstallments divides total into n parts that sum exactly to total.
// Each part is total/n rounded down to two decimal places; the rounding
// residual is assigned to the first installment. n must be at least 1 and
// total must be a valid amount.
func SplitInstallments(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n < 1 {
		return nil, fmt.Errorf("SplitInstallments: n must be at least 1, got %d", n)
	}
	if err := ValidateAmount(total); err != nil {
		return nil, fmt.Errorf("SplitInstallments: %w", err)
	}

	// Work in integer cents so the split is exact: base = floor(total/n),
	// the first installment absorbs whatever is left over.
	totalCents := total.Shift(Scale).IntPart()
	baseCents := totalCents / int64(n)
	residualCents := totalCents - baseCents*int64(n)

	base := decimal.New(baseCents, -Scale)
	parts := make([]decimal.Decimal, n)
	for i := range parts {
		parts[i] = base
	}
	parts[0] = decimal.New(baseCents+residualCents, -Scale)
	return parts, nil
}
