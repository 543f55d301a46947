package vnpay

import "github.com/shopspring/decimal"

// VNPay carries amounts as integers scaled by 100.
const amountScale = 2

// ToMinorUnits converts a VND amount to the vnp_Amount integer. It reports false
// for non-positive amounts, fractions below the scale, and values beyond int64.
func ToMinorUnits(amount decimal.Decimal) (int64, bool) {
	minor := amount.Shift(amountScale)
	if !minor.IsInteger() || !minor.IsPositive() || !minor.BigInt().IsInt64() {
		return 0, false
	}
	return minor.IntPart(), true
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -amountScale)
}
