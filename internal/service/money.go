package service

import "github.com/shopspring/decimal"

// ToUSD converts a local-currency amount to USD using a local-per-USD rate.
// A zero (or negative) rate is treated as 1, not as an error; callers flag
// bad rates upstream where that matters.
func ToUSD(amountLocal, exchangeRate decimal.Decimal) decimal.Decimal {
	if exchangeRate.LessThanOrEqual(decimal.Zero) {
		return amountLocal
	}
	return amountLocal.Div(exchangeRate)
}

// Round2 rounds to 2 decimal places for currency display. Full precision is
// retained internally; rounding happens only at the DTO boundary.
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// PercentageOf returns part/whole*100, or 0 when whole is zero
func PercentageOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}
