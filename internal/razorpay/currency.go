package razorpay

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimalCurrencies have no fractional minor unit; their amounts pass
// through unscaled.
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
}

var minorUnitScale = decimal.NewFromInt(100)

// IsZeroDecimalCurrency reports whether the currency has no minor unit.
func IsZeroDecimalCurrency(currency string) bool {
	return zeroDecimalCurrencies[strings.ToUpper(currency)]
}

// ToMinorUnit converts a major-unit amount to the smallest currency unit
// (e.g. 100.50 INR -> 10050 paise). Rounding is half away from zero, the
// same rule FromMinorUnit uses, so round-tripping amounts with at most two
// decimal digits is stable.
func ToMinorUnit(amount decimal.Decimal, currency string) int64 {
	if IsZeroDecimalCurrency(currency) {
		return amount.Round(0).IntPart()
	}
	return amount.Mul(minorUnitScale).Round(0).IntPart()
}

// FromMinorUnit converts a minor-unit amount back to major units
// (e.g. 10050 paise -> 100.50 INR).
func FromMinorUnit(amount int64, currency string) decimal.Decimal {
	d := decimal.NewFromInt(amount)
	if IsZeroDecimalCurrency(currency) {
		return d
	}
	return d.Div(minorUnitScale)
}
