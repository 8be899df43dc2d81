package negotiation

import "github.com/shopspring/decimal"

// IsNumericOffer reports whether raw is a bare non-negative integer literal.
// Signs, fractions, whitespace and currency symbols all make it free-form,
// so "-5", "1700.50", " 1700" and "$1700" go to the delegate.
func IsNumericOffer(raw string) bool {
	if raw == "" {
		return false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return false
		}
	}
	return true
}

func parseOffer(raw string) (decimal.Decimal, bool) {
	if !IsNumericOffer(raw) {
		return decimal.Zero, false
	}
	offer, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return offer, true
}
