package value

import "github.com/shopspring/decimal"

// NewBigDec renders d with exactly as many fractional digits as its
// exponent carries (trailing zeros included), matching BigDec's "exactly
// as supplied" round-trip contract. decimal.Decimal.String() alone would
// trim trailing zeros, so a negative exponent goes through StringFixed.
func NewBigDec(d decimal.Decimal) BigDec {
	if d.Exponent() < 0 {
		return BigDec(d.StringFixed(-d.Exponent()))
	}
	return BigDec(d.String())
}

// ParseBigDec validates s as a decimal literal via
// github.com/shopspring/decimal and returns it re-rendered in canonical
// form (e.g. "1.50" stays "1.50"; exponential notation is normalized to
// plain decimal digits).
func ParseBigDec(s string) (BigDec, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", err
	}
	return NewBigDec(d), nil
}

// Decimal parses b back into a decimal.Decimal for arithmetic.
func (b BigDec) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(string(b))
}
