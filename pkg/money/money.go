// Package money holds the currency helpers shared by the ledger packages.
// Amounts are shopspring decimals kept at two places after every division.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const places = 2

var hundred = decimal.NewFromInt(100)

// Round rounds to currency precision, half away from zero
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(places)
}

// Percent returns base*rate/100
func Percent(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(hundred)
}

// Sum adds all values
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Min returns the smaller of a and b
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Format renders an amount with thousands separators, e.g. 12,500.00
func Format(d decimal.Decimal) string {
	s := Round(d).StringFixed(places)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + b.String() + "." + frac
}

// Parse reads a user typed amount. Thousands separators and blanks are ignored,
// an empty string is zero.
func Parse(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(clean)
}

// MustParse is Parse for constants and tests
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}
