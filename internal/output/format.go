package output

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Number formats an integer with thousands separators.
func Number(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Percent renders a ratio such as 0.1234 as "12.34%".
func Percent(ratio *decimal.Decimal) string {
	if ratio == nil {
		return "-"
	}
	return ratio.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// PercentFloat renders a ratio with the given number of decimals.
func PercentFloat(ratio float64, places int) string {
	return strconv.FormatFloat(ratio*100, 'f', places, 64) + "%"
}

// Amount renders "12.50 USD", or "-" for a missing amount.
func Amount(amount *decimal.Decimal, currency string) string {
	if amount == nil {
		return "-"
	}
	if currency == "" {
		return amount.StringFixed(2)
	}
	return amount.StringFixed(2) + " " + currency
}
