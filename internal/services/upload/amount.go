package upload

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount reads a currency amount, ignoring thousands separators.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func formatAmount(d decimal.Decimal, ok bool) string {
	if !ok {
		return "NaN"
	}
	return d.String()
}
