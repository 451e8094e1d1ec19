package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// formatAmount renders numeric input with two decimals; anything else is
// passed through for the SDK to reject.
func formatAmount(fields Fields, key string) string {
	raw, ok := fields.String(key)
	if !ok {
		return ""
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return d.StringFixed(2)
}
