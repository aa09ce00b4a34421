package exporter

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"seafreight/internal/config"
)

// formatAmount formats a money value for CSV output with exactly 2 decimal
// places; an absent value renders as an empty cell.
func formatAmount(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}

// formatPercent formats a percentage with 1 decimal place, matching the
// precision the variance derivation carries.
func formatPercent(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(1)
}

// formatDate formats an optional date; nil renders as an empty cell.
func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(config.DateFormat)
}

// formatOptionalBool renders a tri-state flag: empty when undefined.
func formatOptionalBool(b *bool) string {
	if b == nil {
		return ""
	}
	return formatBool(*b)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}
