package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PesoSign is the currency symbol used everywhere amounts are displayed.
const PesoSign = "₱"

// FormatPeso renders an amount as "₱1,234.56" (always two decimals).
func FormatPeso(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	negative := d.IsNegative()
	if negative {
		d = d.Abs()
	}

	s := d.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(s, ".")

	// Insert thousands separators into the integer part.
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := PesoSign + b.String() + "." + fracPart
	if negative {
		out = "-" + out
	}
	return out
}

// FormatPesoCompact renders large amounts in the shortened widget form:
// ₱1.2K for thousands, ₱1.5M for millions, plain peso below a thousand.
func FormatPesoCompact(amount float64) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("%s%.1fM", PesoSign, amount/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("%s%.1fK", PesoSign, amount/1_000)
	default:
		return fmt.Sprintf("%s%.0f", PesoSign, amount)
	}
}

// RoundCentavos rounds a decimal amount to two decimal places and converts
// back to float64 for storage and JSON.
func RoundCentavos(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
