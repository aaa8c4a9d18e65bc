package tui

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/andy/invoicedesk/internal/domain"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// formatMoney renders an amount as dollars with thousands separators, e.g. $1,234.50
func formatMoney(amount float64) string {
	if !finite(amount) {
		return domain.InvalidAmount
	}
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	whole, cents, _ := strings.Cut(d.StringFixed(2), ".")
	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return sign + "$" + b.String() + "." + cents
}

// formatPercent renders a tax rate such as 7.5 as "7.5%"
func formatPercent(rate float64) string {
	if !finite(rate) {
		return "-%"
	}
	return decimal.NewFromFloat(rate).String() + "%"
}

// truncateStr shortens s to width runes, marking the cut with "..."
func truncateStr(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
