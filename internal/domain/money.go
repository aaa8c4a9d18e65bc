package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// InvalidAmount is shown in place of an amount that is not a finite number
const InvalidAmount = "$-.--"

// isFinite reports whether v is neither NaN nor an infinity
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FormatMoney renders v as $1234.50, rounding halves away from zero.
// Every document and message formats amounts through it so they agree
// to the cent.
func FormatMoney(v float64) string {
	if !isFinite(v) {
		return InvalidAmount
	}
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}
