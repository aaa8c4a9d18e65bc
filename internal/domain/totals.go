package domain

// Totals holds the derived financial amounts of an invoice
type Totals struct {
	TotalAmount float64
	TaxAmount   float64
	FinalAmount float64
}

// CalculateTotals computes subtotal, tax and final amount.
// taxRate is a percentage (10 means 10%). Inputs are not validated here.
func CalculateTotals(hourlyRate, totalHours, taxRate float64) Totals {
	total := hourlyRate * totalHours
	tax := total * (taxRate / 100)
	return Totals{
		TotalAmount: total,
		TaxAmount:   tax,
		FinalAmount: total + tax,
	}
}

// Finite reports whether every amount is a finite number. Huge rates or
// hours overflow to an infinity (and infinity times zero tax to NaN).
func (t Totals) Finite() bool {
	return isFinite(t.TotalAmount) && isFinite(t.TaxAmount) && isFinite(t.FinalAmount)
}
