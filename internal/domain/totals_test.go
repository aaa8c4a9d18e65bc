package domain

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateTotals(t *testing.T) {
	tests := []struct {
		name                 string
		rate, hours, taxRate float64
		want                 Totals
	}{
		{"standard", 50, 10, 10, Totals{TotalAmount: 500, TaxAmount: 50, FinalAmount: 550}},
		{"no tax", 80, 2.5, 0, Totals{TotalAmount: 200, TaxAmount: 0, FinalAmount: 200}},
		{"zero rate", 0, 10, 10, Totals{}},
		{"zero hours", 75, 0, 20, Totals{}},
		{"fractional tax", 100, 3, 7.5, Totals{TotalAmount: 300, TaxAmount: 22.5, FinalAmount: 322.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTotals(tt.rate, tt.hours, tt.taxRate)
			if !almostEqual(got.TotalAmount, tt.want.TotalAmount) ||
				!almostEqual(got.TaxAmount, tt.want.TaxAmount) ||
				!almostEqual(got.FinalAmount, tt.want.FinalAmount) {
				t.Errorf("CalculateTotals(%v, %v, %v) = %+v, want %+v", tt.rate, tt.hours, tt.taxRate, got, tt.want)
			}
		})
	}
}

func TestCalculateTotals_FinalAmountFormula(t *testing.T) {
	for _, rate := range []float64{0, 1, 42.5, 150} {
		for _, hours := range []float64{0, 0.25, 8, 160} {
			for _, tax := range []float64{0, 5, 19.6, 100} {
				got := CalculateTotals(rate, hours, tax).FinalAmount
				want := rate * hours * (1 + tax/100)
				if math.Abs(got-want) > 1e-6 {
					t.Fatalf("rate=%v hours=%v tax=%v: final %v, want %v", rate, hours, tax, got, want)
				}
			}
		}
	}
}

func TestCalculateTotals_NegativeInputIsNotAnError(t *testing.T) {
	got := CalculateTotals(-10, 5, 0)
	if got.TotalAmount != -50 {
		t.Errorf("expected -50, got %v", got.TotalAmount)
	}
}

func TestRecalculate_Idempotent(t *testing.T) {
	inv := &Invoice{HourlyRate: 50, TotalHours: 10, TaxRate: 10}
	inv.Recalculate()
	first := *inv
	inv.Recalculate()
	if *inv != first {
		t.Errorf("second recalculation changed the invoice: %+v vs %+v", *inv, first)
	}
	if inv.FinalAmount != 550 {
		t.Errorf("expected final 550, got %v", inv.FinalAmount)
	}
}
