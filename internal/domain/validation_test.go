package domain

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func validInvoice() *Invoice {
	inv := NewInvoice()
	inv.ClientName = "Ada Lovelace"
	inv.ClientEmail = "ada@example.com"
	inv.ProjectTitle = "Analytical Engine"
	inv.ServiceDescription = "Programming"
	inv.HourlyRate = 50
	inv.TotalHours = 10
	inv.TaxRate = 10
	inv.FreelancerName = "Charles Babbage"
	inv.FreelancerEmail = "charles@example.com"
	return inv
}

func TestValidate_Valid(t *testing.T) {
	if errs := validInvoice().Validate(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidate_MissingClientNameAndRate(t *testing.T) {
	inv := validInvoice()
	inv.ClientName = ""
	inv.HourlyRate = 0

	errs := inv.Validate()
	want := FieldErrors{
		FieldClientName: "Client name is required",
		FieldHourlyRate: "Hourly rate must be greater than 0",
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_WhitespaceIsBlank(t *testing.T) {
	inv := validInvoice()
	inv.FreelancerEmail = "   \t"
	errs := inv.Validate()
	if _, ok := errs[FieldFreelancerEmail]; !ok {
		t.Errorf("expected freelancerEmail error, got %v", errs)
	}
}

func TestValidate_EmptyInvoice(t *testing.T) {
	errs := NewInvoice().Validate()
	want := []string{
		FieldClientEmail, FieldClientName, FieldFreelancerEmail, FieldFreelancerName,
		FieldHourlyRate, FieldProjectTitle, FieldServiceDescription, FieldTotalHours,
	}
	if diff := cmp.Diff(want, errs.Fields()); diff != "" {
		t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_EmptyIffComplete(t *testing.T) {
	mutations := []func(*Invoice){
		func(i *Invoice) { i.ClientName = "" },
		func(i *Invoice) { i.ClientEmail = "" },
		func(i *Invoice) { i.ProjectTitle = "" },
		func(i *Invoice) { i.ServiceDescription = "" },
		func(i *Invoice) { i.FreelancerName = "" },
		func(i *Invoice) { i.FreelancerEmail = "" },
		func(i *Invoice) { i.HourlyRate = -1 },
		func(i *Invoice) { i.TotalHours = 0 },
	}
	for n, mutate := range mutations {
		inv := validInvoice()
		mutate(inv)
		if errs := inv.Validate(); len(errs) != 1 {
			t.Errorf("mutation %d: expected exactly one error, got %v", n, errs)
		}
	}

	// optional fields never block submission
	inv := validInvoice()
	inv.ClientCompany = ""
	inv.DueDate = ""
	inv.TaxRate = 0
	if errs := inv.Validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestFieldErrors_Error(t *testing.T) {
	errs := FieldErrors{
		FieldTotalHours: "Total hours must be greater than 0",
		FieldClientName: "Client name is required",
	}
	want := "Client name is required; Total hours must be greater than 0"
	if errs.Error() != want {
		t.Errorf("expected %q, got %q", want, errs.Error())
	}
}

func TestValidate_NonFiniteAmounts(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Invoice)
		field string
	}{
		{"nan rate", func(i *Invoice) { i.HourlyRate = math.NaN() }, FieldHourlyRate},
		{"inf rate", func(i *Invoice) { i.HourlyRate = math.Inf(1) }, FieldHourlyRate},
		{"nan hours", func(i *Invoice) { i.TotalHours = math.NaN() }, FieldTotalHours},
		{"inf hours", func(i *Invoice) { i.TotalHours = math.Inf(1) }, FieldTotalHours},
		{"nan tax", func(i *Invoice) { i.TaxRate = math.NaN() }, FieldTaxRate},
		{"overflowing total", func(i *Invoice) { i.HourlyRate, i.TotalHours = 1e200, 1e200 }, FieldTotalHours},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			tt.edit(inv)
			inv.Recalculate()
			errs := inv.Validate()
			if _, ok := errs[tt.field]; !ok {
				t.Errorf("expected error on %s, got %v", tt.field, errs)
			}
		})
	}
}
