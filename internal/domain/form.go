package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Form is an editing session over one invoice.
// Every edit recomputes totals and clears the error of the edited field only.
type Form struct {
	Invoice *Invoice
	Errors  FieldErrors

	defaults Invoice
}

// NewForm starts a session. defaults seeds the freelancer block and tax rate,
// and is restored by Reset.
func NewForm(defaults *Invoice) *Form {
	f := &Form{}
	if defaults != nil {
		f.defaults = *defaults
	}
	f.defaults.PaymentTerms = firstNonEmpty(f.defaults.PaymentTerms, DefaultPaymentTerms)
	f.Reset()
	return f
}

// SetDefaults replaces the values restored by Reset. The current record is kept.
func (f *Form) SetDefaults(defaults *Invoice) {
	f.defaults = *defaults
	f.defaults.PaymentTerms = firstNonEmpty(f.defaults.PaymentTerms, DefaultPaymentTerms)
}

// Reset discards the current record and errors
func (f *Form) Reset() {
	inv := f.defaults
	inv.InvoiceID = ""
	inv.FinalizedAt = time.Time{}
	inv.Recalculate()
	f.Invoice = &inv
	f.Errors = FieldErrors{}
}

// Set updates a single field from its text representation.
// Numeric fields that fail to parse become 0.
func (f *Form) Set(field, value string) error {
	inv := f.Invoice
	switch field {
	case FieldClientName:
		inv.ClientName = value
	case FieldClientEmail:
		inv.ClientEmail = value
	case FieldClientCompany:
		inv.ClientCompany = value
	case FieldClientAddress:
		inv.ClientAddress = value
	case FieldProjectTitle:
		inv.ProjectTitle = value
	case FieldServiceDescription:
		inv.ServiceDescription = value
	case FieldProjectStartDate:
		inv.ProjectStartDate = value
	case FieldProjectEndDate:
		inv.ProjectEndDate = value
	case FieldHourlyRate:
		inv.HourlyRate = parseNumber(value)
	case FieldTotalHours:
		inv.TotalHours = parseNumber(value)
	case FieldTaxRate:
		inv.TaxRate = parseNumber(value)
	case FieldPaymentTerms:
		inv.PaymentTerms = value
	case FieldDueDate:
		inv.DueDate = value
	case FieldNotes:
		inv.Notes = value
	case FieldFreelancerName:
		inv.FreelancerName = value
	case FieldFreelancerEmail:
		inv.FreelancerEmail = value
	case FieldFreelancerPhone:
		inv.FreelancerPhone = value
	case FieldFreelancerAddress:
		inv.FreelancerAddress = value
	case FieldFreelancerWebsite:
		inv.FreelancerWebsite = value
	default:
		return fmt.Errorf("unknown invoice field %q", field)
	}

	delete(f.Errors, field)
	inv.Recalculate()
	return nil
}

// Get returns the text representation of a field
func (f *Form) Get(field string) string {
	inv := f.Invoice
	switch field {
	case FieldClientName:
		return inv.ClientName
	case FieldClientEmail:
		return inv.ClientEmail
	case FieldClientCompany:
		return inv.ClientCompany
	case FieldClientAddress:
		return inv.ClientAddress
	case FieldProjectTitle:
		return inv.ProjectTitle
	case FieldServiceDescription:
		return inv.ServiceDescription
	case FieldProjectStartDate:
		return inv.ProjectStartDate
	case FieldProjectEndDate:
		return inv.ProjectEndDate
	case FieldHourlyRate:
		return formatNumber(inv.HourlyRate)
	case FieldTotalHours:
		return formatNumber(inv.TotalHours)
	case FieldTaxRate:
		return formatNumber(inv.TaxRate)
	case FieldPaymentTerms:
		return inv.PaymentTerms
	case FieldDueDate:
		return inv.DueDate
	case FieldNotes:
		return inv.Notes
	case FieldFreelancerName:
		return inv.FreelancerName
	case FieldFreelancerEmail:
		return inv.FreelancerEmail
	case FieldFreelancerPhone:
		return inv.FreelancerPhone
	case FieldFreelancerAddress:
		return inv.FreelancerAddress
	case FieldFreelancerWebsite:
		return inv.FreelancerWebsite
	}
	return ""
}

// Submit validates the record and keeps the resulting errors on the form.
// It returns nil when the invoice may be rendered or sent.
func (f *Form) Submit() FieldErrors {
	f.Invoice.Recalculate()
	errs := f.Invoice.Validate()
	f.Errors = errs
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IsNumericField reports whether a field holds a number
func IsNumericField(field string) bool {
	switch field {
	case FieldHourlyRate, FieldTotalHours, FieldTaxRate:
		return true
	}
	return false
}

// parseNumber returns 0 for anything that is not a finite number,
// including "NaN", "Inf" and out-of-range input
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !isFinite(v) {
		return 0
	}
	return v
}

func formatNumber(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
