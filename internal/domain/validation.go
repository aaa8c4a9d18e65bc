package domain

import (
	"math"
	"sort"
	"strings"
)

// Form field names, shared by validation errors, the TUI and the HTTP API
const (
	FieldClientName         = "clientName"
	FieldClientEmail        = "clientEmail"
	FieldClientCompany      = "clientCompany"
	FieldClientAddress      = "clientAddress"
	FieldProjectTitle       = "projectTitle"
	FieldServiceDescription = "serviceDescription"
	FieldProjectStartDate   = "projectStartDate"
	FieldProjectEndDate     = "projectEndDate"
	FieldHourlyRate         = "hourlyRate"
	FieldTotalHours         = "totalHours"
	FieldTaxRate            = "taxRate"
	FieldPaymentTerms       = "paymentTerms"
	FieldDueDate            = "dueDate"
	FieldNotes              = "notes"
	FieldFreelancerName     = "freelancerName"
	FieldFreelancerEmail    = "freelancerEmail"
	FieldFreelancerPhone    = "freelancerPhone"
	FieldFreelancerAddress  = "freelancerAddress"
	FieldFreelancerWebsite  = "freelancerWebsite"
)

// FieldErrors maps a field name to its validation message
type FieldErrors map[string]string

// Fields returns the failing field names in sorted order
func (fe FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Error implements error so a FieldErrors can be returned directly
func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, name := range fe.Fields() {
		parts = append(parts, fe[name])
	}
	return strings.Join(parts, "; ")
}

// Validate returns an entry for every required field that is empty or out of range.
// An empty map means the invoice can be submitted.
func (i *Invoice) Validate() FieldErrors {
	errs := FieldErrors{}

	required := []struct {
		field string
		value string
		msg   string
	}{
		{FieldClientName, i.ClientName, "Client name is required"},
		{FieldClientEmail, i.ClientEmail, "Client email is required"},
		{FieldProjectTitle, i.ProjectTitle, "Project title is required"},
		{FieldServiceDescription, i.ServiceDescription, "Service description is required"},
		{FieldFreelancerName, i.FreelancerName, "Freelancer name is required"},
		{FieldFreelancerEmail, i.FreelancerEmail, "Freelancer email is required"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs[r.field] = r.msg
		}
	}

	// written as !(v > 0) so NaN fails too
	if !(i.HourlyRate > 0) || math.IsInf(i.HourlyRate, 0) {
		errs[FieldHourlyRate] = "Hourly rate must be greater than 0"
	}
	if !(i.TotalHours > 0) || math.IsInf(i.TotalHours, 0) {
		errs[FieldTotalHours] = "Total hours must be greater than 0"
	}
	if !isFinite(i.TaxRate) {
		errs[FieldTaxRate] = "Tax rate must be a number"
	}

	if len(errs) == 0 {
		t := CalculateTotals(i.HourlyRate, i.TotalHours, i.TaxRate)
		if !t.Finite() {
			errs[FieldTotalHours] = "Total amount is too large"
		}
	}

	return errs
}
