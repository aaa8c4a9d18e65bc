package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// DefaultPaymentTerms is pre-filled on every new invoice form
const DefaultPaymentTerms = "Net 30"

// DateLayout is the calendar-date format used for project and due dates
const DateLayout = "2006-01-02"

var ErrInvoiceNotFinalized = errors.New("invoice has not been finalized")

// Invoice is a single freelancer invoice for one service line.
// TotalAmount, TaxAmount and FinalAmount are derived; use Recalculate or Finalize.
type Invoice struct {
	InvoiceID string `yaml:"invoice_id,omitempty" json:"invoiceId,omitempty"`

	// Client
	ClientName    string `yaml:"client_name" json:"clientName"`
	ClientEmail   string `yaml:"client_email" json:"clientEmail"`
	ClientCompany string `yaml:"client_company,omitempty" json:"clientCompany,omitempty"`
	ClientAddress string `yaml:"client_address,omitempty" json:"clientAddress,omitempty"`

	// Project
	ProjectTitle       string `yaml:"project_title" json:"projectTitle"`
	ServiceDescription string `yaml:"service_description" json:"serviceDescription"`
	ProjectStartDate   string `yaml:"project_start_date,omitempty" json:"projectStartDate,omitempty"`
	ProjectEndDate     string `yaml:"project_end_date,omitempty" json:"projectEndDate,omitempty"`

	// Financials (rate and hours are inputs, tax rate is a percentage)
	HourlyRate  float64 `yaml:"hourly_rate" json:"hourlyRate"`
	TotalHours  float64 `yaml:"total_hours" json:"totalHours"`
	TaxRate     float64 `yaml:"tax_rate" json:"taxRate"`
	TotalAmount float64 `yaml:"-" json:"totalAmount"`
	TaxAmount   float64 `yaml:"-" json:"taxAmount"`
	FinalAmount float64 `yaml:"-" json:"finalAmount"`

	// Additional
	PaymentTerms string `yaml:"payment_terms,omitempty" json:"paymentTerms,omitempty"`
	DueDate      string `yaml:"due_date,omitempty" json:"dueDate,omitempty"`
	Notes        string `yaml:"notes,omitempty" json:"notes,omitempty"`

	// Freelancer
	FreelancerName    string `yaml:"freelancer_name" json:"freelancerName"`
	FreelancerEmail   string `yaml:"freelancer_email" json:"freelancerEmail"`
	FreelancerPhone   string `yaml:"freelancer_phone,omitempty" json:"freelancerPhone,omitempty"`
	FreelancerAddress string `yaml:"freelancer_address,omitempty" json:"freelancerAddress,omitempty"`
	FreelancerWebsite string `yaml:"freelancer_website,omitempty" json:"freelancerWebsite,omitempty"`

	FinalizedAt time.Time `yaml:"-" json:"finalizedAt,omitempty"`
}

// NewInvoice creates an empty form-state invoice
func NewInvoice() *Invoice {
	return &Invoice{PaymentTerms: DefaultPaymentTerms}
}

// Recalculate derives the financial totals from rate, hours and tax rate
func (i *Invoice) Recalculate() {
	t := CalculateTotals(i.HourlyRate, i.TotalHours, i.TaxRate)
	i.TotalAmount = t.TotalAmount
	i.TaxAmount = t.TaxAmount
	i.FinalAmount = t.FinalAmount
}

// Finalize recomputes the totals and freezes them for render or send
func (i *Invoice) Finalize(at time.Time) {
	i.Recalculate()
	i.FinalizedAt = at.UTC().Truncate(time.Second)
}

// IsFinalized returns true once Finalize has been called
func (i *Invoice) IsFinalized() bool {
	return !i.FinalizedAt.IsZero()
}

// EnsureID assigns a new invoice identifier when none is set and returns it
func (i *Invoice) EnsureID() string {
	if i.InvoiceID == "" {
		i.InvoiceID = NewInvoiceID()
	}
	return i.InvoiceID
}

// Clone returns a copy that can be mutated independently
func (i *Invoice) Clone() *Invoice {
	c := *i
	return &c
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewInvoiceID returns an identifier of the form inv-<unix millis>-<9 base36 chars>
func NewInvoiceID() string {
	return newInvoiceIDAt(time.Now())
}

func newInvoiceIDAt(now time.Time) string {
	var sb strings.Builder
	base := big.NewInt(int64(len(idAlphabet)))
	for range 9 {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(fmt.Sprintf("invoice id: %v", err))
		}
		sb.WriteByte(idAlphabet[n.Int64()])
	}
	return fmt.Sprintf("inv-%d-%s", now.UnixMilli(), sb.String())
}
