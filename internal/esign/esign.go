package esign

import (
	"context"
	"errors"
	"fmt"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/notify"
)

var ErrNotConfigured = errors.New("e-signature provider is not configured")

// Envelope statuses reported by the provider
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusCompleted = "completed"
	StatusDeclined  = "declined"
	StatusVoided    = "voided"
)

// Envelope is a document sent out for signature
type Envelope struct {
	EnvelopeID string `json:"envelopeId"`
	Status     string `json:"status"`
	SigningURL string `json:"signingUrl,omitempty"`
}

// Provider sends invoices out for signature through an e-signature service
type Provider interface {
	CreateEnvelope(ctx context.Context, pdf []byte, inv *domain.Invoice) (*Envelope, error)
	EnvelopeStatus(ctx context.Context, envelopeID string) (string, error)
}

func emailSubject(inv *domain.Invoice) string {
	return "Please sign invoice for " + inv.ProjectTitle
}

func emailBlurb(inv *domain.Invoice) string {
	return fmt.Sprintf("Dear %s,\n\nPlease review and sign the attached invoice for the project: \"%s\".\n\nTotal Amount: %s\nDue Date: %s\n\nThank you for your business.\n\nBest regards,\n%s",
		inv.ClientName, inv.ProjectTitle, notify.FormatCurrency(inv.FinalAmount), inv.DueDate, inv.FreelancerName)
}
