package domain

import "time"

// Signing link providers
const (
	LinkProviderLocal    = "local"
	LinkProviderDocuSign = "docusign"
)

// Signature records one client signing an invoice.
// Signatures are appended and never updated.
type Signature struct {
	ClientName  string    `json:"clientName" dynamodbav:"clientName"`
	ClientEmail string    `json:"clientEmail" dynamodbav:"clientEmail"`
	Signature   string    `json:"signature" dynamodbav:"signature"`
	SignedAt    time.Time `json:"signedAt" dynamodbav:"signedAt"`
	InvoiceID   string    `json:"invoiceId" dynamodbav:"invoiceId"`
}

// NewSignature stamps a signature with the current time
func NewSignature(invoiceID, clientName, clientEmail, mark string) *Signature {
	return &Signature{
		ClientName:  clientName,
		ClientEmail: clientEmail,
		Signature:   mark,
		SignedAt:    time.Now().UTC(),
		InvoiceID:   invoiceID,
	}
}

// SigningLink points a client at the page where an invoice can be signed
type SigningLink struct {
	InvoiceID  string `json:"invoiceId"`
	URL        string `json:"url"`
	Provider   string `json:"provider"`
	EnvelopeID string `json:"envelopeId,omitempty"`
}
