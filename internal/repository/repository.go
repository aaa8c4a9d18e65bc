package repository

import (
	"context"

	"github.com/andy/invoicedesk/internal/domain"
)

// SignatureStore manages the append-only signature log
type SignatureStore interface {
	Append(ctx context.Context, sig *domain.Signature) error
	List(ctx context.Context) ([]*domain.Signature, error)                                // In recording order
	FindByInvoiceID(ctx context.Context, invoiceID string) (*domain.Signature, error) // First match, nil if none
}

// EnvelopeStore remembers which provider envelope belongs to which invoice
type EnvelopeStore interface {
	SaveEnvelope(ctx context.Context, rec *EnvelopeRecord) error
	FindEnvelope(ctx context.Context, invoiceID string) (*EnvelopeRecord, error) // Most recent, nil if none
}

// EnvelopeRecord links an invoice to an e-signature envelope
type EnvelopeRecord struct {
	EnvelopeID string `json:"envelopeId" dynamodbav:"envelopeId"`
	InvoiceID  string `json:"invoiceId" dynamodbav:"invoiceId"`
	Provider   string `json:"provider" dynamodbav:"provider"`
	Status     string `json:"status" dynamodbav:"status"`
}
