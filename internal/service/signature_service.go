package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/esign"
	"github.com/andy/invoicedesk/internal/repository"
)

var (
	ErrSignatureIncomplete = errors.New("name, email and signature are required")
	ErrMissingInvoiceID    = errors.New("invoice id is required")
	ErrEnvelopeNotFound    = errors.New("no envelope recorded for invoice")
)

// SignRequest is what the client submits on the signing page
type SignRequest struct {
	InvoiceID   string `json:"invoiceId"`
	ClientName  string `json:"clientName"`
	ClientEmail string `json:"clientEmail"`
	Signature   string `json:"signature"`
}

// SignatureService records signatures and hands out signing links
type SignatureService interface {
	// Sign validates and appends a signature. Write failures are returned.
	Sign(ctx context.Context, req SignRequest) (*domain.Signature, error)

	// List returns all signatures; read failures are logged and yield an empty list
	List(ctx context.Context) []*domain.Signature

	// Find returns the first signature for an invoice, or nil
	Find(ctx context.Context, invoiceID string) *domain.Signature

	// LocalLink returns the self-hosted signing page URL for an invoice
	LocalLink(invoiceID string) string

	// RequestLink assigns an invoice id if needed and returns a signing link,
	// preferring the e-signature provider when one is configured
	RequestLink(ctx context.Context, inv *domain.Invoice, pdf []byte) domain.SigningLink

	// EnvelopeStatus refreshes the provider status of the invoice's latest envelope
	EnvelopeStatus(ctx context.Context, invoiceID string) (*repository.EnvelopeRecord, error)
}

type signatureService struct {
	store     repository.SignatureStore
	envelopes repository.EnvelopeStore
	provider  esign.Provider
	origin    string
	logger    *zap.Logger
	now       func() time.Time
}

// NewSignatureService creates a new signature service.
// envelopes and provider may be nil.
func NewSignatureService(
	store repository.SignatureStore,
	envelopes repository.EnvelopeStore,
	provider esign.Provider,
	origin string,
	logger *zap.Logger,
) SignatureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &signatureService{
		store:     store,
		envelopes: envelopes,
		provider:  provider,
		origin:    strings.TrimRight(origin, "/"),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *signatureService) Sign(ctx context.Context, req SignRequest) (*domain.Signature, error) {
	invoiceID := strings.TrimSpace(req.InvoiceID)
	if invoiceID == "" {
		return nil, ErrMissingInvoiceID
	}

	name := strings.TrimSpace(req.ClientName)
	email := strings.TrimSpace(req.ClientEmail)
	mark := strings.TrimSpace(req.Signature)
	if name == "" || email == "" || mark == "" {
		return nil, ErrSignatureIncomplete
	}

	sig := &domain.Signature{
		ClientName:  name,
		ClientEmail: email,
		Signature:   mark,
		SignedAt:    s.now().UTC(),
		InvoiceID:   invoiceID,
	}
	if err := s.store.Append(ctx, sig); err != nil {
		s.logger.Error("failed to record signature", zap.String("invoice_id", invoiceID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("invoice signed", zap.String("invoice_id", invoiceID), zap.String("client_email", email))
	return sig, nil
}

func (s *signatureService) List(ctx context.Context) []*domain.Signature {
	sigs, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("failed to read signatures", zap.Error(err))
		return []*domain.Signature{}
	}
	return sigs
}

func (s *signatureService) Find(ctx context.Context, invoiceID string) *domain.Signature {
	sig, err := s.store.FindByInvoiceID(ctx, invoiceID)
	if err != nil {
		s.logger.Warn("failed to read signature", zap.String("invoice_id", invoiceID), zap.Error(err))
		return nil
	}
	return sig
}

func (s *signatureService) LocalLink(invoiceID string) string {
	return fmt.Sprintf("%s/sign-invoice/%s", s.origin, url.PathEscape(invoiceID))
}

func (s *signatureService) RequestLink(ctx context.Context, inv *domain.Invoice, pdf []byte) domain.SigningLink {
	id := inv.EnsureID()
	link := domain.SigningLink{
		InvoiceID: id,
		URL:       s.LocalLink(id),
		Provider:  domain.LinkProviderLocal,
	}

	if s.provider == nil {
		return link
	}

	env, err := s.provider.CreateEnvelope(ctx, pdf, inv)
	if err != nil {
		s.logger.Warn("e-signature provider failed, using local signing link",
			zap.String("invoice_id", id),
			zap.Error(err),
		)
		return link
	}

	s.recordEnvelope(ctx, id, env)

	if env.SigningURL == "" {
		return link
	}
	link.URL = env.SigningURL
	link.Provider = domain.LinkProviderDocuSign
	link.EnvelopeID = env.EnvelopeID
	return link
}

func (s *signatureService) recordEnvelope(ctx context.Context, invoiceID string, env *esign.Envelope) {
	if s.envelopes == nil {
		return
	}
	rec := &repository.EnvelopeRecord{
		EnvelopeID: env.EnvelopeID,
		InvoiceID:  invoiceID,
		Provider:   domain.LinkProviderDocuSign,
		Status:     env.Status,
	}
	if err := s.envelopes.SaveEnvelope(ctx, rec); err != nil {
		s.logger.Warn("failed to record envelope", zap.String("envelope_id", env.EnvelopeID), zap.Error(err))
	}
}

func (s *signatureService) EnvelopeStatus(ctx context.Context, invoiceID string) (*repository.EnvelopeRecord, error) {
	if s.envelopes == nil {
		return nil, ErrEnvelopeNotFound
	}
	rec, err := s.envelopes.FindEnvelope(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrEnvelopeNotFound
	}
	if s.provider == nil {
		return rec, nil
	}

	status, err := s.provider.EnvelopeStatus(ctx, rec.EnvelopeID)
	if err != nil {
		return nil, err
	}
	if status != rec.Status {
		rec.Status = status
		if err := s.envelopes.SaveEnvelope(ctx, rec); err != nil {
			s.logger.Warn("failed to update envelope status", zap.String("envelope_id", rec.EnvelopeID), zap.Error(err))
		}
	}
	return rec, nil
}
