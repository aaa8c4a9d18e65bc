package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/notify"
	"github.com/andy/invoicedesk/internal/render"
	"github.com/andy/invoicedesk/internal/storage"
)

// ValidationError carries the per-field messages that blocked a submission
type ValidationError struct {
	Fields domain.FieldErrors
}

func (e *ValidationError) Error() string {
	return "invalid invoice: " + e.Fields.Error()
}

// Document is a rendered invoice ready to hand to the user
type Document struct {
	Invoice  *domain.Invoice
	Filename string
	Location string // where the archive saved it, empty if not archived
	PDF      []byte
}

// SendResult is the outcome of the email and copy-template actions
type SendResult struct {
	Invoice     *domain.Invoice
	Filename    string
	PDF         []byte
	Link        domain.SigningLink
	Delivered   bool
	Template    string
	DeliveryErr error
}

// Notifier delivers an invoice email with template fallback
type Notifier interface {
	Deliver(ctx context.Context, inv *domain.Invoice, signingLink, filename string, pdf []byte) notify.Result
}

// InvoiceService runs the download, email and copy-template actions
type InvoiceService interface {
	// Download finalizes, renders and archives the invoice
	Download(ctx context.Context, inv *domain.Invoice) (*Document, error)

	// Email finalizes, renders, requests a signing link and attempts delivery
	Email(ctx context.Context, inv *domain.Invoice) (*SendResult, error)

	// CopyTemplate is Email without the delivery attempt
	CopyTemplate(ctx context.Context, inv *domain.Invoice) (*SendResult, error)
}

type invoiceService struct {
	renderer   render.Renderer
	archive    storage.DocumentStore
	notifier   Notifier
	signatures SignatureService
	logger     *zap.Logger
	now        func() time.Time
}

// NewInvoiceService creates a new invoice service. archive may be nil.
func NewInvoiceService(
	renderer render.Renderer,
	archive storage.DocumentStore,
	notifier Notifier,
	signatures SignatureService,
	logger *zap.Logger,
) InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &invoiceService{
		renderer:   renderer,
		archive:    archive,
		notifier:   notifier,
		signatures: signatures,
		logger:     logger,
		now:        time.Now,
	}
}

// prepare validates a copy of inv, finalizes it and renders the PDF
func (s *invoiceService) prepare(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, []byte, string, error) {
	final := inv.Clone()
	final.Recalculate()
	if errs := final.Validate(); len(errs) > 0 {
		return nil, nil, "", &ValidationError{Fields: errs}
	}

	now := s.now()
	final.Finalize(now)

	pdf, err := s.renderer.Render(ctx, final)
	if err != nil {
		s.logger.Error("failed to render invoice", zap.String("project", final.ProjectTitle), zap.Error(err))
		return nil, nil, "", err
	}
	return final, pdf, render.Filename(final, now), nil
}

func (s *invoiceService) Download(ctx context.Context, inv *domain.Invoice) (*Document, error) {
	final, pdf, filename, err := s.prepare(ctx, inv)
	if err != nil {
		return nil, err
	}

	doc := &Document{Invoice: final, Filename: filename, PDF: pdf}
	if s.archive != nil {
		loc, err := s.archive.Save(ctx, filename, pdf)
		if err != nil {
			return nil, fmt.Errorf("failed to save invoice: %w", err)
		}
		doc.Location = loc
		s.logger.Info("invoice saved", zap.String("location", loc))
	}
	return doc, nil
}

func (s *invoiceService) Email(ctx context.Context, inv *domain.Invoice) (*SendResult, error) {
	res, err := s.linked(ctx, inv)
	if err != nil {
		return nil, err
	}

	delivery := s.notifier.Deliver(ctx, res.Invoice, res.Link.URL, res.Filename, res.PDF)
	res.Delivered = delivery.Delivered
	res.Template = delivery.Template
	res.DeliveryErr = delivery.Err
	return res, nil
}

func (s *invoiceService) CopyTemplate(ctx context.Context, inv *domain.Invoice) (*SendResult, error) {
	res, err := s.linked(ctx, inv)
	if err != nil {
		return nil, err
	}
	res.Template = notify.Template(res.Invoice, res.Link.URL)
	return res, nil
}

func (s *invoiceService) linked(ctx context.Context, inv *domain.Invoice) (*SendResult, error) {
	final, pdf, filename, err := s.prepare(ctx, inv)
	if err != nil {
		return nil, err
	}
	link := s.signatures.RequestLink(ctx, final, pdf)
	return &SendResult{
		Invoice:  final,
		Filename: filename,
		PDF:      pdf,
		Link:     link,
	}, nil
}
