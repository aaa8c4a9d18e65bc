package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/andy/invoicedesk/internal/domain"
)

// Result describes the outcome of one delivery attempt.
// Template is always populated so the caller can fall back to manual sending.
type Result struct {
	Delivered bool
	Template  string
	Err       error
}

// Dispatcher makes a single delivery attempt and falls back to template mode
type Dispatcher struct {
	relay     Relay
	attachPDF bool
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher. relay may be nil when no relay is configured.
func NewDispatcher(relay Relay, attachPDF bool, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{relay: relay, attachPDF: attachPDF, logger: logger}
}

// Deliver emails inv to the client. Failures are never returned as errors:
// they are reported in Result.Err alongside the template text.
func (d *Dispatcher) Deliver(ctx context.Context, inv *domain.Invoice, signingLink, filename string, pdf []byte) Result {
	msg := Compose(inv, signingLink)
	res := Result{Template: Template(inv, signingLink)}

	if d.relay == nil {
		d.logger.Warn("email relay not configured, using template mode", zap.String("invoice_id", inv.InvoiceID))
		res.Err = ErrRelayUnavailable
		return res
	}

	email := &Email{
		ToEmail:     inv.ClientEmail,
		ToName:      inv.ClientName,
		FromName:    inv.FreelancerName,
		FromEmail:   inv.FreelancerEmail,
		Subject:     msg.Subject,
		Message:     msg.Body,
		SigningLink: signingLink,
	}
	if d.attachPDF {
		email.Attachment = pdf
		email.AttachmentName = filename
	}

	if err := d.relay.Send(ctx, email); err != nil {
		d.logger.Warn("email delivery failed, using template mode",
			zap.String("invoice_id", inv.InvoiceID),
			zap.Error(err),
		)
		res.Err = err
		return res
	}

	d.logger.Info("invoice email sent",
		zap.String("invoice_id", inv.InvoiceID),
		zap.String("to", inv.ClientEmail),
	)
	res.Delivered = true
	return res
}
