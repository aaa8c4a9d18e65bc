package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultEmailJSEndpoint is the EmailJS REST send endpoint
const DefaultEmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

var ErrRelayUnavailable = errors.New("email relay is not configured")

// Email is a single outbound invoice email
type Email struct {
	ToEmail     string
	ToName      string
	FromName    string
	FromEmail   string
	Subject     string
	Message     string
	SigningLink string

	Attachment     []byte
	AttachmentName string
}

// Relay delivers an email through a third-party service
type Relay interface {
	Send(ctx context.Context, email *Email) error
}

// EmailJSConfig holds the EmailJS account identifiers
type EmailJSConfig struct {
	Endpoint   string
	PublicKey  string
	PrivateKey string
	ServiceID  string
	TemplateID string
}

// Configured returns true when public key, service id and template id are all set
func (c EmailJSConfig) Configured() bool {
	return c.PublicKey != "" && c.ServiceID != "" && c.TemplateID != ""
}

// EmailJSRelay sends email through the EmailJS REST API
type EmailJSRelay struct {
	cfg    EmailJSConfig
	client *http.Client
}

// NewEmailJSRelay creates a relay. A nil client uses a client with a 30s timeout.
func NewEmailJSRelay(cfg EmailJSConfig, client *http.Client) *EmailJSRelay {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEmailJSEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &EmailJSRelay{cfg: cfg, client: client}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send posts the email as EmailJS template parameters
func (r *EmailJSRelay) Send(ctx context.Context, email *Email) error {
	if !r.cfg.Configured() {
		return ErrRelayUnavailable
	}

	params := map[string]string{
		"to_email":   email.ToEmail,
		"to_name":    email.ToName,
		"from_name":  email.FromName,
		"from_email": email.FromEmail,
		"subject":    email.Subject,
		"message":    email.Message,
	}
	if email.SigningLink != "" {
		params["signing_link"] = email.SigningLink
	}
	if len(email.Attachment) > 0 {
		params["invoice_pdf"] = "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(email.Attachment)
		params["invoice_pdf_name"] = email.AttachmentName
	}

	payload, err := json.Marshal(emailJSRequest{
		ServiceID:      r.cfg.ServiceID,
		TemplateID:     r.cfg.TemplateID,
		UserID:         r.cfg.PublicKey,
		AccessToken:    r.cfg.PrivateKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email relay returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
