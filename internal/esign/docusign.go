package esign

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/andy/invoicedesk/internal/domain"
)

// DocuSign demo environment defaults
const (
	DefaultDocuSignBaseURL  = "https://demo.docusign.net/restapi"
	DefaultDocuSignOAuthURL = "https://account-d.docusign.com"
)

// DocuSignConfig holds the integration credentials
type DocuSignConfig struct {
	BaseURL        string
	OAuthURL       string
	AccountID      string
	IntegrationKey string
	UserID         string
	PrivateKey     []byte // PEM encoded RSA key

	// ReturnOrigin is where the hosted signing ceremony redirects to
	ReturnOrigin string
}

// Configured returns true when account id, integration key and user id are set
func (c DocuSignConfig) Configured() bool {
	return c.AccountID != "" && c.IntegrationKey != "" && c.UserID != ""
}

// DocuSign implements Provider against the eSignature REST API using the JWT grant
type DocuSign struct {
	cfg    DocuSignConfig
	client *http.Client
	logger *zap.Logger

	mu      sync.Mutex
	token   string
	expires time.Time
	key     *rsa.PrivateKey
}

// NewDocuSign creates a DocuSign provider
func NewDocuSign(cfg DocuSignConfig, client *http.Client, logger *zap.Logger) *DocuSign {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultDocuSignBaseURL
	}
	if cfg.OAuthURL == "" {
		cfg.OAuthURL = DefaultDocuSignOAuthURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.OAuthURL = strings.TrimRight(cfg.OAuthURL, "/")
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocuSign{cfg: cfg, client: client, logger: logger}
}

type envelopeDocument struct {
	DocumentBase64 string `json:"documentBase64"`
	Name           string `json:"name"`
	FileExtension  string `json:"fileExtension"`
	DocumentID     string `json:"documentId"`
}

type envelopeSigner struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	RecipientID  string `json:"recipientId"`
	RoutingOrder string `json:"routingOrder"`
	ClientUserID string `json:"clientUserId,omitempty"`
}

type envelopeDefinition struct {
	EmailSubject string             `json:"emailSubject"`
	EmailBlurb   string             `json:"emailBlurb"`
	Documents    []envelopeDocument `json:"documents"`
	Recipients   struct {
		Signers []envelopeSigner `json:"signers"`
	} `json:"recipients"`
	Status string `json:"status"`
}

type envelopeSummary struct {
	EnvelopeID string `json:"envelopeId"`
	Status     string `json:"status"`
}

type recipientViewRequest struct {
	ReturnURL            string `json:"returnUrl"`
	AuthenticationMethod string `json:"authenticationMethod"`
	Email                string `json:"email"`
	UserName             string `json:"userName"`
	ClientUserID         string `json:"clientUserId"`
}

// CreateEnvelope sends the invoice PDF to the client for signature and
// returns the envelope with an embedded signing URL.
func (d *DocuSign) CreateEnvelope(ctx context.Context, pdf []byte, inv *domain.Invoice) (*Envelope, error) {
	if !d.cfg.Configured() {
		return nil, ErrNotConfigured
	}

	def := envelopeDefinition{
		EmailSubject: emailSubject(inv),
		EmailBlurb:   emailBlurb(inv),
		Documents: []envelopeDocument{{
			DocumentBase64: base64.StdEncoding.EncodeToString(pdf),
			Name:           "Invoice-" + inv.ProjectTitle,
			FileExtension:  "pdf",
			DocumentID:     "1",
		}},
		Status: StatusSent,
	}
	def.Recipients.Signers = []envelopeSigner{{
		Email:        inv.ClientEmail,
		Name:         inv.ClientName,
		RecipientID:  "1",
		RoutingOrder: "1",
		ClientUserID: inv.InvoiceID,
	}}

	var summary envelopeSummary
	if err := d.do(ctx, http.MethodPost, d.accountPath("/envelopes"), def, &summary); err != nil {
		return nil, fmt.Errorf("failed to create envelope: %w", err)
	}

	env := &Envelope{EnvelopeID: summary.EnvelopeID, Status: summary.Status}

	view := recipientViewRequest{
		ReturnURL:            strings.TrimRight(d.cfg.ReturnOrigin, "/") + "/sign-invoice/" + url.PathEscape(inv.InvoiceID),
		AuthenticationMethod: "none",
		Email:                inv.ClientEmail,
		UserName:             inv.ClientName,
		ClientUserID:         inv.InvoiceID,
	}
	var viewResp struct {
		URL string `json:"url"`
	}
	if err := d.do(ctx, http.MethodPost, d.accountPath("/envelopes/"+url.PathEscape(env.EnvelopeID)+"/views/recipient"), view, &viewResp); err != nil {
		// an embedded signer gets no email, so without a view the caller
		// falls back to the local signing link
		d.logger.Warn("failed to create recipient view", zap.String("envelope_id", env.EnvelopeID), zap.Error(err))
		return env, nil
	}
	env.SigningURL = viewResp.URL

	d.logger.Info("docusign envelope created",
		zap.String("envelope_id", env.EnvelopeID),
		zap.String("invoice_id", inv.InvoiceID),
	)
	return env, nil
}

// EnvelopeStatus returns the current status of an envelope
func (d *DocuSign) EnvelopeStatus(ctx context.Context, envelopeID string) (string, error) {
	if !d.cfg.Configured() {
		return "", ErrNotConfigured
	}
	var summary envelopeSummary
	if err := d.do(ctx, http.MethodGet, d.accountPath("/envelopes/"+url.PathEscape(envelopeID)), nil, &summary); err != nil {
		return "", fmt.Errorf("failed to get envelope status: %w", err)
	}
	return summary.Status, nil
}

func (d *DocuSign) accountPath(p string) string {
	return d.cfg.BaseURL + "/v2.1/accounts/" + url.PathEscape(d.cfg.AccountID) + p
}

func (d *DocuSign) do(ctx context.Context, method, endpoint string, in, out any) error {
	token, err := d.accessToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("docusign returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// accessToken returns a cached token or performs the JWT grant
func (d *DocuSign) accessToken(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.token != "" && time.Now().Before(d.expires) {
		return d.token, nil
	}

	if d.key == nil {
		if len(d.cfg.PrivateKey) == 0 {
			return "", fmt.Errorf("%w: missing private key", ErrNotConfigured)
		}
		key, err := jwt.ParseRSAPrivateKeyFromPEM(d.cfg.PrivateKey)
		if err != nil {
			return "", fmt.Errorf("failed to parse docusign private key: %w", err)
		}
		d.key = key
	}

	oauth, err := url.Parse(d.cfg.OAuthURL)
	if err != nil {
		return "", fmt.Errorf("invalid docusign oauth url: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   d.cfg.IntegrationKey,
		"sub":   d.cfg.UserID,
		"aud":   oauth.Host,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"scope": "signature impersonation",
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(d.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign jwt assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.OAuthURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("docusign token endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	d.token = tok.AccessToken
	// refresh a minute early
	d.expires = now.Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return d.token, nil
}
