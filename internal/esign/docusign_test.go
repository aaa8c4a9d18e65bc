package esign

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/mux"

	"github.com/andy/invoicedesk/internal/domain"
)

func testKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	return key, pem.EncodeToMemory(block)
}

func testInvoice() *domain.Invoice {
	inv := domain.NewInvoice()
	inv.InvoiceID = "inv-1-abc"
	inv.ClientName = "Ada Lovelace"
	inv.ClientEmail = "ada@example.com"
	inv.ProjectTitle = "Analytical Engine"
	inv.HourlyRate = 50
	inv.TotalHours = 10
	inv.TaxRate = 10
	inv.DueDate = "2026-04-01"
	inv.FreelancerName = "Charles Babbage"
	inv.Finalize(time.Now())
	return inv
}

type fakeDocuSign struct {
	t        *testing.T
	key      *rsa.PrivateKey
	tokens   int
	envelope envelopeDefinition
	view     recipientViewRequest
	failView bool
}

func (f *fakeDocuSign) router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokens++
		if err := r.ParseForm(); err != nil {
			f.t.Errorf("parse form: %v", err)
		}
		assertion := r.PostForm.Get("assertion")
		tok, err := jwt.Parse(assertion, func(*jwt.Token) (any, error) { return &f.key.PublicKey, nil })
		if err != nil || !tok.Valid {
			http.Error(w, "invalid_grant", http.StatusBadRequest)
			return
		}
		claims := tok.Claims.(jwt.MapClaims)
		if claims["iss"] != "integration" || claims["sub"] != "user" {
			f.t.Errorf("unexpected claims: %v", claims)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	}).Methods(http.MethodPost)

	api := r.PathPrefix("/restapi/v2.1/accounts/acct").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	api.HandleFunc("/envelopes", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&f.envelope)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(envelopeSummary{EnvelopeID: "env-42", Status: StatusSent})
	}).Methods(http.MethodPost)
	api.HandleFunc("/envelopes/{id}/views/recipient", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&f.view)
		if f.failView {
			http.Error(w, "RECIPIENT_NOT_IN_SEQUENCE", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://demo.docusign.net/signing/" + mux.Vars(r)["id"]})
	}).Methods(http.MethodPost)
	api.HandleFunc("/envelopes/{id}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(envelopeSummary{EnvelopeID: mux.Vars(r)["id"], Status: StatusCompleted})
	}).Methods(http.MethodGet)
	return r
}

func newTestProvider(t *testing.T) (*DocuSign, *fakeDocuSign) {
	key, pemBytes := testKey(t)
	fake := &fakeDocuSign{t: t, key: key}
	srv := httptest.NewServer(fake.router())
	t.Cleanup(srv.Close)

	p := NewDocuSign(DocuSignConfig{
		BaseURL:        srv.URL + "/restapi",
		OAuthURL:       srv.URL,
		AccountID:      "acct",
		IntegrationKey: "integration",
		UserID:         "user",
		PrivateKey:     pemBytes,
		ReturnOrigin:   "http://localhost:8080",
	}, srv.Client(), nil)
	return p, fake
}

func TestDocuSign_CreateEnvelope(t *testing.T) {
	p, fake := newTestProvider(t)

	env, err := p.CreateEnvelope(context.Background(), []byte("%PDF-1.3"), testInvoice())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.EnvelopeID != "env-42" || env.Status != StatusSent {
		t.Errorf("unexpected envelope: %+v", env)
	}
	if env.SigningURL != "https://demo.docusign.net/signing/env-42" {
		t.Errorf("unexpected signing url %q", env.SigningURL)
	}

	if fake.envelope.EmailSubject != "Please sign invoice for Analytical Engine" {
		t.Errorf("unexpected subject %q", fake.envelope.EmailSubject)
	}
	if !strings.Contains(fake.envelope.EmailBlurb, "Total Amount: $550.00") {
		t.Errorf("unexpected blurb %q", fake.envelope.EmailBlurb)
	}
	if len(fake.envelope.Documents) != 1 || fake.envelope.Documents[0].Name != "Invoice-Analytical Engine" {
		t.Errorf("unexpected documents: %+v", fake.envelope.Documents)
	}
	signers := fake.envelope.Recipients.Signers
	if len(signers) != 1 || signers[0].Email != "ada@example.com" || signers[0].ClientUserID != "inv-1-abc" {
		t.Errorf("unexpected signers: %+v", signers)
	}
	if fake.view.ReturnURL != "http://localhost:8080/sign-invoice/inv-1-abc" {
		t.Errorf("unexpected return url %q", fake.view.ReturnURL)
	}
}

func TestDocuSign_RecipientViewFailureLeavesNoURL(t *testing.T) {
	p, fake := newTestProvider(t)
	fake.failView = true

	env, err := p.CreateEnvelope(context.Background(), []byte("%PDF-1.3"), testInvoice())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.EnvelopeID != "env-42" {
		t.Errorf("envelope should still be returned, got %+v", env)
	}
	if env.SigningURL != "" {
		t.Errorf("expected no signing url, got %q", env.SigningURL)
	}
}

func TestDocuSign_TokenIsCached(t *testing.T) {
	p, fake := newTestProvider(t)
	ctx := context.Background()

	if _, err := p.CreateEnvelope(ctx, []byte("%PDF"), testInvoice()); err != nil {
		t.Fatalf("create: %v", err)
	}
	status, err := p.EnvelopeStatus(ctx, "env-42")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != StatusCompleted {
		t.Errorf("expected completed, got %q", status)
	}
	if fake.tokens != 1 {
		t.Errorf("expected a single token request, got %d", fake.tokens)
	}
}

func TestDocuSign_NotConfigured(t *testing.T) {
	p := NewDocuSign(DocuSignConfig{AccountID: "acct"}, nil, nil)

	if _, err := p.CreateEnvelope(context.Background(), nil, testInvoice()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := p.EnvelopeStatus(context.Background(), "env"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestDocuSign_MissingPrivateKey(t *testing.T) {
	p := NewDocuSign(DocuSignConfig{AccountID: "a", IntegrationKey: "i", UserID: "u"}, nil, nil)

	_, err := p.CreateEnvelope(context.Background(), nil, testInvoice())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
