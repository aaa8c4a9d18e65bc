package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/esign"
	"github.com/andy/invoicedesk/internal/repository"
)

type mockStore struct {
	sigs      []*domain.Signature
	envelopes []*repository.EnvelopeRecord
	appendErr error
	readErr   error
}

func newMockStore() *mockStore { return &mockStore{} }

func (m *mockStore) Append(ctx context.Context, sig *domain.Signature) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.sigs = append(m.sigs, sig)
	return nil
}

func (m *mockStore) List(ctx context.Context) ([]*domain.Signature, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.sigs, nil
}

func (m *mockStore) FindByInvoiceID(ctx context.Context, invoiceID string) (*domain.Signature, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	for _, s := range m.sigs {
		if s.InvoiceID == invoiceID {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockStore) SaveEnvelope(ctx context.Context, rec *repository.EnvelopeRecord) error {
	for i, e := range m.envelopes {
		if e.EnvelopeID == rec.EnvelopeID {
			m.envelopes[i] = rec
			return nil
		}
	}
	m.envelopes = append(m.envelopes, rec)
	return nil
}

func (m *mockStore) FindEnvelope(ctx context.Context, invoiceID string) (*repository.EnvelopeRecord, error) {
	for i := len(m.envelopes) - 1; i >= 0; i-- {
		if m.envelopes[i].InvoiceID == invoiceID {
			return m.envelopes[i], nil
		}
	}
	return nil, nil
}

type mockProvider struct {
	env    *esign.Envelope
	err    error
	status string
}

func (m *mockProvider) CreateEnvelope(ctx context.Context, pdf []byte, inv *domain.Invoice) (*esign.Envelope, error) {
	return m.env, m.err
}

func (m *mockProvider) EnvelopeStatus(ctx context.Context, envelopeID string) (string, error) {
	return m.status, m.err
}

func TestSign_Success(t *testing.T) {
	store := newMockStore()
	svc := NewSignatureService(store, nil, nil, "http://localhost:8080/", nil).(*signatureService)
	at := time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return at }

	sig, err := svc.Sign(context.Background(), SignRequest{
		InvoiceID:   "inv-1",
		ClientName:  "  Ada ",
		ClientEmail: "ada@example.com",
		Signature:   "Ada L.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.ClientName != "Ada" || !sig.SignedAt.Equal(at) {
		t.Errorf("unexpected signature: %+v", sig)
	}

	found := svc.Find(context.Background(), "inv-1")
	if found == nil || *found != *sig {
		t.Errorf("expected round trip, got %+v", found)
	}
}

func TestSign_Incomplete(t *testing.T) {
	store := newMockStore()
	svc := NewSignatureService(store, nil, nil, "", nil)

	_, err := svc.Sign(context.Background(), SignRequest{InvoiceID: "inv-1", ClientName: "Ada", ClientEmail: " ", Signature: "x"})
	if !errors.Is(err, ErrSignatureIncomplete) {
		t.Fatalf("expected ErrSignatureIncomplete, got %v", err)
	}
	_, err = svc.Sign(context.Background(), SignRequest{ClientName: "Ada", ClientEmail: "a@b", Signature: "x"})
	if !errors.Is(err, ErrMissingInvoiceID) {
		t.Fatalf("expected ErrMissingInvoiceID, got %v", err)
	}
	if len(store.sigs) != 0 {
		t.Error("expected nothing stored")
	}
}

func TestSign_WriteFailureIsReturned(t *testing.T) {
	store := &mockStore{appendErr: errors.New("disk full")}
	svc := NewSignatureService(store, nil, nil, "", nil)

	_, err := svc.Sign(context.Background(), SignRequest{InvoiceID: "inv-1", ClientName: "Ada", ClientEmail: "a@b", Signature: "x"})
	if err == nil {
		t.Fatal("expected write error")
	}
}

func TestFind_ReturnsFirstMatch(t *testing.T) {
	store := newMockStore()
	svc := NewSignatureService(store, nil, nil, "", nil)
	ctx := context.Background()

	_, _ = svc.Sign(ctx, SignRequest{InvoiceID: "inv-1", ClientName: "First", ClientEmail: "a@b", Signature: "1"})
	_, _ = svc.Sign(ctx, SignRequest{InvoiceID: "inv-1", ClientName: "Second", ClientEmail: "a@b", Signature: "2"})

	if got := svc.Find(ctx, "inv-1"); got == nil || got.ClientName != "First" {
		t.Errorf("expected first signature, got %+v", got)
	}
}

func TestList_ReadFailureIsEmpty(t *testing.T) {
	svc := NewSignatureService(&mockStore{readErr: errors.New("corrupt")}, nil, nil, "", nil)

	if sigs := svc.List(context.Background()); len(sigs) != 0 {
		t.Errorf("expected empty list, got %d", len(sigs))
	}
	if sig := svc.Find(context.Background(), "inv-1"); sig != nil {
		t.Errorf("expected nil, got %+v", sig)
	}
}

func TestRequestLink_Local(t *testing.T) {
	svc := NewSignatureService(newMockStore(), nil, nil, "https://invoices.example.com/", nil)
	inv := &domain.Invoice{}

	link := svc.RequestLink(context.Background(), inv, nil)
	if inv.InvoiceID == "" || link.InvoiceID != inv.InvoiceID {
		t.Fatalf("expected invoice id to be assigned, got %q / %q", inv.InvoiceID, link.InvoiceID)
	}
	if link.URL != "https://invoices.example.com/sign-invoice/"+inv.InvoiceID {
		t.Errorf("unexpected url %q", link.URL)
	}
	if link.Provider != domain.LinkProviderLocal {
		t.Errorf("expected local provider, got %q", link.Provider)
	}
}

func TestRequestLink_Provider(t *testing.T) {
	store := newMockStore()
	provider := &mockProvider{env: &esign.Envelope{EnvelopeID: "env-1", Status: esign.StatusSent, SigningURL: "https://docusign/sign"}}
	svc := NewSignatureService(store, store, provider, "http://localhost", nil)
	inv := &domain.Invoice{InvoiceID: "inv-9"}

	link := svc.RequestLink(context.Background(), inv, []byte("%PDF"))
	if link.URL != "https://docusign/sign" || link.Provider != domain.LinkProviderDocuSign || link.EnvelopeID != "env-1" {
		t.Errorf("unexpected link %+v", link)
	}
	if len(store.envelopes) != 1 || store.envelopes[0].InvoiceID != "inv-9" {
		t.Errorf("expected envelope to be recorded, got %+v", store.envelopes)
	}
}

func TestRequestLink_ProviderFailureFallsBack(t *testing.T) {
	provider := &mockProvider{err: errors.New("unauthorized")}
	svc := NewSignatureService(newMockStore(), nil, provider, "http://localhost", nil)

	link := svc.RequestLink(context.Background(), &domain.Invoice{InvoiceID: "inv-9"}, nil)
	if link.URL != "http://localhost/sign-invoice/inv-9" || link.Provider != domain.LinkProviderLocal {
		t.Errorf("expected local fallback, got %+v", link)
	}
}

func TestRequestLink_NoSigningURLUsesLocalLink(t *testing.T) {
	store := newMockStore()
	// embedded signer whose recipient view could not be created
	provider := &mockProvider{env: &esign.Envelope{EnvelopeID: "env-1", Status: esign.StatusSent}}
	svc := NewSignatureService(store, store, provider, "http://localhost", nil)

	link := svc.RequestLink(context.Background(), &domain.Invoice{InvoiceID: "inv-9"}, []byte("%PDF"))
	if link.URL != "http://localhost/sign-invoice/inv-9" || link.Provider != domain.LinkProviderLocal {
		t.Errorf("expected local link, got %+v", link)
	}
	if len(store.envelopes) != 1 {
		t.Errorf("envelope should still be recorded, got %+v", store.envelopes)
	}
}

func TestEnvelopeStatus(t *testing.T) {
	store := newMockStore()
	provider := &mockProvider{
		env:    &esign.Envelope{EnvelopeID: "env-1", Status: esign.StatusSent, SigningURL: "u"},
		status: esign.StatusCompleted,
	}
	svc := NewSignatureService(store, store, provider, "", nil)
	ctx := context.Background()

	if _, err := svc.EnvelopeStatus(ctx, "inv-9"); !errors.Is(err, ErrEnvelopeNotFound) {
		t.Fatalf("expected ErrEnvelopeNotFound, got %v", err)
	}

	svc.RequestLink(ctx, &domain.Invoice{InvoiceID: "inv-9"}, nil)
	rec, err := svc.EnvelopeStatus(ctx, "inv-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != esign.StatusCompleted {
		t.Errorf("expected completed, got %q", rec.Status)
	}
	if stored, _ := store.FindEnvelope(ctx, "inv-9"); stored.Status != esign.StatusCompleted {
		t.Errorf("expected stored status to be updated, got %q", stored.Status)
	}
}
