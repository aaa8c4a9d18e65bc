package render

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
)

func finalizedInvoice() *domain.Invoice {
	inv := domain.NewInvoice()
	inv.ClientName = "Ada Lovelace"
	inv.ClientEmail = "ada@example.com"
	inv.ClientCompany = "Engines Ltd"
	inv.ProjectTitle = "Analytical Engine"
	inv.ServiceDescription = "Programming"
	inv.HourlyRate = 50
	inv.TotalHours = 10
	inv.TaxRate = 10
	inv.DueDate = "2026-04-01"
	inv.Notes = "Café au lait included"
	inv.FreelancerName = "Charles Babbage"
	inv.FreelancerEmail = "charles@example.com"
	inv.Finalize(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	return inv
}

func TestPDFRenderer_Render(t *testing.T) {
	r := NewPDFRenderer()
	out, err := r.Render(context.Background(), finalizedInvoice())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", out[:min(len(out), 8)])
	}
}

func TestPDFRenderer_Deterministic(t *testing.T) {
	r := NewPDFRenderer()
	a, err := r.Render(context.Background(), finalizedInvoice())
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	b, err := r.Render(context.Background(), finalizedInvoice())
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("expected identical bytes for identical finalized invoices")
	}
}

func TestPDFRenderer_RequiresFinalized(t *testing.T) {
	inv := finalizedInvoice()
	inv.FinalizedAt = time.Time{}

	_, err := NewPDFRenderer().Render(context.Background(), inv)
	if !errors.Is(err, ErrNotFinalized) {
		t.Fatalf("expected ErrNotFinalized, got %v", err)
	}
}

func TestPDFRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := NewPDFRenderer().Render(ctx, finalizedInvoice())
	if !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("expected ErrRenderFailed, got %v", err)
	}
	if out != nil {
		t.Error("expected no partial output")
	}
}

func TestFilename(t *testing.T) {
	date := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	tests := []struct {
		client string
		want   string
	}{
		{"Ada Lovelace", "invoice-ada-lovelace-2026-03-01.pdf"},
		{"  ACME   Corp ", "invoice--acme-corp--2026-03-01.pdf"},
		{"A/B Testing", "invoice-a-b-testing-2026-03-01.pdf"},
	}
	for _, tt := range tests {
		inv := &domain.Invoice{ClientName: tt.client}
		if got := Filename(inv, date); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.client, got, tt.want)
		}
	}
}

func TestMoney_MatchesEmailRounding(t *testing.T) {
	// 33.75/h for 1.5h is a half-cent total
	if got := money(50.625); got != "$50.63" {
		t.Errorf("money(50.625) = %q, want $50.63", got)
	}
	if got, want := money(1.125), domain.FormatMoney(1.125); got != want {
		t.Errorf("money(1.125) = %q, want %q", got, want)
	}
}
