package tui

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/config"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/kvstore"
	"github.com/andy/invoicedesk/internal/notify"
	"github.com/andy/invoicedesk/internal/render"
	"github.com/andy/invoicedesk/internal/repository"
	"github.com/andy/invoicedesk/internal/service"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	kv, err := kvstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	repo := repository.NewLocalRepo(kv, nil)

	cfg := config.DefaultConfig()
	cfg.User.Name = "Charles Babbage"
	cfg.User.Email = "charles@example.com"

	sigs := service.NewSignatureService(repo, repo, nil, "https://invoices.example.com", nil)
	return &app.App{
		Config:           cfg,
		SignatureStore:   repo,
		EnvelopeStore:    repo,
		SignatureService: sigs,
		InvoiceService: service.NewInvoiceService(
			render.NewPDFRenderer(),
			nil,
			notify.NewDispatcher(nil, false, nil),
			sigs,
			nil,
		),
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func fill(t *testing.T, m *InvoiceModel) {
	t.Helper()
	values := map[string]string{
		domain.FieldClientName:         "Ada Lovelace",
		domain.FieldClientEmail:        "ada@example.com",
		domain.FieldProjectTitle:       "Analytical Engine",
		domain.FieldServiceDescription: "Programming",
		domain.FieldHourlyRate:         "50",
		domain.FieldTotalHours:         "10",
		domain.FieldTaxRate:            "10",
	}
	for field, v := range values {
		if err := m.form.Set(field, v); err != nil {
			t.Fatalf("Set(%s): %v", field, err)
		}
	}
}

func TestInvoiceModel_TypingUpdatesForm(t *testing.T) {
	m := NewInvoiceModel(newTestApp(t)).(*InvoiceModel)

	m.Update(runes("Ada"))

	if got := m.form.Invoice.ClientName; got != "Ada" {
		t.Errorf("ClientName = %q, want %q", got, "Ada")
	}
	if !m.IsCapturingInput() {
		t.Error("form should capture input")
	}
}

func TestInvoiceModel_DefaultsPrefilled(t *testing.T) {
	m := NewInvoiceModel(newTestApp(t)).(*InvoiceModel)

	if got := m.form.Invoice.FreelancerName; got != "Charles Babbage" {
		t.Errorf("FreelancerName = %q", got)
	}
	if got := m.form.Invoice.PaymentTerms; got == "" {
		t.Error("PaymentTerms should be defaulted")
	}
}

func TestInvoiceModel_SubmitFocusesFirstError(t *testing.T) {
	m := NewInvoiceModel(newTestApp(t)).(*InvoiceModel)
	m.focus(5)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	if m.mode != invoiceModeForm {
		t.Fatalf("mode = %d, want form", m.mode)
	}
	if m.fieldFocus != 0 {
		t.Errorf("fieldFocus = %d, want 0 (client name)", m.fieldFocus)
	}
	if _, ok := m.form.Errors[domain.FieldClientName]; !ok {
		t.Errorf("errors = %v, want clientName", m.form.Errors)
	}
	if !strings.Contains(m.View(), "Client name is required") {
		t.Error("view should show the field error")
	}
}

func TestInvoiceModel_CopyTemplateFlow(t *testing.T) {
	m := NewInvoiceModel(newTestApp(t)).(*InvoiceModel)
	fill(t, m)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.mode != invoiceModeActions {
		t.Fatalf("mode = %d, want actions (errors %v)", m.mode, m.form.Errors)
	}

	m.Update(runes("j"))
	m.Update(runes("j"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Busy() {
		t.Fatal("model should be busy while the action runs")
	}
	if cmd == nil {
		t.Fatal("expected an action command")
	}

	msg, ok := cmd().(invoiceActionMsg)
	if !ok {
		t.Fatal("command did not produce an invoiceActionMsg")
	}
	if msg.err != nil {
		t.Fatalf("action failed: %v", msg.err)
	}
	m.Update(msg)

	if m.mode != invoiceModeResult {
		t.Fatalf("mode = %d, want result", m.mode)
	}
	if !strings.Contains(m.result.Template, "$550.00") {
		t.Errorf("template missing total:\n%s", m.result.Template)
	}
	if m.form.Invoice.InvoiceID == "" {
		t.Error("invoice id should be kept on the form")
	}
	if view := m.View(); !strings.Contains(view, "Ready to Send") || !strings.Contains(view, "/sign-invoice/") {
		t.Errorf("unexpected result view:\n%s", view)
	}
}

func TestModel_FirstRunOpensSettings(t *testing.T) {
	a := newTestApp(t)
	a.Config.User.Name = ""

	m := New(a)
	updated, cmd := m.Update(firstRunCheckMsg{configured: false})
	root := updated.(Model)

	if root.active != ScreenSettings {
		t.Errorf("currentScreen = %s, want Settings", root.active)
	}
	if cmd == nil {
		t.Error("expected the settings form to be opened")
	}
}

func TestModel_ConfiguredStaysOnInvoice(t *testing.T) {
	m := New(newTestApp(t))
	updated, _ := m.Update(firstRunCheckMsg{configured: true})

	if got := updated.(Model).active; got != ScreenInvoice {
		t.Errorf("currentScreen = %s, want Invoice", got)
	}
}

func TestModel_GlobalKeysSuppressedInForm(t *testing.T) {
	m := New(newTestApp(t))
	updated, _ := m.Update(runes("s"))

	if got := updated.(Model).active; got != ScreenInvoice {
		t.Errorf("currentScreen = %s, want Invoice while typing", got)
	}
}

func TestModel_QuitBlockedWhileBusy(t *testing.T) {
	m := New(newTestApp(t))
	m.views[ScreenInvoice].(*InvoiceModel).mode = invoiceModeWorking

	updated, cmd := m.Update(runes("q"))
	root := updated.(Model)

	if cmd != nil {
		t.Error("quit should be refused while an action runs")
	}
	if root.warning == "" {
		t.Error("expected a quit warning")
	}
}

func TestModel_NavigatesToSignatures(t *testing.T) {
	m := New(newTestApp(t))
	m.views[ScreenInvoice].(*InvoiceModel).mode = invoiceModeOverview

	updated, cmd := m.Update(runes("s"))
	root := updated.(Model)

	if root.active != ScreenSignatures {
		t.Fatalf("currentScreen = %s, want Signatures", root.active)
	}
	if root.views[ScreenSignatures] == nil || cmd == nil {
		t.Fatal("signatures screen should be initialized and loading")
	}

	data, ok := cmd().(signaturesDataMsg)
	if !ok {
		t.Fatal("expected signaturesDataMsg")
	}
	root.views[ScreenSignatures].Update(data)
	if !strings.Contains(root.views[ScreenSignatures].View(), "No signatures yet") {
		t.Errorf("unexpected view:\n%s", root.views[ScreenSignatures].View())
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{550, "$550.00"},
		{1234567.891, "$1,234,567.89"},
		{math.NaN(), domain.InvalidAmount},
		{math.Inf(1), domain.InvalidAmount},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.in); got != tt.want {
			t.Errorf("formatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSettingsModel_BadTaxRateKeepsConfig(t *testing.T) {
	a := newTestApp(t)
	m := NewSettingsModel(a).(*SettingsModel)

	m.Update(OpenSettingsFormMsg{})
	if !m.IsCapturingInput() {
		t.Fatal("form should be open")
	}
	m.inputs[0].SetValue("Grace Hopper")
	m.inputs[len(m.inputs)-1].SetValue("-5")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	saved, ok := cmd().(settingsSavedMsg)
	if !ok {
		t.Fatal("expected settingsSavedMsg")
	}
	if saved.err != errBadTaxRate {
		t.Fatalf("err = %v, want errBadTaxRate", saved.err)
	}
	m.Update(saved)

	if got := a.Config.User.Name; got != "Charles Babbage" {
		t.Errorf("config name = %q, want it unchanged", got)
	}
	if !m.IsCapturingInput() || !strings.Contains(m.View(), "tax rate must be") {
		t.Error("form should stay open with the error")
	}
}
