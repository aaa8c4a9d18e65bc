package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/domain"
)

type signaturesDataMsg struct {
	signatures []*domain.Signature
}

type envelopeStatusMsg struct {
	invoiceID string
	status    string
	err       error
}

// SignaturesModel lists recorded client signatures
type SignaturesModel struct {
	app        *app.App
	signatures []*domain.Signature
	cursor     int
	detail     bool
	loading    bool
	envelope   map[string]string // invoice id -> provider status
}

// NewSignaturesModel creates a new signatures screen
func NewSignaturesModel(a *app.App) tea.Model {
	return &SignaturesModel{
		app:      a,
		loading:  true,
		envelope: make(map[string]string),
	}
}

func (m *SignaturesModel) Init() tea.Cmd {
	return m.loadSignatures()
}

func (m *SignaturesModel) loadSignatures() tea.Cmd {
	return func() tea.Msg {
		// read failures are logged by the service and show as an empty list
		return signaturesDataMsg{signatures: m.app.SignatureService.List(context.Background())}
	}
}

func (m *SignaturesModel) loadEnvelope(invoiceID string) tea.Cmd {
	return func() tea.Msg {
		rec, err := m.app.SignatureService.EnvelopeStatus(context.Background(), invoiceID)
		if err != nil {
			return envelopeStatusMsg{invoiceID: invoiceID, err: err}
		}
		return envelopeStatusMsg{invoiceID: invoiceID, status: rec.Status}
	}
}

func (m *SignaturesModel) selected() *domain.Signature {
	if m.cursor < 0 || m.cursor >= len(m.signatures) {
		return nil
	}
	return m.signatures[m.cursor]
}

func (m *SignaturesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadSignatures()

	case signaturesDataMsg:
		m.loading = false
		m.signatures = msg.signatures
		if m.cursor >= len(m.signatures) {
			m.cursor = max(0, len(m.signatures)-1)
		}
		return m, nil

	case envelopeStatusMsg:
		if msg.err != nil {
			m.envelope[msg.invoiceID] = "unavailable"
			return m, nil
		}
		m.envelope[msg.invoiceID] = msg.status
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		if m.detail {
			if key.Matches(msg, DefaultKeyMap.Back) {
				m.detail = false
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.signatures)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, m.loadSignatures()
		case key.Matches(msg, DefaultKeyMap.Select):
			if sig := m.selected(); sig != nil {
				m.detail = true
				if _, known := m.envelope[sig.InvoiceID]; !known {
					return m, m.loadEnvelope(sig.InvoiceID)
				}
			}
		}
	}

	return m, nil
}

func (m *SignaturesModel) View() string {
	if m.loading {
		return "Loading signatures..."
	}
	if m.detail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m *SignaturesModel) viewList() string {
	var s string
	s += titleStyle.Render("Signatures") + "\n\n"

	if len(m.signatures) == 0 {
		s += subtitleStyle.Render("  No signatures yet. Signed invoices appear here.") + "\n"
		s += "\n" + helpStyle.Render("  r: refresh")
		return s
	}

	s += subtitleStyle.Render(fmt.Sprintf("  %-30s  %-22s  %-16s", "Invoice", "Client", "Signed")) + "\n"
	for i, sig := range m.signatures {
		line := fmt.Sprintf("%-30s  %-22s  %-16s",
			truncateStr(sig.InvoiceID, 30),
			truncateStr(sig.ClientName, 22),
			sig.SignedAt.Local().Format("Jan 02, 2006"),
		)
		if i == m.cursor {
			s += "> " + lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Render(line) + "\n"
		} else {
			s += "  " + line + "\n"
		}
	}

	s += "\n" + subtitleStyle.Render(fmt.Sprintf("  %d signature(s)", len(m.signatures))) + "\n"
	s += "\n" + helpStyle.Render("  j/k: navigate  enter: details  r: refresh")
	return s
}

func (m *SignaturesModel) viewDetail() string {
	sig := m.selected()
	if sig == nil {
		return "No signature selected"
	}

	var s string
	s += titleStyle.Render("Invoice Signed") + "\n\n"
	s += fmt.Sprintf("  Invoice:    %s\n", sig.InvoiceID)
	s += fmt.Sprintf("  Signed by:  %s\n", sig.ClientName)
	s += fmt.Sprintf("  Email:      %s\n", sig.ClientEmail)
	s += fmt.Sprintf("  Date:       %s\n", sig.SignedAt.Local().Format("Jan 02, 2006 15:04"))
	s += "\n" + boxStyle.Render(sig.Signature) + "\n"

	if status, ok := m.envelope[sig.InvoiceID]; ok && status != "unavailable" {
		s += fmt.Sprintf("\n  E-sign envelope: %s\n", status)
	}

	s += "\n" + helpStyle.Render("  esc: back to list")
	return s
}
