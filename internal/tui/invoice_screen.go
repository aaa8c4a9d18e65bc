package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/service"
)

type invoiceMode int

const (
	invoiceModeForm invoiceMode = iota
	invoiceModeOverview
	invoiceModeActions
	invoiceModeWorking
	invoiceModeResult
)

type invoiceAction int

const (
	actionDownload invoiceAction = iota
	actionEmail
	actionCopy
)

func (a invoiceAction) String() string {
	switch a {
	case actionDownload:
		return "Download PDF"
	case actionEmail:
		return "Email Client"
	case actionCopy:
		return "Copy Template"
	default:
		return "Unknown"
	}
}

var invoiceActions = []invoiceAction{actionDownload, actionEmail, actionCopy}

type formField struct {
	name        string
	label       string
	placeholder string
	section     string
	limit       int
}

var formFields = []formField{
	{domain.FieldClientName, "Client Name *", "Jane Smith", "Client Information", 100},
	{domain.FieldClientEmail, "Client Email *", "jane@example.com", "Client Information", 100},
	{domain.FieldClientCompany, "Company", "Acme Corp", "Client Information", 100},
	{domain.FieldClientAddress, "Address", "1 Main St, Springfield", "Client Information", 200},
	{domain.FieldProjectTitle, "Project Title *", "Website redesign", "Project Details", 100},
	{domain.FieldServiceDescription, "Service Description *", "Design and development", "Project Details", 500},
	{domain.FieldProjectStartDate, "Start Date", "2026-01-01", "Project Details", 10},
	{domain.FieldProjectEndDate, "End Date", "2026-01-31", "Project Details", 10},
	{domain.FieldHourlyRate, "Hourly Rate *", "100", "Financial Details", 12},
	{domain.FieldTotalHours, "Total Hours *", "40", "Financial Details", 12},
	{domain.FieldTaxRate, "Tax Rate (%)", "0", "Financial Details", 6},
	{domain.FieldPaymentTerms, "Payment Terms", domain.DefaultPaymentTerms, "Additional Information", 50},
	{domain.FieldDueDate, "Due Date", "2026-02-28", "Additional Information", 10},
	{domain.FieldNotes, "Notes", "Thank you for your business", "Additional Information", 500},
	{domain.FieldFreelancerName, "Your Name *", "Alex Doe", "Your Information", 100},
	{domain.FieldFreelancerEmail, "Your Email *", "alex@example.com", "Your Information", 100},
	{domain.FieldFreelancerPhone, "Phone", "+1 555 0100", "Your Information", 30},
	{domain.FieldFreelancerAddress, "Address", "2 Side St, Springfield", "Your Information", 200},
	{domain.FieldFreelancerWebsite, "Website", "https://example.com", "Your Information", 100},
}

// visibleFields is how many inputs fit in the scrolling form window
const visibleFields = 6

type invoiceActionMsg struct {
	action invoiceAction
	doc    *service.Document
	res    *service.SendResult
	err    error
}

// InvoiceModel is the invoice form with live totals and the send actions
type InvoiceModel struct {
	app  *app.App
	form *domain.Form
	mode invoiceMode

	inputs     []textinput.Model
	fieldFocus int
	offset     int

	actionCursor int
	lastAction   invoiceAction
	doc          *service.Document
	result       *service.SendResult

	err       error
	statusMsg string
}

// NewInvoiceModel creates the invoice screen seeded with the configured defaults
func NewInvoiceModel(a *app.App) tea.Model {
	m := &InvoiceModel{
		app:  a,
		form: domain.NewForm(a.InvoiceDefaults()),
		mode: invoiceModeForm,
	}
	m.initInputs()
	return m
}

// IsCapturingInput returns true while the form has keyboard focus
func (m *InvoiceModel) IsCapturingInput() bool {
	return m.mode == invoiceModeForm
}

// Busy reports whether an action is still running
func (m *InvoiceModel) Busy() bool {
	return m.mode == invoiceModeWorking
}

func (m *InvoiceModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *InvoiceModel) initInputs() {
	m.inputs = make([]textinput.Model, len(formFields))
	for i, f := range formFields {
		ti := textinput.New()
		ti.Placeholder = f.placeholder
		ti.CharLimit = f.limit
		ti.Width = 50
		ti.SetValue(m.form.Get(f.name))
		m.inputs[i] = ti
	}
	m.fieldFocus = 0
	m.offset = 0
	m.inputs[0].Focus()
}

func (m *InvoiceModel) focus(i int) tea.Cmd {
	m.inputs[m.fieldFocus].Blur()
	m.fieldFocus = (i + len(m.inputs)) % len(m.inputs)

	// keep the focused field inside the window
	if m.fieldFocus < m.offset {
		m.offset = m.fieldFocus
	}
	if m.fieldFocus >= m.offset+visibleFields {
		m.offset = m.fieldFocus - visibleFields + 1
	}
	return m.inputs[m.fieldFocus].Focus()
}

// submit validates the form and moves to action selection when it passes
func (m *InvoiceModel) submit() tea.Cmd {
	errs := m.form.Submit()
	if len(errs) == 0 {
		m.mode = invoiceModeActions
		m.actionCursor = 0
		m.inputs[m.fieldFocus].Blur()
		return nil
	}

	m.statusMsg = ""
	m.err = fmt.Errorf("%d field(s) need attention", len(errs))
	for i, f := range formFields {
		if _, bad := errs[f.name]; bad {
			return m.focus(i)
		}
	}
	return nil
}

func (m *InvoiceModel) newInvoice() tea.Cmd {
	m.form.Reset()
	m.doc = nil
	m.result = nil
	m.err = nil
	m.mode = invoiceModeForm
	m.initInputs()
	return m.inputs[0].Focus()
}

func (m *InvoiceModel) runAction(action invoiceAction) tea.Cmd {
	inv := m.form.Invoice
	svc := m.app.InvoiceService
	return func() tea.Msg {
		ctx := context.Background()
		switch action {
		case actionDownload:
			doc, err := svc.Download(ctx, inv)
			return invoiceActionMsg{action: action, doc: doc, err: err}
		case actionEmail:
			res, err := svc.Email(ctx, inv)
			return invoiceActionMsg{action: action, res: res, err: err}
		default:
			res, err := svc.CopyTemplate(ctx, inv)
			return invoiceActionMsg{action: action, res: res, err: err}
		}
	}
}

func (m *InvoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DefaultsChangedMsg:
		m.form.SetDefaults(m.app.InvoiceDefaults())
		return m, nil

	case invoiceActionMsg:
		return m.handleActionDone(msg)
	}

	switch m.mode {
	case invoiceModeForm:
		return m.updateForm(msg)
	case invoiceModeOverview:
		return m.updateOverview(msg)
	case invoiceModeActions:
		return m.updateActions(msg)
	case invoiceModeResult:
		return m.updateResult(msg)
	}
	return m, nil
}

func (m *InvoiceModel) handleActionDone(msg invoiceActionMsg) (tea.Model, tea.Cmd) {
	m.lastAction = msg.action
	if msg.err != nil {
		var verr *service.ValidationError
		if errors.As(msg.err, &verr) {
			if m.form.Errors == nil {
				m.form.Errors = domain.FieldErrors{}
			}
			for k, v := range verr.Fields {
				m.form.Errors[k] = v
			}
			m.mode = invoiceModeForm
			m.err = fmt.Errorf("%d field(s) need attention", len(verr.Fields))
			return m, m.inputs[m.fieldFocus].Focus()
		}
		m.mode = invoiceModeActions
		m.err = msg.err
		return m, nil
	}

	m.doc = msg.doc
	m.result = msg.res
	m.err = nil
	m.statusMsg = ""
	m.mode = invoiceModeResult

	// keep the assigned invoice id so a second send reuses it
	if msg.res != nil {
		m.form.Invoice.InvoiceID = msg.res.Link.InvoiceID
	}
	return m, nil
}

func (m *InvoiceModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, DefaultKeyMap.Back):
			m.inputs[m.fieldFocus].Blur()
			m.mode = invoiceModeOverview
			return m, nil
		case key.Matches(msg, DefaultKeyMap.Submit):
			return m, m.submit()
		case key.Matches(msg, DefaultKeyMap.NextField):
			return m, m.focus(m.fieldFocus + 1)
		case key.Matches(msg, DefaultKeyMap.PrevField):
			return m, m.focus(m.fieldFocus - 1)
		case key.Matches(msg, DefaultKeyMap.Select):
			if m.fieldFocus == len(m.inputs)-1 {
				return m, m.submit()
			}
			return m, m.focus(m.fieldFocus + 1)
		}
	}

	// Update the focused text input and mirror it into the form
	var cmd tea.Cmd
	before := m.inputs[m.fieldFocus].Value()
	m.inputs[m.fieldFocus], cmd = m.inputs[m.fieldFocus].Update(msg)
	if after := m.inputs[m.fieldFocus].Value(); after != before {
		_ = m.form.Set(formFields[m.fieldFocus].name, after)
		if len(m.form.Errors) == 0 {
			m.err = nil
		}
	}
	return m, cmd
}

func (m *InvoiceModel) updateOverview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, DefaultKeyMap.Select):
			m.mode = invoiceModeForm
			return m, m.inputs[m.fieldFocus].Focus()
		case key.Matches(msg, DefaultKeyMap.Submit):
			m.mode = invoiceModeForm
			return m, m.submit()
		case key.Matches(msg, DefaultKeyMap.New):
			return m, m.newInvoice()
		}
	}
	return m, nil
}

func (m *InvoiceModel) updateActions(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		m.err = nil
		switch {
		case key.Matches(msg, DefaultKeyMap.Back):
			m.mode = invoiceModeForm
			return m, m.inputs[m.fieldFocus].Focus()
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.actionCursor > 0 {
				m.actionCursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.actionCursor < len(invoiceActions)-1 {
				m.actionCursor++
			}
		case key.Matches(msg, DefaultKeyMap.Select):
			m.mode = invoiceModeWorking
			return m, m.runAction(invoiceActions[m.actionCursor])
		}
	}
	return m, nil
}

func (m *InvoiceModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		m.err = nil
		switch {
		case key.Matches(msg, DefaultKeyMap.Back):
			m.mode = invoiceModeForm
			m.statusMsg = ""
			return m, m.inputs[m.fieldFocus].Focus()
		case key.Matches(msg, DefaultKeyMap.New):
			m.statusMsg = ""
			return m, m.newInvoice()
		case key.Matches(msg, DefaultKeyMap.Copy):
			if m.result != nil && m.result.Template != "" {
				m.copyText(m.result.Template, "Template copied to clipboard")
			}
		case key.Matches(msg, DefaultKeyMap.CopyLink):
			if m.result != nil {
				m.copyText(m.result.Link.URL, "Signing link copied to clipboard")
			}
		}
	}
	return m, nil
}

func (m *InvoiceModel) copyText(text, status string) {
	if err := clipboard.WriteAll(text); err != nil {
		m.err = fmt.Errorf("clipboard unavailable: %w", err)
		return
	}
	m.statusMsg = status
}

func (m *InvoiceModel) View() string {
	switch m.mode {
	case invoiceModeActions:
		return m.viewActions()
	case invoiceModeWorking:
		return m.viewWorking()
	case invoiceModeResult:
		return m.viewResult()
	case invoiceModeOverview:
		return m.viewOverview()
	default:
		return m.viewForm()
	}
}

func (m *InvoiceModel) viewTotals() string {
	inv := m.form.Invoice
	var s string
	s += subtitleStyle.Render("Totals") + "\n"
	s += fmt.Sprintf("Subtotal:  %s\n", totalValueStyle.Render(formatMoney(inv.TotalAmount)))
	s += fmt.Sprintf("Tax (%s): %s\n", formatPercent(inv.TaxRate), totalValueStyle.Render(formatMoney(inv.TaxAmount)))
	s += fmt.Sprintf("Total:     %s", finalTotalStyle.Render(formatMoney(inv.FinalAmount)))
	return boxStyle.Render(s)
}

func (m *InvoiceModel) viewForm() string {
	var s string
	s += titleStyle.Render("New Invoice") + "\n\n"

	end := min(m.offset+visibleFields, len(formFields))
	section := ""
	var fields string
	for i := m.offset; i < end; i++ {
		f := formFields[i]
		if f.section != section {
			section = f.section
			fields += subtitleStyle.Render(strings.ToUpper(section)) + "\n"
		}

		indicator := "  "
		labelStyle := lipgloss.NewStyle()
		if i == m.fieldFocus {
			indicator = "> "
			labelStyle = labelStyle.Bold(true).Foreground(primaryColor)
		}
		fields += fmt.Sprintf("%s%s\n  %s\n", indicator, labelStyle.Render(f.label), m.inputs[i].View())
		if msg, bad := m.form.Errors[f.name]; bad {
			fields += "  " + fieldErrorStyle.Render(msg) + "\n"
		}
		fields += "\n"
	}

	s += lipgloss.JoinHorizontal(lipgloss.Top, fields, "  ", m.viewTotals())
	s += subtitleStyle.Render(fmt.Sprintf("  field %d of %d", m.fieldFocus+1, len(formFields))) + "\n"

	if m.err != nil {
		s += fieldErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
	}

	s += "\n" + helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: submit  esc: leave form")
	return s
}

func (m *InvoiceModel) viewOverview() string {
	inv := m.form.Invoice
	var s string
	s += titleStyle.Render("Invoice") + "\n\n"

	client := inv.ClientName
	if client == "" {
		client = subtitleStyle.Render("(no client yet)")
	}
	project := inv.ProjectTitle
	if project == "" {
		project = subtitleStyle.Render("(no project yet)")
	}
	s += fmt.Sprintf("  Client:   %s\n", client)
	s += fmt.Sprintf("  Project:  %s\n", project)
	if len(m.form.Errors) > 0 {
		s += "  " + warnStyle.Render(fmt.Sprintf("%d field(s) need attention", len(m.form.Errors))) + "\n"
	}
	s += "\n" + m.viewTotals() + "\n"

	s += "\n" + helpStyle.Render("  enter: edit invoice  ctrl+s: submit  n: new invoice")
	return s
}

func (m *InvoiceModel) viewActions() string {
	inv := m.form.Invoice
	var s string
	s += titleStyle.Render("Send Invoice") + "\n\n"
	s += fmt.Sprintf("  %s for %s: %s\n\n",
		truncateStr(inv.ProjectTitle, 40),
		truncateStr(inv.ClientName, 30),
		finalTotalStyle.Render(formatMoney(inv.FinalAmount)),
	)

	for i, action := range invoiceActions {
		label := "  " + action.String() + "  "
		if i == m.actionCursor {
			s += "  " + selectedStyle.Render(label) + "\n"
		} else {
			s += "  " + label + "\n"
		}
	}

	if m.err != nil {
		s += "\n" + fieldErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
	}

	s += "\n" + helpStyle.Render("  j/k: choose  enter: run  esc: back to form")
	return s
}

func (m *InvoiceModel) viewWorking() string {
	return titleStyle.Render("Send Invoice") + "\n\n" +
		subtitleStyle.Render(fmt.Sprintf("  %s...", invoiceActions[m.actionCursor]))
}

func (m *InvoiceModel) viewResult() string {
	var s string

	if m.lastAction == actionDownload && m.doc != nil {
		s += titleStyle.Render("Invoice Ready") + "\n\n"
		s += statusStyle.Render("  ✓ "+m.doc.Filename) + "\n"
		if m.doc.Location != "" {
			s += fmt.Sprintf("  Saved to: %s\n", m.doc.Location)
		}
		s += fmt.Sprintf("  Total:    %s\n", formatMoney(m.doc.Invoice.FinalAmount))
		s += "\n" + helpStyle.Render("  n: new invoice  esc: back to form")
		return s
	}

	res := m.result
	if res == nil {
		return ""
	}

	s += titleStyle.Render("Ready to Send") + "\n\n"
	switch {
	case res.Delivered:
		s += statusStyle.Render(fmt.Sprintf("  ✓ Invoice emailed to %s", res.Invoice.ClientEmail)) + "\n"
	case res.DeliveryErr != nil:
		s += warnStyle.Render(fmt.Sprintf("  Email could not be sent: %v", res.DeliveryErr)) + "\n"
		s += subtitleStyle.Render("  Copy the message below and send it yourself.") + "\n"
	}

	s += fmt.Sprintf("\n  Invoice ID:   %s\n", res.Link.InvoiceID)
	s += fmt.Sprintf("  Signing link: %s\n", res.Link.URL)
	if res.Link.Provider == domain.LinkProviderDocuSign {
		s += subtitleStyle.Render("  (hosted by DocuSign)") + "\n"
	}

	if res.Template != "" && !res.Delivered {
		s += "\n" + boxStyle.Render(res.Template) + "\n"
	}

	if m.statusMsg != "" {
		s += "\n" + statusStyle.Render("  "+m.statusMsg) + "\n"
	}
	if m.err != nil {
		s += "\n" + fieldErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
	}

	help := "  l: copy link  n: new invoice  esc: back to form"
	if res.Template != "" {
		help = "  c: copy template" + help
	}
	s += "\n" + helpStyle.Render(help)
	return s
}
