package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/config"
)

var errBadTaxRate = errors.New("tax rate must be a non-negative number")

// defaultField is one editable freelancer default. get reads the current
// value from config; set writes the trimmed input back.
type defaultField struct {
	label       string
	placeholder string
	limit       int
	get         func(*config.Config) string
	set         func(*config.Config, string) error
}

var defaultFields = []defaultField{
	{"Your Name", "Alex Doe", 100,
		func(c *config.Config) string { return c.User.Name },
		func(c *config.Config, v string) error { c.User.Name = v; return nil }},
	{"Your Email", "alex@example.com", 100,
		func(c *config.Config) string { return c.User.Email },
		func(c *config.Config, v string) error { c.User.Email = v; return nil }},
	{"Phone", "+1 555 0100", 30,
		func(c *config.Config) string { return c.User.Phone },
		func(c *config.Config, v string) error { c.User.Phone = v; return nil }},
	{"Address", "2 Side St, Springfield", 200,
		func(c *config.Config) string { return c.User.Address },
		func(c *config.Config, v string) error { c.User.Address = v; return nil }},
	{"Website", "https://example.com", 100,
		func(c *config.Config) string { return c.User.Website },
		func(c *config.Config, v string) error { c.User.Website = v; return nil }},
	{"Default Payment Terms", "Net 30", 50,
		func(c *config.Config) string { return c.Invoice.DefaultPaymentTerms },
		func(c *config.Config, v string) error { c.Invoice.DefaultPaymentTerms = v; return nil }},
	{"Default Tax Rate (%)", "0", 6,
		func(c *config.Config) string { return strconv.FormatFloat(c.Invoice.DefaultTaxRate, 'f', -1, 64) },
		func(c *config.Config, v string) error {
			if v == "" {
				c.Invoice.DefaultTaxRate = 0
				return nil
			}
			rate, err := strconv.ParseFloat(v, 64)
			if err != nil || rate < 0 {
				return errBadTaxRate
			}
			c.Invoice.DefaultTaxRate = rate
			return nil
		}},
}

type settingsSavedMsg struct {
	err error
}

// SettingsModel edits the freelancer block and invoice defaults that
// pre-fill every new invoice
type SettingsModel struct {
	app     *app.App
	editing bool
	inputs  []textinput.Model
	focused int
	err     error
	notice  string
}

// NewSettingsModel creates the settings screen in read-only mode
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{app: a}
}

// IsCapturingInput reports whether the edit form is open
func (m *SettingsModel) IsCapturingInput() bool {
	return m.editing
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

// openForm loads the current config into fresh inputs
func (m *SettingsModel) openForm(notice string) tea.Cmd {
	m.editing = true
	m.err = nil
	m.notice = notice
	m.inputs = make([]textinput.Model, len(defaultFields))
	for i, f := range defaultFields {
		in := textinput.New()
		in.Placeholder = f.placeholder
		in.CharLimit = f.limit
		in.Width = min(50, f.limit+1)
		in.SetValue(f.get(m.app.Config))
		m.inputs[i] = in
	}
	m.focused = 0
	return m.inputs[0].Focus()
}

func (m *SettingsModel) moveFocus(delta int) tea.Cmd {
	m.inputs[m.focused].Blur()
	m.focused = (m.focused + delta + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focused].Focus()
}

// save applies every input to a copy of the config so a bad value leaves
// the live config untouched
func (m *SettingsModel) save() tea.Cmd {
	values := make([]string, len(m.inputs))
	for i := range m.inputs {
		values[i] = strings.TrimSpace(m.inputs[i].Value())
	}

	return func() tea.Msg {
		next := *m.app.Config
		for i, f := range defaultFields {
			if err := f.set(&next, values[i]); err != nil {
				return settingsSavedMsg{err: err}
			}
		}

		prev := *m.app.Config
		*m.app.Config = next
		if err := m.app.SaveConfig(); err != nil {
			*m.app.Config = prev
			return settingsSavedMsg{err: fmt.Errorf("failed to save config: %w", err)}
		}
		return settingsSavedMsg{}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case OpenSettingsFormMsg:
		return m, m.openForm("Welcome! Tell us who is sending the invoices.")

	case settingsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.editing = false
		m.notice = "Settings saved. New invoices use these defaults."
		return m, func() tea.Msg { return DefaultsChangedMsg{} }

	case tea.KeyMsg:
		if !m.editing {
			if key.Matches(msg, DefaultKeyMap.Select) {
				return m, m.openForm("")
			}
			return m, nil
		}
		return m.handleFormKey(msg)
	}

	// cursor blink and friends
	if m.editing {
		var cmd tea.Cmd
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *SettingsModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.editing = false
		m.err = nil
		m.notice = ""
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Submit):
		return m, m.save()
	case key.Matches(msg, DefaultKeyMap.NextField):
		return m, m.moveFocus(1)
	case key.Matches(msg, DefaultKeyMap.PrevField):
		return m, m.moveFocus(-1)
	case key.Matches(msg, DefaultKeyMap.Select):
		if m.focused == len(m.inputs)-1 {
			return m, m.save()
		}
		return m, m.moveFocus(1)
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *SettingsModel) View() string {
	var b strings.Builder
	if m.editing {
		b.WriteString(titleStyle.Render("Edit Settings") + "\n\n")
	} else {
		b.WriteString(titleStyle.Render("Settings") + "\n\n")
	}
	if m.notice != "" {
		b.WriteString(statusStyle.Render("  "+m.notice) + "\n\n")
	}

	if m.editing {
		m.writeForm(&b)
	} else {
		m.writeSummary(&b)
	}
	return b.String()
}

func (m *SettingsModel) writeForm(b *strings.Builder) {
	focusStyle := lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	for i, f := range defaultFields {
		marker, style := "  ", subtitleStyle
		if i == m.focused {
			marker, style = "> ", focusStyle
		}
		fmt.Fprintf(b, "%s%s\n  %s\n\n", marker, style.Render(f.label+":"), m.inputs[i].View())
	}
	if m.err != nil {
		b.WriteString(fieldErrorStyle.Render("  Error: "+m.err.Error()) + "\n\n")
	}
	b.WriteString(helpStyle.Render("  tab/shift+tab: move  enter: next  ctrl+s: save  esc: cancel"))
}

func (m *SettingsModel) writeSummary(b *strings.Builder) {
	cfg := m.app.Config
	label := lipgloss.NewStyle().Bold(true).Width(24)
	value := lipgloss.NewStyle().Foreground(primaryColor)
	row := func(name, v string) {
		if v == "" {
			v = subtitleStyle.Render("(not set)")
		} else {
			v = value.Render(v)
		}
		fmt.Fprintf(b, "  %s %s\n", label.Render(name), v)
	}

	b.WriteString(subtitleStyle.Render("  Your Information") + "\n\n")
	row("Name:", cfg.User.Name)
	row("Email:", cfg.User.Email)
	row("Phone:", cfg.User.Phone)
	row("Address:", cfg.User.Address)
	row("Website:", cfg.User.Website)

	b.WriteString("\n" + subtitleStyle.Render("  Invoice Defaults") + "\n\n")
	row("Payment Terms:", cfg.Invoice.DefaultPaymentTerms)
	row("Tax Rate:", formatPercent(cfg.Invoice.DefaultTaxRate))

	b.WriteString("\n" + subtitleStyle.Render("  Integrations") + "\n\n")
	row("Email relay:", enabledLabel(cfg.Capabilities.EmailRelay))
	row("E-sign provider:", enabledLabel(cfg.Capabilities.ESignProvider))
	row("Signature storage:", cfg.Storage.Backend)

	b.WriteString("\n" + helpStyle.Render("  enter: edit settings"))
}

func enabledLabel(on bool) string {
	if on {
		return "enabled"
	}
	return "not configured"
}
