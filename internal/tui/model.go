package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/invoicedesk/internal/app"
)

// Screen identifies one of the top-level views
type Screen int

const (
	ScreenInvoice Screen = iota
	ScreenSignatures
	ScreenSettings
)

var screenNames = map[Screen]string{
	ScreenInvoice:    "Invoice",
	ScreenSignatures: "Signatures",
	ScreenSettings:   "Settings",
}

func (s Screen) String() string {
	if name, ok := screenNames[s]; ok {
		return name
	}
	return "Unknown"
}

// screenFactories build a screen the first time it is shown
var screenFactories = map[Screen]func(*app.App) tea.Model{
	ScreenInvoice:    NewInvoiceModel,
	ScreenSignatures: NewSignaturesModel,
	ScreenSettings:   NewSettingsModel,
}

// InputCapturer is implemented by screens with a focused text form.
// While it reports true the root model leaves all keys to the screen.
type InputCapturer interface {
	IsCapturingInput() bool
}

type busyScreen interface {
	Busy() bool
}

// Model is the root program model. It owns navigation and the frame,
// and forwards everything else to the active screen.
type Model struct {
	app    *app.App
	active Screen
	views  map[Screen]tea.Model

	width, height int

	firstRunDone bool
	err          error
	warning      string
}

// New returns the root model showing the invoice form
func New(a *app.App) Model {
	return Model{
		app:    a,
		active: ScreenInvoice,
		views:  map[Screen]tea.Model{ScreenInvoice: NewInvoiceModel(a)},
	}
}

func (m Model) Init() tea.Cmd {
	user := m.app.Config.User
	configured := func() tea.Msg {
		return firstRunCheckMsg{configured: user.Name != "" && user.Email != ""}
	}
	return tea.Batch(configured, m.views[ScreenInvoice].Init())
}

// show makes screen active. A screen built now returns its Init command;
// the signatures list reloads on every later visit.
func (m *Model) show(screen Screen) tea.Cmd {
	m.active = screen
	if _, ok := m.views[screen]; !ok {
		view := screenFactories[screen](m.app)
		m.views[screen] = view
		return view.Init()
	}
	if screen == ScreenSignatures {
		return func() tea.Msg { return RefreshDataMsg{} }
	}
	return nil
}

func (m *Model) capturing() bool {
	ic, ok := m.views[m.active].(InputCapturer)
	return ok && ic.IsCapturingInput()
}

func (m *Model) busy() bool {
	b, ok := m.views[ScreenInvoice].(busyScreen)
	return ok && b.Busy()
}

// forward delivers msg to screen if it exists
func (m *Model) forward(screen Screen, msg tea.Msg) tea.Cmd {
	view, ok := m.views[screen]
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	m.views[screen], cmd = view.Update(msg)
	return cmd
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		m.warning = ""
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.capturing() {
			if cmd, handled := m.navigate(msg); handled {
				return m, cmd
			}
		}

	case firstRunCheckMsg:
		first := !m.firstRunDone
		m.firstRunDone = true
		if first && !msg.configured {
			return m, tea.Batch(
				m.show(ScreenSettings),
				func() tea.Msg { return OpenSettingsFormMsg{} },
			)
		}
		return m, nil

	case SwitchScreenMsg:
		return m, m.show(msg.Screen)

	// both belong to the invoice form whichever screen is showing
	case DefaultsChangedMsg, invoiceActionMsg:
		return m, m.forward(ScreenInvoice, msg)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	return m, m.forward(m.active, msg)
}

// navigate handles the global keys. handled is false for keys the
// active screen should receive.
func (m *Model) navigate(msg tea.KeyMsg) (cmd tea.Cmd, handled bool) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Quit):
		if m.busy() {
			m.warning = "An invoice action is still running. Wait for it to finish before quitting."
			return nil, true
		}
		return tea.Quit, true
	case key.Matches(msg, DefaultKeyMap.Invoice):
		return m.show(ScreenInvoice), true
	case key.Matches(msg, DefaultKeyMap.Signatures):
		return m.show(ScreenSignatures), true
	case key.Matches(msg, DefaultKeyMap.Settings):
		return m.show(ScreenSettings), true
	}
	return nil, false
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	content := "Loading..."
	if view, ok := m.views[m.active]; ok {
		content = view.View()
	}

	nav := "[I]nvoice  [S]ignatures  [,] Settings  [Q]uit"
	if m.capturing() {
		nav = "esc: leave form to navigate  ctrl+c: quit"
	}

	var notice string
	switch {
	case m.warning != "":
		notice = "\n" + warnStyle.Render(m.warning)
	case m.err != nil:
		notice = "\n" + fieldErrorStyle.Render("Error: "+m.err.Error())
	}

	return m.frame(
		headerStyle.Render("invoicedesk - "+m.active.String()),
		content+notice,
		footerStyle.Render(nav),
	)
}

// frame draws the bordered window centered in the terminal
func (m Model) frame(header, body, footer string) string {
	inner := max(m.width-6, 20) // border and horizontal padding
	rule := lipgloss.NewStyle().Foreground(borderColor).Render(strings.Repeat("─", max(inner-12, 10)))

	page := fmt.Sprintf("%s\n%s\n\n%s\n\n%s\n%s", header, rule, body, rule, footer)
	window := appBorderStyle.Width(inner).Height(m.height - 4)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, window.Render(page))
}

// Run starts the TUI and blocks until the user quits. Console log output
// is held back while the alt screen is up and printed on exit.
func Run(a *app.App) error {
	if a.Console != nil {
		a.Console.Hold()
		defer a.Console.Release()
	}
	_, err := tea.NewProgram(New(a), tea.WithAltScreen()).Run()
	return err
}
