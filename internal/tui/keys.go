package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Back key.Binding

	// Navigation
	Invoice    key.Binding
	Signatures key.Binding
	Settings   key.Binding

	// Actions
	Select   key.Binding
	Submit   key.Binding
	New      key.Binding
	Copy     key.Binding
	CopyLink key.Binding
	Refresh  key.Binding

	// Movement
	Up        key.Binding
	Down      key.Binding
	NextField key.Binding
	PrevField key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Invoice:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invoice")),
	Signatures: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "signatures")),
	Settings:   key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings")),
	Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Submit:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
	New:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new invoice")),
	Copy:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy template")),
	CopyLink:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "copy link")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	NextField:  key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	PrevField:  key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
}
