package tui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	primaryColor = lipgloss.Color("33")  // Azure
	accentColor  = lipgloss.Color("170") // Orchid, amounts
	mutedColor   = lipgloss.Color("245")
	successColor = lipgloss.Color("35")
	warningColor = lipgloss.Color("208")
	errorColor   = lipgloss.Color("160")
	borderColor  = lipgloss.Color("61")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle     = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("110"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Foreground(primaryColor)

	// boxStyle frames the totals panel and the copyable email template
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	appBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("222"))
)

// Invoice form and results
var (
	fieldErrorStyle = lipgloss.NewStyle().Foreground(errorColor)
	totalValueStyle = lipgloss.NewStyle().Foreground(accentColor)
	finalTotalStyle = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	statusStyle     = lipgloss.NewStyle().Foreground(successColor)
	warnStyle       = lipgloss.NewStyle().Foreground(warningColor)
)
