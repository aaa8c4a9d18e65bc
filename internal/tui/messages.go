package tui

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// OpenSettingsFormMsg tells the settings screen to open its edit form
type OpenSettingsFormMsg struct{}

// DefaultsChangedMsg is sent after the freelancer defaults were saved
type DefaultsChangedMsg struct{}

// firstRunCheckMsg reports whether the freelancer block is configured
type firstRunCheckMsg struct {
	configured bool
}
