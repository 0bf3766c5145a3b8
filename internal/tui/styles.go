package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains all lipgloss styles for the dashboard.
type Styles struct {
	Title lipgloss.Style
	Timer lipgloss.Style

	ProviderLabel lipgloss.Style
	ProviderName  lipgloss.Style

	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style
	ProgressText   lipgloss.Style

	AttemptOK    lipgloss.Style
	AttemptError lipgloss.Style
	AttemptOther lipgloss.Style

	Footer    lipgloss.Style
	FooterKey lipgloss.Style
	Error     lipgloss.Style
}

// DefaultStyles returns the default dashboard styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Timer: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		ProviderLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		ProviderName:  lipgloss.NewStyle().Bold(true),

		ProgressFilled: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		ProgressEmpty:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		ProgressText:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),

		AttemptOK:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		AttemptError: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		AttemptOther: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),

		Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1),
		FooterKey: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// Icons used in the dashboard.
const (
	IconActive = "●"
	IconOK     = "✓"
	IconFailed = "✗"
)
