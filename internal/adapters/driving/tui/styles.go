package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains the pre-configured lipgloss styles for the TUI.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Badge    lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the default style set.
func DefaultStyles() *Styles {
	var (
		primary    = lipgloss.Color("#7C3AED")
		foreground = lipgloss.Color("#CDD6F4")
		muted      = lipgloss.Color("#6C7086")
		warning    = lipgloss.Color("#F9E2AF")
		errColour  = lipgloss.Color("#F38BA8")
	)

	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		Normal:   lipgloss.NewStyle().Foreground(foreground),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(foreground).Background(primary),
		Error:    lipgloss.NewStyle().Foreground(errColour),
		Badge:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1E1E2E")).Background(warning).Padding(0, 1),
		Help:     lipgloss.NewStyle().Foreground(muted),
	}
}
