package tui

import "github.com/charmbracelet/lipgloss"

// Theme colors.
const (
	colorAccent    = "86"
	colorHighlight = "205"
	colorDanger    = "196"
	colorMuted     = "241"
)

var styles = struct {
	Info      lipgloss.Style
	Sidebar   lipgloss.Style
	Selected  lipgloss.Style
	Cursor    lipgloss.Style
	Item      lipgloss.Style
	Zoom      lipgloss.Style
	ZoomOn    lipgloss.Style
	Warning   lipgloss.Style
	Muted     lipgloss.Style
	ImageArea lipgloss.Style
}{
	Info: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorAccent)),
	Sidebar: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorHighlight)).
		Padding(0, 1),
	Selected: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorHighlight)),
	Cursor: lipgloss.NewStyle().
		Reverse(true),
	Item: lipgloss.NewStyle(),
	Zoom: lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorMuted)),
	ZoomOn: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorAccent)),
	Warning: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorDanger)),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorMuted)),
	ImageArea: lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center),
}
