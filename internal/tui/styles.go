package tui

import "github.com/charmbracelet/lipgloss"

var (
	purple = lipgloss.Color("#7D56F4")
	green  = lipgloss.Color("#04B575")
	grey   = lipgloss.Color("#888888")
	red    = lipgloss.Color("#FF0000")
	white  = lipgloss.Color("#FFFFFF")
)

var (
	// Header styling for build steps
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(white).
			Background(purple).
			Padding(0, 1)

	// Success styling
	SuccessStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	// Subtle text styling
	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)
