package tui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	headerBg    = lipgloss.Color("235")
	statusBg    = lipgloss.Color("236")
	helpBg      = lipgloss.Color("234")
	errorColor  = lipgloss.Color("9")
	dimColor    = lipgloss.Color("8")
	accentColor = lipgloss.Color("14") // Cyan
	newColor    = lipgloss.Color("10") // Green
)

// Styles
var (
	// Header style
	headerStyle = lipgloss.NewStyle().
			Background(headerBg).
			Padding(0, 1).
			MarginBottom(1)

	// Status bar style
	statusStyle = lipgloss.NewStyle().
			Background(statusBg).
			Padding(0, 1)

	// Help overlay style
	helpStyle = lipgloss.NewStyle().
			Background(helpBg).
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	// Error indicator style
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(errorColor).
			Bold(true)

	// Dim style for secondary information
	dimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	// Token and filter values in the header
	accentStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	// Announcement counter
	newStyle = lipgloss.NewStyle().
			Foreground(newColor).
			Bold(true)
)
