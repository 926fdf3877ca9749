package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case ModeHelp:
		return m.helpView()
	default:
		return m.mainView()
	}
}

// mainView renders the main TUI layout
func (m Model) mainView() string {
	var sb strings.Builder

	sb.WriteString(m.sessionHeader())
	sb.WriteString("\n")

	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	sb.WriteString(m.statusBar())

	return sb.String()
}

// sessionHeader renders the token and filter of the session
func (m Model) sessionHeader() string {
	items := []string{
		"webhook monitor",
		"token " + accentStyle.Render(m.cfg.Token),
	}
	if m.cfg.Spec.Method != "" {
		items = append(items, "method "+accentStyle.Render(strings.ToUpper(m.cfg.Spec.Method)))
	}
	if m.cfg.Spec.PathPattern != "" {
		items = append(items, "path "+accentStyle.Render(m.cfg.Spec.PathPattern))
	}
	items = append(items, dimStyle.Render("every "+m.cfg.Interval.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(items, "  "))
	return headerStyle.Render(header)
}

// statusBar renders the bottom status bar
func (m Model) statusBar() string {
	var left, right string

	switch m.mode {
	case ModeStringFilter:
		left = "String filter: " + m.textInput.View()
	default:
		if m.searchPattern != "" {
			left = fmt.Sprintf("Filter: %s (ESC to clear)", m.searchPattern)
		} else {
			left = "? for help | " + m.pollInfo()
		}
		if m.lastErr != nil {
			left += " " + errorStyle.Render(" "+truncateError(m.lastErr, maxErrorDisplayLen)+" ")
		}
	}

	followIndicator := "[FOLLOW]"
	if !m.followMode {
		followIndicator = "[PAUSED]"
	}
	right = fmt.Sprintf("%s %s %d/%d lines",
		newStyle.Render(fmt.Sprintf("%d new", m.announced)),
		followIndicator,
		len(m.filteredLines()),
		len(m.lines),
	)

	leftWidth := m.width - lipgloss.Width(right) - 4
	if leftWidth < 0 {
		leftWidth = 0
	}

	leftPart := statusStyle.Width(leftWidth).Render(left)
	rightPart := statusStyle.Render(right)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPart, "  ", rightPart)
}

// pollInfo describes the monitor state for the status bar
func (m Model) pollInfo() string {
	if m.stopped {
		return "stopped"
	}
	if m.lastPoll.IsZero() {
		return m.state.String() + "..."
	}
	return "polled " + humanize.RelTime(m.lastPoll, m.now(), "ago", "from now")
}

// helpView renders the help overlay
func (m Model) helpView() string {
	help := `
Webhook Monitor

Navigation:
  j/↓        Scroll down
  k/↑        Scroll up (pauses auto-follow)
  g/Home     Go to top (pauses auto-follow)
  G/End      Go to bottom (resumes auto-follow)
  PgUp/PgDn  Page up/down
  F          Toggle auto-follow mode

Filtering:
  / or s     String filter (substring)
  ESC        Clear filter

Other:
  c          Clear the screen
  ?          Toggle help
  q/Ctrl+C   Stop monitoring and quit

Press any key to close help...
`

	return helpStyle.Render(help)
}

// truncateError truncates an error message to maxLen characters
func truncateError(err error, maxLen int) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > maxLen {
		return msg[:maxLen-3] + "..."
	}
	return msg
}
