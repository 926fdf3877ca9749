package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charliek/webhook/internal/monitor"
)

// nearBottomThreshold is the scroll percentage (0.0-1.0) at which we consider
// the viewport to be "near" the bottom for auto-follow purposes.
const nearBottomThreshold = 0.98

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
		m.updateViewport()

	case OutputMsg:
		m.handleOutput(msg)

	case EventMsg:
		m.handleEvent(monitor.Event(msg))

	case MonitorDoneMsg:
		m.stopped = true
		m.state = monitor.StateCancelled
		if msg.Err != nil {
			m.lastErr = msg.Err
		}

	case TickMsg:
		cmds = append(cmds, tickCmd())
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey processes keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeStringFilter:
		cmd := m.handleStringFilterKey(msg)
		return m, cmd
	case ModeHelp:
		m.handleHelpKey(msg)
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	m.handleNavigationKey(msg)
	return m, nil
}

// handleWindowSize handles window resize messages
func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	headerHeight := 2 // Session header
	footerHeight := 2 // Status bar
	verticalMargins := headerHeight + footerHeight

	viewportHeight := msg.Height - verticalMargins
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	if !m.ready {
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight
		m.viewport.YPosition = headerHeight
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight
	}
}

// handleOutput appends monitor output, keeping the newest maxLines
func (m *Model) handleOutput(lines []string) {
	// Check if we're at/near bottom BEFORE adding new content
	wasNearBottom := m.isNearBottom()

	m.lines = append(m.lines, lines...)
	// Keep only last lines - create new slice to release memory from old lines
	if len(m.lines) > maxLines {
		kept := make([]string, maxLines)
		copy(kept, m.lines[len(m.lines)-maxLines:])
		m.lines = kept
	}
	m.updateViewport()

	if wasNearBottom {
		m.followMode = true
		m.viewport.GotoBottom()
	} else if m.followMode {
		m.viewport.GotoBottom()
	}
}

// handleEvent records the monitor's latest state for the status bar
func (m *Model) handleEvent(e monitor.Event) {
	m.state = e.State
	m.announced = e.Announced
	m.seen = e.Seen

	switch e.State {
	case monitor.StateRendering:
		m.lastPoll = e.At
		m.lastErr = nil
	case monitor.StateSleeping:
		if e.Err != nil {
			m.lastErr = e.Err
		}
	case monitor.StateCancelled:
		m.stopped = true
	}
}

// handleStringFilterKey handles keys in string filter mode
func (m *Model) handleStringFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.textInput.Blur()
		m.searchPattern = ""
		m.updateViewport()
		return nil

	case "enter":
		m.searchPattern = m.textInput.Value()
		m.mode = ModeNormal
		m.textInput.Blur()
		m.updateViewport()
		return nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	// Live update filter
	m.searchPattern = m.textInput.Value()
	m.updateViewport()
	return cmd
}

// handleHelpKey closes the help overlay on any key
func (m *Model) handleHelpKey(tea.KeyMsg) {
	m.mode = ModeNormal
}

// handleNavigationKey handles common navigation keys
// Returns true if the key was handled
func (m *Model) handleNavigationKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "?":
		m.mode = ModeHelp
		return true

	case "/", "s":
		m.mode = ModeStringFilter
		m.textInput.SetValue("")
		m.textInput.Focus()
		return true

	case "esc":
		m.searchPattern = ""
		m.updateViewport()
		return true

	case "c":
		m.lines = m.lines[:0]
		m.updateViewport()
		return true

	case "up", "k":
		m.viewport.LineUp(1)
		m.followMode = false
		return true

	case "down", "j":
		m.viewport.LineDown(1)
		return true

	case "pgup":
		m.viewport.HalfViewUp()
		m.followMode = false
		return true

	case "pgdown":
		m.viewport.HalfViewDown()
		return true

	case "home", "g":
		m.viewport.GotoTop()
		m.followMode = false
		return true

	case "end", "G":
		m.viewport.GotoBottom()
		m.followMode = true
		return true

	case "F":
		m.followMode = !m.followMode
		if m.followMode {
			m.viewport.GotoBottom()
		}
		return true
	}

	return false
}

// isNearBottom checks if the viewport is at or near the bottom
func (m *Model) isNearBottom() bool {
	if m.viewport.AtBottom() {
		return true
	}
	return m.viewport.ScrollPercent() >= nearBottomThreshold
}

// updateViewport updates the viewport content
func (m *Model) updateViewport() {
	m.viewport.SetContent(strings.Join(m.filteredLines(), "\n"))
}

// filteredLines returns the output lines that match the string filter
func (m *Model) filteredLines() []string {
	if m.searchPattern == "" {
		return m.lines
	}

	var result []string
	for _, line := range m.lines {
		if containsIgnoreCase(line, m.searchPattern) {
			result = append(result, line)
		}
	}
	return result
}

// containsIgnoreCase performs a case-insensitive substring search
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
