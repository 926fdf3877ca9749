package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/charliek/webhook/internal/monitor"
)

// maxLines is the maximum number of output lines to keep in memory
const maxLines = 1000

// maxErrorDisplayLen is the maximum length of error messages in the status bar
const maxErrorDisplayLen = 60

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeStringFilter
	ModeHelp
)

// Model is the bubbletea model for the interactive monitor
type Model struct {
	// Session
	cfg monitor.Config

	// Monitor output, oldest first
	lines []string

	// Latest monitor state
	state     monitor.State
	lastPoll  time.Time
	lastErr   error
	announced int
	seen      int
	stopped   bool

	// UI components
	viewport  viewport.Model
	textInput textinput.Model

	mode Mode

	// searchPattern hides output lines that do not contain it
	searchPattern string

	// Auto-scroll
	followMode bool

	// Dimensions
	width  int
	height int
	ready  bool

	now func() time.Time
}

// NewModel creates a new TUI model for a monitoring session
func NewModel(cfg monitor.Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.CharLimit = 100
	ti.Width = 40

	return Model{
		cfg:        cfg,
		lines:      make([]string, 0),
		state:      monitor.StatePriming,
		viewport:   viewport.New(0, 0),
		textInput:  ti,
		mode:       ModeNormal,
		followMode: true,
		now:        time.Now,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// OutputMsg carries lines written by the monitor
type OutputMsg []string

// EventMsg is sent on every monitor state transition
type EventMsg monitor.Event

// MonitorDoneMsg is sent when the monitor loop has returned
type MonitorDoneMsg struct {
	Err error
}

// TickMsg is sent periodically to refresh relative times
type TickMsg time.Time

// tickCmd returns a command that ticks periodically
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
