package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	dimColor     = lipgloss.Color("8")  // Gray
	textColor    = lipgloss.Color("15") // Bright white
	previewColor = lipgloss.Color("11") // Yellow
	labelColor   = lipgloss.Color("12") // Blue
	sectionColor = lipgloss.Color("14") // Cyan
	successColor = lipgloss.Color("10") // Green
	errorColor   = lipgloss.Color("9")  // Red

	// Method colors
	methodColors = map[string]lipgloss.Color{
		"GET":    lipgloss.Color("2"), // Green
		"POST":   lipgloss.Color("4"), // Blue
		"PUT":    lipgloss.Color("3"), // Yellow
		"DELETE": lipgloss.Color("1"), // Red
		"PATCH":  lipgloss.Color("5"), // Magenta
	}
	defaultMethodColor = lipgloss.Color("7")
)

// Styles holds the styles used for terminal output. They are bound to the
// lipgloss renderer of the output writer, so a writer that is not a terminal
// (or a disabled color profile) yields plain text.
type Styles struct {
	Dim      lipgloss.Style
	Text     lipgloss.Style
	Preview  lipgloss.Style
	Label    lipgloss.Style
	Section  lipgloss.Style
	Banner   lipgloss.Style
	NewMark  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Accent   lipgloss.Style
	methods  map[string]lipgloss.Style
	fallback lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) Styles {
	s := Styles{
		Dim:      r.NewStyle().Foreground(dimColor),
		Text:     r.NewStyle().Foreground(textColor),
		Preview:  r.NewStyle().Foreground(previewColor),
		Label:    r.NewStyle().Foreground(labelColor).Bold(true),
		Section:  r.NewStyle().Foreground(sectionColor).Bold(true),
		Banner:   r.NewStyle().Foreground(successColor).Bold(true),
		NewMark:  r.NewStyle().Foreground(successColor).Bold(true),
		Error:    r.NewStyle().Foreground(errorColor).Bold(true),
		Warning:  r.NewStyle().Foreground(previewColor),
		Accent:   r.NewStyle().Foreground(sectionColor),
		methods:  make(map[string]lipgloss.Style, len(methodColors)),
		fallback: r.NewStyle().Foreground(defaultMethodColor).Bold(true),
	}
	for method, color := range methodColors {
		s.methods[method] = r.NewStyle().Foreground(color).Bold(true)
	}
	return s
}

// Method returns the style for an HTTP method
func (s Styles) Method(method string) lipgloss.Style {
	if style, ok := s.methods[strings.ToUpper(method)]; ok {
		return style
	}
	return s.fallback
}
