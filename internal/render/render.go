// Package render turns request records into terminal lines.
//
// Every function here is a pure function of its inputs: a record and the
// command's FilterSpec go in, an ordered slice of lines comes out. Writing the
// lines is left to the caller.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/charliek/webhook/internal/body"
	"github.com/charliek/webhook/internal/constants"
	"github.com/charliek/webhook/internal/domain"
)

// Markers and section titles
const (
	NewRequestMarker = "NEW REQUEST"
	BodyTag          = "[BODY]"
	HeadersTitle     = "HEADERS"
	BodyTitle        = "REQUEST BODY"
	QueryTitle       = "QUERY PARAMETERS"
	DetailTitle      = "REQUEST DETAILS"
)

const indent = "  "

// Options configures a Renderer
type Options struct {
	// Color enables styling. Even when set, output to a writer that is not a
	// terminal stays plain.
	Color bool
	// PreviewLength is the rune budget of inline body summaries.
	PreviewLength int
}

// Renderer formats records for one output writer
type Renderer struct {
	styles    Styles
	highlight bool
	bodies    *body.Formatter
}

// New creates a renderer for output written to out
func New(out io.Writer, opts Options) *Renderer {
	lr := lipgloss.NewRenderer(out)
	if !opts.Color {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		styles:    newStyles(lr),
		highlight: lr.ColorProfile() != termenv.Ascii,
		bodies:    body.NewFormatter(opts.PreviewLength),
	}
}

// Styles returns the renderer's styles
func (r *Renderer) Styles() Styles {
	return r.styles
}

// Filter returns the records that pass filter, in service order
func Filter(records []domain.RequestRecord, filter *domain.Filter) []domain.RequestRecord {
	if filter == nil {
		return records
	}
	return filter.Apply(records)
}

// LogLines renders the compact listing of one record
func (r *Renderer) LogLines(rec domain.RequestRecord, spec domain.FilterSpec) []string {
	s := r.styles
	summary := r.bodies.Summary(rec.Body)

	lines := []string{fmt.Sprintf("%s %s %s %s %s",
		s.Dim.Render(formatClock(rec)),
		s.Method(rec.Method).Render(fmt.Sprintf("%-7s", safe(strings.ToUpper(rec.Method)))),
		s.Text.Render(displayPath(rec.Path)),
		s.Dim.Render("("+safe(rec.ShortID())+")"),
		s.Preview.Render(BodyTag+" "+summary.Text),
	)}

	if spec.ShowHeaders && len(rec.Headers) > 0 {
		lines = append(lines, indent+s.Section.Render(HeadersTitle))
		for _, h := range rec.Headers {
			lines = append(lines, indent+indent+s.Label.Render(safe(h.Name))+": "+safe(h.Value))
		}
	}

	if spec.ShowFullBody {
		lines = append(lines, indent+s.Section.Render(BodyTitle))
		lines = append(lines, indent+s.Dim.Render(rule("─", constants.SectionRuleWidth)))
		for _, line := range r.fullBody(rec.Body) {
			lines = append(lines, indent+line)
		}
		lines = append(lines, "")
	}

	return lines
}

// TailLines renders a record that arrived while monitoring
func (r *Renderer) TailLines(rec domain.RequestRecord, spec domain.FilterSpec) []string {
	lines := []string{r.styles.NewMark.Render(NewRequestMarker)}
	lines = append(lines, r.LogLines(rec, spec)...)
	lines = append(lines, r.Separator())
	return lines
}

// DetailLines renders every section of one record
func (r *Renderer) DetailLines(rec domain.RequestRecord) []string {
	s := r.styles
	lines := []string{
		s.Banner.Render(DetailTitle),
		s.Dim.Render(rule("═", constants.DetailRuleWidth)),
		r.field("ID", s.Text.Render(safe(rec.ID))),
		r.field("Token", s.Text.Render(safe(rec.Token))),
		r.field("Date", s.Text.Render(formatDate(rec))),
		r.field("Method", s.Method(rec.Method).Render(safe(strings.ToUpper(rec.Method)))),
		r.field("Path", s.Text.Render(displayPath(rec.Path))),
		"",
	}

	lines = append(lines, r.section(HeadersTitle)...)
	if len(rec.Headers) == 0 {
		lines = append(lines, s.Dim.Render("(none)"))
	}
	for _, h := range rec.Headers {
		lines = append(lines, s.Label.Render(safe(h.Name))+": "+safe(h.Value))
	}
	lines = append(lines, "")

	if len(rec.Query) > 0 {
		lines = append(lines, r.section(QueryTitle)...)
		for _, q := range rec.Query {
			lines = append(lines, safe(q))
		}
		lines = append(lines, "")
	}

	lines = append(lines, r.section(BodyTitle)...)
	lines = append(lines, r.fullBody(rec.Body)...)

	return lines
}

// Separator returns the rule printed between monitor announcements
func (r *Renderer) Separator() string {
	return r.styles.Dim.Render(rule("─", constants.SeparatorWidth))
}

func (r *Renderer) fullBody(raw []byte) []string {
	f := r.bodies.Full(raw)
	switch f.Kind {
	case body.KindEmpty, body.KindBinary:
		return []string{r.styles.Dim.Render(f.Text)}
	case body.KindJSON:
		if r.highlight {
			return strings.Split(highlight(f.Text, "json"), "\n")
		}
	}
	// Decoded form values and text bodies may still carry \r, \f or
	// percent-encoded escapes
	lines := f.Lines()
	for i, line := range lines {
		lines[i] = safe(strings.TrimSuffix(line, "\r"))
	}
	return lines
}

func (r *Renderer) field(label, value string) string {
	return r.styles.Label.Render(label) + ": " + value
}

func (r *Renderer) section(title string) []string {
	return []string{
		r.styles.Section.Render(title),
		r.styles.Dim.Render(rule("─", constants.SectionRuleWidth)),
	}
}

// Write writes lines to w, one per line
func Write(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func rule(char string, width int) string {
	return strings.Repeat(char, width)
}

func displayPath(path string) string {
	if path == "" {
		return "/"
	}
	return safe(path)
}

// formatClock returns the time of day a record arrived, or the raw date when
// the service sent something unparseable.
func formatClock(rec domain.RequestRecord) string {
	if rec.Timestamp.IsZero() {
		if rec.RawDate != "" {
			return safe(rec.RawDate)
		}
		return "--:--:--"
	}
	return rec.Timestamp.Format(constants.TimeFormat)
}

func formatDate(rec domain.RequestRecord) string {
	if rec.Timestamp.IsZero() {
		if rec.RawDate != "" {
			return safe(rec.RawDate)
		}
		return "unknown"
	}
	return rec.Timestamp.Format("2006-01-02 15:04:05 MST")
}
