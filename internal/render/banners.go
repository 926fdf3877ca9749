package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charliek/webhook/internal/domain"
)

// MonitorBanner is printed once when live monitoring starts
func (r *Renderer) MonitorBanner(token string, spec domain.FilterSpec, interval time.Duration) []string {
	s := r.styles
	lines := []string{
		s.Banner.Render("Starting webhook monitor..."),
		"Token: " + s.Text.Render(token),
	}
	lines = append(lines, r.filterLines(spec, "Filter: %s requests only")...)
	lines = append(lines,
		"Refresh: every "+interval.String(),
		"Press "+s.Error.Render("Ctrl+C")+" to quit",
		r.Separator(),
	)
	return lines
}

// InitialListingHeader introduces the records shown before live tailing
func (r *Renderer) InitialListingHeader(count int) []string {
	if count == 0 {
		return []string{r.styles.Warning.Render("No requests yet. Waiting for incoming webhooks...")}
	}
	return []string{fmt.Sprintf("%s %d recent %s:", r.styles.Label.Render("Found"), count, plural(count, "request", "requests"))}
}

// LogsHeader introduces a one-shot listing
func (r *Renderer) LogsHeader(count int, token string, spec domain.FilterSpec) []string {
	if count == 0 {
		return []string{r.styles.Warning.Render("No requests found.")}
	}
	lines := []string{fmt.Sprintf("%s %d %s for token %s",
		r.styles.Label.Render("Found"), count, plural(count, "request", "requests"), r.styles.Text.Render(token))}
	lines = append(lines, r.filterLines(spec, "Filtered by method: %s")...)
	lines = append(lines, r.Separator())
	return lines
}

// LogsFooter points at the detail view
func (r *Renderer) LogsFooter() []string {
	return []string{
		"",
		r.styles.Warning.Render("Use 'webhook show --token <token> --request-id <id>' for full details"),
	}
}

// GeneratedToken announces a freshly generated token
func (r *Renderer) GeneratedToken(token, inboxURL string, withExamples bool) []string {
	s := r.styles
	lines := []string{
		s.Banner.Render("New webhook token generated!"),
		"",
		r.field("Token", s.Text.Render(token)),
		r.field("Webhook URL", s.Text.Render(inboxURL)),
		"",
	}
	if withExamples {
		lines = append(lines,
			s.Warning.Render("Usage examples:"),
			"  webhook monitor --token "+token,
			"  webhook logs --token "+token,
			"",
		)
	}
	return lines
}

// ErrorLine renders an error for the error stream
func (r *Renderer) ErrorLine(err error) string {
	return r.styles.Error.Render("Error:") + " " + err.Error()
}

// Farewell is printed when the monitor stops
func (r *Renderer) Farewell() string {
	return r.styles.Dim.Render("Monitor stopped.")
}

func (r *Renderer) filterLines(spec domain.FilterSpec, methodFormat string) []string {
	var lines []string
	if spec.Method != "" {
		lines = append(lines, fmt.Sprintf(methodFormat, r.styles.Accent.Render(strings.ToUpper(spec.Method))))
	}
	if spec.PathPattern != "" {
		kind := "containing"
		if spec.PathRegex {
			kind = "matching"
		}
		lines = append(lines, fmt.Sprintf("Paths %s: %s", kind, r.styles.Accent.Render(spec.PathPattern)))
	}
	return lines
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
