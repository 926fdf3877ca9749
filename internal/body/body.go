// Package body renders captured request payloads for the terminal.
//
// Formatting never fails: full rendering tries a fixed list of strategies
// (JSON, then form-urlencoded) and falls back to the raw text. Payloads that
// are not valid UTF-8 text are replaced by a size placeholder so they cannot
// garble the terminal.
package body

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/charliek/webhook/internal/constants"
)

// Mode selects how much of a body is rendered
type Mode int

const (
	// ModeSummary renders a single truncated line
	ModeSummary Mode = iota
	// ModeFull renders the whole body, pretty-printed when possible
	ModeFull
)

// Kind describes what a body was recognized as
type Kind string

const (
	KindEmpty  Kind = "empty"
	KindJSON   Kind = "json"
	KindForm   Kind = "form"
	KindText   Kind = "text"
	KindBinary Kind = "binary"
)

// EmptyMarker is shown instead of an empty body
const EmptyMarker = "(empty)"

// Ellipsis marks a truncated summary
const Ellipsis = "…"

// Formatted is a rendered body
type Formatted struct {
	Kind Kind
	Text string
}

// Lines splits the rendered text into display lines
func (f Formatted) Lines() []string {
	return strings.Split(f.Text, "\n")
}

// Formatter renders bodies. The zero value uses the default preview length.
type Formatter struct {
	PreviewLength int // rune budget for summaries
}

// NewFormatter creates a formatter with the given summary length
func NewFormatter(previewLength int) *Formatter {
	return &Formatter{PreviewLength: previewLength}
}

// Format renders body in the requested mode
func (f *Formatter) Format(body []byte, mode Mode) Formatted {
	if mode == ModeFull {
		return f.Full(body)
	}
	return f.Summary(body)
}

// Summary renders body as one line of at most PreviewLength runes
func (f *Formatter) Summary(body []byte) Formatted {
	if isBlank(body) {
		return Formatted{Kind: KindEmpty, Text: EmptyMarker}
	}
	if isBinary(body) {
		return Formatted{Kind: KindBinary, Text: binaryPlaceholder(body)}
	}

	line := strings.Join(strings.Fields(string(body)), " ")
	return Formatted{Kind: KindText, Text: truncate(line, f.previewLength())}
}

// Full renders the complete body, trying each structured strategy in order
func (f *Formatter) Full(body []byte) Formatted {
	if isBlank(body) {
		return Formatted{Kind: KindEmpty, Text: EmptyMarker}
	}
	if isBinary(body) {
		return Formatted{Kind: KindBinary, Text: binaryPlaceholder(body)}
	}

	for _, s := range strategies {
		if out, ok := attempt(s, body); ok {
			return Formatted{Kind: s.kind, Text: out}
		}
	}

	return Formatted{Kind: KindText, Text: string(body)}
}

func (f *Formatter) previewLength() int {
	if f == nil || f.PreviewLength <= 0 {
		return constants.DefaultBodyPreviewLength
	}
	return f.PreviewLength
}

// truncate cuts s to limit runes, marking the cut with an ellipsis
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + Ellipsis
}

func isBlank(body []byte) bool {
	return len(strings.TrimSpace(string(body))) == 0
}

// isBinary reports whether body should not be written to a terminal as text
func isBinary(body []byte) bool {
	if !utf8.Valid(body) {
		return true
	}
	for _, r := range string(body) {
		switch r {
		case '\n', '\r', '\t', '\f':
			continue
		}
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

func binaryPlaceholder(body []byte) string {
	return fmt.Sprintf("(binary data, %s bytes)", humanize.Comma(int64(len(body))))
}
