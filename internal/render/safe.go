package render

import (
	"fmt"
	"strings"
	"unicode"
)

// safe escapes control characters in text chosen by whoever sent the webhook,
// so escape sequences in a header, path or query reach the terminal as
// visible \xNN text instead of being interpreted. Tabs are kept.
func safe(s string) string {
	if !strings.ContainsFunc(s, isUnsafe) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if isUnsafe(r) {
			fmt.Fprintf(&b, `\x%02x`, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUnsafe(r rune) bool {
	return r != '\t' && unicode.IsControl(r)
}
