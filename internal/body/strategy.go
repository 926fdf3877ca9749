package body

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/tidwall/pretty"
)

// strategy is one fallible way of pretty-printing a body
type strategy struct {
	kind   Kind
	format func(body []byte) (string, bool)
}

// strategies are tried in order by Formatter.Full
var strategies = []strategy{
	{kind: KindJSON, format: formatJSON},
	{kind: KindForm, format: formatForm},
}

var prettyOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: false,
}

// attempt runs one strategy, treating a panic as a failed attempt
func attempt(s strategy, body []byte) (out string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			out, ok = "", false
		}
	}()
	return s.format(body)
}

// formatJSON pretty-prints valid JSON keeping keys in the order received
func formatJSON(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return "", false
	}
	out := pretty.PrettyOptions(trimmed, prettyOptions)
	return strings.TrimRight(string(out), "\n"), true
}

// formatForm renders an application/x-www-form-urlencoded body as key: value lines
func formatForm(body []byte) (string, bool) {
	raw := strings.TrimSpace(string(body))
	if !strings.Contains(raw, "=") || strings.ContainsAny(raw, " \t\r\n") {
		return "", false
	}

	pairs := strings.Split(raw, "&")
	lines := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return "", false
		}
		k, err := url.QueryUnescape(key)
		if err != nil {
			return "", false
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return "", false
		}
		lines = append(lines, k+": "+v)
	}
	if len(lines) == 0 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}
