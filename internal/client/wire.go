package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charliek/webhook/internal/domain"
)

// wireRequest is one captured request as the service encodes it
type wireRequest struct {
	ID            string      `json:"id"`
	TokenID       string      `json:"token_id"`
	Date          string      `json:"date"`
	MessageObject wireMessage `json:"message_object"`
}

type wireMessage struct {
	Method          string      `json:"method"`
	Value           string      `json:"value"` // full request path, token included
	Headers         wireHeaders `json:"headers"`
	QueryParameters wireQuery   `json:"query_parameters"`
	Body            *string     `json:"body"`
}

// wireHeaders decodes the service's header object without losing key order.
// Values may be a list of strings or a single string.
type wireHeaders []domain.Header

func (h *wireHeaders) UnmarshalJSON(data []byte) error {
	pairs, err := decodeOrderedObject(data)
	if err != nil {
		return fmt.Errorf("headers: %w", err)
	}
	*h = pairs
	return nil
}

// wireQuery accepts either a list of "name=value" strings or an object of
// name to value(s).
type wireQuery []string

func (q *wireQuery) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*q = nil
		return nil
	case trimmed[0] == '{':
		pairs, err := decodeOrderedObject(trimmed)
		if err != nil {
			return fmt.Errorf("query_parameters: %w", err)
		}
		params := make([]string, len(pairs))
		for i, p := range pairs {
			params[i] = p.Name + "=" + p.Value
		}
		*q = params
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return fmt.Errorf("query_parameters: %w", err)
	}
	params := make([]string, 0, len(items))
	for _, item := range items {
		params = append(params, rawString(item))
	}
	*q = params
	return nil
}

// decodeOrderedObject walks a JSON object token by token so that keys come
// back in document order. Repeated keys and array values produce one pair per
// value.
func decodeOrderedObject(data []byte) ([]domain.Header, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var pairs []domain.Header
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		for _, value := range rawValues(raw) {
			pairs = append(pairs, domain.Header{Name: name, Value: value})
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// rawValues flattens a header value: an array yields each element, null yields
// nothing, anything else yields itself.
func rawValues(raw json.RawMessage) []string {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err == nil {
			values := make([]string, 0, len(items))
			for _, item := range items {
				values = append(values, rawString(item))
			}
			return values
		}
	}
	return []string{rawString(trimmed)}
}

// rawString returns the string a JSON string literal holds, or the literal
// text of any other JSON value.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// toRecord converts the wire form into a RequestRecord
func (w wireRequest) toRecord() domain.RequestRecord {
	rec := domain.RequestRecord{
		ID:      w.ID,
		Token:   w.TokenID,
		RawDate: w.Date,
		Method:  strings.ToUpper(w.MessageObject.Method),
		Path:    extractPath(w.MessageObject.Value, w.TokenID),
		Query:   []string(w.MessageObject.QueryParameters),
		Headers: []domain.Header(w.MessageObject.Headers),
	}
	if ts, err := time.Parse(time.RFC3339Nano, w.Date); err == nil {
		rec.Timestamp = ts
	}
	if w.MessageObject.Body != nil {
		rec.Body = []byte(*w.MessageObject.Body)
	}
	return rec
}

// extractPath returns what follows the token in the captured path, so
// "/<token>/orders" becomes "/orders" and "/<token>" becomes "/".
func extractPath(fullPath, token string) string {
	if token == "" {
		return fullPath
	}
	idx := strings.Index(fullPath, token)
	if idx < 0 {
		return fullPath
	}
	after := fullPath[idx+len(token):]
	if after == "" {
		return "/"
	}
	return after
}
