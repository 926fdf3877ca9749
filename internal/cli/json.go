package cli

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"time"
	"unicode/utf8"

	"github.com/charliek/webhook/internal/domain"
)

// jsonRecord is the --json form of a request. Text bodies are emitted as
// strings; anything that is not valid UTF-8 is base64 encoded.
type jsonRecord struct {
	ID           string       `json:"id"`
	Token        string       `json:"token"`
	Date         string       `json:"date"`
	Method       string       `json:"method"`
	Path         string       `json:"path"`
	Query        []string     `json:"query,omitempty"`
	Headers      []jsonHeader `json:"headers"`
	Body         *string      `json:"body,omitempty"`
	BodyEncoding string       `json:"body_encoding,omitempty"`
}

type jsonHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func toJSONRecord(rec domain.RequestRecord) jsonRecord {
	out := jsonRecord{
		ID:      rec.ID,
		Token:   rec.Token,
		Date:    rec.RawDate,
		Method:  rec.Method,
		Path:    rec.Path,
		Query:   rec.Query,
		Headers: make([]jsonHeader, len(rec.Headers)),
	}
	if !rec.Timestamp.IsZero() {
		out.Date = rec.Timestamp.Format(time.RFC3339Nano)
	}
	for i, h := range rec.Headers {
		out.Headers[i] = jsonHeader{Name: h.Name, Value: h.Value}
	}
	if rec.Body != nil {
		body := string(rec.Body)
		if !utf8.Valid(rec.Body) {
			body = base64.StdEncoding.EncodeToString(rec.Body)
			out.BodyEncoding = "base64"
		}
		out.Body = &body
	}
	return out
}

func toJSONRecords(records []domain.RequestRecord) []jsonRecord {
	out := make([]jsonRecord, len(records))
	for i, rec := range records {
		out[i] = toJSONRecord(rec)
	}
	return out
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
