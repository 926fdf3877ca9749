package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charliek/webhook/internal/constants"
)

// Header is one name/value pair of a captured request. Headers keep the order
// the service reported them in.
type Header struct {
	Name  string
	Value string
}

// RequestRecord is one HTTP request captured in a token's inbox. Records are
// read-only: the service appends them and the client only ever reads.
type RequestRecord struct {
	ID        string
	Token     string
	Timestamp time.Time
	// RawDate is the date exactly as the service sent it, used for display
	// when Timestamp could not be parsed.
	RawDate string
	Method  string
	Path    string
	Query   []string
	Headers []Header
	Body    []byte
}

// ShortID returns the abbreviated id shown in listings. It is cut on rune
// boundaries.
func (r RequestRecord) ShortID() string {
	if utf8.RuneCountInString(r.ID) <= constants.ShortIDLength {
		return r.ID
	}
	return string([]rune(r.ID)[:constants.ShortIDLength])
}

// Header returns the first value of the named header, matched case-insensitively.
func (r RequestRecord) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// ListParams holds parameters for listing an inbox.
//
// Fields:
//   - Token: the inbox to read.
//   - Limit: maximum number of most recent records to return.
//   - Method: when non-empty, only records with this method (case-insensitive) are returned.
type ListParams struct {
	Token  string
	Limit  int
	Method string
}
