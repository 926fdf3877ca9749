package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Domain errors
var (
	ErrRequestNotFound = errors.New("request not found")
	ErrAmbiguousID     = errors.New("request id prefix is ambiguous")
	ErrInvalidPattern  = errors.New("invalid filter pattern")
	ErrInvalidCount    = errors.New("invalid request count")
	ErrConfigNotFound  = errors.New("config file not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// TransportError is returned by the service client when the service could not
// be reached, answered with a non-2xx status, or sent a payload that could not
// be decoded.
type TransportError struct {
	Op         string // "list", "decode", ...
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(" ")
	b.WriteString(e.URL)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the same request could succeed.
// Client errors (4xx) will not fix themselves.
func (e *TransportError) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// NotFoundError is returned when a request id is unknown to the service for a token.
type NotFoundError struct {
	Token       string
	ID          string
	Suggestions []string // ids that look like the one asked for
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("request with ID %s not found for token %s", e.ID, e.Token)
	if len(e.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(e.Suggestions, ", ") + "?)"
	}
	return msg
}

// Is makes errors.Is(err, ErrRequestNotFound) hold for NotFoundError values.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrRequestNotFound
}

// IsTransport reports whether err came from the transport layer.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
