// Package webhooktest provides an in-process fake of the webhook-capture
// service for tests.
package webhooktest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/charliek/webhook/internal/domain"
)

// Call records one request the fake service received
type Call struct {
	Token string
	Count int
	Path  string
}

// Service is a fake webhook-capture service. Records are kept per token in
// arrival order; the log endpoint returns the most recent ones.
type Service struct {
	server *httptest.Server

	mu       sync.Mutex
	inboxes  map[string][]domain.RequestRecord
	failures []int
	raw      map[string]string
	calls    []Call
	onCall   func(Call)
}

// NewService starts a fake service. It is closed with Close.
func NewService() *Service {
	s := &Service{
		inboxes: make(map[string][]domain.RequestRecord),
		raw:     make(map[string]string),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/{token}/log/{count}", s.handleLog)

	s.server = httptest.NewServer(r)
	return s
}

// URL returns the base URL of the fake service
func (s *Service) URL() string {
	return s.server.URL
}

// Close shuts the fake service down
func (s *Service) Close() {
	s.server.Close()
}

// Add appends records to a token's inbox. Records with an empty Token are
// filed under token.
func (s *Service) Add(token string, records ...domain.RequestRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		if rec.Token == "" {
			rec.Token = token
		}
		s.inboxes[token] = append(s.inboxes[token], rec)
	}
}

// FailNext makes the next len(statuses) log requests answer with the given
// statuses, in order, regardless of token.
func (s *Service) FailNext(statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, statuses...)
}

// SetRaw makes log requests for token answer 200 with body verbatim
func (s *Service) SetRaw(token, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[token] = body
}

// OnCall registers fn to run after each log request is recorded. fn runs on
// the server goroutine.
func (s *Service) OnCall(fn func(Call)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCall = fn
}

// Calls returns the log requests received so far
func (s *Service) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Service) handleLog(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	count, err := strconv.Atoi(chi.URLParam(r, "count"))
	if err != nil || count < 1 {
		http.Error(w, "invalid count", http.StatusBadRequest)
		return
	}

	call := Call{Token: token, Count: count, Path: r.URL.Path}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	onCall := s.onCall
	var status int
	if len(s.failures) > 0 {
		status = s.failures[0]
		s.failures = s.failures[1:]
	}
	raw, hasRaw := s.raw[token]
	inbox, known := s.inboxes[token]
	if len(inbox) > count {
		inbox = inbox[len(inbox)-count:]
	}
	records := make([]domain.RequestRecord, len(inbox))
	copy(records, inbox)
	s.mu.Unlock()

	if onCall != nil {
		onCall(call)
	}

	switch {
	case status != 0:
		http.Error(w, http.StatusText(status), status)
		return
	case hasRaw:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(raw))
		return
	case !known:
		http.Error(w, "token not found", http.StatusNotFound)
		return
	}

	payload := make([]wireRequest, len(records))
	for i, rec := range records {
		payload[i] = toWire(rec)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

type wireRequest struct {
	ID            string      `json:"id"`
	TokenID       string      `json:"token_id"`
	Date          string      `json:"date"`
	MessageObject wireMessage `json:"message_object"`
}

type wireMessage struct {
	Method          string         `json:"method"`
	Value           string         `json:"value"`
	Headers         orderedHeaders `json:"headers"`
	QueryParameters []string       `json:"query_parameters"`
	Body            *string        `json:"body,omitempty"`
}

// orderedHeaders encodes as a JSON object of name to list of values, keeping
// the order in which names first appear.
type orderedHeaders []domain.Header

func (h orderedHeaders) MarshalJSON() ([]byte, error) {
	var names []string
	values := make(map[string][]string)
	for _, hdr := range h {
		if _, ok := values[hdr.Name]; !ok {
			names = append(names, hdr.Name)
		}
		values[hdr.Name] = append(values[hdr.Name], hdr.Value)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func toWire(rec domain.RequestRecord) wireRequest {
	date := rec.RawDate
	if date == "" {
		date = rec.Timestamp.UTC().Format(time.RFC3339Nano)
	}

	path := rec.Path
	if path == "/" {
		path = ""
	}

	w := wireRequest{
		ID:      rec.ID,
		TokenID: rec.Token,
		Date:    date,
		MessageObject: wireMessage{
			Method:          rec.Method,
			Value:           "/" + rec.Token + path,
			Headers:         orderedHeaders(rec.Headers),
			QueryParameters: rec.Query,
		},
	}
	if rec.Query == nil {
		w.MessageObject.QueryParameters = []string{}
	}
	if rec.Body != nil {
		body := string(rec.Body)
		w.MessageObject.Body = &body
	}
	return w
}

// Record builds a RequestRecord for tests. Headers are given as alternating
// name, value strings.
func Record(id, method, path string, ts time.Time, body string, headers ...string) domain.RequestRecord {
	rec := domain.RequestRecord{
		ID:        id,
		Timestamp: ts,
		Method:    method,
		Path:      path,
	}
	for i := 0; i+1 < len(headers); i += 2 {
		rec.Headers = append(rec.Headers, domain.Header{Name: headers[i], Value: headers[i+1]})
	}
	if body != "" {
		rec.Body = []byte(body)
	}
	return rec
}
