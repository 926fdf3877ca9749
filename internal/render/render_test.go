package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charliek/webhook/internal/domain"
)

func newTestRenderer() *Renderer {
	return New(&bytes.Buffer{}, Options{Color: false, PreviewLength: 20})
}

func sampleRecord() domain.RequestRecord {
	return domain.RequestRecord{
		ID:        "3f2a9c1e-5b7d-4e0a-9c11-1a2b3c4d5e6f",
		Token:     "tok-123",
		Timestamp: time.Date(2024, 5, 1, 14, 3, 9, 0, time.UTC),
		Method:    "post",
		Path:      "/hooks/stripe",
		Headers: []domain.Header{
			{Name: "Content-Type", Value: "application/json"},
			{Name: "X-Signature", Value: "abc"},
		},
		Body: []byte(`{"event":"charge.succeeded","amount":500}`),
	}
}

func TestLogLines_Compact(t *testing.T) {
	r := newTestRenderer()
	lines := r.LogLines(sampleRecord(), domain.FilterSpec{})

	require.Len(t, lines, 1)
	line := lines[0]
	assert.True(t, strings.HasPrefix(line, "14:03:09 POST"), line)
	assert.Contains(t, line, "/hooks/stripe")
	assert.Contains(t, line, "(3f2a9c1e)")
	assert.Contains(t, line, `[BODY] {"event":"charge.suc…`)
	assert.NotContains(t, line, "\x1b[")
}

func TestLogLines_EmptyBody(t *testing.T) {
	rec := sampleRecord()
	rec.Body = nil
	lines := newTestRenderer().LogLines(rec, domain.FilterSpec{})
	assert.Contains(t, lines[0], "[BODY] (empty)")
}

func TestLogLines_WithHeaders(t *testing.T) {
	lines := newTestRenderer().LogLines(sampleRecord(), domain.FilterSpec{ShowHeaders: true})

	require.Len(t, lines, 4)
	assert.Equal(t, "  HEADERS", lines[1])
	assert.Equal(t, "    Content-Type: application/json", lines[2])
	assert.Equal(t, "    X-Signature: abc", lines[3])
}

func TestLogLines_WithFullBody(t *testing.T) {
	lines := newTestRenderer().LogLines(sampleRecord(), domain.FilterSpec{ShowFullBody: true})

	assert.Equal(t, "  REQUEST BODY", lines[1])
	assert.Equal(t, "  "+strings.Repeat("─", 30), lines[2])
	assert.Equal(t, "  {", lines[3])
	assert.Equal(t, `    "event": "charge.succeeded",`, lines[4])
	assert.Equal(t, `    "amount": 500`, lines[5])
	assert.Equal(t, "  }", lines[6])
	assert.Equal(t, "", lines[len(lines)-1])
}

func TestLogLines_HeadersBeforeBody(t *testing.T) {
	lines := newTestRenderer().LogLines(sampleRecord(), domain.FilterSpec{ShowHeaders: true, ShowFullBody: true})
	joined := strings.Join(lines, "\n")
	assert.Less(t, strings.Index(joined, "HEADERS"), strings.Index(joined, "REQUEST BODY"))
}

func TestLogLines_UnparsedDate(t *testing.T) {
	rec := sampleRecord()
	rec.Timestamp = time.Time{}
	rec.RawDate = "yesterday-ish"
	lines := newTestRenderer().LogLines(rec, domain.FilterSpec{})
	assert.True(t, strings.HasPrefix(lines[0], "yesterday-ish "))
}

func TestTailLines(t *testing.T) {
	r := newTestRenderer()
	rec := sampleRecord()
	lines := r.TailLines(rec, domain.FilterSpec{})

	require.Len(t, lines, 3)
	assert.Equal(t, NewRequestMarker, lines[0])
	assert.Equal(t, r.LogLines(rec, domain.FilterSpec{})[0], lines[1])
	assert.Equal(t, strings.Repeat("─", 80), lines[2])
}

func TestDetailLines(t *testing.T) {
	rec := sampleRecord()
	rec.Query = []string{"a=1", "b=2"}
	lines := newTestRenderer().DetailLines(rec)
	joined := strings.Join(lines, "\n")

	assert.Equal(t, DetailTitle, lines[0])
	assert.Contains(t, lines, "ID: 3f2a9c1e-5b7d-4e0a-9c11-1a2b3c4d5e6f")
	assert.Contains(t, lines, "Token: tok-123")
	assert.Contains(t, lines, "Date: 2024-05-01 14:03:09 UTC")
	assert.Contains(t, lines, "Method: POST")
	assert.Contains(t, lines, "Path: /hooks/stripe")
	assert.Contains(t, lines, "Content-Type: application/json")
	assert.Contains(t, lines, QueryTitle)
	assert.Contains(t, lines, "b=2")
	assert.Contains(t, lines, `  "event": "charge.succeeded",`)

	headers := strings.Index(joined, HeadersTitle)
	query := strings.Index(joined, QueryTitle)
	bodyIdx := strings.Index(joined, BodyTitle)
	assert.True(t, headers < query && query < bodyIdx)
}

func TestDetailLines_NoQueryNoHeaders(t *testing.T) {
	rec := sampleRecord()
	rec.Headers = nil
	rec.Body = []byte("plain text")
	lines := newTestRenderer().DetailLines(rec)

	assert.NotContains(t, lines, QueryTitle)
	assert.Contains(t, lines, "(none)")
	assert.Equal(t, "plain text", lines[len(lines)-1])
}

func TestDetailLines_FormBody(t *testing.T) {
	rec := sampleRecord()
	rec.Body = []byte("a=1&b=hello+world")
	lines := newTestRenderer().DetailLines(rec)
	assert.Equal(t, []string{"a: 1", "b: hello world"}, lines[len(lines)-2:])
}

func TestFilter(t *testing.T) {
	records := []domain.RequestRecord{
		{ID: "1", Method: "GET"},
		{ID: "2", Method: "POST"},
		{ID: "3", Method: "POST"},
		{ID: "4", Method: "PUT"},
	}

	f, err := domain.NewFilter(domain.FilterSpec{Method: "post"})
	require.NoError(t, err)
	got := Filter(records, f)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	assert.Len(t, Filter(records, nil), 4)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []string{"a", "", "b"}))
	assert.Equal(t, "a\n\nb\n", buf.String())
}

func TestBanners(t *testing.T) {
	r := newTestRenderer()

	banner := r.MonitorBanner("tok", domain.FilterSpec{Method: "post", PathPattern: "^/v1", PathRegex: true}, 3*time.Second)
	assert.Contains(t, banner, "Token: tok")
	assert.Contains(t, banner, "Filter: POST requests only")
	assert.Contains(t, banner, "Paths matching: ^/v1")
	assert.Contains(t, banner, "Refresh: every 3s")

	assert.Equal(t, []string{"No requests yet. Waiting for incoming webhooks..."}, r.InitialListingHeader(0))
	assert.Equal(t, []string{"Found 1 recent request:"}, r.InitialListingHeader(1))
	assert.Equal(t, []string{"Found 3 recent requests:"}, r.InitialListingHeader(3))

	assert.Equal(t, []string{"No requests found."}, r.LogsHeader(0, "tok", domain.FilterSpec{}))
	header := r.LogsHeader(2, "tok", domain.FilterSpec{Method: "get"})
	assert.Equal(t, "Found 2 requests for token tok", header[0])
	assert.Equal(t, "Filtered by method: GET", header[1])

	gen := r.GeneratedToken("tok", "https://svc/tok", true)
	assert.Contains(t, gen, "Webhook URL: https://svc/tok")
	assert.Contains(t, gen, "  webhook monitor --token tok")

	assert.Equal(t, "Error: boom", r.ErrorLine(errors.New("boom")))
}

func TestHighlight_ReturnsContent(t *testing.T) {
	out := highlight(`{"a": 1}`, "json")
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "1")
}

func TestSafe(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "application/json", "application/json"},
		{"tab kept", "a\tb", "a\tb"},
		{"csi", "\x1b[2J", `\x1b[2J`},
		{"osc with bell", "\x1b]0;title\a", `\x1b]0;title\x07`},
		{"newline", "a\nb", `a\x0ab`},
		{"c1 control", "a\u009bb", `a\x9bb`},
		{"unicode kept", "héllo 日本", "héllo 日本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safe(tt.in))
		})
	}
}

func hostileRecord() domain.RequestRecord {
	rec := sampleRecord()
	rec.Path = "/x\x1b]0;pwned\a"
	rec.Headers = []domain.Header{
		{Name: "X-Evil", Value: "\x1b[2J\x1b[31mred"},
		{Name: "X-\x1b[5mName", Value: "ok"},
	}
	rec.Query = []string{"q=\x1b[5m"}
	rec.Body = []byte("\x1b[2Jbody")
	return rec
}

func TestLogLines_EscapesControlSequences(t *testing.T) {
	lines := newTestRenderer().LogLines(hostileRecord(), domain.FilterSpec{ShowHeaders: true, ShowFullBody: true})

	for _, line := range lines {
		assert.NotContains(t, line, "\x1b", "line %q", line)
		assert.NotContains(t, line, "\a", "line %q", line)
	}
	assert.Contains(t, lines[0], `/x\x1b]0;pwned\x07`)
	assert.Contains(t, lines, `    X-Evil: \x1b[2J\x1b[31mred`)
	assert.Contains(t, lines, `    X-\x1b[5mName: ok`)
}

func TestDetailLines_EscapesControlSequences(t *testing.T) {
	lines := newTestRenderer().DetailLines(hostileRecord())

	for _, line := range lines {
		assert.NotContains(t, line, "\x1b", "line %q", line)
		assert.NotContains(t, line, "\a", "line %q", line)
	}
	assert.Contains(t, lines, `Path: /x\x1b]0;pwned\x07`)
	assert.Contains(t, lines, `X-Evil: \x1b[2J\x1b[31mred`)
	assert.Contains(t, lines, `q=\x1b[5m`)
	assert.Contains(t, lines, "(binary data, 8 bytes)")
}

func TestDetailLines_EscapesDecodedFormValues(t *testing.T) {
	rec := sampleRecord()
	rec.Body = []byte("a=%1b%5b2J&b=two")
	lines := newTestRenderer().DetailLines(rec)
	assert.Equal(t, []string{`a: \x1b[2J`, "b: two"}, lines[len(lines)-2:])
}

func TestDetailLines_CRLFTextBody(t *testing.T) {
	rec := sampleRecord()
	rec.Body = []byte("line one\r\nline two\r\n")
	lines := newTestRenderer().DetailLines(rec)
	assert.Contains(t, lines, "line one")
	assert.Contains(t, lines, "line two")
}
