package monitor

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charliek/webhook/internal/domain"
	"github.com/charliek/webhook/internal/render"
)

const testToken = "tok-123"

type step struct {
	batch []domain.RequestRecord
	err   error
}

// scriptedSource returns one scripted step per call and cancels the session
// once the script runs out.
type scriptedSource struct {
	mu     sync.Mutex
	steps  []step
	calls  []domain.ListParams
	cancel context.CancelFunc
}

func (s *scriptedSource) ListRequests(ctx context.Context, params domain.ListParams) ([]domain.RequestRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, params)
	if len(s.steps) == 0 {
		if s.cancel != nil {
			s.cancel()
		}
		return nil, context.Canceled
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	return st.batch, st.err
}

func rec(id, method string) domain.RequestRecord {
	return domain.RequestRecord{
		ID:        id,
		Token:     testToken,
		Timestamp: time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC),
		Method:    method,
		Path:      "/" + id,
	}
}

func batch(records ...domain.RequestRecord) []domain.RequestRecord {
	return records
}

type harness struct {
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	source  *scriptedSource
	monitor *Monitor
	events  []Event
	ctx     context.Context
}

func newHarness(t *testing.T, spec domain.FilterSpec, steps ...step) *harness {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := &harness{
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
		source: &scriptedSource{steps: steps, cancel: cancel},
		ctx:    ctx,
	}
	if spec.Limit == 0 {
		spec.Limit = 10
	}

	r := render.New(h.out, render.Options{PreviewLength: 50})
	m, err := New(h.source, r, h.out, Config{Token: testToken, Spec: spec, Interval: time.Millisecond},
		WithErrorWriter(h.errOut),
		WithEventHook(func(e Event) { h.events = append(h.events, e) }),
	)
	require.NoError(t, err)
	h.monitor = m
	return h
}

func (h *harness) states() []State {
	out := make([]State, len(h.events))
	for i, e := range h.events {
		out[i] = e.State
	}
	return out
}

func TestNew_Validation(t *testing.T) {
	r := render.New(&bytes.Buffer{}, render.Options{})
	src := &scriptedSource{}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing token", Config{Spec: domain.FilterSpec{Limit: 10}, Interval: time.Second}},
		{"zero interval", Config{Token: testToken, Spec: domain.FilterSpec{Limit: 10}}},
		{"zero limit", Config{Token: testToken, Interval: time.Second}},
		{"bad regex", Config{Token: testToken, Interval: time.Second, Spec: domain.FilterSpec{Limit: 10, PathPattern: "[", PathRegex: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(src, r, &bytes.Buffer{}, tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestRun_PrimingDoesNotReannounce(t *testing.T) {
	initial := batch(rec("r1", "GET"), rec("r2", "POST"), rec("r3", "PUT"))
	h := newHarness(t, domain.FilterSpec{}, step{batch: initial}, step{batch: initial})

	require.NoError(t, h.monitor.Run(h.ctx))

	out := h.out.String()
	assert.Contains(t, out, "Starting webhook monitor...")
	assert.Contains(t, out, "Found 3 recent requests:")
	assert.Contains(t, out, "(r1)")
	assert.Contains(t, out, "(r3)")
	assert.NotContains(t, out, render.NewRequestMarker)
	assert.Equal(t, 0, h.monitor.Announced())
	assert.Equal(t, 3, h.monitor.Seen())
	assert.Empty(t, h.errOut.String())
}

func TestRun_OneNewArrival(t *testing.T) {
	h := newHarness(t, domain.FilterSpec{},
		step{batch: batch(rec("r1", "GET"), rec("r2", "GET"))},
		step{batch: batch(rec("r1", "GET"), rec("r2", "GET"), rec("r3", "POST"))},
		step{batch: batch(rec("r1", "GET"), rec("r2", "GET"), rec("r3", "POST"))},
	)

	require.NoError(t, h.monitor.Run(h.ctx))

	out := h.out.String()
	assert.Equal(t, 1, strings.Count(out, render.NewRequestMarker))
	idx := strings.Index(out, render.NewRequestMarker)
	assert.Contains(t, out[idx:], "(r3)")
	assert.NotContains(t, out[idx:], "(r1)")
	assert.Equal(t, 1, h.monitor.Announced())
}

func TestRun_RecoversFromFailedPoll(t *testing.T) {
	failure := &domain.TransportError{Op: "list", URL: "http://svc/tok", StatusCode: http.StatusBadGateway}
	full := batch(rec("r1", "GET"), rec("r2", "POST"), rec("r3", "POST"))

	h := newHarness(t, domain.FilterSpec{},
		step{batch: batch(rec("r1", "GET"))},
		step{err: failure},
		step{batch: full},
		step{batch: full},
	)

	require.NoError(t, h.monitor.Run(h.ctx))

	out := h.out.String()
	assert.Equal(t, 2, strings.Count(out, render.NewRequestMarker))
	assert.Equal(t, 1, strings.Count(out, "(r2)"))
	assert.Equal(t, 1, strings.Count(out, "(r3)"))
	assert.Contains(t, h.errOut.String(), "Error:")
	assert.Contains(t, h.errOut.String(), "502")

	var failed []Event
	for _, e := range h.events {
		if e.Err != nil {
			failed = append(failed, e)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, StateSleeping, failed[0].State)
}

func TestRun_RetriesFailedPriming(t *testing.T) {
	h := newHarness(t, domain.FilterSpec{},
		step{err: errors.New("connection refused")},
		step{batch: batch(rec("r1", "GET"))},
	)

	require.NoError(t, h.monitor.Run(h.ctx))

	assert.Contains(t, h.out.String(), "Found 1 recent request:")
	assert.Equal(t, 1, strings.Count(h.errOut.String(), "connection refused"))
	assert.Equal(t, []State{StatePriming, StateSleeping, StatePriming, StateSleeping, StatePolling, StateCancelled}, h.states())
}

func TestRun_EmptyInbox(t *testing.T) {
	h := newHarness(t, domain.FilterSpec{}, step{batch: batch()})

	require.NoError(t, h.monitor.Run(h.ctx))
	assert.Contains(t, h.out.String(), "No requests yet. Waiting for incoming webhooks...")
}

func TestRun_CancelInterruptsSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &bytes.Buffer{}
	src := &scriptedSource{steps: []step{{batch: batch(rec("r1", "GET"))}}}
	m, err := New(src, render.New(out, render.Options{}), out,
		Config{Token: testToken, Spec: domain.FilterSpec{Limit: 5}, Interval: time.Hour},
		WithEventHook(func(e Event) {
			if e.State == StateSleeping {
				cancel()
			}
		}),
	)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop after cancellation")
	}

	assert.Len(t, src.calls, 1)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out.String()), "Monitor stopped."))
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := &bytes.Buffer{}
	src := &scriptedSource{}
	m, err := New(src, render.New(out, render.Options{}), out,
		Config{Token: testToken, Spec: domain.FilterSpec{Limit: 5}, Interval: time.Millisecond})
	require.NoError(t, err)

	require.NoError(t, m.Run(ctx))
	assert.Empty(t, src.calls)
	assert.Contains(t, out.String(), "Monitor stopped.")
}

func TestPrime_SeedsFilteredOutRecords(t *testing.T) {
	h := newHarness(t, domain.FilterSpec{Method: "post"},
		step{batch: batch(rec("r1", "GET"), rec("r2", "POST"))},
	)

	require.NoError(t, h.monitor.Prime(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Found 1 recent request:")
	assert.Contains(t, out, "(r2)")
	assert.NotContains(t, out, "(r1)")
	assert.Equal(t, 2, h.monitor.Seen())
}

func TestPoll_AppliesFilterToNewRecords(t *testing.T) {
	h := newHarness(t, domain.FilterSpec{Method: "POST"},
		step{batch: batch(rec("r1", "GET"))},
		step{batch: batch(rec("r1", "GET"), rec("r2", "GET"), rec("r3", "POST"), rec("r4", "post"))},
	)
	ctx := context.Background()

	require.NoError(t, h.monitor.Prime(ctx))
	announced, err := h.monitor.Poll(ctx)
	require.NoError(t, err)

	require.Len(t, announced, 2)
	assert.Equal(t, "r3", announced[0].ID)
	assert.Equal(t, "r4", announced[1].ID)
	assert.Equal(t, 4, h.monitor.Seen())
}

func TestPoll_PathFilter(t *testing.T) {
	h := newHarness(t, domain.FilterSpec{PathPattern: "^/r[23]$", PathRegex: true},
		step{batch: batch()},
		step{batch: batch(rec("r1", "GET"), rec("r2", "GET"), rec("r3", "GET"))},
	)
	ctx := context.Background()

	require.NoError(t, h.monitor.Prime(ctx))
	announced, err := h.monitor.Poll(ctx)
	require.NoError(t, err)

	require.Len(t, announced, 2)
	assert.Equal(t, "r2", announced[0].ID)
}

func TestPoll_FailureKeepsSeenSet(t *testing.T) {
	h := newHarness(t, domain.FilterSpec{},
		step{batch: batch(rec("r1", "GET"))},
		step{err: errors.New("timeout")},
	)
	ctx := context.Background()

	require.NoError(t, h.monitor.Prime(ctx))
	_, err := h.monitor.Poll(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, h.monitor.Seen())
}

func TestPoll_FetchesUnfilteredBatch(t *testing.T) {
	h := newHarness(t, domain.FilterSpec{Method: "POST", Limit: 25}, step{batch: batch()})

	require.NoError(t, h.monitor.Prime(context.Background()))
	require.Len(t, h.source.calls, 1)
	assert.Equal(t, domain.ListParams{Token: testToken, Limit: 25}, h.source.calls[0])
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "priming", StatePriming.String())
	assert.Equal(t, "cancelled", StateCancelled.String())
	assert.Equal(t, "unknown", State(99).String())
}
