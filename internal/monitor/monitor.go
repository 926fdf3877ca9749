// Package monitor implements the live polling loop behind `webhook monitor`.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charliek/webhook/internal/domain"
	"github.com/charliek/webhook/internal/render"
	"github.com/charliek/webhook/internal/tracker"
)

// Source fetches the most recent requests of an inbox
type Source interface {
	ListRequests(ctx context.Context, params domain.ListParams) ([]domain.RequestRecord, error)
}

// Config holds the settings of one monitoring session
type Config struct {
	Token    string
	Spec     domain.FilterSpec
	Interval time.Duration
}

// Monitor polls an inbox and announces requests that were not seen before.
// A Monitor is used for a single Run.
type Monitor struct {
	source   Source
	cfg      Config
	filter   *domain.Filter
	renderer *render.Renderer
	out      io.Writer
	errOut   io.Writer
	logger   *slog.Logger
	onEvent  func(Event)

	// seen is only touched by the goroutine running the loop
	seen      tracker.SeenSet
	announced int
}

// Option configures a Monitor
type Option func(*Monitor)

// WithErrorWriter sets where poll failures are reported. Defaults to the
// output writer.
func WithErrorWriter(w io.Writer) Option {
	return func(m *Monitor) {
		m.errOut = w
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// WithEventHook registers fn to be called on every state transition. fn runs
// on the loop goroutine and must not block.
func WithEventHook(fn func(Event)) Option {
	return func(m *Monitor) {
		m.onEvent = fn
	}
}

// New creates a monitor that renders to out
func New(source Source, renderer *render.Renderer, out io.Writer, cfg Config, opts ...Option) (*Monitor, error) {
	if cfg.Token == "" {
		return nil, errors.New("monitor: token is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("monitor: interval must be positive, got %s", cfg.Interval)
	}
	if cfg.Spec.Limit < 1 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidCount, cfg.Spec.Limit)
	}

	filter, err := domain.NewFilter(cfg.Spec)
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		source:   source,
		cfg:      cfg,
		filter:   filter,
		renderer: renderer,
		out:      out,
		errOut:   out,
		logger:   slog.Default(),
		seen:     tracker.SeenSet{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Run prints the banner, primes the seen-set and then polls until ctx is
// cancelled. Fetch failures are reported and retried after the interval;
// they never end the loop. Run returns nil once ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	m.write(m.renderer.MonitorBanner(m.cfg.Token, m.cfg.Spec, m.cfg.Interval))

	for primed := false; !primed; {
		if ctx.Err() != nil {
			return m.stop()
		}
		if err := m.Prime(ctx); err != nil {
			if ctx.Err() != nil {
				return m.stop()
			}
			m.report(err)
			if !m.sleep(ctx, err) {
				return m.stop()
			}
			continue
		}
		primed = true
		if !m.sleep(ctx, nil) {
			return m.stop()
		}
	}

	for {
		if ctx.Err() != nil {
			return m.stop()
		}
		_, err := m.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return m.stop()
			}
			m.report(err)
		}
		if !m.sleep(ctx, err) {
			return m.stop()
		}
	}
}

// Prime fetches the initial batch, renders it as a listing and seeds the
// seen-set with every id in it, including records the filter hides.
func (m *Monitor) Prime(ctx context.Context) error {
	m.emit(StatePriming, nil)

	batch, err := m.fetch(ctx)
	if err != nil {
		return err
	}

	visible := render.Filter(batch, m.filter)
	lines := m.renderer.InitialListingHeader(len(visible))
	for _, rec := range visible {
		lines = append(lines, m.renderer.LogLines(rec, m.cfg.Spec)...)
	}
	if len(visible) > 0 {
		lines = append(lines, m.renderer.Separator())
	}
	m.write(lines)

	m.seen = tracker.Seed(batch)
	m.logger.Debug("monitor primed", "token", m.cfg.Token, "fetched", len(batch), "shown", len(visible))
	return nil
}

// Poll runs one polling cycle and returns the records it announced. On
// failure the seen-set is left untouched, so requests that arrive meanwhile
// are announced by a later cycle.
func (m *Monitor) Poll(ctx context.Context) ([]domain.RequestRecord, error) {
	m.emit(StatePolling, nil)

	batch, err := m.fetch(ctx)
	if err != nil {
		return nil, err
	}

	m.emit(StateRendering, nil)

	newOnes, updated := tracker.Diff(m.seen, batch)
	announce := render.Filter(newOnes, m.filter)

	var lines []string
	for _, rec := range announce {
		lines = append(lines, m.renderer.TailLines(rec, m.cfg.Spec)...)
	}
	m.write(lines)

	m.seen = updated
	m.announced += len(announce)
	m.logger.Debug("poll complete",
		"token", m.cfg.Token,
		"fetched", len(batch),
		"new", len(newOnes),
		"announced", len(announce),
		"seen", m.seen.Len())
	return announce, nil
}

// Seen returns the number of distinct ids observed so far
func (m *Monitor) Seen() int {
	return m.seen.Len()
}

// Announced returns the number of records announced since priming
func (m *Monitor) Announced() int {
	return m.announced
}

// fetch always asks for the unfiltered batch so that the seen-set covers
// every id the service returned.
func (m *Monitor) fetch(ctx context.Context) ([]domain.RequestRecord, error) {
	return m.source.ListRequests(ctx, domain.ListParams{
		Token: m.cfg.Token,
		Limit: m.cfg.Spec.Limit,
	})
}

// sleep waits for the interval and reports false if ctx ended first
func (m *Monitor) sleep(ctx context.Context, cause error) bool {
	m.emit(StateSleeping, cause)

	timer := time.NewTimer(m.cfg.Interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (m *Monitor) stop() error {
	m.emit(StateCancelled, nil)
	m.write([]string{"", m.renderer.Farewell()})
	m.logger.Debug("monitor stopped", "token", m.cfg.Token, "seen", m.seen.Len(), "announced", m.announced)
	return nil
}

func (m *Monitor) report(err error) {
	m.logger.Warn("poll failed", "token", m.cfg.Token, "error", err)
	if _, werr := fmt.Fprintln(m.errOut, m.renderer.ErrorLine(err)); werr != nil {
		m.logger.Debug("writing error line", "error", werr)
	}
}

func (m *Monitor) write(lines []string) {
	if err := render.Write(m.out, lines); err != nil {
		m.logger.Debug("writing monitor output", "error", err)
	}
}

func (m *Monitor) emit(state State, err error) {
	if m.onEvent == nil {
		return
	}
	m.onEvent(Event{
		State:     state,
		At:        time.Now(),
		Seen:      m.seen.Len(),
		Announced: m.announced,
		Err:       err,
	})
}
