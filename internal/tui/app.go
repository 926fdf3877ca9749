// Package tui is the full-screen view of `webhook monitor --tui`.
package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charliek/webhook/internal/monitor"
	"github.com/charliek/webhook/internal/render"
)

// Run starts the TUI and a monitor loop feeding it. Quitting the TUI stops
// the loop; cancelling ctx quits the TUI.
func Run(ctx context.Context, source monitor.Source, renderer *render.Renderer, cfg monitor.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(cfg), tea.WithAltScreen())

	out := newLineWriter(p.Send)
	mon, err := monitor.New(source, renderer, out, cfg,
		monitor.WithLogger(logger),
		monitor.WithEventHook(func(e monitor.Event) {
			p.Send(EventMsg(e))
		}),
	)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := mon.Run(ctx)
		p.Send(MonitorDoneMsg{Err: err})
	}()

	// Stop the program when the caller cancels, e.g. on SIGTERM
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, runErr := p.Run()

	// Cleanup: stop the monitor and wait for it to return
	cancel()
	<-done

	return runErr
}
