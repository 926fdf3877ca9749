package tui

import (
	"bytes"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// lineWriter turns monitor output into OutputMsg values. Partial lines are
// held until their newline arrives.
type lineWriter struct {
	mu   sync.Mutex
	buf  []byte
	send func(tea.Msg)
}

func newLineWriter(send func(tea.Msg)) *lineWriter {
	return &lineWriter{send: send}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.buf = append(w.buf, p...)

	var lines []string
	for {
		idx := bytes.IndexByte(w.buf, '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, string(w.buf[:idx]))
		w.buf = w.buf[idx+1:]
	}
	w.mu.Unlock()

	if len(lines) > 0 {
		w.send(OutputMsg(lines))
	}
	return len(p), nil
}
