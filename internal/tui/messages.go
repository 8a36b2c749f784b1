package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg drives the render loop at the configured frame rate.
type tickMsg time.Time

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// stepDoneMsg arrives when a single-stepped unit of work has finished.
// Done is false when the controller was stopped before anything was
// admitted.
type stepDoneMsg struct {
	done bool
}

// stepCmd waits for the stepped work to be reported complete.
func stepCmd(done <-chan bool) tea.Cmd {
	return func() tea.Msg {
		return stepDoneMsg{done: <-done}
	}
}
