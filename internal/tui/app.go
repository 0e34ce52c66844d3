package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charliek/mplog/internal/domain"
	"github.com/charliek/mplog/internal/store"
)

// Run starts the inspector over the given store and blocks until the user
// quits. bubbletea owns the terminal for the duration: alternate screen and
// mouse capture on entry, restoration on exit including the panic path.
func Run(st *store.Store) error {
	model := NewModel(st)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	ctx, cancel := context.WithCancel(context.Background())

	subID, ch, err := st.Subscribe(domain.EventFilter{})
	if err != nil {
		cancel()
		return err
	}
	go forwardEvents(ctx, p, ch)

	_, runErr := p.Run()

	cancel()
	st.Unsubscribe(subID)

	return runErr
}

// forwardEvents forwards ingest events from the store subscription to the
// TUI program so new records trigger a redraw (and the one-time
// auto-selection). It exits when the context is cancelled or the channel is
// closed.
func forwardEvents(ctx context.Context, p *tea.Program, ch <-chan domain.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			p.Send(EventMsg(ev))
		}
	}
}
