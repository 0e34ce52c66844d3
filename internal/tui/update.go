package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case EventMsg:
		// First record ever: select the first process and lane, once.
		// Ingests never move an existing cursor.
		m.selection.AutoSelect(m.store)
	}

	return m, nil
}

// handleKey translates key presses into navigation operations. Every
// operation is a silent no-op until the first record arrives.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.PreviousProcess):
		m.selection.PreviousProcess(m.store)
	case key.Matches(msg, m.keys.NextProcess):
		m.selection.NextProcess(m.store)
	case key.Matches(msg, m.keys.PreviousThread):
		m.selection.PreviousThread(m.store)
	case key.Matches(msg, m.keys.NextThread):
		m.selection.NextThread(m.store)
	case key.Matches(msg, m.keys.PreviousLog):
		m.selection.PreviousLog()
	case key.Matches(msg, m.keys.NextLog):
		m.selection.NextLog(m.store)
	}
	return m, nil
}
