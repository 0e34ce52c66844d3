package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/charliek/mplog/internal/domain"
)

// View renders one frame: a snapshot of the store shaped by the current
// selection, drawn as three panes plus a status bar.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	// One border row top and bottom per pane, one status line.
	paneHeight := m.height - 3
	if paneHeight < 1 {
		paneHeight = 1
	}
	// The log pane spends one row on its column header.
	maxRows := paneHeight - 1
	if maxRows < 1 {
		maxRows = 1
	}

	frame := m.store.Snapshot(
		m.selection.Process(), m.selection.Thread(), m.selection.Offset(), maxRows)

	processes := make([]string, len(frame.Processes))
	for i, pid := range frame.Processes {
		processes[i] = fmt.Sprintf("%x", pid)
	}
	threads := make([]string, len(frame.Threads))
	for i, tid := range frame.Threads {
		threads[i] = fmt.Sprintf("%x", tid)
	}

	logWidth := m.width - processPaneWidth - threadPaneWidth - 6
	if logWidth < 10 {
		logWidth = 10
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		renderListPane("Process", processes, m.selection.Process(), processPaneWidth, paneHeight),
		renderListPane("Thread", threads, m.selection.Thread(), threadPaneWidth, paneHeight),
		renderLogPane(frame, logWidth, paneHeight),
	)

	return lipgloss.JoinVertical(lipgloss.Left, panes, m.statusBar())
}

// renderListPane draws a bordered single-column list with the selected row
// highlighted.
func renderListPane(title string, items []string, selected, width, height int) string {
	rows := height - 1
	if rows < 1 {
		rows = 1
	}

	// Window the list so the selected row stays in view.
	start := 0
	if selected >= rows {
		start = selected - rows + 1
	}
	end := start + rows
	if end > len(items) {
		end = len(items)
	}

	lines := make([]string, 0, rows+1)
	lines = append(lines, titleStyle.Render(title))
	for i := start; i < end; i++ {
		if i == selected {
			lines = append(lines, selectedStyle.Render(items[i]))
		} else {
			lines = append(lines, items[i])
		}
	}
	return paneStyle.Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

// renderLogPane draws the three-column log table for the selected lane.
func renderLogPane(frame domain.RenderFrame, width, height int) string {
	lines := make([]string, 0, len(frame.Entries)+1)
	lines = append(lines, titleStyle.Render(fmt.Sprintf("%-16s %-5s %s", "Time (µs)", "Level", "Message")))

	for _, e := range frame.Entries {
		row := fmt.Sprintf("%s %s %s",
			timeStyle.Render(fmt.Sprintf("%-16d", e.Micros())),
			levelStyle(e.Level).Render(fmt.Sprintf("%-5s", e.Level.String())),
			e.Message,
		)
		lines = append(lines, row)
	}

	return paneStyle.Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

// levelStyle maps a severity to its display style.
func levelStyle(level domain.Level) lipgloss.Style {
	switch level {
	case domain.LevelError:
		return levelErrorStyle
	case domain.LevelWarn:
		return levelWarnStyle
	case domain.LevelDebug, domain.LevelTrace:
		return levelDimStyle
	default:
		return levelPlainStyle
	}
}

// statusBar renders the key help line.
func (m Model) statusBar() string {
	parts := make([]string, 0, 8)
	for _, b := range m.keys.shortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return statusStyle.Width(m.width).Render(strings.Join(parts, " • "))
}
