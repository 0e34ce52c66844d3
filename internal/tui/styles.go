package tui

import "github.com/charmbracelet/lipgloss"

// Pane widths; the log pane takes the remaining terminal width.
const (
	processPaneWidth = 9
	threadPaneWidth  = 14
)

// Colors
var (
	selectedColor = lipgloss.Color("14") // Cyan
	borderColor   = lipgloss.Color("240")
	titleColor    = lipgloss.Color("255")
	dimColor      = lipgloss.Color("8")
	errorColor    = lipgloss.Color("9")
	warnColor     = lipgloss.Color("11")
)

// Styles
var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(titleColor).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(selectedColor).
			Bold(true)

	// Level column styles
	levelErrorStyle = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	levelWarnStyle  = lipgloss.NewStyle().Foreground(warnColor)
	levelDimStyle   = lipgloss.NewStyle().Foreground(dimColor)
	levelPlainStyle = lipgloss.NewStyle()

	// Timestamp column
	timeStyle = lipgloss.NewStyle().Foreground(dimColor)

	// Status bar
	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Padding(0, 1)
)
