package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keyboard bindings for the inspector.
type keyMap struct {
	Quit            key.Binding
	PreviousProcess key.Binding
	NextProcess     key.Binding
	PreviousThread  key.Binding
	NextThread      key.Binding
	PreviousLog     key.Binding
	NextLog         key.Binding
}

// defaultKeyMap returns the default key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		PreviousProcess: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "prev process"),
		),
		NextProcess: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "next process"),
		),
		PreviousThread: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "prev thread"),
		),
		NextThread: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "next thread"),
		),
		PreviousLog: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "log up"),
		),
		NextLog: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "log down"),
		),
	}
}

// shortHelp returns the bindings shown in the status bar.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{
		k.Quit, k.PreviousProcess, k.NextProcess,
		k.PreviousThread, k.NextThread, k.PreviousLog, k.NextLog,
	}
}
