package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/charliek/mplog/internal/domain"
	"github.com/charliek/mplog/internal/store"
)

// Model is the bubbletea model for the inspector: the store it reads from
// and the selection cursor it owns.
type Model struct {
	store     *store.Store
	keys      keyMap
	selection Selection

	width  int
	height int
	ready  bool
}

// NewModel creates a new TUI model over the given store.
func NewModel(st *store.Store) Model {
	return Model{
		store:     st,
		keys:      defaultKeyMap(),
		selection: NewSelection(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// EventMsg is sent when a new record has been ingested.
type EventMsg domain.Event
