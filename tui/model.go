// ABOUTME: Terminal UI model and core state management
// ABOUTME: Bubble Tea model wiring the library, session, and wizard together

// Package tui provides the interactive terminal front-end: the playlist
// library, the preset selector, and the add-sound dialog flow.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"soundscape/library"
	"soundscape/session"
	"soundscape/stream"
	"soundscape/wizard"
)

// Volume adjustment and display constants
const (
	volumeStep            = 0.05
	statusMessageDuration = 5 * time.Second
	maxVisiblePlaylists   = 20
)

// Focus identifies which overlay, if any, owns key input.
type focusArea int

const (
	focusLibrary focusArea = iota
	focusSelector
	focusWarning
	focusDialog
	focusOptions
	focusInput
)

// inputMode identifies what the shared text input is collecting.
type inputMode int

const (
	inputNone inputMode = iota
	inputRenamePlaylist
	inputRenamePreset
	inputNewPreset
	inputOptionsFiles
)

// model holds the TUI state
type model struct {
	// Dependencies
	lib        Library
	state      *session.ActivePresetState
	controller *session.Controller
	wiz        *wizard.Wizard
	messenger  *session.Messenger
	grants     Grants
	nameFor    func(uri string) string
	debugf     Logger

	// Library data
	playlists []library.Playlist
	presets   []library.Preset
	cursor    int

	// Preset selector
	presetCursor int
	activeName   string
	modified     bool

	// Dialog input state
	input     textinput.Model
	slot      int  // selected slot in the track-naming and options steps
	editing   bool // slot text edit in progress
	mode      inputMode
	renameOld string

	// Standalone playlist-options dialog
	options *wizard.OptionsDialog

	// Stream listeners
	revL  *stream.Listener[int64]
	modL  *stream.Listener[bool]
	nameL *stream.Listener[string]
	msgL  *stream.Listener[session.UserMessage]

	// UI state
	width        int
	height       int
	quitting     bool
	statusMsg    string
	statusMsgAge time.Time
}

// Key bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	VolUp     key.Binding
	VolDown   key.Binding
	Add       key.Binding
	Edit      key.Binding
	Rename    key.Binding
	Delete    key.Binding
	Presets   key.Binding
	Overwrite key.Binding
	Quit      key.Binding
	Escape    key.Binding
	Enter     key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "navigate"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle active"),
	),
	VolUp: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "volume up"),
	),
	VolDown: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "volume down"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add sounds"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "playlist options"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Presets: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "presets"),
	),
	Overwrite: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "overwrite preset"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back/close"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("15"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)
)

// Options contains configuration for running the TUI
type Options struct {
	DebugLog bool
}

// Deps bundles the collaborators the TUI consumes.
type Deps struct {
	Lib        Library
	State      *session.ActivePresetState
	Controller *session.Controller
	Wizard     *wizard.Wizard
	Messenger  *session.Messenger
	Grants     Grants
	NameFor    func(uri string) string
	Debugf     Logger
}

// Run starts the TUI with injected dependencies and blocks until quit.
func Run(ctx context.Context, opts Options, deps Deps) error {
	m, err := initModel(ctx, deps)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// initModel creates the initial model and subscribes to the streams it
// renders from.
func initModel(ctx context.Context, deps Deps) (model, error) {
	input := textinput.New()
	input.Prompt = "> "

	m := model{
		lib:        deps.Lib,
		state:      deps.State,
		controller: deps.Controller,
		wiz:        deps.Wizard,
		messenger:  deps.Messenger,
		grants:     deps.Grants,
		nameFor:    deps.NameFor,
		debugf:     deps.Debugf,
		input:      input,
		revL:       deps.Lib.Revisions().Subscribe(),
		modL:       deps.State.IsModified().Subscribe(),
		nameL:      deps.State.Name().Subscribe(),
		msgL:       deps.Messenger.Messages().Subscribe(),
	}

	if m.debugf == nil {
		m.debugf = func(string, ...interface{}) {}
	}

	if err := m.reload(); err != nil {
		return model{}, err
	}

	return m, nil
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	return tea.Batch(
		waitForRevision(m.revL),
		waitForModified(m.modL),
		waitForName(m.nameL),
		waitForMessage(m.msgL),
	)
}

// reload refreshes the playlist and preset lists from the store.
func (m *model) reload() error {
	playlists, err := m.lib.Playlists()
	if err != nil {
		return fmt.Errorf("loading playlists: %w", err)
	}

	presets, err := m.lib.Presets()
	if err != nil {
		return fmt.Errorf("loading presets: %w", err)
	}

	m.playlists = playlists
	m.presets = presets

	if m.cursor >= len(m.playlists) && len(m.playlists) > 0 {
		m.cursor = len(m.playlists) - 1
	}

	if m.presetCursor >= len(m.presets) && len(m.presets) > 0 {
		m.presetCursor = len(m.presets) - 1
	}

	return nil
}

// focus reports which area currently owns key input.
func (m *model) focus() focusArea {
	switch {
	case m.mode != inputNone:
		return focusInput
	case m.wiz.Step() != nil:
		return focusDialog
	case m.options != nil:
		return focusOptions
	case m.controller.Warning() != nil:
		return focusWarning
	case m.controller.SelectorOpen():
		return focusSelector
	default:
		return focusLibrary
	}
}

// setStatusMsg sets a transient status message with current timestamp
func (m *model) setStatusMsg(msg string) {
	m.statusMsg = msg
	m.statusMsgAge = time.Now()
}

// ========== Stream commands ==========

func waitForRevision(l *stream.Listener[int64]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-l.Done():
			return nil
		case <-l.C:
			return revisionMsg{}
		}
	}
}

func waitForModified(l *stream.Listener[bool]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-l.Done():
			return nil
		case v := <-l.C:
			return modifiedMsg(v)
		}
	}
}

func waitForName(l *stream.Listener[string]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-l.Done():
			return nil
		case v := <-l.C:
			return activeNameMsg(v)
		}
	}
}

func waitForMessage(l *stream.Listener[session.UserMessage]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-l.Done():
			return nil
		case v := <-l.C:
			return userMsg(v)
		}
	}
}
