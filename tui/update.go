// ABOUTME: Bubble Tea update loop for the TUI
// ABOUTME: Routes key input by focus area and reacts to stream messages

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"soundscape/library"
	"soundscape/validate"
	"soundscape/wizard"
)

// Update handles messages and updates the model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case revisionMsg:
		if err := m.reload(); err != nil {
			m.debugf("reload failed: %v", err)
			m.setStatusMsg("Error: " + err.Error())
		}

		return m, waitForRevision(m.revL)

	case modifiedMsg:
		m.modified = bool(msg)

		return m, waitForModified(m.modL)

	case activeNameMsg:
		m.activeName = string(msg)

		return m, waitForName(m.nameL)

	case userMsg:
		text := msg.Text
		if msg.Kind == validate.Warning {
			text = "Warning: " + text
		}

		m.setStatusMsg(text)

		return m, waitForMessage(m.msgL)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) && m.focus() == focusLibrary {
		m.quitting = true

		return m, tea.Quit
	}

	switch m.focus() {
	case focusInput:
		return m.updateInput(msg)
	case focusDialog:
		return m.updateDialog(msg)
	case focusOptions:
		return m.updateOptions(msg)
	case focusWarning:
		return m.updateWarning(msg)
	case focusSelector:
		return m.updateSelector(msg)
	default:
		return m.updateLibrary(msg)
	}
}

// ========== Library pane ==========

func (m model) updateLibrary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.playlists)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Toggle):
		if p, ok := m.currentPlaylist(); ok {
			if err := m.lib.ToggleActive(p.Name); err != nil {
				m.fail("toggling %q", p.Name, err)
			}
		}

	case key.Matches(msg, keys.VolUp):
		if p, ok := m.currentPlaylist(); ok {
			if err := m.lib.SetVolume(p.Name, p.Volume+volumeStep); err != nil {
				m.fail("setting volume for %q", p.Name, err)
			}
		}

	case key.Matches(msg, keys.VolDown):
		if p, ok := m.currentPlaylist(); ok {
			if err := m.lib.SetVolume(p.Name, p.Volume-volumeStep); err != nil {
				m.fail("setting volume for %q", p.Name, err)
			}
		}

	case key.Matches(msg, keys.Add):
		m.wiz.Start()
		m.primeInput("")

	case key.Matches(msg, keys.Edit):
		if p, ok := m.currentPlaylist(); ok {
			dlg, err := wizard.NewOptionsDialog(m.lib, m.grants, m.messenger, p)
			if err != nil {
				m.fail("opening options for %q", p.Name, err)

				break
			}

			m.options = dlg
			m.slot = 0
		}

	case key.Matches(msg, keys.Rename):
		if p, ok := m.currentPlaylist(); ok {
			m.mode = inputRenamePlaylist
			m.renameOld = p.Name
			m.primeInput(p.Name)
		}

	case key.Matches(msg, keys.Delete):
		if p, ok := m.currentPlaylist(); ok {
			orphans, err := m.lib.DeletePlaylist(p.Name)
			if err != nil {
				m.fail("deleting %q", p.Name, err)

				break
			}

			m.grants.Release(orphans)
		}

	case key.Matches(msg, keys.Presets):
		m.controller.OpenSelector()
	}

	return m, nil
}

// ========== Preset selector ==========

func (m model) updateSelector(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.controller.CloseSelector()

	case key.Matches(msg, keys.Up):
		if m.presetCursor > 0 {
			m.presetCursor--
		}

	case key.Matches(msg, keys.Down):
		if m.presetCursor < len(m.presets)-1 {
			m.presetCursor++
		}

	case key.Matches(msg, keys.Enter):
		if p, ok := m.currentPreset(); ok {
			if err := m.controller.OnPresetClick(p.Name); err != nil {
				m.fail("loading preset %q", p.Name, err)
			}
		}

	case key.Matches(msg, keys.Overwrite):
		if p, ok := m.currentPreset(); ok {
			if err := m.controller.OverwritePreset(p.Name); err != nil {
				m.fail("overwriting preset %q", p.Name, err)
			}
		}

	case key.Matches(msg, keys.Rename):
		if p, ok := m.currentPreset(); ok {
			m.mode = inputRenamePreset
			m.renameOld = p.Name
			m.primeInput(p.Name)
		}

	case key.Matches(msg, keys.Delete):
		if p, ok := m.currentPreset(); ok {
			if err := m.controller.DeletePreset(p.Name); err != nil {
				m.fail("deleting preset %q", p.Name, err)
			}
		}

	case msg.String() == "n":
		m.mode = inputNewPreset
		m.primeInput("")
	}

	return m, nil
}

// ========== Unsaved-changes warning ==========

func (m model) updateWarning(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.controller.DismissWarning()

	case msg.String() == "s":
		if err := m.controller.ConfirmWarning(true); err != nil {
			m.fail("saving preset %q", m.activeName, err)
		}

	case msg.String() == "d":
		if err := m.controller.ConfirmWarning(false); err != nil {
			m.fail("switching preset", "", err)
		}
	}

	return m, nil
}

// ========== Add-sound dialog ==========

func (m model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch step := m.wiz.Step().(type) {
	case *wizard.SelectingFiles:
		return m.updateFileSelection(msg)
	case *wizard.AddIndividuallyOrAsPlaylistQuery:
		return m.updateQuery(msg)
	case *wizard.NameTracks:
		return m.updateNameTracks(msg, step)
	case *wizard.NamePlaylist:
		return m.updateNamePlaylist(msg, step)
	case *wizard.PlaylistOptions:
		return m.updatePlaylistOptions(msg, step)
	}

	return m, nil
}

func (m model) updateFileSelection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.wiz.Cancel()
		m.input.Blur()

		return m, nil

	case key.Matches(msg, keys.Enter):
		if err := m.wiz.FilesChosen(strings.Fields(m.input.Value())); err != nil {
			m.fail("choosing files", "", err)
		}

		m.syncDialogInput()

		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) updateQuery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.wiz.Cancel()

	case msg.String() == "i":
		if err := m.wiz.AddIndividually(); err != nil {
			m.fail("entering track naming", "", err)
		}

		m.syncDialogInput()

	case msg.String() == "p":
		if err := m.wiz.AddAsPlaylist(); err != nil {
			m.fail("entering playlist naming", "", err)
		}

		m.syncDialogInput()
	}

	return m, nil
}

func (m model) updateNameTracks(msg tea.KeyMsg, step *wizard.NameTracks) (tea.Model, tea.Cmd) {
	if m.editing {
		switch {
		case key.Matches(msg, keys.Escape), key.Matches(msg, keys.Enter):
			m.editing = false
			m.input.Blur()

			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		step.Namer.SetValue(m.slot, m.input.Value())

		return m, cmd
	}

	values := step.Namer.Values()

	switch {
	case key.Matches(msg, keys.Escape):
		if err := m.wiz.Back(); err != nil {
			m.fail("going back", "", err)
		}

		m.syncDialogInput()

	case key.Matches(msg, keys.Up):
		if m.slot > 0 {
			m.slot--
		}

	case key.Matches(msg, keys.Down):
		if m.slot < len(values)-1 {
			m.slot++
		}

	case key.Matches(msg, keys.Enter):
		if m.slot < len(values) {
			m.editing = true
			m.primeInput(values[m.slot])
		}

	case msg.String() == "f":
		if err := m.wiz.Finish(); err != nil {
			m.fail("adding tracks", "", err)
		}
	}

	return m, nil
}

func (m model) updateNamePlaylist(msg tea.KeyMsg, step *wizard.NamePlaylist) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		if err := m.wiz.Back(); err != nil {
			m.fail("going back", "", err)
		}

		m.input.Blur()

		return m, nil

	case key.Matches(msg, keys.Enter):
		if err := m.wiz.Next(); err != nil {
			m.fail("confirming playlist name", "", err)
		}

		m.syncDialogInput()

		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	step.Validator.SetValue(m.input.Value())

	return m, cmd
}

func (m model) updatePlaylistOptions(msg tea.KeyMsg, step *wizard.PlaylistOptions) (tea.Model, tea.Cmd) {
	n := step.Playlist.Len()

	switch {
	case key.Matches(msg, keys.Escape):
		if err := m.wiz.Back(); err != nil {
			m.fail("going back", "", err)
		}

		m.syncDialogInput()

	case key.Matches(msg, keys.Up):
		if m.slot > 0 {
			m.slot--
		}

	case key.Matches(msg, keys.Down):
		if m.slot < n-1 {
			m.slot++
		}

	case msg.String() == "K":
		if step.Playlist.Move(m.slot, m.slot-1) {
			m.slot--
		}

	case msg.String() == "J":
		if step.Playlist.Move(m.slot, m.slot+1) {
			m.slot++
		}

	case msg.String() == "d":
		step.Playlist.ToggleRemoval(m.slot)

	case msg.String() == "s":
		m.wiz.SetShuffle(!step.Shuffle)

	case key.Matches(msg, keys.Enter), msg.String() == "f":
		if err := m.wiz.Finish(); err != nil {
			m.fail("adding playlist", "", err)
		}
	}

	return m, nil
}

// ========== Standalone playlist-options dialog ==========

func (m model) updateOptions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.options.Playlist.Len()

	switch {
	case key.Matches(msg, keys.Escape):
		m.options = nil

	case key.Matches(msg, keys.Up):
		if m.slot > 0 {
			m.slot--
		}

	case key.Matches(msg, keys.Down):
		if m.slot < n-1 {
			m.slot++
		}

	case msg.String() == "K":
		if m.options.Playlist.Move(m.slot, m.slot-1) {
			m.slot--
		}

	case msg.String() == "J":
		if m.options.Playlist.Move(m.slot, m.slot+1) {
			m.slot++
		}

	case msg.String() == "d":
		m.options.Playlist.ToggleRemoval(m.slot)

	case msg.String() == "s":
		m.options.Shuffle = !m.options.Shuffle

	case key.Matches(msg, keys.Add):
		m.mode = inputOptionsFiles
		m.primeInput("")

	case key.Matches(msg, keys.Enter), msg.String() == "f":
		if err := m.options.Finish(); err != nil {
			m.fail("saving playlist %q", m.options.PlaylistName, err)

			break
		}

		m.options = nil
	}

	return m, nil
}

// ========== Shared text input ==========

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = inputNone
		m.input.Blur()

		return m, nil

	case key.Matches(msg, keys.Enter):
		m.commitInput()
		m.mode = inputNone
		m.input.Blur()

		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// commitInput applies the text input's value according to the active mode.
func (m *model) commitInput() {
	value := strings.TrimSpace(m.input.Value())

	switch m.mode {
	case inputRenamePlaylist:
		if value == "" || value == m.renameOld {
			return
		}

		if err := m.lib.RenamePlaylist(m.renameOld, value); err != nil {
			m.fail("renaming %q", m.renameOld, err)
		}

	case inputRenamePreset:
		if value == "" || value == m.renameOld {
			return
		}

		if err := m.controller.RenamePreset(m.renameOld, value); err != nil {
			m.fail("renaming preset %q", m.renameOld, err)
		}

	case inputNewPreset:
		if value == "" {
			return
		}

		if err := m.controller.OverwritePreset(value); err != nil {
			m.fail("saving preset %q", value, err)
		}

	case inputOptionsFiles:
		uris := strings.Fields(m.input.Value())
		if len(uris) == 0 || m.options == nil {
			return
		}

		names := make([]string, len(uris))
		for i, uri := range uris {
			names[i] = m.nameFor(uri)
		}

		m.options.AddFiles(uris, names)
	}
}

// ========== Helpers ==========

func (m *model) currentPlaylist() (library.Playlist, bool) {
	if m.cursor < 0 || m.cursor >= len(m.playlists) {
		return library.Playlist{}, false
	}

	return m.playlists[m.cursor], true
}

func (m *model) currentPreset() (library.Preset, bool) {
	if m.presetCursor < 0 || m.presetCursor >= len(m.presets) {
		return library.Preset{}, false
	}

	return m.presets[m.presetCursor], true
}

// primeInput focuses the shared text input seeded with value.
func (m *model) primeInput(value string) {
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

// syncDialogInput prepares per-step UI state after a wizard transition.
func (m *model) syncDialogInput() {
	switch step := m.wiz.Step().(type) {
	case *wizard.NamePlaylist:
		m.primeInput(step.Validator.Value())
	case *wizard.NameTracks:
		m.slot = 0
		m.editing = false
		m.input.Blur()
	case *wizard.PlaylistOptions:
		m.slot = 0
		m.input.Blur()
	default:
		m.input.Blur()
	}
}

// fail records an operational error in the debug log and the status bar.
func (m *model) fail(format, subject string, err error) {
	if subject != "" {
		m.debugf(format+": %v", subject, err)
	} else {
		m.debugf(format+": %v", err)
	}

	m.setStatusMsg("Error: " + err.Error())
}
