// ABOUTME: Main view rendering for the TUI
// ABOUTME: Playlist pane, preset header, status bar, and contextual help

package tui

import (
	"fmt"
	"strings"
	"time"
)

// View renders the UI
func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderPlaylists())

	if overlay := m.renderOverlay(); overlay != "" {
		b.WriteString("\n")
		b.WriteString(overlay)
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m model) renderHeader() string {
	title := titleStyle.Render("Soundscape")

	preset := "no preset"
	if m.activeName != "" {
		preset = m.activeName
		if m.modified {
			preset += " *"
		}
	}

	return title + "  " + helpStyle.Render("["+preset+"]")
}

func (m model) renderPlaylists() string {
	if len(m.playlists) == 0 {
		return helpStyle.Render("  No playlists yet. Press 'a' to add sounds.")
	}

	var b strings.Builder

	start := 0
	if m.cursor >= maxVisiblePlaylists {
		start = m.cursor - maxVisiblePlaylists + 1
	}

	end := start + maxVisiblePlaylists
	if end > len(m.playlists) {
		end = len(m.playlists)
	}

	for i := start; i < end; i++ {
		p := m.playlists[i]

		active := "[ ]"
		if p.Active {
			active = activeStyle.Render("[x]")
		}

		var marks []string
		if p.Shuffle {
			marks = append(marks, "shuffle")
		}

		if !p.SingleTrack {
			marks = append(marks, fmt.Sprintf("%d tracks", p.TrackCount))
		}

		line := fmt.Sprintf("%s %-30s %3.0f%%", active, p.Name, p.Volume*100)
		if len(marks) > 0 {
			line += "  " + helpStyle.Render(strings.Join(marks, ", "))
		}

		if p.HasError {
			line += "  " + errorStyle.Render("!")
		}

		if i == m.cursor && m.focus() == focusLibrary {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func (m model) renderOverlay() string {
	switch m.focus() {
	case focusInput:
		return m.renderInput()
	case focusDialog:
		return m.renderDialog()
	case focusOptions:
		return m.renderOptions()
	case focusWarning:
		return m.renderWarning()
	case focusSelector:
		return m.renderSelector()
	default:
		return ""
	}
}

func (m model) renderSelector() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Presets"))
	b.WriteString("\n")

	if len(m.presets) == 0 {
		b.WriteString(helpStyle.Render("  No presets saved yet. Press 'n' to save the current mix."))
		b.WriteString("\n")
	}

	for i, p := range m.presets {
		line := p.Name
		if p.Name == m.activeName {
			line = activeStyle.Render(line)
			if m.modified {
				line += " *"
			}
		}

		if i == m.presetCursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return dialogStyle.Render(b.String())
}

func (m model) renderWarning() string {
	w := m.controller.Warning()
	if w == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(warningStyle.Render("Unsaved changes"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("The preset %q has unsaved changes.\n", m.activeName))
	b.WriteString(fmt.Sprintf("Load %q anyway?\n\n", w.TargetPreset))
	b.WriteString(helpStyle.Render("s: save changes first   d: discard changes   esc: cancel"))

	return dialogStyle.Render(b.String())
}

func (m model) renderInput() string {
	var prompt string

	switch m.mode {
	case inputRenamePlaylist:
		prompt = fmt.Sprintf("Rename playlist %q", m.renameOld)
	case inputRenamePreset:
		prompt = fmt.Sprintf("Rename preset %q", m.renameOld)
	case inputNewPreset:
		prompt = "Save current mix as preset"
	case inputOptionsFiles:
		prompt = "Add files (space-separated paths)"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(prompt))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter: confirm   esc: cancel"))

	return dialogStyle.Render(b.String())
}

func (m model) renderStatusBar() string {
	if m.statusMsg == "" || time.Since(m.statusMsgAge) > statusMessageDuration {
		return ""
	}

	return statusStyle.Render(m.statusMsg)
}

func (m model) renderHelp() string {
	var text string

	switch m.focus() {
	case focusLibrary:
		text = "↑/↓: navigate  space: toggle  ←/→: volume  a: add  e: edit  r: rename  d: delete  p: presets  q: quit"
	case focusSelector:
		text = "↑/↓: navigate  enter: load  o: overwrite  n: new  r: rename  d: delete  esc: close"
	case focusOptions:
		text = "↑/↓: navigate  J/K: move  d: remove  s: shuffle  a: add files  enter: save  esc: discard"
	default:
		return ""
	}

	return helpStyle.Render(text)
}
