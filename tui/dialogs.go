// ABOUTME: Rendering for the add-sound dialog steps
// ABOUTME: One renderer per wizard step plus the standalone options dialog

package tui

import (
	"fmt"
	"strings"

	"soundscape/validate"
	"soundscape/wizard"
)

func (m model) renderDialog() string {
	switch step := m.wiz.Step().(type) {
	case *wizard.SelectingFiles:
		return m.renderFileSelection()
	case *wizard.AddIndividuallyOrAsPlaylistQuery:
		return m.renderQuery(step)
	case *wizard.NameTracks:
		return m.renderNameTracks(step)
	case *wizard.NamePlaylist:
		return m.renderNamePlaylist(step)
	case *wizard.PlaylistOptions:
		return m.renderPlaylistOptions(step)
	default:
		return ""
	}
}

func (m model) renderFileSelection() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Add sounds"))
	b.WriteString("\n\n")
	b.WriteString("Files (space-separated paths):\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter: choose   esc: cancel"))

	return dialogStyle.Render(b.String())
}

func (m model) renderQuery(step *wizard.AddIndividuallyOrAsPlaylistQuery) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Add sounds"))
	b.WriteString("\n\n")
	b.WriteString("Add the selected files individually or as one playlist?\n\n")
	b.WriteString(renderButtons(step, "i: add individually   p: add as playlist   esc: cancel"))

	return dialogStyle.Render(b.String())
}

func (m model) renderNameTracks(step *wizard.NameTracks) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Name tracks"))
	b.WriteString("\n\n")

	values := step.Namer.Values()
	errs := step.Namer.Errors()

	for i, value := range values {
		line := value
		if m.editing && i == m.slot {
			line = m.input.View()
		}

		if errs[i] {
			line = errorStyle.Render(line)
		}

		if i == m.slot {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	if msg := step.Namer.Message(); msg != nil {
		b.WriteString("\n")
		b.WriteString(renderMessage(msg))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	if m.editing {
		b.WriteString(helpStyle.Render("enter: done editing   esc: done editing"))
	} else {
		b.WriteString(renderButtons(step, "↑/↓: navigate   enter: edit   f: finish   esc: back"))
	}

	return dialogStyle.Render(b.String())
}

func (m model) renderNamePlaylist(step *wizard.NamePlaylist) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Name playlist"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if msg := step.Validator.Message(); msg != nil {
		b.WriteString(renderMessage(msg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderButtons(step, "enter: next   esc: back"))

	return dialogStyle.Render(b.String())
}

func (m model) renderPlaylistOptions(step *wizard.PlaylistOptions) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Playlist options"))
	b.WriteString("\n\n")
	b.WriteString(renderTrackList(step.Playlist, m.slot))
	b.WriteString("\n")
	b.WriteString(renderShuffle(step.Shuffle))
	b.WriteString("\n\n")
	b.WriteString(renderButtons(step, "↑/↓: navigate   J/K: move   d: remove   s: shuffle   f: finish   esc: back"))

	return dialogStyle.Render(b.String())
}

func (m model) renderOptions() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Edit %q", m.options.PlaylistName)))
	b.WriteString("\n\n")
	b.WriteString(renderTrackList(m.options.Playlist, m.slot))
	b.WriteString("\n")
	b.WriteString(renderShuffle(m.options.Shuffle))

	return dialogStyle.Render(b.String())
}

func renderTrackList(p *wizard.MutablePlaylist, cursor int) string {
	var b strings.Builder

	for i, t := range p.Tracks() {
		line := t.DisplayName
		if t.MarkedForRemoval {
			line = errorStyle.Render(line + " (removed)")
		}

		if i == cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func renderShuffle(shuffle bool) string {
	mark := "[ ]"
	if shuffle {
		mark = activeStyle.Render("[x]")
	}

	return mark + " Shuffle"
}

func renderMessage(msg *validate.Message) string {
	switch msg.Kind {
	case validate.Error:
		return errorStyle.Render(msg.Text)
	case validate.Warning:
		return warningStyle.Render(msg.Text)
	default:
		return helpStyle.Render(msg.Text)
	}
}

// renderButtons shows the step's available actions as a key hint line. The
// hint text names the keys; the step's buttons drive which line applies.
func renderButtons(step wizard.Step, hint string) string {
	if len(step.Buttons()) == 0 {
		return ""
	}

	return helpStyle.Render(hint)
}
