// ABOUTME: Tagged-union step types for the add-sound dialog flow
// ABOUTME: Each step carries its button descriptors and navigation direction

// Package wizard implements the multi-step add-sound dialog flow: select
// files, choose individually-or-playlist, name the tracks or the playlist,
// and adjust playlist options. It also hosts the standalone playlist-options
// dialog used when editing an existing playlist.
package wizard

import (
	"soundscape/validate"
)

// Action identifies a dialog button.
type Action int

// Dialog button actions.
const (
	ActionCancel Action = iota
	ActionBack
	ActionNext
	ActionFinish
	ActionAddIndividually
	ActionAddAsPlaylist
)

// Label returns the user-facing button text.
func (a Action) Label() string {
	switch a {
	case ActionCancel:
		return "Cancel"
	case ActionBack:
		return "Back"
	case ActionNext:
		return "Next"
	case ActionFinish:
		return "Finish"
	case ActionAddIndividually:
		return "Add individually"
	case ActionAddAsPlaylist:
		return "Add as playlist"
	default:
		return ""
	}
}

// Button is an ordered (label, action) descriptor for one dialog button.
type Button struct {
	Label  string
	Action Action
}

func buttons(actions ...Action) []Button {
	out := make([]Button, len(actions))
	for i, a := range actions {
		out[i] = Button{Label: a.Label(), Action: a}
	}

	return out
}

// Step is one state of the add-sound dialog. Exactly one concrete step type
// is active at a time; a nil Step means the dialog is closed.
type Step interface {
	// Buttons returns the step's button row in display order.
	Buttons() []Button
	// WasNavigatedForwardTo reports whether the step was entered by a
	// forward action, used purely for transition-direction animation.
	WasNavigatedForwardTo() bool

	step()
}

// SelectingFiles delegates to the system file chooser; it has no buttons of
// its own.
type SelectingFiles struct {
	forward bool
}

func (s *SelectingFiles) Buttons() []Button           { return nil }
func (s *SelectingFiles) WasNavigatedForwardTo() bool { return s.forward }
func (s *SelectingFiles) step()                       {}

// AddIndividuallyOrAsPlaylistQuery asks whether several chosen files become
// individual single-track playlists or one multi-track playlist.
type AddIndividuallyOrAsPlaylistQuery struct {
	forward bool
}

func (s *AddIndividuallyOrAsPlaylistQuery) Buttons() []Button {
	return buttons(ActionCancel, ActionAddIndividually, ActionAddAsPlaylist)
}
func (s *AddIndividuallyOrAsPlaylistQuery) WasNavigatedForwardTo() bool { return s.forward }
func (s *AddIndividuallyOrAsPlaylistQuery) step()                       {}

// NameTracks collects one name per chosen file. Reached directly when a
// single file was chosen (Cancel/Finish) or via the query step (Back/Finish).
type NameTracks struct {
	forward  bool
	viaQuery bool

	// Namer validates the per-slot names.
	Namer *TrackNamer
}

func (s *NameTracks) Buttons() []Button {
	if s.viaQuery {
		return buttons(ActionBack, ActionFinish)
	}

	return buttons(ActionCancel, ActionFinish)
}
func (s *NameTracks) WasNavigatedForwardTo() bool { return s.forward }
func (s *NameTracks) step()                       {}

// NamePlaylist collects the new playlist's name.
type NamePlaylist struct {
	forward bool

	// Validator validates the candidate name against existing playlists.
	Validator *validate.Validator[string]
}

func (s *NamePlaylist) Buttons() []Button {
	return buttons(ActionBack, ActionNext)
}
func (s *NamePlaylist) WasNavigatedForwardTo() bool { return s.forward }
func (s *NamePlaylist) step()                       {}

// PlaylistOptions stages track reordering/removal and the shuffle toggle
// before the playlist is committed.
type PlaylistOptions struct {
	forward bool

	Playlist *MutablePlaylist
	Shuffle  bool
}

func (s *PlaylistOptions) Buttons() []Button {
	return buttons(ActionBack, ActionFinish)
}
func (s *PlaylistOptions) WasNavigatedForwardTo() bool { return s.forward }
func (s *PlaylistOptions) step()                       {}

// TrackNamer wraps a ListValidator with the track-naming confirmation rule:
// besides the base duplicate check, every slot must be individually valid.
type TrackNamer struct {
	*validate.ListValidator[string]
}

// NewTrackNamer seeds a namer with file-derived default names, validating
// against the given existing library names (playlist and track names).
func NewTrackNamer(defaults, existingNames []string) *TrackNamer {
	return &TrackNamer{
		ListValidator: validate.NewListValidator(
			defaults,
			validate.InvalidNameFunc(existingNames),
			false,
			"Names must be unique and not blank",
		),
	}
}

// Validate passes only when no slot is flagged.
func (tn *TrackNamer) Validate() ([]string, bool) {
	if tn.ErrorCount() > 0 {
		return nil, false
	}

	return tn.ListValidator.Validate()
}
