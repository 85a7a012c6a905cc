// ABOUTME: Add-sound dialog state machine with explicit forward/back navigation
// ABOUTME: Drives file selection through naming to the committed playlist(s)

package wizard

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"soundscape/validate"
)

// Library is the slice of the store the wizard reads and commits to.
type Library interface {
	ExistsPlaylistName(name string) (bool, error)
	PlaylistNames() ([]string, error)
	TrackDisplayNames() ([]string, error)
	InsertPlaylist(name string, shuffle bool, uris, displayNames []string) error
}

// Grants is the permission-budget collaborator.
type Grants interface {
	Acquire(uris []string, allowPartial bool) []string
	Release(uris []string)
	Granted(uri string) bool
}

// Poster receives one-shot user-facing messages.
type Poster interface {
	PostWarning(text string)
}

// Wizard is the add-sound dialog's state machine. Step() is nil while the
// dialog is closed. All navigation happens through the event methods; each
// dialog run owns a context that tears down its validators on close.
type Wizard struct {
	lib       Library
	grants    Grants
	messenger Poster
	nameFor   func(uri string) string

	parent context.Context

	mu           sync.Mutex
	dialogCancel context.CancelFunc
	dialogCtx    context.Context
	step         Step
	files        []string
	freshGrants  []string
	playlistName string
}

// New creates a wizard scoped to ctx. nameFor derives a default display name
// for a chosen file (see media.DisplayName).
func New(ctx context.Context, lib Library, grants Grants, messenger Poster, nameFor func(uri string) string) *Wizard {
	return &Wizard{
		lib:       lib,
		grants:    grants,
		messenger: messenger,
		nameFor:   nameFor,
		parent:    ctx,
	}
}

// Step returns the current dialog step, nil when the dialog is closed.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.step
}

// Start opens the dialog at the file-selection step.
func (w *Wizard) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != nil {
		return
	}

	w.dialogCtx, w.dialogCancel = context.WithCancel(w.parent)
	w.step = &SelectingFiles{forward: true}
}

// FilesChosen reports the outcome of the file chooser. Zero files dismisses
// the dialog; one file shortcuts straight to track naming; several files ask
// whether to add individually or as one playlist. Grants for the chosen
// files are acquired up front, all-or-nothing.
func (w *Wizard) FilesChosen(uris []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.step.(*SelectingFiles); !ok {
		return fmt.Errorf("files chosen outside the selection step")
	}

	if len(uris) == 0 {
		w.closeLocked(true)

		return nil
	}

	fresh := lo.Filter(uris, func(uri string, _ int) bool {
		return !w.grants.Granted(uri)
	})

	if granted := w.grants.Acquire(uris, false); granted == nil {
		w.messenger.PostWarning("Cannot add the selected files: the file access limit would be exceeded")
		w.closeLocked(true)

		return nil
	}

	w.files = uris
	w.freshGrants = fresh

	if len(uris) == 1 {
		return w.enterNameTracksLocked(true, false)
	}

	w.step = &AddIndividuallyOrAsPlaylistQuery{forward: true}

	return nil
}

// Cancel closes the dialog from any step, releasing grants acquired for it.
func (w *Wizard) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closeLocked(true)
}

// Dismiss handles an outside-tap/escape. For the naming-a-playlist and
// options steps it navigates back one step; everywhere else it closes the
// dialog like Cancel.
func (w *Wizard) Dismiss() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step.(type) {
	case *NamePlaylist:
		w.step = &AddIndividuallyOrAsPlaylistQuery{forward: false}

		return nil
	case *PlaylistOptions:
		return w.enterNamePlaylistLocked(false)
	default:
		w.closeLocked(true)

		return nil
	}
}

// Back navigates one step backward. From the track-naming step reached via
// the single-file shortcut there is nothing to go back to, so the dialog
// closes.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch step := w.step.(type) {
	case *NameTracks:
		if !step.viaQuery {
			w.closeLocked(true)

			return nil
		}

		w.step = &AddIndividuallyOrAsPlaylistQuery{forward: false}

		return nil
	case *NamePlaylist:
		w.step = &AddIndividuallyOrAsPlaylistQuery{forward: false}

		return nil
	case *PlaylistOptions:
		return w.enterNamePlaylistLocked(false)
	default:
		return fmt.Errorf("no backward step from here")
	}
}

// AddIndividually answers the query step: each chosen file becomes its own
// single-track playlist, named in the next step.
func (w *Wizard) AddIndividually() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.step.(*AddIndividuallyOrAsPlaylistQuery); !ok {
		return fmt.Errorf("not at the add-individually query")
	}

	return w.enterNameTracksLocked(true, true)
}

// AddAsPlaylist answers the query step: the chosen files become one
// multi-track playlist.
func (w *Wizard) AddAsPlaylist() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.step.(*AddIndividuallyOrAsPlaylistQuery); !ok {
		return fmt.Errorf("not at the add-as-playlist query")
	}

	return w.enterNamePlaylistLocked(true)
}

// Next advances from the playlist-naming step once the name validates.
// On a validation error the step stays put with the message visible.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	step, ok := w.step.(*NamePlaylist)
	if !ok {
		return fmt.Errorf("no forward step from here")
	}

	name, valid := step.Validator.Validate(w.dialogCtx)
	if !valid {
		return nil
	}

	w.playlistName = name

	names := lo.Map(w.files, func(uri string, _ int) string {
		return w.nameFor(uri)
	})

	w.step = &PlaylistOptions{
		forward:  true,
		Playlist: NewMutablePlaylist(w.files, names),
	}

	return nil
}

// Finish commits the dialog's terminal step. From track naming it creates
// one single-track playlist per file using the validated names; from the
// options step it creates the new multi-track playlist with the staged
// order and shuffle flag. An invalid naming step keeps the dialog open.
func (w *Wizard) Finish() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch step := w.step.(type) {
	case *NameTracks:
		names, valid := step.Namer.Validate()
		if !valid {
			return nil
		}

		for i, uri := range w.files {
			if err := w.lib.InsertPlaylist(names[i], false, []string{uri}, []string{names[i]}); err != nil {
				return fmt.Errorf("adding track %q: %w", names[i], err)
			}
		}

		w.closeLocked(false)

		return nil
	case *PlaylistOptions:
		uris, names := step.Playlist.Apply()

		// Tracks dropped before the commit never need their grants
		w.grants.Release(lo.Filter(w.freshGrants, func(uri string, _ int) bool {
			return !lo.Contains(uris, uri)
		}))

		if err := w.lib.InsertPlaylist(w.playlistName, step.Shuffle, uris, names); err != nil {
			return fmt.Errorf("adding playlist %q: %w", w.playlistName, err)
		}

		w.closeLocked(false)

		return nil
	default:
		return fmt.Errorf("nothing to finish here")
	}
}

// SetShuffle updates the options step's shuffle toggle.
func (w *Wizard) SetShuffle(shuffle bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if step, ok := w.step.(*PlaylistOptions); ok {
		step.Shuffle = shuffle
	}
}

func (w *Wizard) enterNameTracksLocked(forward, viaQuery bool) error {
	defaults := lo.Map(w.files, func(uri string, _ int) string {
		return w.nameFor(uri)
	})

	playlistNames, err := w.lib.PlaylistNames()
	if err != nil {
		return fmt.Errorf("loading playlist names: %w", err)
	}

	trackNames, err := w.lib.TrackDisplayNames()
	if err != nil {
		return fmt.Errorf("loading track names: %w", err)
	}

	w.step = &NameTracks{
		forward:  forward,
		viaQuery: viaQuery,
		Namer:    NewTrackNamer(defaults, append(playlistNames, trackNames...)),
	}

	return nil
}

func (w *Wizard) enterNamePlaylistLocked(forward bool) error {
	step := &NamePlaylist{forward: forward}

	step.Validator = validate.NewValidator(w.dialogCtx, w.playlistName,
		validate.NameMessageFunc(func(_ context.Context, name string) (bool, error) {
			return w.lib.ExistsPlaylistName(name)
		}))

	w.step = step

	return nil
}

// closeLocked tears down the dialog. releaseGrants distinguishes cancel
// paths (give back what this run acquired) from commit paths (the library
// now owns the grants).
func (w *Wizard) closeLocked(releaseGrants bool) {
	if w.dialogCancel != nil {
		w.dialogCancel()
		w.dialogCancel = nil
	}

	if releaseGrants && len(w.freshGrants) > 0 {
		w.grants.Release(w.freshGrants)
	}

	w.step = nil
	w.files = nil
	w.freshGrants = nil
	w.playlistName = ""
}
