// ABOUTME: Interfaces and message types defining dependencies for the TUI package
// ABOUTME: Allows clean separation and easy testing with mocks

package tui

import (
	"soundscape/library"
	"soundscape/session"
	"soundscape/stream"
)

// Library is the store surface the TUI reads and writes. It is a superset of
// wizard.OptionsLibrary so the playlist-options dialog can share it.
type Library interface {
	Playlists() ([]library.Playlist, error)
	Presets() ([]library.Preset, error)
	PlaylistTracks(name string) ([]library.Track, error)
	ToggleActive(name string) error
	SetVolume(name string, volume float64) error
	RenamePlaylist(oldName, newName string) error
	DeletePlaylist(name string) ([]string, error)
	SetPlaylistShuffleAndTracks(name string, shuffle bool, uris []string) ([]string, error)
	ExistsPlaylistName(name string) (bool, error)
	Revisions() *stream.Source[int64]
}

// Grants is the file-access budget the TUI releases deleted playlists'
// orphaned tracks back into.
type Grants interface {
	Acquire(uris []string, allowPartial bool) []string
	Release(uris []string)
	Granted(uri string) bool
}

// Logger provides debug logging capability
type Logger func(format string, args ...interface{})

// revisionMsg signals that the library changed and lists need reloading.
type revisionMsg struct{}

// modifiedMsg carries the debounced preset-modified flag.
type modifiedMsg bool

// activeNameMsg carries the validated active-preset name.
type activeNameMsg string

// userMsg carries a one-shot user-facing message to display transiently.
type userMsg session.UserMessage
