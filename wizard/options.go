// ABOUTME: Playlist-options dialog for editing an existing playlist
// ABOUTME: Budget-gated track changes; shuffle survives even when tracks cannot

package wizard

import (
	"fmt"

	"github.com/samber/lo"

	"soundscape/library"
)

// OptionsLibrary is the store slice the standalone options dialog uses.
type OptionsLibrary interface {
	PlaylistTracks(name string) ([]library.Track, error)
	SetPlaylistShuffleAndTracks(name string, shuffle bool, uris []string) ([]string, error)
}

// OptionsDialog edits an existing playlist's shuffle flag and track list.
// Track additions are gated on the grant budget at Finish: when the budget
// cannot cover the added tracks, the shuffle change is kept, the track-list
// change is dropped, and a warning is posted.
type OptionsDialog struct {
	lib       OptionsLibrary
	grants    Grants
	messenger Poster

	PlaylistName string
	Playlist     *MutablePlaylist
	Shuffle      bool

	originalURIs []string
}

// NewOptionsDialog loads the playlist's current tracks into a staged list.
func NewOptionsDialog(lib OptionsLibrary, grants Grants, messenger Poster, p library.Playlist) (*OptionsDialog, error) {
	tracks, err := lib.PlaylistTracks(p.Name)
	if err != nil {
		return nil, fmt.Errorf("loading tracks for %q: %w", p.Name, err)
	}

	uris := lo.Map(tracks, func(t library.Track, _ int) string { return t.URI })
	names := lo.Map(tracks, func(t library.Track, _ int) string { return t.DisplayName })

	return &OptionsDialog{
		lib:          lib,
		grants:       grants,
		messenger:    messenger,
		PlaylistName: p.Name,
		Playlist:     NewMutablePlaylist(uris, names),
		Shuffle:      p.Shuffle,
		originalURIs: uris,
	}, nil
}

// AddFiles stages additional tracks at the end of the list. The grant cost
// is paid at Finish, not here.
func (d *OptionsDialog) AddFiles(uris, names []string) {
	d.Playlist.Append(uris, names)
}

// Finish applies the staged changes. Added tracks are granted all-or-nothing
// against the budget first; on insufficient budget only the shuffle flag is
// persisted and a warning is posted. Tracks dropped from the playlist have
// their now-unused grants released.
func (d *OptionsDialog) Finish() error {
	finalURIs, _ := d.Playlist.Apply()

	added := lo.Filter(finalURIs, func(uri string, _ int) bool {
		return !lo.Contains(d.originalURIs, uri)
	})

	if len(added) > 0 {
		if granted := d.grants.Acquire(added, false); granted == nil {
			d.messenger.PostWarning("Too many files: the added tracks were not saved, but the shuffle setting was")

			removed, err := d.lib.SetPlaylistShuffleAndTracks(d.PlaylistName, d.Shuffle, d.originalURIs)
			if err != nil {
				return fmt.Errorf("saving shuffle for %q: %w", d.PlaylistName, err)
			}

			d.grants.Release(removed)

			return nil
		}
	}

	removed, err := d.lib.SetPlaylistShuffleAndTracks(d.PlaylistName, d.Shuffle, finalURIs)
	if err != nil {
		return fmt.Errorf("saving playlist %q: %w", d.PlaylistName, err)
	}

	d.grants.Release(removed)

	return nil
}
