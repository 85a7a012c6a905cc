// ABOUTME: Staged, reorderable, removable track list for the options step
// ABOUTME: Changes accumulate in memory and apply in one shot on Finish

package wizard

import "sync"

// MutableTrack is one staged entry: a track plus its pending removal mark.
type MutableTrack struct {
	URI              string
	DisplayName      string
	MarkedForRemoval bool
}

// MutablePlaylist stages reordering, removal marks, and appends for a
// playlist's track list. Nothing persists until the owning dialog finishes.
type MutablePlaylist struct {
	mu     sync.Mutex
	tracks []MutableTrack
}

// NewMutablePlaylist stages the given tracks in order. uris and names run
// parallel.
func NewMutablePlaylist(uris, names []string) *MutablePlaylist {
	tracks := make([]MutableTrack, len(uris))
	for i, uri := range uris {
		tracks[i] = MutableTrack{URI: uri, DisplayName: names[i]}
	}

	return &MutablePlaylist{tracks: tracks}
}

// Tracks returns a copy of the staged list.
func (mp *MutablePlaylist) Tracks() []MutableTrack {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return append([]MutableTrack(nil), mp.tracks...)
}

// Len returns the number of staged tracks, including removal-marked ones.
func (mp *MutablePlaylist) Len() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return len(mp.tracks)
}

// ToggleRemoval flips the removal mark on the track at index. A playlist
// must keep at least one track, so marking the last unmarked track is
// refused.
func (mp *MutablePlaylist) ToggleRemoval(index int) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if index < 0 || index >= len(mp.tracks) {
		return false
	}

	if !mp.tracks[index].MarkedForRemoval {
		unmarked := 0

		for _, t := range mp.tracks {
			if !t.MarkedForRemoval {
				unmarked++
			}
		}

		if unmarked <= 1 {
			return false
		}
	}

	mp.tracks[index].MarkedForRemoval = !mp.tracks[index].MarkedForRemoval

	return true
}

// Move shifts the track at from to position to, preserving relative order of
// the rest.
func (mp *MutablePlaylist) Move(from, to int) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if from < 0 || from >= len(mp.tracks) || to < 0 || to >= len(mp.tracks) || from == to {
		return false
	}

	t := mp.tracks[from]
	mp.tracks = append(mp.tracks[:from], mp.tracks[from+1:]...)

	rest := append([]MutableTrack(nil), mp.tracks[to:]...)
	mp.tracks = append(append(mp.tracks[:to:to], t), rest...)

	return true
}

// Append stages additional tracks at the end.
func (mp *MutablePlaylist) Append(uris, names []string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	for i, uri := range uris {
		mp.tracks = append(mp.tracks, MutableTrack{URI: uri, DisplayName: names[i]})
	}
}

// Apply resolves the staged changes: removal-marked tracks drop out and the
// final order is returned as parallel uri/name slices.
func (mp *MutablePlaylist) Apply() (uris, names []string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	for _, t := range mp.tracks {
		if t.MarkedForRemoval {
			continue
		}

		uris = append(uris, t.URI)
		names = append(names, t.DisplayName)
	}

	return uris, names
}

// RemovedURIs returns the URIs currently marked for removal.
func (mp *MutablePlaylist) RemovedURIs() []string {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var removed []string

	for _, t := range mp.tracks {
		if t.MarkedForRemoval {
			removed = append(removed, t.URI)
		}
	}

	return removed
}
