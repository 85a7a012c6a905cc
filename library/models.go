// ABOUTME: Persistence entities for playlists, tracks, and presets
// ABOUTME: gorm models with an ordered playlist-track join table

// Package library is the single source of truth for playlists, tracks and
// presets. It wraps a SQLite database and republishes the live set of active
// (playlist, volume) pairs after every write.
package library

import "time"

// Playlist is a named, optionally shuffled group of one or more tracks with
// its own volume and active toggle.
type Playlist struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Name      string `gorm:"uniqueIndex:idx_playlist_name"`
	Shuffle   bool
	Active    bool
	Volume    float64
	CreatedAt time.Time

	// Derived on read, not stored
	HasError    bool `gorm:"-"`
	TrackCount  int  `gorm:"-"`
	SingleTrack bool `gorm:"-"`
}

// Track is a single sound resource reference. Identity is the URI; the
// display name may be overridden by the user. HasError is set when playback
// fails to open the underlying resource.
type Track struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	URI         string `gorm:"uniqueIndex:idx_track_uri"`
	DisplayName string
	HasError    bool
	CreatedAt   time.Time
}

// PlaylistTrack is the ordered many-to-many join between playlists and
// tracks. OrderIdx is the track's position within the playlist.
type PlaylistTrack struct {
	PlaylistID string `gorm:"primaryKey;type:varchar(36);index:idx_pt_playlist"`
	TrackID    string `gorm:"primaryKey;type:varchar(36);index:idx_pt_track"`
	OrderIdx   int
}

// Preset is a named snapshot of which playlists were active and at what
// volume, captured at save time. Shuffle and track order belong to the
// playlist, not the preset.
type Preset struct {
	Name      string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// PresetEntry is one (playlist, volume) pair recorded in a preset.
type PresetEntry struct {
	PresetName   string `gorm:"primaryKey;index:idx_pe_preset"`
	PlaylistName string `gorm:"primaryKey"`
	Volume       float64
}

// Pair is a (playlist name, volume) pair, the comparison domain for preset
// modification checks.
type Pair struct {
	Name   string
	Volume float64
}

// PairsEqual reports whether two pair slices describe the same set.
func PairsEqual(a, b []Pair) bool {
	if len(a) != len(b) {
		return false
	}

	set := make(map[Pair]struct{}, len(a))
	for _, p := range a {
		set[p] = struct{}{}
	}

	for _, p := range b {
		if _, ok := set[p]; !ok {
			return false
		}
	}

	return true
}
