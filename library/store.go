// ABOUTME: SQLite-backed store implementing all playlist/track/preset operations
// ABOUTME: Publishes active (name, volume) pairs and a revision counter after every write

package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"soundscape/stream"
)

// DefaultDBFile is used when no database path is configured.
const DefaultDBFile = "soundscape.sqlite3"

// ErrNoActivePlaylists is returned when a preset save would record an empty
// snapshot. The caller keeps the preset's previous contents.
var ErrNoActivePlaylists = errors.New("no active playlists to save")

// ErrNotFound is returned when a named playlist or preset does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the database and notifies stream subscribers after each write.
type Store struct {
	DB *gorm.DB
	db *sql.DB

	mu          sync.Mutex
	revision    int64
	revisions   *stream.Source[int64]
	activePairs *stream.Source[[]Pair]
}

// Open opens (creating if needed) the library database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Playlist{}, &Track{}, &PlaylistTrack{}, &Preset{}, &PresetEntry{}); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	s := &Store{
		DB:          db,
		db:          sqlDB,
		revisions:   stream.NewSourceOf[int64](0),
		activePairs: stream.NewSource[[]Pair](),
	}

	pairs, err := s.ActivePairsNow()
	if err != nil {
		_ = sqlDB.Close()

		return nil, err
	}

	s.activePairs.Publish(pairs)

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Revisions is a monotonic counter published after every successful write.
// Consumers that re-query on change subscribe here.
func (s *Store) Revisions() *stream.Source[int64] {
	return s.revisions
}

// ActivePairs is the live set of (name, volume) pairs among active playlists.
func (s *Store) ActivePairs() *stream.Source[[]Pair] {
	return s.activePairs
}

// notifyChanged recomputes the active pair set and bumps the revision.
// Must be called after every successful write, outside any transaction.
func (s *Store) notifyChanged() {
	s.mu.Lock()
	s.revision++
	rev := s.revision
	s.mu.Unlock()

	pairs, err := s.ActivePairsNow()
	if err == nil {
		s.activePairs.Publish(pairs)
	}

	s.revisions.Publish(rev)
}

// ActivePairsNow queries the current active pair set directly.
func (s *Store) ActivePairsNow() ([]Pair, error) {
	var playlists []Playlist
	if err := s.DB.Where("active = ?", true).Find(&playlists).Error; err != nil {
		return nil, fmt.Errorf("querying active playlists: %w", err)
	}

	return lo.Map(playlists, func(p Playlist, _ int) Pair {
		return Pair{Name: p.Name, Volume: p.Volume}
	}), nil
}

// ExistsPlaylistName reports whether a playlist with the given name exists.
func (s *Store) ExistsPlaylistName(name string) (bool, error) {
	var count int64
	if err := s.DB.Model(&Playlist{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("counting playlists: %w", err)
	}

	return count > 0, nil
}

// ExistsPresetName reports whether a preset with the given name exists.
func (s *Store) ExistsPresetName(name string) (bool, error) {
	var count int64
	if err := s.DB.Model(&Preset{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("counting presets: %w", err)
	}

	return count > 0, nil
}

// Playlists returns all playlists ordered by name, with derived fields
// (track count, single-track flag, error flag) filled in.
func (s *Store) Playlists() ([]Playlist, error) {
	var playlists []Playlist
	if err := s.DB.Order("name").Find(&playlists).Error; err != nil {
		return nil, fmt.Errorf("querying playlists: %w", err)
	}

	for i := range playlists {
		tracks, err := s.playlistTracksByID(playlists[i].ID)
		if err != nil {
			return nil, err
		}

		playlists[i].TrackCount = len(tracks)
		playlists[i].SingleTrack = len(tracks) == 1

		for _, t := range tracks {
			if t.HasError {
				playlists[i].HasError = true

				break
			}
		}
	}

	return playlists, nil
}

// Presets returns all presets ordered by name.
func (s *Store) Presets() ([]Preset, error) {
	var presets []Preset
	if err := s.DB.Order("name").Find(&presets).Error; err != nil {
		return nil, fmt.Errorf("querying presets: %w", err)
	}

	return presets, nil
}

// PlaylistTracks returns a playlist's tracks in playlist order.
func (s *Store) PlaylistTracks(name string) ([]Track, error) {
	p, err := s.playlistByName(name)
	if err != nil {
		return nil, err
	}

	return s.playlistTracksByID(p.ID)
}

func (s *Store) playlistTracksByID(playlistID string) ([]Track, error) {
	var tracks []Track

	err := s.DB.
		Joins("JOIN playlist_tracks ON playlist_tracks.track_id = tracks.id").
		Where("playlist_tracks.playlist_id = ?", playlistID).
		Order("playlist_tracks.order_idx").
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("querying playlist tracks: %w", err)
	}

	return tracks, nil
}

func (s *Store) playlistByName(name string) (Playlist, error) {
	var p Playlist

	err := s.DB.Where("name = ?", name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Playlist{}, fmt.Errorf("playlist %q: %w", name, ErrNotFound)
	}

	if err != nil {
		return Playlist{}, fmt.Errorf("querying playlist %q: %w", name, err)
	}

	return p, nil
}

// TrackDisplayNames returns the display names of every track in the library.
// Used by validators to reject duplicate names.
func (s *Store) TrackDisplayNames() ([]string, error) {
	var names []string
	if err := s.DB.Model(&Track{}).Pluck("display_name", &names).Error; err != nil {
		return nil, fmt.Errorf("querying track names: %w", err)
	}

	return names, nil
}

// PlaylistNames returns the names of every playlist.
func (s *Store) PlaylistNames() ([]string, error) {
	var names []string
	if err := s.DB.Model(&Playlist{}).Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("querying playlist names: %w", err)
	}

	return names, nil
}

// InsertPlaylist creates a playlist with the given tracks in order. Track
// rows are shared: a URI already in the library reuses its existing row.
// displayNames runs parallel to uris and names any newly created track.
func (s *Store) InsertPlaylist(name string, shuffle bool, uris, displayNames []string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		p := Playlist{
			ID:      uuid.NewString(),
			Name:    name,
			Shuffle: shuffle,
			Volume:  1.0,
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("creating playlist: %w", err)
		}

		for i, uri := range uris {
			trackID, err := ensureTrack(tx, uri, displayNames[i])
			if err != nil {
				return err
			}

			join := PlaylistTrack{PlaylistID: p.ID, TrackID: trackID, OrderIdx: i}
			if err := tx.Create(&join).Error; err != nil {
				return fmt.Errorf("linking track: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.notifyChanged()

	return nil
}

func ensureTrack(tx *gorm.DB, uri, displayName string) (string, error) {
	var t Track

	err := tx.Where("uri = ?", uri).First(&t).Error
	if err == nil {
		return t.ID, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("querying track: %w", err)
	}

	t = Track{ID: uuid.NewString(), URI: uri, DisplayName: displayName}
	if err := tx.Create(&t).Error; err != nil {
		return "", fmt.Errorf("creating track: %w", err)
	}

	return t.ID, nil
}

// SetPlaylistShuffleAndTracks replaces a playlist's shuffle flag and track
// list (in the given order). Returns the URIs of tracks that are no longer
// referenced by any playlist, so the caller can release their permissions.
func (s *Store) SetPlaylistShuffleAndTracks(name string, shuffle bool, uris []string) ([]string, error) {
	var removed []string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var p Playlist
		if err := tx.Where("name = ?", name).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("playlist %q: %w", name, ErrNotFound)
			}

			return fmt.Errorf("querying playlist: %w", err)
		}

		if err := tx.Model(&p).Update("shuffle", shuffle).Error; err != nil {
			return fmt.Errorf("updating shuffle: %w", err)
		}

		if err := tx.Where("playlist_id = ?", p.ID).Delete(&PlaylistTrack{}).Error; err != nil {
			return fmt.Errorf("clearing playlist tracks: %w", err)
		}

		for i, uri := range uris {
			trackID, err := ensureTrack(tx, uri, defaultNameFor(uri))
			if err != nil {
				return err
			}

			join := PlaylistTrack{PlaylistID: p.ID, TrackID: trackID, OrderIdx: i}
			if err := tx.Create(&join).Error; err != nil {
				return fmt.Errorf("linking track: %w", err)
			}
		}

		var err error

		removed, err = deleteOrphanTracks(tx)

		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyChanged()

	return removed, nil
}

// defaultNameFor derives a crude display name from a URI. Callers that can
// do better (tag metadata) create the track rows themselves first.
func defaultNameFor(uri string) string {
	base := filepath.Base(uri)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}

	return base
}

// deleteOrphanTracks removes tracks referenced by no playlist and returns
// their URIs.
func deleteOrphanTracks(tx *gorm.DB) ([]string, error) {
	var orphans []Track

	err := tx.
		Where("id NOT IN (SELECT DISTINCT track_id FROM playlist_tracks)").
		Find(&orphans).Error
	if err != nil {
		return nil, fmt.Errorf("querying orphan tracks: %w", err)
	}

	if len(orphans) == 0 {
		return nil, nil
	}

	ids := lo.Map(orphans, func(t Track, _ int) string { return t.ID })
	if err := tx.Where("id IN ?", ids).Delete(&Track{}).Error; err != nil {
		return nil, fmt.Errorf("deleting orphan tracks: %w", err)
	}

	return lo.Map(orphans, func(t Track, _ int) string { return t.URI }), nil
}

// RenamePlaylist renames a playlist. Preset entries follow the rename so
// saved snapshots keep referring to the same playlist.
func (s *Store) RenamePlaylist(oldName, newName string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Playlist{}).Where("name = ?", oldName).Update("name", newName)
		if res.Error != nil {
			return fmt.Errorf("renaming playlist: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			return fmt.Errorf("playlist %q: %w", oldName, ErrNotFound)
		}

		err := tx.Model(&PresetEntry{}).
			Where("playlist_name = ?", oldName).
			Update("playlist_name", newName).Error
		if err != nil {
			return fmt.Errorf("renaming preset entries: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.notifyChanged()

	return nil
}

// DeletePlaylist removes a playlist, its preset entries, and any tracks now
// referenced by no playlist. Returns the orphaned track URIs.
func (s *Store) DeletePlaylist(name string) ([]string, error) {
	var removed []string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var p Playlist
		if err := tx.Where("name = ?", name).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("playlist %q: %w", name, ErrNotFound)
			}

			return fmt.Errorf("querying playlist: %w", err)
		}

		if err := tx.Where("playlist_id = ?", p.ID).Delete(&PlaylistTrack{}).Error; err != nil {
			return fmt.Errorf("clearing playlist tracks: %w", err)
		}

		if err := tx.Where("playlist_name = ?", name).Delete(&PresetEntry{}).Error; err != nil {
			return fmt.Errorf("clearing preset entries: %w", err)
		}

		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("deleting playlist: %w", err)
		}

		var err error

		removed, err = deleteOrphanTracks(tx)

		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyChanged()

	return removed, nil
}

// ToggleActive flips a playlist's active flag.
func (s *Store) ToggleActive(name string) error {
	p, err := s.playlistByName(name)
	if err != nil {
		return err
	}

	if err := s.DB.Model(&p).Update("active", !p.Active).Error; err != nil {
		return fmt.Errorf("toggling active: %w", err)
	}

	s.notifyChanged()

	return nil
}

// SetVolume sets a playlist's volume, clamped to [0, 1].
func (s *Store) SetVolume(name string, volume float64) error {
	if volume < 0 {
		volume = 0
	}

	if volume > 1 {
		volume = 1
	}

	p, err := s.playlistByName(name)
	if err != nil {
		return err
	}

	if err := s.DB.Model(&p).Update("volume", volume).Error; err != nil {
		return fmt.Errorf("setting volume: %w", err)
	}

	s.notifyChanged()

	return nil
}

// SetTrackHasError records a playback-open failure on a track. The flag
// propagates into Playlist.HasError on read.
func (s *Store) SetTrackHasError(uri string, hasError bool) error {
	err := s.DB.Model(&Track{}).Where("uri = ?", uri).Update("has_error", hasError).Error
	if err != nil {
		return fmt.Errorf("setting track error: %w", err)
	}

	s.notifyChanged()

	return nil
}

// SavePresetFromCurrentlyActive replaces the named preset's stored pairs
// with the current set of active playlists and their volumes, creating the
// preset if it does not exist. Returns ErrNoActivePlaylists (and leaves any
// existing contents untouched) when nothing is active, so a preset is never
// silently emptied.
func (s *Store) SavePresetFromCurrentlyActive(name string) error {
	pairs, err := s.ActivePairsNow()
	if err != nil {
		return err
	}

	if len(pairs) == 0 {
		return ErrNoActivePlaylists
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var preset Preset

		err := tx.Where("name = ?", name).First(&preset).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			preset = Preset{Name: name}
			if err := tx.Create(&preset).Error; err != nil {
				return fmt.Errorf("creating preset: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("querying preset: %w", err)
		}

		if err := tx.Where("preset_name = ?", name).Delete(&PresetEntry{}).Error; err != nil {
			return fmt.Errorf("clearing preset entries: %w", err)
		}

		for _, pair := range pairs {
			entry := PresetEntry{PresetName: name, PlaylistName: pair.Name, Volume: pair.Volume}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("creating preset entry: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.notifyChanged()

	return nil
}

// DeletePreset removes a preset and its entries.
func (s *Store) DeletePreset(name string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("preset_name = ?", name).Delete(&PresetEntry{}).Error; err != nil {
			return fmt.Errorf("clearing preset entries: %w", err)
		}

		res := tx.Where("name = ?", name).Delete(&Preset{})
		if res.Error != nil {
			return fmt.Errorf("deleting preset: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			return fmt.Errorf("preset %q: %w", name, ErrNotFound)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.notifyChanged()

	return nil
}

// RenamePreset renames a preset, moving its entries along.
func (s *Store) RenamePreset(oldName, newName string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Preset{}).Where("name = ?", oldName).Update("name", newName)
		if res.Error != nil {
			return fmt.Errorf("renaming preset: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			return fmt.Errorf("preset %q: %w", oldName, ErrNotFound)
		}

		err := tx.Model(&PresetEntry{}).
			Where("preset_name = ?", oldName).
			Update("preset_name", newName).Error
		if err != nil {
			return fmt.Errorf("moving preset entries: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.notifyChanged()

	return nil
}

// PresetContents returns the (name, volume) pairs recorded in a preset.
// A missing preset yields an empty slice, not an error: the active-preset
// reconciler treats "no such preset" and "empty preset" the same way.
func (s *Store) PresetContents(name string) ([]Pair, error) {
	var entries []PresetEntry
	if err := s.DB.Where("preset_name = ?", name).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("querying preset entries: %w", err)
	}

	return lo.Map(entries, func(e PresetEntry, _ int) Pair {
		return Pair{Name: e.PlaylistName, Volume: e.Volume}
	}), nil
}

// TrackURIs returns every track URI in the library, used to seed the
// permission tracker at startup.
func (s *Store) TrackURIs() ([]string, error) {
	var uris []string
	if err := s.DB.Model(&Track{}).Pluck("uri", &uris).Error; err != nil {
		return nil, fmt.Errorf("querying track uris: %w", err)
	}

	return uris, nil
}
