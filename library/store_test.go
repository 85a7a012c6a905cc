// ABOUTME: Tests for the SQLite-backed library store
// ABOUTME: Playlist CRUD, track sharing, orphan cleanup, and preset snapshots

package library

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.sqlite3"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})

	return s
}

func mustInsert(t *testing.T, s *Store, name string, uris ...string) {
	t.Helper()

	names := make([]string, len(uris))
	for i, uri := range uris {
		names[i] = defaultNameFor(uri)
	}

	if err := s.InsertPlaylist(name, false, uris, names); err != nil {
		t.Fatalf("InsertPlaylist(%q) failed: %v", name, err)
	}
}

func TestInsertAndQueryPlaylist(t *testing.T) {
	s := openTestStore(t)

	mustInsert(t, s, "rain", "/s/rain.ogg")
	mustInsert(t, s, "forest", "/s/birds.ogg", "/s/wind.ogg")

	playlists, err := s.Playlists()
	if err != nil {
		t.Fatal(err)
	}

	if len(playlists) != 2 {
		t.Fatalf("Expected 2 playlists, got %d", len(playlists))
	}

	// Ordered by name
	if playlists[0].Name != "forest" || playlists[1].Name != "rain" {
		t.Errorf("Expected name order [forest rain], got [%s %s]", playlists[0].Name, playlists[1].Name)
	}

	if playlists[0].TrackCount != 2 || playlists[0].SingleTrack {
		t.Errorf("Expected forest with 2 tracks, got %+v", playlists[0])
	}

	if playlists[1].TrackCount != 1 || !playlists[1].SingleTrack {
		t.Errorf("Expected rain as single-track, got %+v", playlists[1])
	}

	if playlists[1].Volume != 1.0 {
		t.Errorf("Expected default volume 1.0, got %f", playlists[1].Volume)
	}
}

func TestPlaylistTracksKeepOrder(t *testing.T) {
	s := openTestStore(t)

	mustInsert(t, s, "forest", "/s/c.ogg", "/s/a.ogg", "/s/b.ogg")

	tracks, err := s.PlaylistTracks("forest")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"/s/c.ogg", "/s/a.ogg", "/s/b.ogg"}
	for i, uri := range want {
		if tracks[i].URI != uri {
			t.Errorf("Track %d: expected %q, got %q", i, uri, tracks[i].URI)
		}
	}
}

func TestTracksAreSharedByURI(t *testing.T) {
	s := openTestStore(t)

	mustInsert(t, s, "one", "/s/shared.ogg")
	mustInsert(t, s, "two", "/s/shared.ogg")

	uris, err := s.TrackURIs()
	if err != nil {
		t.Fatal(err)
	}

	if len(uris) != 1 {
		t.Errorf("Expected one shared track row, got %v", uris)
	}
}

func TestDeletePlaylistReturnsOrphans(t *testing.T) {
	s := openTestStore(t)

	mustInsert(t, s, "one", "/s/shared.ogg", "/s/own.ogg")
	mustInsert(t, s, "two", "/s/shared.ogg")

	orphans, err := s.DeletePlaylist("one")
	if err != nil {
		t.Fatal(err)
	}

	// The shared track survives; only the exclusively owned one is orphaned
	if len(orphans) != 1 || orphans[0] != "/s/own.ogg" {
		t.Errorf("Expected orphans [/s/own.ogg], got %v", orphans)
	}

	uris, err := s.TrackURIs()
	if err != nil {
		t.Fatal(err)
	}

	if len(uris) != 1 || uris[0] != "/s/shared.ogg" {
		t.Errorf("Expected only the shared track to remain, got %v", uris)
	}
}

func TestDeleteMissingPlaylistIsNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.DeletePlaylist("ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSetPlaylistShuffleAndTracksReplacesList(t *testing.T) {
	s := openTestStore(t)

	mustInsert(t, s, "forest", "/s/a.ogg", "/s/b.ogg")

	removed, err := s.SetPlaylistShuffleAndTracks("forest", true, []string{"/s/b.ogg", "/s/c.ogg"})
	if err != nil {
		t.Fatal(err)
	}

	if len(removed) != 1 || removed[0] != "/s/a.ogg" {
		t.Errorf("Expected removed [/s/a.ogg], got %v", removed)
	}

	tracks, err := s.PlaylistTracks("forest")
	if err != nil {
		t.Fatal(err)
	}

	if len(tracks) != 2 || tracks[0].URI != "/s/b.ogg" || tracks[1].URI != "/s/c.ogg" {
		t.Errorf("Expected tracks [b c], got %+v", tracks)
	}

	playlists, err := s.Playlists()
	if err != nil {
		t.Fatal(err)
	}

	if !playlists[0].Shuffle {
		t.Error("Expected shuffle enabled")
	}
}

func TestToggleActiveAndActivePairs(t *testing.T) {
	s := openTestStore(t)

	mustInsert(t, s, "rain", "/s/rain.ogg")
	mustInsert(t, s, "wind", "/s/wind.ogg")

	if err := s.ToggleActive("rain"); err != nil {
		t.Fatal(err)
	}

	pairs, err := s.ActivePairsNow()
	if err != nil {
		t.Fatal(err)
	}

	if len(pairs) != 1 || pairs[0].Name != "rain" || pairs[0].Volume != 1.0 {
		t.Errorf("Expected active pairs [{rain 1}], got %v", pairs)
	}

	if err := s.ToggleActive("rain"); err != nil {
		t.Fatal(err)
	}

	pairs, err = s.ActivePairsNow()
	if err != nil {
		t.Fatal(err)
	}

	if len(pairs) != 0 {
		t.Errorf("Expected no active pairs after toggling back, got %v", pairs)
	}
}

func TestSetVolumeClamps(t *testing.T) {
	s := openTestStore(t)

	mustInsert(t, s, "rain", "/s/rain.ogg")

	if err := s.SetVolume("rain", 1.5); err != nil {
		t.Fatal(err)
	}

	playlists, _ := s.Playlists()
	if playlists[0].Volume != 1.0 {
		t.Errorf("Expected volume clamped to 1.0, got %f", playlists[0].Volume)
	}

	if err := s.SetVolume("rain", -0.3); err != nil {
		t.Fatal(err)
	}

	playlists, _ = s.Playlists()
	if playlists[0].Volume != 0.0 {
		t.Errorf("Expected volume clamped to 0.0, got %f", playlists[0].Volume)
	}
}

func TestTrackErrorPropagatesToPlaylist(t *testing.T) {
	s := openTestStore(t)

	mustInsert(t, s, "forest", "/s/a.ogg", "/s/b.ogg")

	if err := s.SetTrackHasError("/s/b.ogg", true); err != nil {
		t.Fatal(err)
	}

	playlists, err := s.Playlists()
	if err != nil {
		t.Fatal(err)
	}

	if !playlists[0].HasError {
		t.Error("Expected the track error to surface on the playlist")
	}
}

func TestSavePresetSnapshotsActiveSet(t *testing.T) {
	s := openTestStore(t)

	mustInsert(t, s, "rain", "/s/rain.ogg")
	mustInsert(t, s, "wind", "/s/wind.ogg")

	if err := s.ToggleActive("rain"); err != nil {
		t.Fatal(err)
	}

	if err := s.SetVolume("rain", 0.4); err != nil {
		t.Fatal(err)
	}

	if err := s.SavePresetFromCurrentlyActive("evening"); err != nil {
		t.Fatal(err)
	}

	pairs, err := s.PresetContents("evening")
	if err != nil {
		t.Fatal(err)
	}

	if len(pairs) != 1 || pairs[0].Name != "rain" || pairs[0].Volume != 0.4 {
		t.Errorf("Expected snapshot [{rain 0.4}], got %v", pairs)
	}

	// Later volume changes must not leak into the saved snapshot
	if err := s.SetVolume("rain", 0.9); err != nil {
		t.Fatal(err)
	}

	pairs, _ = s.PresetContents("evening")
	if pairs[0].Volume != 0.4 {
		t.Errorf("Expected the snapshot to stay at 0.4, got %f", pairs[0].Volume)
	}
}

func TestSavePresetWithNothingActiveIsRefused(t *testing.T) {
	s := openTestStore(t)

	mustInsert(t, s, "rain", "/s/rain.ogg")

	if err := s.ToggleActive("rain"); err != nil {
		t.Fatal(err)
	}

	if err := s.SavePresetFromCurrentlyActive("evening"); err != nil {
		t.Fatal(err)
	}

	if err := s.ToggleActive("rain"); err != nil {
		t.Fatal(err)
	}

	err := s.SavePresetFromCurrentlyActive("evening")
	if !errors.Is(err, ErrNoActivePlaylists) {
		t.Fatalf("Expected ErrNoActivePlaylists, got %v", err)
	}

	// The refused save must leave the previous contents intact
	pairs, _ := s.PresetContents("evening")
	if len(pairs) != 1 || pairs[0].Name != "rain" {
		t.Errorf("Expected the old snapshot preserved, got %v", pairs)
	}
}

func TestRenamePlaylistFollowsPresetEntries(t *testing.T) {
	s := openTestStore(t)

	mustInsert(t, s, "rain", "/s/rain.ogg")

	if err := s.ToggleActive("rain"); err != nil {
		t.Fatal(err)
	}

	if err := s.SavePresetFromCurrentlyActive("evening"); err != nil {
		t.Fatal(err)
	}

	if err := s.RenamePlaylist("rain", "heavy rain"); err != nil {
		t.Fatal(err)
	}

	pairs, err := s.PresetContents("evening")
	if err != nil {
		t.Fatal(err)
	}

	if len(pairs) != 1 || pairs[0].Name != "heavy rain" {
		t.Errorf("Expected the preset entry to follow the rename, got %v", pairs)
	}
}

func TestDeletePlaylistRemovesPresetEntries(t *testing.T) {
	s := openTestStore(t)

	mustInsert(t, s, "rain", "/s/rain.ogg")
	mustInsert(t, s, "wind", "/s/wind.ogg")

	if err := s.ToggleActive("rain"); err != nil {
		t.Fatal(err)
	}

	if err := s.ToggleActive("wind"); err != nil {
		t.Fatal(err)
	}

	if err := s.SavePresetFromCurrentlyActive("evening"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.DeletePlaylist("rain"); err != nil {
		t.Fatal(err)
	}

	pairs, err := s.PresetContents("evening")
	if err != nil {
		t.Fatal(err)
	}

	if len(pairs) != 1 || pairs[0].Name != "wind" {
		t.Errorf("Expected only the wind entry to remain, got %v", pairs)
	}
}

func TestRenameAndDeletePreset(t *testing.T) {
	s := openTestStore(t)

	mustInsert(t, s, "rain", "/s/rain.ogg")

	if err := s.ToggleActive("rain"); err != nil {
		t.Fatal(err)
	}

	if err := s.SavePresetFromCurrentlyActive("evening"); err != nil {
		t.Fatal(err)
	}

	if err := s.RenamePreset("evening", "dusk"); err != nil {
		t.Fatal(err)
	}

	exists, err := s.ExistsPresetName("dusk")
	if err != nil || !exists {
		t.Fatalf("Expected preset %q to exist, got (%v, %v)", "dusk", exists, err)
	}

	pairs, _ := s.PresetContents("dusk")
	if len(pairs) != 1 {
		t.Errorf("Expected the entries to move with the rename, got %v", pairs)
	}

	if err := s.DeletePreset("dusk"); err != nil {
		t.Fatal(err)
	}

	exists, _ = s.ExistsPresetName("dusk")
	if exists {
		t.Error("Expected the preset to be gone")
	}

	// Missing preset contents read as empty, not as an error
	pairs, err = s.PresetContents("dusk")
	if err != nil || len(pairs) != 0 {
		t.Errorf("Expected empty contents for a deleted preset, got (%v, %v)", pairs, err)
	}
}

func TestRevisionBumpsOnWrite(t *testing.T) {
	s := openTestStore(t)

	before, _ := s.Revisions().Value()

	mustInsert(t, s, "rain", "/s/rain.ogg")

	after, _ := s.Revisions().Value()
	if after <= before {
		t.Errorf("Expected the revision to advance, got %d -> %d", before, after)
	}
}

func TestActivePairsStreamSeededOnOpen(t *testing.T) {
	s := openTestStore(t)

	pairs, ok := s.ActivePairs().Value()
	if !ok {
		t.Fatal("Expected the active-pairs stream to be seeded on open")
	}

	if len(pairs) != 0 {
		t.Errorf("Expected no active pairs in a fresh library, got %v", pairs)
	}
}
