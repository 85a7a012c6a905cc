// ABOUTME: Tests for the active-preset reconciler
// ABOUTME: Modified-flag derivation, debounce settling, and stale-name cleanup

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"soundscape/library"
	"soundscape/stream"
)

const testDebounce = 10 * time.Millisecond

type fakeStore struct {
	mu        sync.Mutex
	presets   map[string][]library.Pair
	pairs     *stream.Source[[]library.Pair]
	revs      *stream.Source[int64]
	rev       int64
	existsErr error
	gate      *lookupGate
}

// lookupGate holds an ExistsPresetName call for one name until released.
type lookupGate struct {
	name    string
	entered chan struct{}
	release chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		presets: make(map[string][]library.Pair),
		pairs:   stream.NewSourceOf([]library.Pair(nil)),
		revs:    stream.NewSourceOf(int64(0)),
	}
}

func (f *fakeStore) ExistsPresetName(name string) (bool, error) {
	f.mu.Lock()
	gate := f.gate
	err := f.existsErr
	f.mu.Unlock()

	if gate != nil && name == gate.name {
		select {
		case gate.entered <- struct{}{}:
		default:
		}

		<-gate.release
	}

	if err != nil {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.presets[name]

	return ok, nil
}

func (f *fakeStore) PresetContents(name string) ([]library.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]library.Pair(nil), f.presets[name]...), nil
}

func (f *fakeStore) ActivePairs() *stream.Source[[]library.Pair] { return f.pairs }
func (f *fakeStore) Revisions() *stream.Source[int64]            { return f.revs }

func (f *fakeStore) setPreset(name string, pairs []library.Pair) {
	f.mu.Lock()
	f.presets[name] = pairs
	f.rev++
	rev := f.rev
	f.mu.Unlock()

	f.revs.Publish(rev)
}

func (f *fakeStore) removePreset(name string) {
	f.mu.Lock()
	delete(f.presets, name)
	f.rev++
	rev := f.rev
	f.mu.Unlock()

	f.revs.Publish(rev)
}

// renamePreset commits old→new in one revision, the way the store does.
func (f *fakeStore) renamePreset(oldName, newName string) {
	f.mu.Lock()
	f.presets[newName] = f.presets[oldName]
	delete(f.presets, oldName)
	f.rev++
	rev := f.rev
	f.mu.Unlock()

	f.revs.Publish(rev)
}

func (f *fakeStore) blockLookups(name string) *lookupGate {
	gate := &lookupGate{
		name:    name,
		entered: make(chan struct{}, 4),
		release: make(chan struct{}),
	}

	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()

	return gate
}

func (f *fakeStore) setExistsErr(err error) {
	f.mu.Lock()
	f.existsErr = err
	f.mu.Unlock()
}

func (f *fakeStore) setLive(pairs []library.Pair) {
	f.pairs.Publish(pairs)
}

type fakePrefs struct {
	mu     sync.Mutex
	name   string
	clears int
	names  *stream.Source[string]
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{names: stream.NewSourceOf("")}
}

func (f *fakePrefs) ActivePresetName() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.name
}

func (f *fakePrefs) SetActivePresetName(name string) error {
	f.mu.Lock()
	f.name = name
	f.mu.Unlock()

	f.names.Publish(name)

	return nil
}

func (f *fakePrefs) Clear() error {
	f.mu.Lock()
	f.name = ""
	f.clears++
	f.mu.Unlock()

	f.names.Publish("")

	return nil
}

func (f *fakePrefs) Names() *stream.Source[string] { return f.names }

func (f *fakePrefs) clearCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.clears
}

func newTestState(t *testing.T) (*ActivePresetState, *fakeStore, *fakePrefs) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := newFakeStore()
	prefs := newFakePrefs()
	state := NewActivePresetState(ctx, store, prefs, testDebounce, nil)

	return state, store, prefs
}

func waitFor(t *testing.T, what string, pred func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}

		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("Timed out waiting for %s", what)
}

// settle waits out the debounce plus the reconciler's reaction time.
func settle() {
	time.Sleep(10 * testDebounce)
}

func TestNoActivePresetIsUnmodified(t *testing.T) {
	state, store, _ := newTestState(t)

	store.setLive([]library.Pair{{Name: "rain", Volume: 0.5}})
	settle()

	if state.ActiveName() != "" {
		t.Errorf("Expected no active preset, got %q", state.ActiveName())
	}

	if state.Modified() {
		t.Error("Expected unmodified with no active preset")
	}
}

func TestMatchingContentsAreUnmodified(t *testing.T) {
	state, store, _ := newTestState(t)

	pairs := []library.Pair{{Name: "rain", Volume: 0.5}, {Name: "wind", Volume: 0.8}}
	store.setPreset("evening", pairs)
	store.setLive(pairs)

	if err := state.SetName("evening"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "active name", func() bool { return state.ActiveName() == "evening" })
	settle()

	if state.Modified() {
		t.Error("Expected unmodified when preset contents match the live set")
	}
}

func TestDivergingContentsAreModified(t *testing.T) {
	state, store, _ := newTestState(t)

	store.setPreset("evening", []library.Pair{{Name: "rain", Volume: 0.5}})
	store.setLive([]library.Pair{{Name: "rain", Volume: 0.5}})

	if err := state.SetName("evening"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "active name", func() bool { return state.ActiveName() == "evening" })

	// Same playlist at a different volume counts as a change
	store.setLive([]library.Pair{{Name: "rain", Volume: 0.9}})

	waitFor(t, "modified flag", func() bool { return state.Modified() })
}

func TestEmptyPresetIsNeverModified(t *testing.T) {
	state, store, _ := newTestState(t)

	store.setPreset("empty", nil)
	store.setLive([]library.Pair{{Name: "rain", Volume: 0.5}})

	if err := state.SetName("empty"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "active name", func() bool { return state.ActiveName() == "empty" })
	settle()

	if state.Modified() {
		t.Error("Expected an empty preset to always read as unmodified")
	}
}

func TestNonexistentNameIsCleared(t *testing.T) {
	state, _, prefs := newTestState(t)

	if err := state.SetName("ghost"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "cleared reference", func() bool { return prefs.clearCount() > 0 })

	if state.ActiveName() != "" {
		t.Errorf("Expected empty active name, got %q", state.ActiveName())
	}
}

func TestDeletingActivePresetClearsReference(t *testing.T) {
	state, store, prefs := newTestState(t)

	pairs := []library.Pair{{Name: "rain", Volume: 0.5}}
	store.setPreset("evening", pairs)
	store.setLive(pairs)

	if err := state.SetName("evening"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "active name", func() bool { return state.ActiveName() == "evening" })

	store.removePreset("evening")

	waitFor(t, "cleared reference", func() bool { return prefs.clearCount() > 0 })
	waitFor(t, "empty active name", func() bool { return state.ActiveName() == "" })
	settle()

	if state.Modified() {
		t.Error("Expected unmodified after the active preset was deleted")
	}
}

func TestRenameOverlappingLookupKeepsNewReference(t *testing.T) {
	state, store, prefs := newTestState(t)

	pairs := []library.Pair{{Name: "rain", Volume: 0.5}}
	store.setPreset("evening", pairs)
	store.setLive(pairs)

	if err := state.SetName("evening"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "active name", func() bool { return state.ActiveName() == "evening" })
	settle()

	// Hold the reconciler inside its existence check for the old name while
	// the rename commits and the reference moves to the new one.
	gate := store.blockLookups("evening")

	store.renamePreset("evening", "dusk")

	select {
	case <-gate.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the lookup to start")
	}

	if err := state.SetName("dusk"); err != nil {
		t.Fatal(err)
	}

	close(gate.release)

	waitFor(t, "renamed active name", func() bool { return state.ActiveName() == "dusk" })

	if prefs.clearCount() != 0 {
		t.Errorf("Expected the re-pointed reference to survive, got %d clears", prefs.clearCount())
	}

	if prefs.ActivePresetName() != "dusk" {
		t.Errorf("Expected the reference to stay %q, got %q", "dusk", prefs.ActivePresetName())
	}

	settle()

	if state.Modified() {
		t.Error("Expected a rename to leave the modified flag alone")
	}
}

func TestLookupErrorKeepsPublishedStateAndLogs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := newFakeStore()
	prefs := newFakePrefs()

	var (
		logMu  sync.Mutex
		logged []string
	)

	state := NewActivePresetState(ctx, store, prefs, testDebounce, func(format string, args ...interface{}) {
		logMu.Lock()
		logged = append(logged, fmt.Sprintf(format, args...))
		logMu.Unlock()
	})

	pairs := []library.Pair{{Name: "rain", Volume: 0.5}}
	store.setPreset("evening", pairs)
	store.setLive(pairs)

	if err := state.SetName("evening"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "active name", func() bool { return state.ActiveName() == "evening" })

	store.setExistsErr(errors.New("database locked"))
	store.setLive(pairs)

	waitFor(t, "logged lookup failure", func() bool {
		logMu.Lock()
		defer logMu.Unlock()

		for _, line := range logged {
			if strings.Contains(line, "database locked") {
				return true
			}
		}

		return false
	})

	if state.ActiveName() != "evening" {
		t.Errorf("Expected the last published name kept, got %q", state.ActiveName())
	}

	if prefs.clearCount() != 0 {
		t.Errorf("Expected no clear on a lookup error, got %d", prefs.clearCount())
	}
}

func TestTransientMismatchIsAbsorbedByDebounce(t *testing.T) {
	state, store, _ := newTestState(t)

	pairs := []library.Pair{{Name: "rain", Volume: 0.5}}
	store.setPreset("evening", pairs)
	store.setLive(pairs)

	if err := state.SetName("evening"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "active name", func() bool { return state.ActiveName() == "evening" })
	settle()

	// Flip away and back within the debounce window
	store.setLive([]library.Pair{{Name: "wind", Volume: 0.2}})
	store.setLive(pairs)

	settle()

	if state.Modified() {
		t.Error("Expected the transient mismatch to be absorbed by the debounce")
	}
}
