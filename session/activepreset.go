// ABOUTME: Active-preset reference and its derived modified state
// ABOUTME: Debounced reconciliation of preset contents against live active playlists

package session

import (
	"context"
	"time"

	"soundscape/library"
	"soundscape/stream"
)

// DefaultModifiedDebounce absorbs the transient window between pointing the
// active-preset reference at a new preset and the playlist active flags
// catching up. It must stay short enough not to hide durable modification.
const DefaultModifiedDebounce = 200 * time.Millisecond

// PresetSource is the slice of the library store the reconciler reads.
type PresetSource interface {
	ExistsPresetName(name string) (bool, error)
	PresetContents(name string) ([]library.Pair, error)
	ActivePairs() *stream.Source[[]library.Pair]
	Revisions() *stream.Source[int64]
}

// Logger provides debug logging capability
type Logger func(format string, args ...interface{})

// PrefStore is the slice of the preference store holding the active-preset
// reference. An empty name means no preset is active.
type PrefStore interface {
	ActivePresetName() string
	SetActivePresetName(name string) error
	Clear() error
	Names() *stream.Source[string]
}

// ActivePresetState tracks which preset is active and whether its recorded
// contents differ from the live set of active playlists.
//
// A preset with no recorded pairs is defined as unmodified. This covers the
// "no active preset" case without a separate null check, at the cost of a
// preset that legitimately owns zero playlists being indistinguishable from
// no preset at all.
type ActivePresetState struct {
	store  PresetSource
	prefs  PrefStore
	debugf Logger

	names       *stream.Source[string]
	rawModified *stream.Source[bool]
	isModified  *stream.Source[bool]
}

// NewActivePresetState starts the reconciler. Its goroutine lives until ctx
// is done. debounce is the settle time applied to IsModified; use
// DefaultModifiedDebounce unless configured otherwise. debugf may be nil.
func NewActivePresetState(ctx context.Context, store PresetSource, prefs PrefStore, debounce time.Duration, debugf Logger) *ActivePresetState {
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	s := &ActivePresetState{
		store:       store,
		prefs:       prefs,
		debugf:      debugf,
		names:       stream.NewSourceOf(""),
		rawModified: stream.NewSourceOf(false),
	}

	s.isModified = stream.Debounce(ctx, s.rawModified, debounce)

	go s.run(ctx)

	return s
}

func (s *ActivePresetState) run(ctx context.Context) {
	nameL := s.prefs.Names().Subscribe()
	revL := s.store.Revisions().Subscribe()
	pairsL := s.store.ActivePairs().Subscribe()

	defer s.prefs.Names().Unsubscribe(nameL)
	defer s.store.Revisions().Unsubscribe(revL)
	defer s.store.ActivePairs().Unsubscribe(pairsL)

	var (
		name string
		live []library.Pair
	)

	for {
		select {
		case <-ctx.Done():
			return
		case name = <-nameL.C:
		case <-revL.C:
		case live = <-pairsL.C:
		}

		s.reconcile(name, live)
	}
}

// reconcile recomputes the published name and modified flag. A reference to
// a preset that no longer exists is treated as absent and cleared.
func (s *ActivePresetState) reconcile(name string, live []library.Pair) {
	if name != "" {
		exists, err := s.store.ExistsPresetName(name)
		if err != nil {
			s.debugf("preset lookup for %q failed, keeping last published state: %v", name, err)

			return
		}

		if !exists {
			// The reference may have moved to another preset while the
			// lookup ran (a rename re-points it right after the store
			// commit). Clearing then would wipe the newer value, so only
			// clear while the reference still names the vanished preset.
			if s.prefs.ActivePresetName() != name {
				return
			}

			_ = s.prefs.Clear()
			name = ""
		}
	}

	var presetPairs []library.Pair

	if name != "" {
		var err error

		presetPairs, err = s.store.PresetContents(name)
		if err != nil {
			s.debugf("preset contents for %q unreadable, keeping last published state: %v", name, err)

			return
		}
	}

	if cur, ok := s.names.Value(); !ok || cur != name {
		s.names.Publish(name)
	}

	modified := len(presetPairs) > 0 && !library.PairsEqual(presetPairs, live)
	s.rawModified.Publish(modified)
}

// Name is the stream of the validated active-preset name, "" when none.
func (s *ActivePresetState) Name() *stream.Source[string] {
	return s.names
}

// IsModified is the debounced stream of the modified flag.
func (s *ActivePresetState) IsModified() *stream.Source[bool] {
	return s.isModified
}

// ActiveName returns the current validated active-preset name.
func (s *ActivePresetState) ActiveName() string {
	name, _ := s.names.Value()

	return name
}

// Modified returns the current debounced modified flag.
func (s *ActivePresetState) Modified() bool {
	modified, _ := s.isModified.Value()

	return modified
}

// SetName points the active-preset reference at name. The preset does not
// have to exist yet; an unknown name is cleared by the next reconciliation.
func (s *ActivePresetState) SetName(name string) error {
	return s.prefs.SetActivePresetName(name)
}

// Clear removes the active-preset reference, making the name empty and the
// modified flag false.
func (s *ActivePresetState) Clear() error {
	return s.prefs.Clear()
}
