// ABOUTME: Preference store holding the active-preset reference
// ABOUTME: TOML file persistence with fsnotify-driven change republishing

// Package prefs persists user preferences outside the library database. The
// only key this application carries is the active-preset name; it is exposed
// both as a getter and as a stream so consumers observe external edits too.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"

	"soundscape/stream"
)

// Preferences is the on-disk shape of the preference file.
type Preferences struct {
	ActivePreset string `toml:"active_preset"`
}

// Prefs provides read/write access to the preference file and a stream of
// active-preset name values. An empty name means no preset is active.
type Prefs struct {
	path string

	mu      sync.Mutex
	current Preferences

	names   *stream.Source[string]
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Open loads the preference file at path, creating defaults if it does not
// exist, and starts watching it for external changes.
func Open(path string) (*Prefs, error) {
	current, err := load(path)
	if err != nil {
		return nil, err
	}

	p := &Prefs{
		path:    path,
		current: current,
		names:   stream.NewSourceOf(current.ActivePreset),
		done:    make(chan struct{}),
	}

	if err := p.startWatcher(); err != nil {
		return nil, err
	}

	return p, nil
}

func load(path string) (Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Preferences{}, nil
		}

		return Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}

	var prefs Preferences
	if err := toml.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, fmt.Errorf("failed to parse preferences: %w", err)
	}

	return prefs, nil
}

// startWatcher watches the preference file's directory so the active-preset
// stream reflects edits made outside this process. Watching the directory
// (not the file) survives editors that replace the file on save.
func (p *Prefs) startWatcher() error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()

		return fmt.Errorf("failed to watch preferences directory: %w", err)
	}

	p.watcher = watcher

	go func() {
		for {
			select {
			case <-p.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Name != p.path {
					continue
				}

				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}

				p.reload()
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return nil
}

func (p *Prefs) reload() {
	loaded, err := load(p.path)
	if err != nil {
		return
	}

	p.mu.Lock()
	changed := loaded.ActivePreset != p.current.ActivePreset
	p.current = loaded
	p.mu.Unlock()

	if changed {
		p.names.Publish(loaded.ActivePreset)
	}
}

// Close stops the file watcher.
func (p *Prefs) Close() error {
	close(p.done)
	if p.watcher != nil {
		return p.watcher.Close()
	}

	return nil
}

// Names is the stream of active-preset name values. Empty string means none.
func (p *Prefs) Names() *stream.Source[string] {
	return p.names
}

// ActivePresetName returns the current active-preset name, or "" if none.
func (p *Prefs) ActivePresetName() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.current.ActivePreset
}

// SetActivePresetName points the active-preset reference at name.
func (p *Prefs) SetActivePresetName(name string) error {
	return p.write(Preferences{ActivePreset: name})
}

// Clear removes the active-preset reference entirely.
func (p *Prefs) Clear() error {
	return p.write(Preferences{})
}

func (p *Prefs) write(prefs Preferences) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.Create(p.path)
	if err != nil {
		return fmt.Errorf("failed to create preferences file: %w", err)
	}

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(prefs); err != nil {
		_ = f.Close()

		return fmt.Errorf("failed to write preferences: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close preferences file: %w", err)
	}

	p.current = prefs
	p.names.Publish(prefs.ActivePreset)

	return nil
}
