// ABOUTME: Preset-selection controller with the unsaved-changes guard
// ABOUTME: Mediates preset switching, overwrite, rename, and delete

package session

import (
	"errors"
	"sync"

	"soundscape/library"
)

// PresetWriter is the slice of the library store the controller writes to.
type PresetWriter interface {
	SavePresetFromCurrentlyActive(name string) error
	DeletePreset(name string) error
	RenamePreset(oldName, newName string) error
}

// UnsavedChangesWarning is the pending confirmation dialog shown when the
// user selects another preset while the active one has unsaved changes. The
// preset selector stays open underneath it.
type UnsavedChangesWarning struct {
	TargetPreset string
}

// Controller mediates requests to load a different preset as active.
type Controller struct {
	store     PresetWriter
	state     *ActivePresetState
	messenger *Messenger

	mu           sync.Mutex
	selectorOpen bool
	warning      *UnsavedChangesWarning
}

// NewController wires a controller over the given collaborators.
func NewController(store PresetWriter, state *ActivePresetState, messenger *Messenger) *Controller {
	return &Controller{
		store:     store,
		state:     state,
		messenger: messenger,
	}
}

// OpenSelector opens the preset selector.
func (c *Controller) OpenSelector() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selectorOpen = true
}

// CloseSelector closes the selector and any warning dialog over it.
func (c *Controller) CloseSelector() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selectorOpen = false
	c.warning = nil
}

// SelectorOpen reports whether the preset selector is open.
func (c *Controller) SelectorOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.selectorOpen
}

// Warning returns the pending unsaved-changes dialog, nil when none.
func (c *Controller) Warning() *UnsavedChangesWarning {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.warning
}

// OnPresetClick handles a click on target in the preset selector. With no
// active preset, or an unmodified one, the switch commits immediately and
// the selector closes. Otherwise an unsaved-changes warning opens over the
// still-open selector.
func (c *Controller) OnPresetClick(target string) error {
	if c.state.ActiveName() == "" || !c.state.Modified() {
		if err := c.state.SetName(target); err != nil {
			return err
		}

		c.CloseSelector()

		return nil
	}

	c.mu.Lock()
	c.warning = &UnsavedChangesWarning{TargetPreset: target}
	c.mu.Unlock()

	return nil
}

// DismissWarning closes only the warning dialog. The selector stays open and
// nothing else changes.
func (c *Controller) DismissWarning() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.warning = nil
}

// ConfirmWarning resolves the pending warning. With saveFirst, the current
// live active-playlist set is persisted into the outgoing preset before the
// reference moves; otherwise the changes are discarded. Both paths close the
// dialog and the selector.
func (c *Controller) ConfirmWarning(saveFirst bool) error {
	c.mu.Lock()
	warning := c.warning
	c.warning = nil
	c.mu.Unlock()

	if warning == nil {
		return nil
	}

	if saveFirst {
		outgoing := c.state.ActiveName()
		if outgoing != "" {
			if err := c.savePreset(outgoing); err != nil {
				return err
			}
		}
	}

	if err := c.state.SetName(warning.TargetPreset); err != nil {
		return err
	}

	c.CloseSelector()

	return nil
}

// OverwritePreset replaces a preset's stored pairs with the current active
// set and points the active reference at it. With zero active playlists the
// contents are left untouched (a preset is never silently emptied) but the
// reference still moves.
func (c *Controller) OverwritePreset(name string) error {
	if err := c.savePreset(name); err != nil {
		return err
	}

	return c.state.SetName(name)
}

func (c *Controller) savePreset(name string) error {
	err := c.store.SavePresetFromCurrentlyActive(name)
	if errors.Is(err, library.ErrNoActivePlaylists) {
		c.messenger.PostWarning("No playlists are active, so the preset's contents were left unchanged")

		return nil
	}

	return err
}

// DeletePreset removes a preset. Deleting the active preset clears the
// active reference as a consequence, not a separate manual step.
func (c *Controller) DeletePreset(name string) error {
	active := c.state.ActiveName() == name

	if err := c.store.DeletePreset(name); err != nil {
		return err
	}

	if active {
		return c.state.Clear()
	}

	return nil
}

// RenamePreset renames a preset, re-pointing the active reference when the
// renamed preset is the active one. The modified flag is unaffected because
// the preset's contents do not change.
func (c *Controller) RenamePreset(oldName, newName string) error {
	active := c.state.ActiveName() == oldName

	if err := c.store.RenamePreset(oldName, newName); err != nil {
		return err
	}

	if active {
		return c.state.SetName(newName)
	}

	return nil
}
