// ABOUTME: Shared naming rules for playlists, presets, and tracks
// ABOUTME: Blank and already-taken names are errors; blank is suppressed until edited

package validate

import (
	"context"
	"strings"
)

// Name rule texts, shared across dialogs.
const (
	BlankNameText = "The name cannot be blank"
	TakenNameText = "This name is already in use"
)

// NameMessageFunc builds the MessageFunc for a single name input. exists
// reports whether the candidate collides with a persisted name. A blank
// initial value shows no error until the user has edited the field at least
// once; Validate treats the value as edited, so a never-touched blank still
// fails the confirmation gate with a visible message.
func NameMessageFunc(exists func(ctx context.Context, name string) (bool, error)) MessageFunc[string] {
	return func(ctx context.Context, name string, hasBeenChanged bool) *Message {
		if strings.TrimSpace(name) == "" {
			if !hasBeenChanged {
				return nil
			}

			return Err(BlankNameText)
		}

		taken, err := exists(ctx, name)
		if err != nil {
			// Lookup failures surface as advisory, not blocking
			return Warn("Could not check the name: " + err.Error())
		}

		if taken {
			return Err(TakenNameText)
		}

		return nil
	}
}

// InvalidNameFunc builds the per-slot predicate for a list of names: blank
// or colliding with an existing persisted name. Slot-against-slot duplicates
// are handled by the ListValidator itself.
func InvalidNameFunc(existingNames []string) func(string) bool {
	existing := make(map[string]struct{}, len(existingNames))
	for _, n := range existingNames {
		existing[n] = struct{}{}
	}

	return func(name string) bool {
		if strings.TrimSpace(name) == "" {
			return true
		}

		_, taken := existing[name]

		return taken
	}
}
