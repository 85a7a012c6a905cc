// ABOUTME: Validator over a fixed-size ordered list of values
// ABOUTME: Per-index error flags with an error-count invariant and duplicate tracking

package validate

import (
	"sync"

	"soundscape/stream"
)

// ListValidator validates a fixed-size ordered list of values, e.g. the
// names for several new tracks. It tracks a per-index error flag, a running
// error count, and a single aggregate message. All mutation serializes
// through an internal mutex so concurrent SetValue calls cannot corrupt the
// error-count invariant (errorCount always equals the number of true flags).
type ListValidator[T comparable] struct {
	mu              sync.Mutex
	values          []T
	errors          []bool
	errorCount      int
	allowDuplicates bool
	isInvalid       func(T) bool
	errorText       string

	messages *stream.Source[*Message]
}

// NewListValidator creates a list validator over initial values. isInvalid
// flags a single value on its own merits (blank, already taken); duplicate
// detection between slots is handled internally when allowDuplicates is
// false. errorText is the aggregate message shown while any slot is invalid.
func NewListValidator[T comparable](
	initial []T,
	isInvalid func(T) bool,
	allowDuplicates bool,
	errorText string,
) *ListValidator[T] {
	lv := &ListValidator[T]{
		values:          append([]T(nil), initial...),
		errors:          make([]bool, len(initial)),
		allowDuplicates: allowDuplicates,
		isInvalid:       isInvalid,
		errorText:       errorText,
		messages:        stream.NewSourceOf[*Message](nil),
	}

	for i := range lv.values {
		lv.refreshIndex(i)
	}

	lv.publishLocked()

	return lv
}

// Values returns a copy of the current list.
func (lv *ListValidator[T]) Values() []T {
	lv.mu.Lock()
	defer lv.mu.Unlock()

	return append([]T(nil), lv.values...)
}

// Errors returns a copy of the per-index error flags.
func (lv *ListValidator[T]) Errors() []bool {
	lv.mu.Lock()
	defer lv.mu.Unlock()

	return append([]bool(nil), lv.errors...)
}

// Message returns the aggregate error message, nil when every slot is valid.
func (lv *ListValidator[T]) Message() *Message {
	lv.mu.Lock()
	defer lv.mu.Unlock()

	return lv.messageLocked()
}

// Messages is the stream of aggregate messages.
func (lv *ListValidator[T]) Messages() *stream.Source[*Message] {
	return lv.messages
}

// SetValue replaces the value at index and recomputes validity for that slot
// and for any slot whose duplicate status the change may have altered: slots
// equal to the old value may stop being duplicates, slots equal to the new
// value may become ones.
func (lv *ListValidator[T]) SetValue(index int, value T) {
	lv.mu.Lock()
	defer lv.mu.Unlock()

	if index < 0 || index >= len(lv.values) {
		return
	}

	oldValue := lv.values[index]
	lv.values[index] = value

	lv.refreshIndex(index)

	if !lv.allowDuplicates && oldValue != value {
		for i := range lv.values {
			if i == index {
				continue
			}

			if lv.values[i] == oldValue || lv.values[i] == value {
				lv.refreshIndex(i)
			}
		}
	}

	lv.publishLocked()
}

// refreshIndex recomputes the error flag for one slot, keeping errorCount in
// step. Callers hold lv.mu.
func (lv *ListValidator[T]) refreshIndex(index int) {
	invalid := lv.isInvalid(lv.values[index])

	if !invalid && !lv.allowDuplicates {
		for i, v := range lv.values {
			if i != index && v == lv.values[index] {
				invalid = true

				break
			}
		}
	}

	if invalid != lv.errors[index] {
		lv.errors[index] = invalid
		if invalid {
			lv.errorCount++
		} else {
			lv.errorCount--
		}
	}
}

func (lv *ListValidator[T]) messageLocked() *Message {
	if lv.errorCount > 0 {
		return Err(lv.errorText)
	}

	return nil
}

func (lv *ListValidator[T]) publishLocked() {
	lv.messages.Publish(lv.messageLocked())
}

// ErrorCount returns the number of currently invalid slots.
func (lv *ListValidator[T]) ErrorCount() int {
	lv.mu.Lock()
	defer lv.mu.Unlock()

	return lv.errorCount
}

// hasDuplicates reports whether any two slots hold equal values. Callers
// hold lv.mu.
func (lv *ListValidator[T]) hasDuplicates() bool {
	seen := make(map[T]struct{}, len(lv.values))
	for _, v := range lv.values {
		if _, ok := seen[v]; ok {
			return true
		}

		seen[v] = struct{}{}
	}

	return false
}

// Validate is the confirmation-time gate. The base rule rejects only
// duplicate values while duplicates are disallowed; wrappers add their own
// causes on top (see wizard.TrackNamer).
func (lv *ListValidator[T]) Validate() ([]T, bool) {
	lv.mu.Lock()
	defer lv.mu.Unlock()

	if !lv.allowDuplicates && lv.hasDuplicates() {
		return nil, false
	}

	return append([]T(nil), lv.values...), true
}
