// ABOUTME: Generic single-value asynchronous validator
// ABOUTME: Cancels in-flight checks on new input so only the newest value publishes

package validate

import (
	"context"
	"sync"
	"time"

	"soundscape/stream"
)

// defaultRecheckDelay spaces out re-validation while the user is still
// typing. Each new value cancels the previous pending check.
const defaultRecheckDelay = 150 * time.Millisecond

// MessageFunc computes the message for a candidate value. hasBeenChanged is
// false only while the value is still the untouched initial one; callers use
// it to suppress premature error display.
type MessageFunc[T any] func(ctx context.Context, value T, hasBeenChanged bool) *Message

// Validator holds a current value of type T and a derived asynchronous
// message. Assigning a value cancels any in-flight computation, so a slower
// check for an older value can never overwrite the message for a newer one.
type Validator[T any] struct {
	mu             sync.Mutex
	value          T
	hasBeenChanged bool
	messageFor     MessageFunc[T]
	recheckDelay   time.Duration

	parent  context.Context
	cancel  context.CancelFunc
	message *Message
	stream  *stream.Source[*Message]
}

// NewValidator creates a validator scoped to ctx with the given initial
// value. The initial value is validated once with hasBeenChanged false.
func NewValidator[T any](ctx context.Context, initial T, messageFor MessageFunc[T]) *Validator[T] {
	v := &Validator[T]{
		value:        initial,
		messageFor:   messageFor,
		recheckDelay: defaultRecheckDelay,
		parent:       ctx,
		stream:       stream.NewSourceOf[*Message](nil),
	}

	v.schedule(initial, false, 0)

	return v
}

// Value returns the current candidate value.
func (v *Validator[T]) Value() T {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.value
}

// Message returns the most recently computed message, nil if the value is
// acceptable or validation has not completed yet.
func (v *Validator[T]) Message() *Message {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.message
}

// Messages is the stream of computed messages.
func (v *Validator[T]) Messages() *stream.Source[*Message] {
	return v.stream
}

// SetValue assigns a new candidate value and schedules its validation,
// cancelling any validation still running for a previous value.
func (v *Validator[T]) SetValue(value T) {
	v.mu.Lock()
	v.value = value
	v.hasBeenChanged = true
	v.mu.Unlock()

	v.schedule(value, true, v.recheckDelay)
}

func (v *Validator[T]) schedule(value T, hasBeenChanged bool, delay time.Duration) {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}

	ctx, cancel := context.WithCancel(v.parent)
	v.cancel = cancel
	v.mu.Unlock()

	go func() {
		if delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}

		msg := v.messageFor(ctx, value, hasBeenChanged)

		select {
		case <-ctx.Done():
			return
		default:
		}

		v.publish(ctx, msg)
	}()
}

func (v *Validator[T]) publish(ctx context.Context, msg *Message) {
	v.mu.Lock()
	defer v.mu.Unlock()

	// A newer SetValue may have raced in between computing and publishing
	select {
	case <-ctx.Done():
		return
	default:
	}

	v.message = msg
	v.stream.Publish(msg)
}

// Validate is the synchronous confirmation-time gate. It re-runs messageFor
// for the current value treating it as changed, publishes the result so the
// reason for a failure is always visible, and reports whether the value
// passed (anything but an Error message passes).
func (v *Validator[T]) Validate(ctx context.Context) (T, bool) {
	v.mu.Lock()
	value := v.value

	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.mu.Unlock()

	msg := v.messageFor(ctx, value, true)

	v.mu.Lock()
	v.message = msg
	v.stream.Publish(msg)
	v.mu.Unlock()

	return value, !msg.IsError()
}
