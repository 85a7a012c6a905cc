// ABOUTME: Fire-and-forget user-facing message channel
// ABOUTME: One-shot toast-style texts the front-end drains and displays

// Package session ties the preference store and the library together: it
// derives the active preset's modified state and mediates preset switching,
// including the unsaved-changes guard.
package session

import (
	"soundscape/stream"
	"soundscape/validate"
)

// UserMessage is a one-shot user-facing text, shown transiently by the
// front-end. No acknowledgment is required.
type UserMessage struct {
	Kind validate.Kind
	Text string
}

// Messenger posts UserMessages into a stream the front-end subscribes to.
type Messenger struct {
	msgs *stream.Source[UserMessage]
}

// NewMessenger creates an empty messenger.
func NewMessenger() *Messenger {
	return &Messenger{msgs: stream.NewSource[UserMessage]()}
}

// Messages is the stream of posted messages.
func (m *Messenger) Messages() *stream.Source[UserMessage] {
	return m.msgs
}

// Post publishes an informational message.
func (m *Messenger) Post(text string) {
	m.msgs.Publish(UserMessage{Kind: validate.Information, Text: text})
}

// PostWarning publishes a warning message.
func (m *Messenger) PostWarning(text string) {
	m.msgs.Publish(UserMessage{Kind: validate.Warning, Text: text})
}
