// ABOUTME: Classified validation messages shown alongside input fields
// ABOUTME: Information and Warning are advisory, only Error blocks confirmation

// Package validate provides asynchronous single-value and list validators.
// A validator holds a candidate value, recomputes a classified message on
// every change, and offers a synchronous gate for confirmation time.
package validate

// Kind classifies a validation message.
type Kind int

// Message kinds in increasing severity. Only Error blocks a confirm action.
const (
	Information Kind = iota
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Information:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Message is a classified validation result for display next to an input.
type Message struct {
	Kind Kind
	Text string
}

// IsError reports whether m blocks confirmation. A nil message never does.
func (m *Message) IsError() bool {
	return m != nil && m.Kind == Error
}

// Info builds an Information message.
func Info(text string) *Message { return &Message{Kind: Information, Text: text} }

// Warn builds a Warning message.
func Warn(text string) *Message { return &Message{Kind: Warning, Text: text} }

// Err builds an Error message.
func Err(text string) *Message { return &Message{Kind: Error, Text: text} }
