// ABOUTME: Observable value sources with publish/subscribe delivery
// ABOUTME: Latest-value replay on subscribe, conflating per-listener buffers

// Package stream provides small observable-value primitives: a Source fans
// values out to any number of listeners, each listener always converging on
// the most recently published value.
package stream

import "sync"

// Listener receives values from a Source. C carries published values; the
// buffer conflates, so a slow listener sees the newest value rather than a
// backlog.
type Listener[T any] struct {
	C    chan T
	done chan struct{}
}

// Done is closed when the listener is unsubscribed.
func (l *Listener[T]) Done() <-chan struct{} {
	return l.done
}

// Source is an observable value. Subscribers registered before a publish see
// it; late subscribers immediately receive the latest value, if any.
type Source[T any] struct {
	mu        sync.Mutex
	listeners map[*Listener[T]]struct{}
	current   T
	hasValue  bool
}

// NewSource creates an empty source with no current value.
func NewSource[T any]() *Source[T] {
	return &Source[T]{
		listeners: make(map[*Listener[T]]struct{}),
	}
}

// NewSourceOf creates a source seeded with an initial value.
func NewSourceOf[T any](initial T) *Source[T] {
	s := NewSource[T]()
	s.current = initial
	s.hasValue = true

	return s
}

// Subscribe registers a new listener. If the source already holds a value it
// is delivered immediately.
func (s *Source[T]) Subscribe() *Listener[T] {
	l := &Listener[T]{
		C:    make(chan T, 1),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners[l] = struct{}{}
	if s.hasValue {
		l.C <- s.current
	}

	return l
}

// Unsubscribe removes a listener and signals it to stop.
func (s *Source[T]) Unsubscribe(l *Listener[T]) {
	s.mu.Lock()
	_, ok := s.listeners[l]
	delete(s.listeners, l)
	s.mu.Unlock()

	if ok {
		close(l.done)
	}
}

// Publish stores v as the current value and delivers it to every listener.
// A listener that has not drained its previous value has it replaced, so the
// last write is always the one eventually observed.
func (s *Source[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = v
	s.hasValue = true

	for l := range s.listeners {
		select {
		case l.C <- v:
		default:
			// Conflate: drop the stale value, keep the newest
			select {
			case <-l.C:
			default:
			}
			l.C <- v
		}
	}
}

// Value returns the current value and whether one has been published.
func (s *Source[T]) Value() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current, s.hasValue
}

// ListenerCount returns the number of active listeners.
func (s *Source[T]) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.listeners)
}
