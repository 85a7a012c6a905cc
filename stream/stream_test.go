// ABOUTME: Tests for the observable value source
// ABOUTME: Verifies replay, conflation, and unsubscribe behavior

package stream

import (
	"testing"
	"time"
)

func TestSubscribeReplaysLatestValue(t *testing.T) {
	s := NewSourceOf(42)

	l := s.Subscribe()
	defer s.Unsubscribe(l)

	select {
	case v := <-l.C:
		if v != 42 {
			t.Errorf("Expected replayed value 42, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected immediate replay of the current value")
	}
}

func TestSubscribeToEmptySourceDeliversNothing(t *testing.T) {
	s := NewSource[int]()

	l := s.Subscribe()
	defer s.Unsubscribe(l)

	select {
	case v := <-l.C:
		t.Errorf("Expected no value from an empty source, got %d", v)
	default:
	}
}

func TestPublishReachesAllListeners(t *testing.T) {
	s := NewSource[string]()

	l1 := s.Subscribe()
	l2 := s.Subscribe()
	defer s.Unsubscribe(l1)
	defer s.Unsubscribe(l2)

	s.Publish("hello")

	for i, l := range []*Listener[string]{l1, l2} {
		select {
		case v := <-l.C:
			if v != "hello" {
				t.Errorf("Listener %d: expected %q, got %q", i, "hello", v)
			}
		case <-time.After(time.Second):
			t.Fatalf("Listener %d never received the published value", i)
		}
	}
}

func TestSlowListenerSeesNewestValue(t *testing.T) {
	s := NewSource[int]()

	l := s.Subscribe()
	defer s.Unsubscribe(l)

	// Publish several values without draining; the buffer must conflate
	for i := 1; i <= 5; i++ {
		s.Publish(i)
	}

	select {
	case v := <-l.C:
		if v != 5 {
			t.Errorf("Expected conflated newest value 5, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected a value after publishing")
	}
}

func TestUnsubscribeClosesDone(t *testing.T) {
	s := NewSource[int]()
	l := s.Subscribe()

	s.Unsubscribe(l)

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("Expected Done to be closed after Unsubscribe")
	}

	if s.ListenerCount() != 0 {
		t.Errorf("Expected 0 listeners after unsubscribe, got %d", s.ListenerCount())
	}
}

func TestValueReflectsLatestPublish(t *testing.T) {
	s := NewSource[int]()

	if _, ok := s.Value(); ok {
		t.Error("Expected no value before the first publish")
	}

	s.Publish(7)
	s.Publish(9)

	v, ok := s.Value()
	if !ok || v != 9 {
		t.Errorf("Expected Value (9, true), got (%d, %v)", v, ok)
	}
}
