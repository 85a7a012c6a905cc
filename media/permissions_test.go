// ABOUTME: Tests for the file-access grant tracker
// ABOUTME: All-or-nothing acquisition, partial grants, and release accounting

package media

import (
	"testing"
)

func TestAcquireAllOrNothingWithinBudget(t *testing.T) {
	g := NewGrantTracker(3, nil)

	granted := g.Acquire([]string{"/s/a.ogg", "/s/b.ogg"}, false)
	if len(granted) != 2 {
		t.Fatalf("Expected both URIs granted, got %v", granted)
	}

	if g.Remaining() != 1 {
		t.Errorf("Expected remaining 1, got %d", g.Remaining())
	}
}

func TestAcquireAllOrNothingOverBudget(t *testing.T) {
	g := NewGrantTracker(1, nil)

	granted := g.Acquire([]string{"/s/a.ogg", "/s/b.ogg"}, false)
	if granted != nil {
		t.Fatalf("Expected nil over budget, got %v", granted)
	}

	// Nothing must have been granted
	if g.Remaining() != 1 {
		t.Errorf("Expected the budget untouched, remaining %d", g.Remaining())
	}

	if g.Granted("/s/a.ogg") {
		t.Error("Expected no grant for the first URI either")
	}
}

func TestAcquirePartialGrantsInOrder(t *testing.T) {
	g := NewGrantTracker(2, nil)

	granted := g.Acquire([]string{"/s/a.ogg", "/s/b.ogg", "/s/c.ogg"}, true)
	if len(granted) != 2 || granted[0] != "/s/a.ogg" || granted[1] != "/s/b.ogg" {
		t.Errorf("Expected the first two URIs granted, got %v", granted)
	}

	if g.Granted("/s/c.ogg") {
		t.Error("Expected the third URI to miss out")
	}
}

func TestAlreadyGrantedURIsAreFree(t *testing.T) {
	g := NewGrantTracker(2, []string{"/s/a.ogg"})

	// a is already granted; only b costs budget
	granted := g.Acquire([]string{"/s/a.ogg", "/s/b.ogg"}, false)
	if len(granted) != 2 {
		t.Fatalf("Expected both URIs in the result, got %v", granted)
	}

	if g.Remaining() != 0 {
		t.Errorf("Expected remaining 0, got %d", g.Remaining())
	}

	// Re-acquiring costs nothing
	granted = g.Acquire([]string{"/s/a.ogg"}, false)
	if len(granted) != 1 {
		t.Errorf("Expected the re-acquire to succeed, got %v", granted)
	}
}

func TestReleaseReturnsBudget(t *testing.T) {
	g := NewGrantTracker(1, nil)

	if g.Acquire([]string{"/s/a.ogg"}, false) == nil {
		t.Fatal("Expected the acquire to succeed")
	}

	if g.Remaining() != 0 {
		t.Fatalf("Expected remaining 0, got %d", g.Remaining())
	}

	g.Release([]string{"/s/a.ogg"})

	if g.Remaining() != 1 {
		t.Errorf("Expected the budget back after release, got %d", g.Remaining())
	}

	if g.Granted("/s/a.ogg") {
		t.Error("Expected the grant to be gone")
	}
}

func TestAcquireCollapsesRepeatedURIs(t *testing.T) {
	g := NewGrantTracker(1, nil)

	// A repeated URI costs one grant and appears once in the result
	granted := g.Acquire([]string{"/s/a.ogg", "/s/a.ogg"}, false)
	if len(granted) != 1 || granted[0] != "/s/a.ogg" {
		t.Fatalf("Expected a single grant for the repeated URI, got %v", granted)
	}

	if g.Remaining() != 0 {
		t.Errorf("Expected remaining 0, got %d", g.Remaining())
	}
}

func TestSeededURIsCountAgainstAllowance(t *testing.T) {
	g := NewGrantTracker(2, []string{"/s/a.ogg", "/s/b.ogg"})

	if g.Remaining() != 0 {
		t.Errorf("Expected seeded grants to consume the budget, remaining %d", g.Remaining())
	}

	if g.Acquire([]string{"/s/c.ogg"}, false) != nil {
		t.Error("Expected no budget left for new grants")
	}
}
