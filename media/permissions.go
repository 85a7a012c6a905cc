// ABOUTME: Budget-limited tracker for persisted file access grants
// ABOUTME: Acquire/release bookkeeping over a fixed allowance

package media

import (
	"sync"

	mapset "github.com/deckarep/golang-set"
)

// DefaultAllowance mirrors the OS cap on persistable file grants.
const DefaultAllowance = 512

// GrantTracker accounts for persisted file-access grants against a fixed
// allowance. Acquiring an already-granted URI is free; the budget only pays
// for new grants.
type GrantTracker struct {
	mu        sync.Mutex
	allowance int
	granted   mapset.Set
}

// NewGrantTracker creates a tracker with the given allowance, seeded with
// URIs already granted (e.g. every track URI in the library at startup).
func NewGrantTracker(allowance int, seed []string) *GrantTracker {
	granted := mapset.NewSet()
	for _, uri := range seed {
		granted.Add(uri)
	}

	return &GrantTracker{
		allowance: allowance,
		granted:   granted,
	}
}

// Allowance returns the total grant budget.
func (g *GrantTracker) Allowance() int {
	return g.allowance
}

// Remaining returns how many new grants the budget still covers.
func (g *GrantTracker) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	remaining := g.allowance - g.granted.Cardinality()
	if remaining < 0 {
		remaining = 0
	}

	return remaining
}

// Acquire grants the given URIs and returns those actually granted. With
// allowPartial false the call is all-or-nothing: if the budget cannot cover
// every new URI, nothing is granted and the result is nil. With allowPartial
// true, new URIs are granted in order until the budget runs out.
func (g *GrantTracker) Acquire(uris []string, allowPartial bool) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	// Repeated URIs in one request collapse to a single grant
	seen := make(map[string]struct{}, len(uris))
	deduped := make([]string, 0, len(uris))

	for _, uri := range uris {
		if _, dup := seen[uri]; dup {
			continue
		}

		seen[uri] = struct{}{}
		deduped = append(deduped, uri)
	}

	fresh := 0

	for _, uri := range deduped {
		if !g.granted.Contains(uri) {
			fresh++
		}
	}

	remaining := g.allowance - g.granted.Cardinality()

	if !allowPartial && fresh > remaining {
		return nil
	}

	granted := make([]string, 0, len(deduped))

	for _, uri := range deduped {
		if g.granted.Contains(uri) {
			granted = append(granted, uri)

			continue
		}

		if remaining <= 0 {
			continue
		}

		g.granted.Add(uri)
		remaining--
		granted = append(granted, uri)
	}

	return granted
}

// Release returns the given URIs' grants to the budget.
func (g *GrantTracker) Release(uris []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, uri := range uris {
		g.granted.Remove(uri)
	}
}

// Granted reports whether a URI currently holds a grant.
func (g *GrantTracker) Granted(uri string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.granted.Contains(uri)
}
