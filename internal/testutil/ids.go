package testutil

import (
	"fmt"
	"sync"
)

// FixedIDs generates predictable identifiers for golden comparisons.
//
// With a non-empty id every call returns it. With an empty id calls
// return "test-export-0001", "test-export-0002", and so on.
//
// Thread-safety: safe for concurrent use.
type FixedIDs struct {
	mu sync.Mutex
	id string
	n  int
}

// NewFixedIDs creates a generator. See FixedIDs for the empty-id form.
func NewFixedIDs(id string) *FixedIDs {
	return &FixedIDs{id: id}
}

// Generate returns the next identifier.
func (g *FixedIDs) Generate() string {
	if g.id != "" {
		return g.id
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("test-export-%04d", g.n)
}
