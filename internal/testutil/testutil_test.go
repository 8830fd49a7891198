package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock_HoldsUntilMoved(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	c := NewFixedClock(start)

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start, c.Now())

	c.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), c.Now())

	later := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Set(later)
	assert.Equal(t, later, c.Now())
}

func TestFixedIDs_FixedValue(t *testing.T) {
	g := NewFixedIDs("01234567-89ab-cdef-0123-456789abcdef")

	assert.Equal(t, "01234567-89ab-cdef-0123-456789abcdef", g.Generate())
	assert.Equal(t, "01234567-89ab-cdef-0123-456789abcdef", g.Generate())
}

func TestFixedIDs_Sequence(t *testing.T) {
	g := NewFixedIDs("")

	assert.Equal(t, "test-export-0001", g.Generate())
	assert.Equal(t, "test-export-0002", g.Generate())
	assert.Equal(t, "test-export-0003", g.Generate())
}

func TestFixedIDs_ConcurrentCallsAreUnique(t *testing.T) {
	g := NewFixedIDs("")

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := g.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 500)
}
