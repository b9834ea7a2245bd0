package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator hands out predictable snapshot IDs
// ("00000000-0000-7000-8000-000000000001", ...), shaped like UUIDv7 so
// they pass the same format checks as real IDs.
//
// This enables golden comparison of store output.
type SequentialIDGenerator struct {
	mu sync.Mutex
	n  int
}

// NewSequentialIDGenerator creates a generator whose first ID ends in 1.
func NewSequentialIDGenerator() *SequentialIDGenerator {
	return &SequentialIDGenerator{}
}

// Generate returns the next ID.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("00000000-0000-7000-8000-%012d", g.n)
}
