package testfixtures

import (
	"fmt"
	"sync"
)

const uuidFormat = "00000000-0000-4000-8000-%012d"

// IDGenerator produces deterministic identifiers for tests.
type IDGenerator struct {
	mu      sync.Mutex
	format  string
	counter uint64
}

// NewIDGenerator yields identifiers with the given prefix ("id" when empty).
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{format: prefix + "-%d"}
}

// NewUUIDGenerator yields UUID-shaped identifiers that sort in creation order,
// so they pass the same checks as database keys.
func NewUUIDGenerator() *IDGenerator {
	return &IDGenerator{format: uuidFormat}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf(g.format, g.counter)
}
