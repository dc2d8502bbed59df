package testutil

import (
	"fmt"
	"sync"
)

// SeqIDGenerator returns "prefix-1", "prefix-2", ... in order.
//
// It replaces the governor's UUIDv7 generator in tests so record IDs are
// stable across runs and golden traces compare byte-for-byte.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SeqIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSeqIDGenerator creates a generator with the given prefix.
func NewSeqIDGenerator(prefix string) *SeqIDGenerator {
	return &SeqIDGenerator{prefix: prefix}
}

// Generate returns the next sequential ID.
func (g *SeqIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
