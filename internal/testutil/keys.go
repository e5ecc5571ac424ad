package testutil

import "fmt"

// FixedKeyGenerator returns the same trampoline key every time.
//
// Useful for exercising key collisions. Stateless and safe for concurrent
// use.
type FixedKeyGenerator struct {
	key string
}

// NewFixedKeyGenerator creates a generator for key. An empty key becomes
// "test-key-default".
func NewFixedKeyGenerator(key string) *FixedKeyGenerator {
	if key == "" {
		key = "test-key-default"
	}
	return &FixedKeyGenerator{key: key}
}

// Generate returns the fixed key.
func (g *FixedKeyGenerator) Generate() string {
	return g.key
}

// SequenceKeyGenerator returns prefix-1, prefix-2, ... so that generated
// code is byte-identical across runs.
type SequenceKeyGenerator struct {
	prefix string
	clock  *DeterministicClock
}

// NewSequenceKeyGenerator creates a generator counting from 1.
func NewSequenceKeyGenerator(prefix string) *SequenceKeyGenerator {
	if prefix == "" {
		prefix = "test-key"
	}
	return &SequenceKeyGenerator{prefix: prefix, clock: NewDeterministicClock()}
}

// Generate returns the next key. Safe for concurrent use.
func (g *SequenceKeyGenerator) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.clock.Next())
}

// Reset restarts the sequence at 1.
func (g *SequenceKeyGenerator) Reset() {
	g.clock.Reset()
}
