package testutil

import (
	"fmt"
	"sync"
)

// SequentialTokens hands out read tokens "<prefix>-1", "<prefix>-2", ...
//
// Sessions take a fresh token per file selection, so tests can predict which
// token a pending read carries and deliver stale completions on purpose.
//
// Thread-safety: safe for concurrent use.
type SequentialTokens struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialTokens creates a generator. An empty prefix defaults to "read".
func NewSequentialTokens(prefix string) *SequentialTokens {
	if prefix == "" {
		prefix = "read"
	}
	return &SequentialTokens{prefix: prefix}
}

// Generate returns the next token.
func (g *SequentialTokens) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Issued returns how many tokens were handed out.
func (g *SequentialTokens) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}
