package guard

import (
	"context"
	"sync"

	"github.com/attaboy/matchday/internal/domain"
)

// DedupGuard drops repeated deliveries of the same content under a key.
// It remembers only the latest fingerprint per key.
type DedupGuard struct {
	mu   sync.Mutex
	last map[string]string
}

// NewDedupGuard creates a new in-memory dedup guard.
func NewDedupGuard() *DedupGuard {
	return &DedupGuard{last: make(map[string]string)}
}

// Check blocks when fingerprint equals the last one accepted for key.
func (g *DedupGuard) Check(_ context.Context, key, fingerprint string) domain.GuardResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	if prev, ok := g.last[key]; ok && prev == fingerprint {
		return domain.GuardResult{
			Allowed: false,
			Reason:  "duplicate delivery: content unchanged",
			Guard:   "dedup",
		}
	}
	g.last[key] = fingerprint
	return domain.GuardResult{Allowed: true}
}

// Forget drops the remembered fingerprint so the next delivery is accepted.
func (g *DedupGuard) Forget(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.last, key)
}

// Retain drops every key for which keep returns false and reports how many
// were dropped.
func (g *DedupGuard) Retain(keep func(key string) bool) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	dropped := 0
	for key := range g.last {
		if !keep(key) {
			delete(g.last, key)
			dropped++
		}
	}
	return dropped
}

// Len returns how many keys hold a fingerprint.
func (g *DedupGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.last)
}
