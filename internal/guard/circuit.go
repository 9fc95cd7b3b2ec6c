package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/attaboy/matchday/internal/domain"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// CircuitBreaker trips per key after consecutive failures and lets a single
// probe through once resetTimeout has passed.
type CircuitBreaker struct {
	mu            sync.Mutex
	circuits      map[string]*circuit
	failThreshold int
	resetTimeout  time.Duration
	now           func() time.Time
}

type circuit struct {
	state       CircuitState
	failures    int
	probing     bool
	lastFailure time.Time
}

// NewCircuitBreaker creates a circuit breaker with configurable thresholds.
func NewCircuitBreaker(failThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	if failThreshold < 1 {
		failThreshold = 1
	}
	return &CircuitBreaker{
		circuits:      make(map[string]*circuit),
		failThreshold: failThreshold,
		resetTimeout:  resetTimeout,
		now:           time.Now,
	}
}

func (cb *CircuitBreaker) circuitLocked(key string) *circuit {
	c, ok := cb.circuits[key]
	if !ok {
		c = &circuit{state: CircuitClosed}
		cb.circuits[key] = c
	}
	return c
}

// Check returns whether the circuit for the given key allows a request.
func (cb *CircuitBreaker) Check(_ context.Context, key string) domain.GuardResult {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.circuitLocked(key)
	switch c.state {
	case CircuitOpen:
		elapsed := cb.now().Sub(c.lastFailure)
		if elapsed < cb.resetTimeout {
			return domain.GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("circuit open for %s, resets in %s", key, cb.resetTimeout-elapsed),
				Guard:   "circuit_breaker",
			}
		}
		c.state = CircuitHalfOpen
		c.probing = true
		return domain.GuardResult{Allowed: true}
	case CircuitHalfOpen:
		if c.probing {
			return domain.GuardResult{
				Allowed: false,
				Reason:  "circuit half-open, probe in flight",
				Guard:   "circuit_breaker",
			}
		}
		c.probing = true
		return domain.GuardResult{Allowed: true}
	default:
		return domain.GuardResult{Allowed: true}
	}
}

// RecordSuccess closes the circuit for the given key.
func (cb *CircuitBreaker) RecordSuccess(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.circuitLocked(key)
	c.state = CircuitClosed
	c.failures = 0
	c.probing = false
}

// RecordFailure counts a failure; a failed half-open probe reopens immediately.
func (cb *CircuitBreaker) RecordFailure(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.circuitLocked(key)
	c.failures++
	c.lastFailure = cb.now()
	c.probing = false

	if c.state == CircuitHalfOpen || c.failures >= cb.failThreshold {
		c.state = CircuitOpen
	}
}

// State returns the current state and consecutive failure count for key.
func (cb *CircuitBreaker) State(key string) (CircuitState, int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c, ok := cb.circuits[key]
	if !ok {
		return CircuitClosed, 0
	}
	return c.state, c.failures
}

// Keys returns every key the breaker has seen.
func (cb *CircuitBreaker) Keys() []string {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	keys := make([]string, 0, len(cb.circuits))
	for k := range cb.circuits {
		keys = append(keys, k)
	}
	return keys
}
