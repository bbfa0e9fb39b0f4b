package authflow

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

const defaultStateTTL = 10 * time.Minute

// StateRegistry issues random state nonces for pending authorization
// attempts and consumes them exactly once when the callback arrives.
type StateRegistry struct {
	mu      sync.Mutex
	pending map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewStateRegistry builds a registry with the given nonce lifetime.
func NewStateRegistry(ttl time.Duration) *StateRegistry {
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &StateRegistry{
		pending: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue generates a new state nonce bound to a pending authorization attempt.
func (r *StateRegistry) Issue() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state nonce: %w", err)
	}
	state := hex.EncodeToString(buf)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked()
	r.pending[state] = r.now().Add(r.ttl)
	return state, nil
}

// Consume reports whether the state belongs to a pending attempt. The nonce
// is removed either way: each state is usable at most once.
func (r *StateRegistry) Consume(state string) bool {
	if state == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	deadline, ok := r.pending[state]
	delete(r.pending, state)
	return ok && r.now().Before(deadline)
}

// expireLocked drops stale nonces. Caller holds the lock.
func (r *StateRegistry) expireLocked() {
	now := r.now()
	for state, deadline := range r.pending {
		if !now.Before(deadline) {
			delete(r.pending, state)
		}
	}
}
