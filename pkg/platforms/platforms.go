package platforms

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/learned-geek/socialpress/internal/domain"
)

// Adapter is the capability contract every platform implementation satisfies.
// Callers depend only on this interface and never branch on the concrete type.
type Adapter interface {
	ID() string

	// IsConfigured reports whether the OAuth application settings (client
	// id/secret) are present. Checked before any network call.
	IsConfigured() bool

	// HasValidToken reports whether the credential satisfies its invariant:
	// token and account id present, expiry (if any) in the future.
	HasValidToken(cred domain.Credential) bool

	// BuildAuthorizationURL constructs the outbound authorization redirect
	// for the given state nonce. Deterministic, no network activity.
	BuildAuthorizationURL(state string) (string, error)

	// ExchangeCode turns an authorization code into a fully resolved
	// credential (token exchange, optional long-lived upgrade, account
	// resolution). The updated credential is returned to the caller, whose
	// responsibility is to persist it.
	ExchangeCode(ctx context.Context, code string) (domain.Credential, error)

	// Publish runs one publish job against the platform. Failures are
	// reported inside the result, never as panics.
	Publish(ctx context.Context, cred domain.Credential, job domain.PublishJob) domain.PublishResult
}

// PollPolicy bounds the container status polling loop. The flat 30x2s default
// is a policy choice, not a protocol requirement.
type PollPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultPollPolicy mirrors the platform-documented ~60 second ceiling.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{Attempts: 30, Delay: 2 * time.Second}
}

// Normalized fills zero fields with defaults.
func (p PollPolicy) Normalized() PollPolicy {
	def := DefaultPollPolicy()
	if p.Attempts <= 0 {
		p.Attempts = def.Attempts
	}
	if p.Delay <= 0 {
		p.Delay = def.Delay
	}
	return p
}

// Registry maps platform ids to adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry builds a registry for the provided adapters keyed by id.
func NewRegistry(adapters ...Adapter) *Registry {
	reg := &Registry{adapters: make(map[string]Adapter)}
	for _, a := range adapters {
		reg.Register(a)
	}
	return reg
}

// Register adds an adapter under its id.
func (r *Registry) Register(a Adapter) {
	if a == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(a.ID()))
	if key == "" {
		return
	}

	r.mu.Lock()
	r.adapters[key] = a
	r.mu.Unlock()
}

// AdapterFor selects the adapter for the given platform id.
func (r *Registry) AdapterFor(id string) (Adapter, error) {
	if r == nil {
		return nil, fmt.Errorf("platform registry is nil")
	}
	key := strings.ToLower(strings.TrimSpace(id))
	if key == "" {
		return nil, fmt.Errorf("platform id is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[key]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for platform %q", id)
	}
	return a, nil
}

// All returns the registered adapters.
func (r *Registry) All() []Adapter {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	return out
}
