package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/learned-geek/socialpress/internal/domain"
)

// Package storage provides the local credential store and published-post
// dedupe cache. Credential persistence is owned here, outside the publish
// pipeline: the pipeline reads credentials and only the OAuth callback path
// writes them.

// Store persists platform credentials and tracks already-published posts.
type Store interface {
	Close() error

	Credential(platform string) (domain.Credential, bool, error)
	SaveCredential(cred domain.Credential) error

	SeenPost(key string) (bool, error)
	MarkPost(key string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	PublishedTTL    time.Duration
	CleanupInterval time.Duration
}

const (
	defaultPublishedTTL    = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.PublishedTTL <= 0 {
		opts.PublishedTTL = defaultPublishedTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error { return nil }
func (noopStore) Credential(string) (domain.Credential, bool, error) {
	return domain.Credential{}, false, nil
}
func (noopStore) SaveCredential(domain.Credential) error { return nil }
func (noopStore) SeenPost(string) (bool, error)          { return false, nil }
func (noopStore) MarkPost(string) error                  { return nil }
