package starmap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Source is the external coordinate lookup the resolver wraps.
// Lookup returns ErrNotFound when the source confirms the system does not
// exist, and an error satisfying errors.Is(err, ErrSourceUnavailable) on
// transport failure.
type Source interface {
	Lookup(ctx context.Context, name string) (StarSystem, error)
}

// Store is an optional persistent L2 cache consulted before the source,
// keyed by normalized system name.
type Store interface {
	GetSystem(key string) (StarSystem, time.Time, bool)
	PutSystem(key string, sys StarSystem, resolvedAt time.Time)
}

type cacheEntry struct {
	system     StarSystem
	resolvedAt time.Time
}

// Resolver memoizes resolved coordinates with a TTL and coalesces
// concurrent lookups for the same key into a single source call.
// Lookups for distinct keys proceed independently.
type Resolver struct {
	source  Source
	store   Store // may be nil
	ttl     time.Duration
	timeout time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// NewResolver wraps source with a cache. Entries are valid for ttl and
// checked lazily on access; each source call is bounded by timeout.
// store may be nil.
func NewResolver(source Source, store Store, ttl, timeout time.Duration) *Resolver {
	return &Resolver{
		source:  source,
		store:   store,
		ttl:     ttl,
		timeout: timeout,
		entries: make(map[string]cacheEntry),
	}
}

// Normalize returns the cache key for a system name: trimmed and lowercased.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Resolve returns coordinates for the named system, from cache when fresh.
// Concurrent calls for the same uncached key share one source call and all
// observe its result. A resolution in flight runs to completion or timeout;
// it is not abandoned because a single caller's context was canceled.
func (r *Resolver) Resolve(ctx context.Context, name string) (StarSystem, error) {
	key := Normalize(name)
	if key == "" {
		return StarSystem{}, fmt.Errorf("resolve %q: %w", name, ErrInvalidKey)
	}
	if err := ctx.Err(); err != nil {
		return StarSystem{}, fmt.Errorf("resolve %q: %w: %v", name, ErrSourceUnavailable, err)
	}

	if sys, ok := r.cached(key); ok {
		return sys, nil
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		return r.resolveSlow(key, strings.TrimSpace(name))
	})
	if err != nil {
		return StarSystem{}, err
	}
	return v.(StarSystem), nil
}

// resolveSlow runs inside singleflight: at most one instance per key.
func (r *Resolver) resolveSlow(key, name string) (StarSystem, error) {
	// Another flight may have refreshed the entry while we waited on the group.
	if sys, ok := r.cached(key); ok {
		return sys, nil
	}

	if r.store != nil {
		if sys, at, ok := r.store.GetSystem(key); ok && time.Since(at) < r.ttl {
			r.put(key, sys, at)
			return sys, nil
		}
	}

	// The lookup context is detached from any caller: other waiters on this
	// flight may still need the result after one caller gives up.
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	sys, err := r.source.Lookup(ctx, name)
	if err != nil {
		// A failure never touches existing entries; the key stays absent
		// (or stale) and the next access retries.
		if errors.Is(err, context.DeadlineExceeded) {
			return StarSystem{}, fmt.Errorf("resolve %q: %w: lookup timed out after %s", name, ErrSourceUnavailable, r.timeout)
		}
		return StarSystem{}, fmt.Errorf("resolve %q: %w", name, err)
	}

	now := time.Now()
	r.put(key, sys, now)
	if r.store != nil {
		r.store.PutSystem(key, sys, now)
	}
	return sys, nil
}

func (r *Resolver) cached(key string) (StarSystem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[key]
	if !ok {
		return StarSystem{}, false
	}
	if time.Since(e.resolvedAt) >= r.ttl {
		// Expired entries are treated as absent; they are replaced on the
		// next successful resolution, never returned past their TTL.
		return StarSystem{}, false
	}
	return e.system, true
}

func (r *Resolver) put(key string, sys StarSystem, resolvedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = cacheEntry{system: sys, resolvedAt: resolvedAt}
}

// Invalidate drops the cached entry for one system name, if present.
func (r *Resolver) Invalidate(name string) {
	key := Normalize(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// Clear drops all in-memory entries and returns how many were removed.
// The persistent store, if any, is left untouched.
func (r *Resolver) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.entries)
	r.entries = make(map[string]cacheEntry)
	return n
}
