// Package keyring holds the per-provider credential pools and their
// rotation cursors.
package keyring

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/davidbz/llmrelay/internal/domain"
)

// MaxCredentialsPerProvider bounds the size of a pool.
const MaxCredentialsPerProvider = 4

var (
	// ErrPoolTooLarge is returned when a provider has more credentials than
	// MaxCredentialsPerProvider.
	ErrPoolTooLarge = errors.New("credential pool too large")

	// ErrEmptySecret is returned for a blank credential.
	ErrEmptySecret = errors.New("credential secret cannot be empty")
)

type pool struct {
	credentials []domain.Credential
	cursor      int
	unusable    map[int]bool
}

// Ring owns every provider's pool. A single mutex guards all of them.
type Ring struct {
	mu    sync.Mutex
	pools map[string]*pool
}

// PoolSnapshot is a point-in-time view of one pool.
type PoolSnapshot struct {
	Size     int
	Cursor   int
	Unusable []int
}

// New builds a ring from provider name to secrets. Indexes follow slice order
// and never change. Providers with no secrets are skipped.
func New(pools map[string][]string) (*Ring, error) {
	r := &Ring{pools: make(map[string]*pool, len(pools))}

	for provider, secrets := range pools {
		if len(secrets) == 0 {
			continue
		}
		if len(secrets) > MaxCredentialsPerProvider {
			return nil, fmt.Errorf("%w: %s has %d, max %d",
				ErrPoolTooLarge, provider, len(secrets), MaxCredentialsPerProvider)
		}

		p := &pool{
			credentials: make([]domain.Credential, 0, len(secrets)),
			unusable:    make(map[int]bool),
		}
		for i, secret := range secrets {
			if secret == "" {
				return nil, fmt.Errorf("%w: %s#%d", ErrEmptySecret, provider, i)
			}
			p.credentials = append(p.credentials, domain.Credential{
				Provider: provider,
				Index:    i,
				Secret:   secret,
			})
		}
		r.pools[provider] = p
	}

	return r, nil
}

// Current returns the first usable credential at or after the cursor that
// eligible accepts. eligible may be nil. It is called with the ring locked
// and must not call back into the ring.
func (r *Ring) Current(provider string, eligible func(domain.Credential) bool) (domain.Credential, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pools[provider]
	if !ok {
		return domain.Credential{}, false
	}

	n := len(p.credentials)
	for offset := 0; offset < n; offset++ {
		idx := (p.cursor + offset) % n
		if p.unusable[idx] {
			continue
		}
		cred := p.credentials[idx]
		if eligible != nil && !eligible(cred) {
			continue
		}
		return cred, true
	}

	return domain.Credential{}, false
}

// Advance moves provider's cursor past from. It only moves when the cursor
// still points at from, so concurrent failures on one credential advance
// once. It reports whether the cursor moved.
func (r *Ring) Advance(provider string, from int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pools[provider]
	if !ok || p.cursor != from {
		return false
	}

	p.cursor = (from + 1) % len(p.credentials)
	return true
}

// MarkUnusable excludes a credential for the rest of the process.
func (r *Ring) MarkUnusable(provider string, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pools[provider]
	if !ok || index < 0 || index >= len(p.credentials) {
		return
	}
	p.unusable[index] = true
}

// IsUnusable reports whether the credential was marked unusable.
func (r *Ring) IsUnusable(provider string, index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pools[provider]
	if !ok {
		return false
	}
	return p.unusable[index]
}

// Pool returns a copy of provider's credentials.
func (r *Ring) Pool(provider string) []domain.Credential {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pools[provider]
	if !ok {
		return nil
	}
	return append([]domain.Credential(nil), p.credentials...)
}

// Providers lists providers with a pool, sorted.
func (r *Ring) Providers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.pools))
	for name := range r.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns size, cursor and unusable indexes per provider.
func (r *Ring) Snapshot() map[string]PoolSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]PoolSnapshot, len(r.pools))
	for name, p := range r.pools {
		unusable := make([]int, 0, len(p.unusable))
		for idx := range p.unusable {
			unusable = append(unusable, idx)
		}
		sort.Ints(unusable)

		out[name] = PoolSnapshot{
			Size:     len(p.credentials),
			Cursor:   p.cursor,
			Unusable: unusable,
		}
	}
	return out
}
