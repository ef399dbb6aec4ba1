package cooldown

import (
	"sort"
	"sync"
	"time"
)

// Entry is a live cooldown.
type Entry struct {
	Scope     Scope
	ExpiresAt time.Time
	Reason    Reason
}

// Store tracks cooldowns per scope. Liveness is recomputed from the clock on
// every read; expired entries are dropped lazily.
type Store struct {
	mu      sync.Mutex
	entries map[Scope]Entry
	nowFunc func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.nowFunc = now
	}
}

// NewStore creates an empty cooldown store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[Scope]Entry),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsBlocked reports whether scope has an unexpired cooldown.
func (s *Store) IsBlocked(scope Scope) bool {
	return s.Remaining(scope) > 0
}

// Remaining returns the time left on scope's cooldown, or zero.
func (s *Store) Remaining(scope Scope) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[scope]
	if !ok {
		return 0
	}

	remaining := e.ExpiresAt.Sub(s.nowFunc())
	if remaining <= 0 {
		return 0
	}
	return remaining
}

// Entry returns the live entry for scope.
func (s *Store) Entry(scope Scope) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[scope]
	if !ok || !e.ExpiresAt.After(s.nowFunc()) {
		return Entry{}, false
	}
	return e, true
}

// SetCooldown blocks scope for duration. An existing cooldown is only ever
// extended: the call is a no-op when the time already remaining is at least
// duration, or when duration is not positive. It reports whether the entry
// was written.
func (s *Store) SetCooldown(scope Scope, duration time.Duration, reason Reason) bool {
	if duration <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	s.evictLocked(now)

	if e, ok := s.entries[scope]; ok && e.ExpiresAt.Sub(now) >= duration {
		return false
	}

	s.entries[scope] = Entry{
		Scope:     scope,
		ExpiresAt: now.Add(duration),
		Reason:    reason,
	}
	return true
}

// Snapshot returns all live entries sorted by scope.
func (s *Store) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(s.nowFunc())

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Scope.String() < out[j].Scope.String()
	})
	return out
}

func (s *Store) evictLocked(now time.Time) {
	for scope, e := range s.entries {
		if !e.ExpiresAt.After(now) {
			delete(s.entries, scope)
		}
	}
}
