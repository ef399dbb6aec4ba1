// Package throttle spaces outbound calls to a provider by a minimum interval.
package throttle

import (
	"context"
	"sync"
	"time"
)

// DefaultMinInterval matches a 5 requests per minute free tier.
const DefaultMinInterval = 12 * time.Second

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Gate hands out dispatch slots per provider. Each caller reserves the next
// free slot under the lock and waits for it outside the lock, so concurrent
// callers queue into slots at least the interval apart.
type Gate struct {
	mu        sync.Mutex
	interval  time.Duration
	fastMode  bool
	last      map[string]time.Time
	nowFunc   func() time.Time
	sleepFunc SleepFunc
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock replaces time.Now and the timer based sleep.
func WithClock(now func() time.Time, sleep SleepFunc) Option {
	return func(g *Gate) {
		if now != nil {
			g.nowFunc = now
		}
		if sleep != nil {
			g.sleepFunc = sleep
		}
	}
}

// New creates a gate. In fast mode WaitIfNeeded returns immediately and
// records nothing.
func New(interval time.Duration, fastMode bool, opts ...Option) *Gate {
	g := &Gate{
		interval:  interval,
		fastMode:  fastMode,
		last:      make(map[string]time.Time),
		nowFunc:   time.Now,
		sleepFunc: sleepContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WaitIfNeeded blocks until provider may be called again. If ctx ends first
// the reservation is released when no later caller queued behind it, and
// ctx.Err() is returned.
func (g *Gate) WaitIfNeeded(ctx context.Context, provider string) error {
	if g.fastMode {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	now := g.nowFunc()
	prev, hadPrev := g.last[provider]
	slot := now
	if hadPrev {
		if next := prev.Add(g.interval); next.After(slot) {
			slot = next
		}
	}
	g.last[provider] = slot
	g.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return nil
	}

	if err := g.sleepFunc(ctx, wait); err != nil {
		g.release(provider, slot, prev, hadPrev)
		return err
	}
	return nil
}

func (g *Gate) release(provider string, slot, prev time.Time, hadPrev bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.last[provider].Equal(slot) {
		return
	}
	if hadPrev {
		g.last[provider] = prev
	} else {
		delete(g.last, provider)
	}
}

// LastIssued returns the most recent dispatch slot handed out for provider.
func (g *Gate) LastIssued(provider string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.last[provider]
	return t, ok
}

// Snapshot returns the last dispatch slot of every provider seen so far.
func (g *Gate) Snapshot() map[string]time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make(map[string]time.Time, len(g.last))
	for provider, t := range g.last {
		out[provider] = t
	}
	return out
}

// Interval returns the configured minimum spacing.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// FastMode reports whether waiting is disabled.
func (g *Gate) FastMode() bool {
	return g.fastMode
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
