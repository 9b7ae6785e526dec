// Package ratelimit enforces a minimum interval between consecutive
// calls to the same geocoding provider.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Limiter spaces out calls per provider: Acquire blocks until at least
// minInterval has elapsed since the previous acquire for that provider.
// State is keyed by provider identity so independent providers never
// throttle each other. The per-provider lock is held for the whole
// wait; under the intended single caller per provider no queue forms,
// and contended callers are serialized by the mutex (fair only in its
// starvation mode, not strictly FIFO).
type Limiter struct {
	minInterval time.Duration
	clock       clockwork.Clock

	mu        sync.Mutex
	providers map[string]*providerState
}

type providerState struct {
	mu       sync.Mutex
	lastCall time.Time
}

// New creates a Limiter. A nil clock uses real time; tests pass a
// clockwork fake to drive waits deterministically.
func New(minInterval time.Duration, clock clockwork.Clock) *Limiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Limiter{
		minInterval: minInterval,
		clock:       clock,
		providers:   make(map[string]*providerState),
	}
}

// Acquire blocks until the provider's minimum interval has elapsed, then
// records the call. The first acquire for a provider returns immediately.
// Returns the context error if ctx is cancelled while waiting; the
// provider's last-call timestamp is left untouched in that case.
func (l *Limiter) Acquire(ctx context.Context, providerID string) error {
	st := l.state(providerID)

	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.lastCall.IsZero() {
		wait := l.minInterval - l.clock.Since(st.lastCall)
		if wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.clock.After(wait):
			}
		}
	}

	st.lastCall = l.clock.Now()
	return nil
}

func (l *Limiter) state(providerID string) *providerState {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.providers[providerID]
	if !ok {
		st = &providerState{}
		l.providers[providerID] = st
	}
	return st
}
