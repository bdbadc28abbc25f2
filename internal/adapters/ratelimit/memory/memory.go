package memory

import (
	"context"
	"photo-wall/internal/core/domain"
	"sync"
	"time"
)

// Limiter is an in-process fixed-window rate limiter keyed by client identifier.
// State does not survive a restart and is not shared between instances.
type Limiter struct {
	mu        sync.Mutex
	windows   map[string]*domain.RateLimitState
	points    int
	window    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewLimiter creates a Limiter allowing points requests per window
func NewLimiter(points int, window time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string]*domain.RateLimitState),
		points:  points,
		window:  window,
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Consume spends one point for clientID
func (l *Limiter) Consume(_ context.Context, clientID string) (domain.Admission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	state, ok := l.windows[clientID]
	if !ok || !now.Before(state.ResetAt) {
		state = &domain.RateLimitState{ResetAt: now.Add(l.window)}
		l.windows[clientID] = state
	}
	state.Used++

	return state.Admit(l.points, now), nil
}

// sweep drops rolled-over windows, at most once per window length
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for id, state := range l.windows {
		if !now.Before(state.ResetAt) {
			delete(l.windows, id)
		}
	}
}

// Len returns the number of tracked clients
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
