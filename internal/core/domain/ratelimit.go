package domain

import "time"

// RateLimitState is the fixed-window counter of one client
type RateLimitState struct {
	Used    int
	ResetAt time.Time
}

// Admission is the decision taken for one request
type Admission struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Admit turns a counter state into a decision against a budget of points.
func (s RateLimitState) Admit(points int, now time.Time) Admission {
	if s.Used <= points {
		return Admission{Allowed: true, Remaining: points - s.Used}
	}
	wait := s.ResetAt.Sub(now)
	if wait < 0 {
		wait = 0
	}
	return Admission{Allowed: false, RetryAfter: wait}
}

// RetryAfterSeconds rounds the wait up to whole seconds, never below one
func (a Admission) RetryAfterSeconds() int {
	secs := int((a.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
