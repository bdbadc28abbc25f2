package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"photo-wall/internal/core/domain"
	"sync"
	"time"
)

const consumeQuery = `
INSERT INTO rate_limit_windows (client_id, points_used, window_reset_at)
VALUES ($1, 1, $2::timestamptz + $3::bigint * INTERVAL '1 millisecond')
ON CONFLICT (client_id) DO UPDATE SET
    points_used = CASE
        WHEN rate_limit_windows.window_reset_at <= $2::timestamptz THEN 1
        ELSE rate_limit_windows.points_used + 1
    END,
    window_reset_at = CASE
        WHEN rate_limit_windows.window_reset_at <= $2::timestamptz THEN EXCLUDED.window_reset_at
        ELSE rate_limit_windows.window_reset_at
    END
RETURNING points_used, window_reset_at`

// SQLRateLimiter keeps fixed-window counters in Postgres so that every API
// instance shares the same budget per client
type SQLRateLimiter struct {
	db     SQLQuerier
	points int
	window time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu        sync.Mutex
	lastSweep time.Time
}

// NewSQLRateLimiter creates a rate limiter backed by the rate_limit_windows table
func NewSQLRateLimiter(db SQLQuerier, points int, window time.Duration, logger *slog.Logger) *SQLRateLimiter {
	return &SQLRateLimiter{
		db:     db,
		points: points,
		window: window,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source, for tests
func (s *SQLRateLimiter) WithClock(now func() time.Time) *SQLRateLimiter {
	s.now = now
	return s
}

// Consume spends one point for clientID in a single atomic statement
func (s *SQLRateLimiter) Consume(ctx context.Context, clientID string) (domain.Admission, error) {
	now := s.now().UTC()
	s.sweep(ctx, now)

	var state domain.RateLimitState
	err := s.db.QueryRowContext(ctx, consumeQuery, clientID, now, s.window.Milliseconds()).
		Scan(&state.Used, &state.ResetAt)
	if err != nil {
		return domain.Admission{}, fmt.Errorf("failed to consume rate limit point for %s: %w", clientID, err)
	}

	return state.Admit(s.points, now), nil
}

// sweep deletes rolled-over windows, at most once per window length
func (s *SQLRateLimiter) sweep(ctx context.Context, now time.Time) {
	s.mu.Lock()
	if now.Sub(s.lastSweep) < s.window {
		s.mu.Unlock()
		return
	}
	s.lastSweep = now
	s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM rate_limit_windows WHERE window_reset_at <= $1`, now)
	if err != nil {
		s.logger.Warn("failed to sweep rate limit windows", "error", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.logger.Debug("swept rate limit windows", "count", n)
	}
}
