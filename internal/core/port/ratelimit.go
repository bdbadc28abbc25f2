package port

import (
	"context"
	"photo-wall/internal/core/domain"
)

// RateLimiter consumes one point of a client's fixed-window budget
type RateLimiter interface {
	Consume(ctx context.Context, clientID string) (domain.Admission, error)
}
