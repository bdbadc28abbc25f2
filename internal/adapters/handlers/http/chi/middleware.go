package chi

import (
	"log/slog"
	"net"
	"net/http"
	"photo-wall/internal/adapters/handlers/http/chi/response"
	"photo-wall/internal/core/port"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// LoggerMiddleware is a custom logging middleware
func LoggerMiddleware(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				if r.URL.Path != "/health" {

					l.Info("http_request",
						"request_id", middleware.GetReqID(r.Context()),
						"method", r.Method,
						"path", r.URL.Path,
						"client", ClientID(r),
						"status", ww.Status(),
						"bytes_in", r.ContentLength,
						"duration", time.Since(start),
					)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// RateLimitMiddleware spends one point of the client's budget per request
// and answers 429 once the budget of the current window is gone.
// A failing limiter lets the request through.
func RateLimitMiddleware(limiter port.RateLimiter, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := ClientID(r)

			admission, err := limiter.Consume(r.Context(), clientID)
			if err != nil {
				l.Error("rate limiter unavailable, admitting request", "client", clientID, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if !admission.Allowed {
				l.Warn("rate limit exceeded", "client", clientID, "retry_after", admission.RetryAfter)
				w.Header().Set("Retry-After", strconv.Itoa(admission.RetryAfterSeconds()))
				response.WriteJSON(w, http.StatusTooManyRequests, response.ErrorResponse{
					Message: "Too Many Requests",
					Kind:    response.KindRateLimited,
				}, l)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(admission.Remaining))
			next.ServeHTTP(w, r)
		})
	}
}

// ClientID identifies the caller by address. Behind middleware.RealIP the
// address already reflects X-Forwarded-For and X-Real-IP.
func ClientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
