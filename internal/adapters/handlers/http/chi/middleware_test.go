package chi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"photo-wall/internal/adapters/handlers/http/chi"
	"photo-wall/internal/adapters/ratelimit/memory"
	"photo-wall/internal/core/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLimiter struct{}

func (failingLimiter) Consume(context.Context, string) (domain.Admission, error) {
	return domain.Admission{}, errors.New("connection refused")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("denies once the budget is spent", func(t *testing.T) {
		//Arrange
		h := chi.RateLimitMiddleware(memory.NewLimiter(2, time.Minute), discardLogger)(okHandler())

		//Act
		codes := make([]int, 0, 3)
		var last *httptest.ResponseRecorder
		for i := 0; i < 3; i++ {
			last = httptest.NewRecorder()
			h.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/", nil))
			codes = append(codes, last.Code)
		}

		//Assert
		assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
		assert.Equal(t, "60", last.Header().Get("Retry-After"))
		var body map[string]string
		require.NoError(t, json.Unmarshal(last.Body.Bytes(), &body))
		assert.Equal(t, "rate_limited", body["kind"])
	})

	t.Run("limiter failure lets requests through", func(t *testing.T) {
		h := chi.RateLimitMiddleware(failingLimiter{}, discardLogger)(okHandler())
		w := httptest.NewRecorder()

		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestClientID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:53211"
	assert.Equal(t, "198.51.100.4", chi.ClientID(req))

	req.RemoteAddr = "198.51.100.4"
	assert.Equal(t, "198.51.100.4", chi.ClientID(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", chi.ClientID(req))
}

func TestHealth(t *testing.T) {
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := chi.NewRouter(discardLogger, nil, nil, nil, "prod", time.Second)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp chi.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}
