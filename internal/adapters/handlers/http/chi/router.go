package chi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"photo-wall/internal/adapters/handlers/http/chi/v1/gallery"
	"photo-wall/internal/adapters/handlers/http/chi/v1/upload"
	"photo-wall/internal/core/port"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const defaultRequestTimeout = 60 * time.Second

// NewRouter builds http.Handler with chi. A nil limiter disables rate limiting.
func NewRouter(logger *slog.Logger, limiter port.RateLimiter, uploadHandler *upload.HandlerV1, galleryHandler *gallery.HandlerV1, env string, requestTimeout time.Duration) http.Handler {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	r := chi.NewRouter()

	//handle requestID to facilitate debug (X-Request-ID)
	//It fetches from request if exists, or creates it
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	if env != "prod" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(RateLimitMiddleware(limiter, logger))
			}
			r.Mount("/upload", uploadHandler.Routes())
		})
		r.Mount("/photos", galleryHandler.Routes())
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	})

	return r
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
