package gallery

import (
	"log/slog"
	"photo-wall/internal/core/port"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 photos routes
type HandlerV1 struct {
	galleryService port.GalleryService
	logger         *slog.Logger
}

// NewGalleryHandlerV1 creates HandlerV1
func NewGalleryHandlerV1(service port.GalleryService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		galleryService: service,
		logger:         logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", h.ListPhotosV1)

	return router
}
