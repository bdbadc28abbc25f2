package upload

import (
	"log/slog"
	"photo-wall/internal/core/port"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 upload routes
type HandlerV1 struct {
	uploadService port.UploadService
	decoder       *Decoder
	logger        *slog.Logger
}

// NewUploadHandlerV1 creates HandlerV1
func NewUploadHandlerV1(service port.UploadService, decoder *Decoder, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		uploadService: service,
		decoder:       decoder,
		logger:        logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", h.UploadFileV1)

	return router
}
