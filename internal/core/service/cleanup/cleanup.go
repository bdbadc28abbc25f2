package cleanup

import (
	"log/slog"
	"photo-wall/internal/core/port"
)

type cleanupService struct {
	storage port.MultipartJanitorStorage
	logger  *slog.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(storage port.MultipartJanitorStorage, logger *slog.Logger) port.CleanupService {
	return &cleanupService{
		storage: storage,
		logger:  logger,
	}
}
