package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"photo-wall/internal/core/domain"
	"photo-wall/internal/core/port"
	"photo-wall/internal/core/service/upload"
	"time"
)

type galleryService struct {
	storage port.ObjectStorage
	now     func() time.Time
	logger  *slog.Logger
}

// NewGalleryService creates a new gallery service
func NewGalleryService(storage port.ObjectStorage, logger *slog.Logger) port.GalleryService {
	return &galleryService{
		storage: storage,
		now:     time.Now,
		logger:  logger,
	}
}

// ListToday returns the images stored under the current UTC day
func (s *galleryService) ListToday(ctx context.Context) ([]domain.GalleryItem, error) {
	prefix := upload.DatePartition(s.now()) + "/"

	objects, err := s.storage.ListObjects(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}

	items := make([]domain.GalleryItem, 0, len(objects))
	for _, obj := range objects {
		items = append(items, domain.GalleryItem{
			Key: obj.Key,
			URL: s.storage.ObjectURL(obj.Key),
		})
	}
	s.logger.Debug("listed photos", "prefix", prefix, "count", len(items))
	return items, nil
}
