package upload

import (
	"context"
	"log/slog"
	"photo-wall/internal/config"
	"photo-wall/internal/core/domain"
	"photo-wall/internal/core/port"
	"time"
)

const publishTimeout = 5 * time.Second

type uploadService struct {
	writer    *StorageWriter
	storage   port.ObjectStorage
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewUploadService creates a new upload service. publisher may be nil.
func NewUploadService(storage port.ObjectStorage, publisher port.EventPublisher, cfg config.UploadConfig, logger *slog.Logger) port.UploadService {
	return &uploadService{
		writer:    NewStorageWriter(storage, cfg, logger),
		storage:   storage,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *uploadService) Upload(ctx context.Context, file *domain.ParsedFile) (*domain.UploadOutcome, error) {
	if file == nil || file.Source == nil {
		return nil, domain.ErrNoFile
	}
	if !IsAllowedMimeType(file.MimeType) {
		return nil, &domain.UnsupportedMediaTypeError{MimeType: file.MimeType}
	}

	now := time.Now()
	key := DeriveKey(now, file.OriginalName)

	if err := s.writer.Write(ctx, key, file); err != nil {
		return nil, err
	}

	outcome := &domain.UploadOutcome{
		Key: key,
		URL: s.storage.ObjectURL(key.String()),
	}
	s.logger.Info("file uploaded successfully", "fileUrl", outcome.URL, "fileName", key.String())

	s.publish(ctx, domain.UploadEvent{
		Key:          key.String(),
		URL:          outcome.URL,
		MimeType:     file.MimeType,
		Size:         file.Size,
		OriginalName: file.OriginalName,
		UploadedAt:   now.UTC(),
	})

	return outcome, nil
}

// publish is best effort: the object is stored whatever happens here
func (s *uploadService) publish(ctx context.Context, event domain.UploadEvent) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.PublishUpload(pubCtx, event); err != nil {
		s.logger.Warn("failed to publish upload event", "key", event.Key, "error", err)
	}
}
