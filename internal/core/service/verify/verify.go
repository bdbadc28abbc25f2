package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"photo-wall/internal/core/domain"
	"photo-wall/internal/core/port"
	"photo-wall/internal/core/service/upload"
)

// sniffLen is the number of bytes http.DetectContentType looks at
const sniffLen = 512

// sniffable lists the declared types the content sniffer can confirm
var sniffable = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

type verifyService struct {
	storage port.ObjectStorage
	logger  *slog.Logger
}

// NewVerifyService creates the handler checking stored uploads against their event
func NewVerifyService(storage port.ObjectStorage, logger *slog.Logger) port.MessageService {
	return &verifyService{
		storage: storage,
		logger:  logger,
	}
}

// HandleMessage checks one stored upload. A returned error asks for redelivery.
func (s *verifyService) HandleMessage(ctx context.Context, data []byte) error {
	var event domain.UploadEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Error("dropping malformed upload event", "error", err)
		return nil
	}
	if event.Key == "" {
		s.logger.Error("dropping upload event without key")
		return nil
	}

	logger := s.logger.With("key", event.Key, "mimeType", event.MimeType)

	info, err := s.storage.GetObjectInfo(ctx, event.Key)
	if errors.Is(err, domain.ErrObjectNotFound) {
		logger.Info("object already gone, nothing to verify")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", event.Key, err)
	}

	if info.Size != event.Size {
		return s.reject(ctx, logger, event.Key, fmt.Errorf("%w: stored %d bytes, event says %d", domain.ErrSizeMismatch, info.Size, event.Size))
	}

	if !sniffable[event.MimeType] {
		logger.Info("upload verified", "sniffed", false)
		return nil
	}

	header, err := s.storage.GetHeaderBytes(ctx, event.Key, sniffLen)
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", event.Key, err)
	}

	detected := upload.NormalizeMimeType(http.DetectContentType(header))
	if detected != event.MimeType {
		return s.reject(ctx, logger, event.Key, fmt.Errorf("%w: declared %s, detected %s", domain.ErrContentTypeMismatch, event.MimeType, detected))
	}

	logger.Info("upload verified", "sniffed", true)
	return nil
}

func (s *verifyService) reject(ctx context.Context, logger *slog.Logger, key string, reason error) error {
	logger.Warn("deleting invalid upload", "reason", reason)
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
