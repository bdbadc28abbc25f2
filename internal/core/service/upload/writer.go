package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"photo-wall/internal/config"
	"photo-wall/internal/core/domain"
	"photo-wall/internal/core/port"
	"strings"
	"time"
)

const (
	maxRetryDelay = 10 * time.Second
	abortTimeout  = 30 * time.Second
)

// StorageWriter persists a spooled file, in one request or in parts depending on its size
type StorageWriter struct {
	storage   port.ObjectStorage
	threshold int64
	partSize  int64
	retry     RetryPolicy
	logger    *slog.Logger
}

// NewStorageWriter creates a StorageWriter from the upload configuration
func NewStorageWriter(storage port.ObjectStorage, cfg config.UploadConfig, logger *slog.Logger) *StorageWriter {
	return &StorageWriter{
		storage:   storage,
		threshold: cfg.MultipartThreshold,
		partSize:  cfg.PartSize,
		retry: RetryPolicy{
			Attempts:  cfg.RetryCount,
			Backoff:   ExponentialBackoff(cfg.RetryDelay(), maxRetryDelay),
			Retryable: isTransient,
		},
		logger: logger,
	}
}

// WithRetryPolicy replaces the retry policy
func (w *StorageWriter) WithRetryPolicy(policy RetryPolicy) *StorageWriter {
	w.retry = policy
	return w
}

// Write stores file under key. On failure no object and no pending multipart
// upload is left behind.
func (w *StorageWriter) Write(ctx context.Context, key domain.StorageKey, file *domain.ParsedFile) error {
	objectKey := key.String()
	meta := domain.ObjectMeta{
		ContentType:        file.MimeType,
		ContentDisposition: ContentDisposition(file.OriginalName, objectKey),
	}
	chunked := file.Size > w.threshold

	logger := w.logger.With("key", objectKey, "fileSize", file.Size, "threshold", w.threshold)
	if chunked {
		logger.Info("using multipart upload")
	} else {
		logger.Info("using single-part upload")
	}

	err := w.retry.Do(ctx, func(ctx context.Context, attempt int) error {
		src, err := file.Source.Open()
		if err != nil {
			return fmt.Errorf("failed to open source: %w", err)
		}
		defer src.Close()

		if chunked {
			return w.writeChunked(ctx, objectKey, src, file.Size, meta)
		}
		return w.storage.PutObject(ctx, objectKey, src, file.Size, meta)
	}, func(attempt int, err error, wait time.Duration) {
		logger.Warn("storage write failed, retrying", "attempt", attempt, "wait", wait, "error", err)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrStorageWrite, objectKey, err)
	}
	return nil
}

func (w *StorageWriter) writeChunked(ctx context.Context, key string, src io.Reader, size int64, meta domain.ObjectMeta) error {
	uploadID, err := w.storage.InitMultipartUpload(ctx, key, meta)
	if err != nil {
		return err
	}

	parts, err := w.uploadParts(ctx, key, uploadID, src, size)
	if err == nil {
		err = w.storage.CompleteMultipartUpload(ctx, key, uploadID, parts)
	}
	if err != nil {
		w.abort(ctx, key, uploadID)
		return err
	}
	return nil
}

func (w *StorageWriter) uploadParts(ctx context.Context, key string, uploadID string, src io.Reader, size int64) ([]domain.UploadPart, error) {
	buf := make([]byte, w.partSize)
	parts := make([]domain.UploadPart, 0, size/w.partSize+1)
	var sent int64

	for partNumber := 1; ; partNumber++ {
		n, readErr := io.ReadFull(src, buf)
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil && !errors.Is(readErr, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("failed to read part %d: %w", partNumber, readErr)
		}

		part, err := w.storage.UploadPart(ctx, key, uploadID, partNumber, bytes.NewReader(buf[:n]), int64(n))
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
		sent += int64(n)

		if readErr != nil {
			break
		}
	}

	if sent != size {
		return nil, fmt.Errorf("%w: read %d bytes, expected %d", domain.ErrSizeMismatch, sent, size)
	}
	return parts, nil
}

// abort runs even when the request context is already cancelled
func (w *StorageWriter) abort(ctx context.Context, key string, uploadID string) {
	abortCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abortTimeout)
	defer cancel()

	if err := w.storage.AbortMultipartUpload(abortCtx, key, uploadID); err != nil {
		w.logger.Error("failed to abort multipart upload", "key", key, "uploadID", uploadID, "error", err)
	}
}

// ContentDisposition builds an inline disposition carrying the percent-encoded
// original name, falling back to the key's base name.
func ContentDisposition(originalName string, key string) string {
	name := originalName
	if name == "" {
		name = path.Base(key)
	}
	encoded := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return fmt.Sprintf(`inline; filename="%s"`, encoded)
}

func isTransient(err error) bool {
	return !errors.Is(err, domain.ErrStoragePermanent) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, domain.ErrSizeMismatch)
}
