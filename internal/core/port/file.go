package port

import (
	"context"
	"io"
	"photo-wall/internal/core/domain"
	"time"
)

// ObjectStorage is an interface to define object storage interactions
type ObjectStorage interface {
	PutObject(ctx context.Context, key string, r io.Reader, size int64, meta domain.ObjectMeta) error
	InitMultipartUpload(ctx context.Context, key string, meta domain.ObjectMeta) (string, error)
	UploadPart(ctx context.Context, key string, uploadID string, partNumber int, r io.Reader, size int64) (domain.UploadPart, error)
	CompleteMultipartUpload(ctx context.Context, key string, uploadID string, parts []domain.UploadPart) error
	AbortMultipartUpload(ctx context.Context, key string, uploadID string) error
	ListObjects(ctx context.Context, prefix string) ([]domain.StoredObject, error)
	GetObjectInfo(ctx context.Context, key string) (*domain.StoredObject, error)
	GetHeaderBytes(ctx context.Context, key string, n int64) ([]byte, error)
	DeleteObject(ctx context.Context, key string) error
	ObjectURL(key string) string
}

// MultipartJanitorStorage lists and aborts dangling multipart uploads
type MultipartJanitorStorage interface {
	ListIncompleteUploads(ctx context.Context, prefix string) ([]domain.IncompleteUpload, error)
	AbortMultipartUpload(ctx context.Context, key string, uploadID string) error
}

// UploadService is an interface to define the upload pipeline past decoding
type UploadService interface {
	Upload(ctx context.Context, file *domain.ParsedFile) (*domain.UploadOutcome, error)
}

// GalleryService is an interface to define the listing of today's uploads
type GalleryService interface {
	ListToday(ctx context.Context) ([]domain.GalleryItem, error)
}

// CleanupService is an interface to define the periodic storage cleanup
type CleanupService interface {
	AbortStaleUploads(ctx context.Context, startedBefore time.Time) (int, error)
}
