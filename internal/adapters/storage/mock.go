package storage

import (
	"context"
	"io"
	"photo-wall/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of ObjectStorage
type MockStorage struct {
	mock.Mock
}

// NewMockStorage creates a new MockStorage
func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) PutObject(ctx context.Context, key string, r io.Reader, size int64, meta domain.ObjectMeta) error {
	args := m.Called(ctx, key, r, size, meta)
	return args.Error(0)
}

func (m *MockStorage) InitMultipartUpload(ctx context.Context, key string, meta domain.ObjectMeta) (string, error) {
	args := m.Called(ctx, key, meta)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) UploadPart(ctx context.Context, key string, uploadID string, partNumber int, r io.Reader, size int64) (domain.UploadPart, error) {
	args := m.Called(ctx, key, uploadID, partNumber, r, size)
	return args.Get(0).(domain.UploadPart), args.Error(1)
}

func (m *MockStorage) CompleteMultipartUpload(ctx context.Context, key string, uploadID string, parts []domain.UploadPart) error {
	args := m.Called(ctx, key, uploadID, parts)
	return args.Error(0)
}

func (m *MockStorage) AbortMultipartUpload(ctx context.Context, key string, uploadID string) error {
	args := m.Called(ctx, key, uploadID)
	return args.Error(0)
}

func (m *MockStorage) ListObjects(ctx context.Context, prefix string) ([]domain.StoredObject, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]domain.StoredObject), args.Error(1)
}

func (m *MockStorage) GetObjectInfo(ctx context.Context, key string) (*domain.StoredObject, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(*domain.StoredObject), args.Error(1)
}

func (m *MockStorage) GetHeaderBytes(ctx context.Context, key string, n int64) ([]byte, error) {
	args := m.Called(ctx, key, n)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) ObjectURL(key string) string {
	args := m.Called(key)
	if fn, ok := args.Get(0).(func(string) string); ok {
		return fn(key)
	}
	return args.String(0)
}

func (m *MockStorage) ListIncompleteUploads(ctx context.Context, prefix string) ([]domain.IncompleteUpload, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]domain.IncompleteUpload), args.Error(1)
}
