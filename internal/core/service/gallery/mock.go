package gallery

import (
	"context"
	"photo-wall/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockGalleryService is a mock implementation of GalleryService
type MockGalleryService struct {
	mock.Mock
}

// NewMockGalleryService creates a new MockGalleryService
func NewMockGalleryService() *MockGalleryService {
	return &MockGalleryService{}
}

func (m *MockGalleryService) ListToday(ctx context.Context) ([]domain.GalleryItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GalleryItem), args.Error(1)
}
