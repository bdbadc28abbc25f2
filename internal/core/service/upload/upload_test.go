package upload_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"photo-wall/internal/adapters/storage"
	"photo-wall/internal/core/domain"
	"photo-wall/internal/core/service/upload"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngKeyPattern = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}/[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\.png$`)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUploadService_Upload(t *testing.T) {
	t.Run("stores the file and publishes an event", func(t *testing.T) {
		// Arrange
		mockStorage := storage.NewMockStorage()
		publisher := upload.NewMockPublisher()
		svc := upload.NewUploadService(mockStorage, publisher, testUploadCfg, discardLogger())
		file, _ := newParsedFile("sunset.png", "image/png", payload(1024))

		mockStorage.On("PutObject", mock.Anything, mock.MatchedBy(pngKeyPattern.MatchString), mock.Anything, int64(1024), mock.MatchedBy(func(m domain.ObjectMeta) bool {
			return m.ContentType == "image/png" && m.ContentDisposition == `inline; filename="sunset.png"`
		})).Return(nil).Once()
		mockStorage.On("ObjectURL", mock.AnythingOfType("string")).Return("http://localhost:9000/photos/key").Once()
		publisher.On("PublishUpload", mock.Anything, mock.MatchedBy(func(e domain.UploadEvent) bool {
			return pngKeyPattern.MatchString(e.Key) && e.Size == 1024 && e.OriginalName == "sunset.png"
		})).Return(nil).Once()

		// Act
		outcome, err := svc.Upload(context.Background(), file)

		// Assert
		require.NoError(t, err)
		assert.Regexp(t, pngKeyPattern, outcome.Key.String())
		assert.Equal(t, "http://localhost:9000/photos/key", outcome.URL)
		mockStorage.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("unsupported type never reaches storage", func(t *testing.T) {
		// Arrange
		mockStorage := storage.NewMockStorage()
		svc := upload.NewUploadService(mockStorage, nil, testUploadCfg, discardLogger())
		file, src := newParsedFile("notes.txt", "text/plain", []byte("hello"))

		// Act
		outcome, err := svc.Upload(context.Background(), file)

		// Assert
		assert.ErrorIs(t, err, domain.ErrUnsupportedMediaType)
		assert.Contains(t, err.Error(), "text/plain")
		assert.Nil(t, outcome)
		assert.Equal(t, 0, src.opens)
		mockStorage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing file", func(t *testing.T) {
		svc := upload.NewUploadService(storage.NewMockStorage(), nil, testUploadCfg, discardLogger())

		_, err := svc.Upload(context.Background(), nil)

		assert.ErrorIs(t, err, domain.ErrNoFile)
	})

	t.Run("publish failure does not fail the upload", func(t *testing.T) {
		// Arrange
		mockStorage := storage.NewMockStorage()
		publisher := upload.NewMockPublisher()
		svc := upload.NewUploadService(mockStorage, publisher, testUploadCfg, discardLogger())
		file, _ := newParsedFile("a.png", "image/png", payload(10))

		mockStorage.On("PutObject", mock.Anything, mock.Anything, mock.Anything, int64(10), mock.Anything).Return(nil).Once()
		mockStorage.On("ObjectURL", mock.Anything).Return("http://localhost:9000/photos/a").Once()
		publisher.On("PublishUpload", mock.Anything, mock.Anything).Return(errors.New("nats: no responders")).Once()

		// Act
		outcome, err := svc.Upload(context.Background(), file)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/photos/a", outcome.URL)
		publisher.AssertExpectations(t)
	})

	t.Run("storage failure is reported and nothing is published", func(t *testing.T) {
		// Arrange
		mockStorage := storage.NewMockStorage()
		publisher := upload.NewMockPublisher()
		svc := upload.NewUploadService(mockStorage, publisher, testUploadCfg, discardLogger())
		file, src := newParsedFile("a.png", "image/png", payload(10))

		mockStorage.On("PutObject", mock.Anything, mock.Anything, mock.Anything, int64(10), mock.Anything).
			Return(errors.New("connection reset by peer")).Times(3)

		// Act
		outcome, err := svc.Upload(context.Background(), file)

		// Assert
		assert.ErrorIs(t, err, domain.ErrStorageWrite)
		assert.Nil(t, outcome)
		assert.Equal(t, 3, src.opens)
		mockStorage.AssertExpectations(t)
		publisher.AssertNotCalled(t, "PublishUpload", mock.Anything, mock.Anything)
	})
}
