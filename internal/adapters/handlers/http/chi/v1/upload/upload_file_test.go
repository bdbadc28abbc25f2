package upload_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"photo-wall/internal/adapters/handlers/http/chi"
	"photo-wall/internal/adapters/handlers/http/chi/response"
	v1upload "photo-wall/internal/adapters/handlers/http/chi/v1/upload"
	"photo-wall/internal/adapters/ratelimit/memory"
	"photo-wall/internal/adapters/storage"
	"photo-wall/internal/core/domain"
	uploadservice "photo-wall/internal/core/service/upload"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	fileNamePattern     = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}/[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\.png$`)
	jpegFileNamePattern = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}/[0-9a-f-]+\.jpg$`)
)

const publicURL = "http://localhost:9000/photos/"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newPipeline wires the real upload service on top of a storage mock
func newPipeline(t *testing.T, mockStorage *storage.MockStorage) http.Handler {
	t.Helper()
	cfg := testConfig(t)
	service := uploadservice.NewUploadService(mockStorage, nil, cfg, discardLogger())
	handler := v1upload.NewUploadHandlerV1(service, v1upload.NewDecoder(cfg), discardLogger())
	return chi.NewRouter(discardLogger(), memory.NewLimiter(10, time.Minute), handler, nil, "", 0)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestUploadFileV1_Success(t *testing.T) {
	t.Run("single part", func(t *testing.T) {
		//Arrange
		mockStorage := storage.NewMockStorage()
		mockStorage.On("PutObject", mock.Anything, mock.MatchedBy(fileNamePattern.MatchString), mock.Anything, int64(2048), domain.ObjectMeta{
			ContentType:        "image/png",
			ContentDisposition: `inline; filename="cat.png"`,
		}).Return(nil).Once()
		mockStorage.On("ObjectURL", mock.AnythingOfType("string")).Return(func(key string) string {
			return publicURL + key
		}).Once()

		h := newPipeline(t, mockStorage)
		w := httptest.NewRecorder()
		req := newUploadRequest(t, formFile{field: "file", filename: "cat.png", contentType: "image/png", data: bytes.Repeat([]byte{1}, 2048)})

		//Act
		h.ServeHTTP(w, req)

		//Assert
		require.Equal(t, http.StatusOK, w.Code)
		var body v1upload.V1UploadFileResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Image uploaded successfully", body.Message)
		assert.Regexp(t, fileNamePattern, body.FileName)
		assert.Equal(t, publicURL+body.FileName, body.FileURL)
		assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
		mockStorage.AssertExpectations(t)
	})

	t.Run("2MiB jpeg is stored in a single request", func(t *testing.T) {
		//Arrange
		data := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{3}, 2<<20-4)...)
		mockStorage := storage.NewMockStorage()
		mockStorage.On("PutObject", mock.Anything, mock.MatchedBy(jpegFileNamePattern.MatchString), mock.Anything, int64(2<<20), domain.ObjectMeta{
			ContentType:        "image/jpeg",
			ContentDisposition: `inline; filename="holiday.jpg"`,
		}).Return(nil).Once()
		mockStorage.On("ObjectURL", mock.AnythingOfType("string")).Return(func(key string) string {
			return publicURL + key
		}).Once()

		h := newPipeline(t, mockStorage)
		w := httptest.NewRecorder()
		req := newUploadRequest(t, formFile{field: "file", filename: "holiday.jpg", contentType: "image/jpeg", data: data})

		//Act
		h.ServeHTTP(w, req)

		//Assert
		require.Equal(t, http.StatusOK, w.Code)
		var body v1upload.V1UploadFileResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Image uploaded successfully", body.Message)
		assert.Regexp(t, jpegFileNamePattern, body.FileName)
		assert.Equal(t, publicURL+body.FileName, body.FileURL)
		mockStorage.AssertExpectations(t)
		mockStorage.AssertNotCalled(t, "InitMultipartUpload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("6MiB file goes through a multipart upload", func(t *testing.T) {
		//Arrange
		mockStorage := storage.NewMockStorage()
		mockStorage.On("InitMultipartUpload", mock.Anything, mock.MatchedBy(fileNamePattern.MatchString), mock.Anything).
			Return("upload-1", nil).Once()
		mockStorage.On("UploadPart", mock.Anything, mock.Anything, "upload-1", 1, mock.Anything, int64(5<<20)).
			Return(domain.UploadPart{PartNumber: 1, ETag: "e1", Size: 5 << 20}, nil).Once()
		mockStorage.On("UploadPart", mock.Anything, mock.Anything, "upload-1", 2, mock.Anything, int64(1<<20)).
			Return(domain.UploadPart{PartNumber: 2, ETag: "e2", Size: 1 << 20}, nil).Once()
		mockStorage.On("CompleteMultipartUpload", mock.Anything, mock.Anything, "upload-1", []domain.UploadPart{
			{PartNumber: 1, ETag: "e1", Size: 5 << 20},
			{PartNumber: 2, ETag: "e2", Size: 1 << 20},
		}).Return(nil).Once()
		mockStorage.On("ObjectURL", mock.AnythingOfType("string")).Return(func(key string) string {
			return publicURL + key
		}).Once()

		h := newPipeline(t, mockStorage)
		w := httptest.NewRecorder()
		req := newUploadRequest(t, formFile{field: "file", filename: "big.png", contentType: "image/png", data: bytes.Repeat([]byte{7}, 6<<20)})

		//Act
		h.ServeHTTP(w, req)

		//Assert
		require.Equal(t, http.StatusOK, w.Code)
		var body v1upload.V1UploadFileResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Regexp(t, fileNamePattern, body.FileName)
		mockStorage.AssertExpectations(t)
		mockStorage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUploadFileV1_Errors(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		mockStorage := storage.NewMockStorage()
		h := newPipeline(t, mockStorage)
		w := httptest.NewRecorder()
		req := newUploadRequest(t, formFile{field: "caption", data: []byte("hello")})

		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "No file uploaded", resp.Message)
		assert.Equal(t, response.KindNoFile, resp.Kind)
	})

	t.Run("unsupported type never reaches storage", func(t *testing.T) {
		//Arrange
		mockStorage := storage.NewMockStorage()
		h := newPipeline(t, mockStorage)
		w := httptest.NewRecorder()
		req := newUploadRequest(t, formFile{field: "file", filename: "notes.txt", contentType: "text/plain", data: []byte("hello")})

		//Act
		h.ServeHTTP(w, req)

		//Assert
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "Invalid file type. Only images are allowed.", resp.Message)
		assert.Equal(t, response.KindUnsupportedMediaType, resp.Kind)
		assert.Equal(t, "File type text/plain is not supported.", resp.Error)
		mockStorage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockStorage.AssertNotCalled(t, "InitMultipartUpload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("file too large", func(t *testing.T) {
		mockStorage := storage.NewMockStorage()
		cfg := testConfig(t)
		cfg.MaxFileSize = 1 << 20
		service := uploadservice.NewUploadService(mockStorage, nil, cfg, discardLogger())
		handler := v1upload.NewUploadHandlerV1(service, v1upload.NewDecoder(cfg), discardLogger())
		h := chi.NewRouter(discardLogger(), nil, handler, nil, "", 0)
		w := httptest.NewRecorder()
		req := newUploadRequest(t, formFile{field: "file", filename: "a.png", contentType: "image/png", data: bytes.Repeat([]byte{1}, 1<<20+1)})

		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "File too large. Maximum size is 1MB.", resp.Message)
		assert.Equal(t, response.KindFileTooLarge, resp.Kind)
		mockStorage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage failure hides internals", func(t *testing.T) {
		//Arrange
		mockService := uploadservice.NewMockUploadService()
		mockService.On("Upload", mock.Anything, mock.Anything).
			Return((*domain.UploadOutcome)(nil), fmt.Errorf("%w: 2026/01/01/x.png: %w", domain.ErrStorageWrite, errors.New("dial tcp 10.0.0.5:9000: connection refused"))).Once()
		handler := v1upload.NewUploadHandlerV1(mockService, v1upload.NewDecoder(testConfig(t)), discardLogger())
		h := chi.NewRouter(discardLogger(), nil, handler, nil, "", 0)
		w := httptest.NewRecorder()
		req := newUploadRequest(t, formFile{field: "file", filename: "a.png", contentType: "image/png", data: []byte("png")})

		//Act
		h.ServeHTTP(w, req)

		//Assert
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "Error uploading file", resp.Message)
		assert.Equal(t, response.KindStorageFailure, resp.Kind)
		assert.NotContains(t, w.Body.String(), "10.0.0.5")
		mockService.AssertExpectations(t)
	})
}

func TestUploadFileV1_RateLimit(t *testing.T) {
	//Arrange
	mockService := uploadservice.NewMockUploadService()
	mockService.On("Upload", mock.Anything, mock.Anything).Return(&domain.UploadOutcome{
		URL: publicURL + "2026/01/01/x.png",
	}, nil)
	handler := v1upload.NewUploadHandlerV1(mockService, v1upload.NewDecoder(testConfig(t)), discardLogger())
	h := chi.NewRouter(discardLogger(), memory.NewLimiter(10, time.Minute), handler, nil, "", 0)

	send := func(forwardedFor string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := newUploadRequest(t, formFile{field: "file", filename: "a.png", contentType: "image/png", data: []byte("png")})
		if forwardedFor != "" {
			req.Header.Set("X-Forwarded-For", forwardedFor)
		}
		h.ServeHTTP(w, req)
		return w
	}

	//Act
	for i := 0; i < 10; i++ {
		w := send("")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}
	denied := send("")
	otherClient := send("203.0.113.7")

	//Assert
	assert.Equal(t, http.StatusTooManyRequests, denied.Code)
	retryAfter, err := strconv.Atoi(denied.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retryAfter, 0)
	assert.LessOrEqual(t, retryAfter, 60)
	resp := decodeError(t, denied)
	assert.Equal(t, "Too Many Requests", resp.Message)
	assert.Equal(t, response.KindRateLimited, resp.Kind)

	assert.Equal(t, http.StatusOK, otherClient.Code)
	mockService.AssertNumberOfCalls(t, "Upload", 11)
}
