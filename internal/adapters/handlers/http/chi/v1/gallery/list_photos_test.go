package gallery_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"photo-wall/internal/adapters/handlers/http/chi"
	"photo-wall/internal/adapters/handlers/http/chi/response"
	v1gallery "photo-wall/internal/adapters/handlers/http/chi/v1/gallery"
	"photo-wall/internal/core/domain"
	"photo-wall/internal/core/service/gallery"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListPhotosV1(t *testing.T) {
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("nominal", func(t *testing.T) {
		//Arrange
		items := []domain.GalleryItem{
			{Key: "2026/10/18/a.png", URL: "http://localhost:9000/photos/2026/10/18/a.png"},
			{Key: "2026/10/18/b.jpg", URL: "http://localhost:9000/photos/2026/10/18/b.jpg"},
		}
		mockService := gallery.NewMockGalleryService()
		mockService.On("ListToday", mock.Anything).Return(items, nil).Once()

		handler := v1gallery.NewGalleryHandlerV1(mockService, discardLogger)
		h := chi.NewRouter(discardLogger, nil, nil, handler, "", 0)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/photos", nil)

		//Act
		h.ServeHTTP(w, req)

		//Assert
		require.Equal(t, http.StatusOK, w.Code)
		var photos []v1gallery.V1PhotoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &photos))
		assert.Equal(t, []v1gallery.V1PhotoResponse{
			{Key: "2026/10/18/a.png", URL: "http://localhost:9000/photos/2026/10/18/a.png"},
			{Key: "2026/10/18/b.jpg", URL: "http://localhost:9000/photos/2026/10/18/b.jpg"},
		}, photos)
		mockService.AssertExpectations(t)
	})

	t.Run("empty day renders an empty array", func(t *testing.T) {
		mockService := gallery.NewMockGalleryService()
		mockService.On("ListToday", mock.Anything).Return(nil, nil).Once()

		handler := v1gallery.NewGalleryHandlerV1(mockService, discardLogger)
		h := chi.NewRouter(discardLogger, nil, nil, handler, "", 0)
		w := httptest.NewRecorder()

		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/photos", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("storage error", func(t *testing.T) {
		mockService := gallery.NewMockGalleryService()
		mockService.On("ListToday", mock.Anything).Return(nil, errors.New("minio down")).Once()

		handler := v1gallery.NewGalleryHandlerV1(mockService, discardLogger)
		h := chi.NewRouter(discardLogger, nil, nil, handler, "", 0)
		w := httptest.NewRecorder()

		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/photos", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var resp response.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, response.KindStorageFailure, resp.Kind)
		assert.NotContains(t, w.Body.String(), "minio down")
	})
}
