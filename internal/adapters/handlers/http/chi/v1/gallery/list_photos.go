package gallery

import (
	"net/http"
	"photo-wall/internal/adapters/handlers/http/chi/response"
)

// V1PhotoResponse is one uploaded photo of the day
type V1PhotoResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func (h *HandlerV1) ListPhotosV1(w http.ResponseWriter, r *http.Request) {
	items, err := h.galleryService.ListToday(r.Context())
	if err != nil {
		h.logger.Error("error listing photos", "error", err)
		response.WriteJSON(w, http.StatusInternalServerError, response.ErrorResponse{
			Message: "Error fetching photos",
			Kind:    response.KindStorageFailure,
		}, h.logger)
		return
	}

	resp := make([]V1PhotoResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, V1PhotoResponse{Key: item.Key, URL: item.URL})
	}
	response.WriteJSON(w, http.StatusOK, resp, h.logger)
}
