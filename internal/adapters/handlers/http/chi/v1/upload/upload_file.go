package upload

import (
	"errors"
	"fmt"
	"net/http"
	"photo-wall/internal/adapters/handlers/http/chi/response"
	"photo-wall/internal/core/domain"
)

// V1UploadFileResponse is the response to a successful upload
type V1UploadFileResponse struct {
	Message  string `json:"message"`
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
}

func (h *HandlerV1) UploadFileV1(w http.ResponseWriter, r *http.Request) {
	file, err := h.decoder.Decode(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			h.logger.Error("error releasing spooled upload", "error", err)
		}
	}()

	outcome, err := h.uploadService.Upload(r.Context(), file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := V1UploadFileResponse{
		Message:  "Image uploaded successfully",
		FileURL:  outcome.URL,
		FileName: outcome.Key.String(),
	}
	response.WriteJSON(w, http.StatusOK, resp, h.logger)
}

func (h *HandlerV1) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ctxErr := r.Context().Err(); ctxErr != nil {
		h.logger.Warn("upload abandoned", "reason", ctxErr, "error", err)
		return
	}

	var typeErr *domain.UnsupportedMediaTypeError
	switch {
	case errors.Is(err, domain.ErrNoFile):
		h.logger.Error("invalid request", "error", err)
		response.WriteJSON(w, http.StatusBadRequest, response.ErrorResponse{
			Message: "No file uploaded",
			Kind:    response.KindNoFile,
		}, h.logger)
	case errors.Is(err, domain.ErrFileTooLarge):
		h.logger.Error("invalid request", "error", err)
		response.WriteJSON(w, http.StatusRequestEntityTooLarge, response.ErrorResponse{
			Message: fmt.Sprintf("File too large. Maximum size is %dMB.", h.decoder.MaxBytes()/(1<<20)),
			Kind:    response.KindFileTooLarge,
		}, h.logger)
	case errors.As(err, &typeErr):
		h.logger.Error("invalid request", "error", err)
		response.WriteJSON(w, http.StatusUnsupportedMediaType, response.ErrorResponse{
			Message: "Invalid file type. Only images are allowed.",
			Kind:    response.KindUnsupportedMediaType,
			Error:   fmt.Sprintf("File type %s is not supported.", typeErr.MimeType),
		}, h.logger)
	case errors.Is(err, domain.ErrMalformedForm):
		h.logger.Error("error parsing form data", "error", err)
		response.WriteJSON(w, http.StatusInternalServerError, response.ErrorResponse{
			Message: "Error parsing form data",
			Kind:    response.KindMalformedForm,
		}, h.logger)
	default:
		h.logger.Error("error uploading file", "error", err)
		response.WriteJSON(w, http.StatusInternalServerError, response.ErrorResponse{
			Message: "Error uploading file",
			Kind:    response.KindStorageFailure,
		}, h.logger)
	}
}
