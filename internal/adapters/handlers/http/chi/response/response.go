// Package response holds the JSON envelope shared by the v1 handlers and the
// router middlewares.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
	Error   string `json:"error,omitempty"`
}

// Error kinds returned to clients
const (
	KindNoFile               = "no_file"
	KindFileTooLarge         = "file_too_large"
	KindUnsupportedMediaType = "unsupported_media_type"
	KindMalformedForm        = "malformed_form"
	KindStorageFailure       = "storage_failure"
	KindRateLimited          = "rate_limited"
)

// WriteJSON writes v with the given status
func WriteJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("error encoding response", "error", err)
	}
}
