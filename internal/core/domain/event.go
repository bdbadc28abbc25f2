package domain

import "time"

// UploadEvent is published once an image has been stored
type UploadEvent struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	OriginalName string    `json:"original_name"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
