package upload

import (
	"mime"
	"strings"
)

// AllowedImageMimeTypes is a whitelist of supported image MIME types and their usual extensions.
// This is deterministic and does NOT rely on OS mime databases (Docker-safe).
// The check runs on the client-declared type: it keeps honest users from
// uploading the wrong file, it does not stop a hostile one.
var AllowedImageMimeTypes = map[string][]string{
	"image/jpeg":    {".jpg", ".jpeg"},
	"image/png":     {".png"},
	"image/gif":     {".gif"},
	"image/webp":    {".webp"},
	"image/svg+xml": {".svg"},
	"image/bmp":     {".bmp"},
	"image/tiff":    {".tif", ".tiff"},
	"image/heic":    {".heic"},
	"image/heif":    {".heif"},
}

// IsAllowedMimeType reports whether mimeType is an accepted image type
func IsAllowedMimeType(mimeType string) bool {
	_, ok := AllowedImageMimeTypes[mimeType]
	return ok
}

// NormalizeMimeType strips parameters and lower-cases a Content-Type value.
// An unparsable value yields "".
func NormalizeMimeType(contentType string) string {
	mimeType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(mimeType)
}
