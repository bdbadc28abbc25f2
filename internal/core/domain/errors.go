package domain

import (
	"errors"
	"fmt"
)

// ErrNoFile is an error thrown when the request carries no usable file part
var ErrNoFile = errors.New("no file uploaded")

// ErrFileTooLarge is an error thrown when the file exceeds the configured maximum size
var ErrFileTooLarge = errors.New("file too large")

// ErrUnsupportedMediaType is an error thrown when the declared MIME type is not an allowed image type
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// ErrMalformedForm is an error thrown when the multipart body cannot be parsed
var ErrMalformedForm = errors.New("malformed multipart form")

// ErrStorageWrite is an error thrown when the object could not be written after all attempts
var ErrStorageWrite = errors.New("storage write failed")

// ErrStoragePermanent marks a storage failure that retrying cannot fix
var ErrStoragePermanent = errors.New("permanent storage failure")

// ErrObjectNotFound is an error thrown when an object does not exist in storage
var ErrObjectNotFound = errors.New("object not found")

// ErrSizeMismatch is an error thrown when sizes mismatch
var ErrSizeMismatch = errors.New("size mismatch")

// ErrContentTypeMismatch is an error thrown when the sniffed content type contradicts the declared one
var ErrContentTypeMismatch = errors.New("content type mismatch")

// UnsupportedMediaTypeError carries the rejected MIME type and matches ErrUnsupportedMediaType
type UnsupportedMediaTypeError struct {
	MimeType string
}

func (e *UnsupportedMediaTypeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsupportedMediaType, e.MimeType)
}

func (e *UnsupportedMediaTypeError) Is(target error) bool {
	return target == ErrUnsupportedMediaType
}
