package domain

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// FileSource is a re-openable handle on spooled file bytes.
// Every call to Open starts again from the first byte.
type FileSource interface {
	Open() (io.ReadCloser, error)
	Close() error
}

// ParsedFile represents the single file extracted from an upload request
type ParsedFile struct {
	OriginalName string
	MimeType     string
	Size         int64
	Source       FileSource
}

// Close releases the spooled bytes behind the file
func (f *ParsedFile) Close() error {
	if f == nil || f.Source == nil {
		return nil
	}
	return f.Source.Close()
}

// StorageKey is the date-partitioned object key of an upload
type StorageKey struct {
	Partition string
	ID        uuid.UUID
	Ext       string
}

// String renders the key as year/month/day/id.ext
func (k StorageKey) String() string {
	return k.Partition + "/" + k.ID.String() + k.Ext
}

// UploadOutcome is the result of a successful upload
type UploadOutcome struct {
	Key StorageKey
	URL string
}

// ObjectMeta holds the headers stored alongside an object
type ObjectMeta struct {
	ContentType        string
	ContentDisposition string
}

// UploadPart represents an uploaded part (chunk) of a multipart upload
type UploadPart struct {
	PartNumber int
	ETag       string
	Size       int64
}

// StoredObject describes an object as reported by storage
type StoredObject struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// GalleryItem is a listed image and its public URL
type GalleryItem struct {
	Key string
	URL string
}

// IncompleteUpload is a multipart upload that was started and never completed or aborted
type IncompleteUpload struct {
	Key       string
	UploadID  string
	Initiated time.Time
}
