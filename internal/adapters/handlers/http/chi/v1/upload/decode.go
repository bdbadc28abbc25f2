package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"photo-wall/internal/adapters/spool"
	"photo-wall/internal/config"
	"photo-wall/internal/core/domain"
	uploadservice "photo-wall/internal/core/service/upload"
)

const (
	// FileField is the form field carrying the image
	FileField = "file"

	// formOverhead leaves room for part headers, boundaries and small fields
	formOverhead = 1 << 20
)

// Decoder extracts the single image of a multipart upload request and spools it
type Decoder struct {
	maxBytes    int64
	spoolDir    string
	spoolMemory int64
}

// NewDecoder creates a Decoder from the upload configuration
func NewDecoder(cfg config.UploadConfig) *Decoder {
	return &Decoder{
		maxBytes:    cfg.MaxFileSize,
		spoolDir:    cfg.SpoolDir,
		spoolMemory: cfg.SpoolMemoryBytes,
	}
}

// MaxBytes is the largest accepted file
func (d *Decoder) MaxBytes() int64 {
	return d.maxBytes
}

// Decode streams the request body and returns the first file found under
// FileField. The caller owns the returned file and must Close it.
func (d *Decoder) Decode(w http.ResponseWriter, r *http.Request) (*domain.ParsedFile, error) {
	limit := d.maxBytes + formOverhead
	if r.ContentLength > limit {
		return nil, fmt.Errorf("%w: declared %d bytes", domain.ErrFileTooLarge, r.ContentLength)
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	reader, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNoFile, err)
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrNoFile
		}
		if err != nil {
			return nil, readError(err)
		}

		if part.FormName() != FileField || part.FileName() == "" {
			part.Close()
			continue
		}

		file, err := d.spoolPart(part)
		part.Close()
		return file, err
	}
}

func (d *Decoder) spoolPart(part *multipart.Part) (_ *domain.ParsedFile, err error) {
	declared := part.Header.Get("Content-Type")
	mimeType := uploadservice.NormalizeMimeType(declared)
	if !uploadservice.IsAllowedMimeType(mimeType) {
		if mimeType == "" {
			mimeType = declared
		}
		return nil, &domain.UnsupportedMediaTypeError{MimeType: mimeType}
	}

	sp := spool.New(d.spoolDir, d.spoolMemory)
	defer func() {
		if err != nil {
			sp.Close()
		}
	}()

	n, err := io.Copy(sp, io.LimitReader(part, d.maxBytes+1))
	if err != nil {
		return nil, readError(err)
	}
	if n > d.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", domain.ErrFileTooLarge, d.maxBytes)
	}
	if n == 0 {
		return nil, domain.ErrNoFile
	}

	return &domain.ParsedFile{
		OriginalName: part.FileName(),
		MimeType:     mimeType,
		Size:         n,
		Source:       sp,
	}, nil
}

func readError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: body over %d bytes", domain.ErrFileTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("%w: %w", domain.ErrMalformedForm, err)
}
