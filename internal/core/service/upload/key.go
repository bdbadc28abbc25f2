package upload

import (
	"path"
	"photo-wall/internal/core/domain"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// DeriveKey computes a fresh storage key in the UTC day partition of now.
// Only the extension of originalFilename ends up in the key.
func DeriveKey(now time.Time, originalFilename string) domain.StorageKey {
	return domain.StorageKey{
		Partition: DatePartition(now),
		ID:        uuid.New(),
		Ext:       extension(originalFilename),
	}
}

// DatePartition formats the UTC date of t as year/month/day
func DatePartition(t time.Time) string {
	return t.UTC().Format("2006/01/02")
}

func extension(filename string) string {
	ext := path.Ext(filename)
	if strings.ContainsAny(ext, `/\`) || strings.IndexFunc(ext, unicode.IsControl) >= 0 {
		return ""
	}
	return ext
}
