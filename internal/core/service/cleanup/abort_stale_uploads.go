package cleanup

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AbortStaleUploads aborts the multipart uploads started before startedBefore.
// They are left behind when the process dies between init and complete/abort.
func (c *cleanupService) AbortStaleUploads(ctx context.Context, startedBefore time.Time) (int, error) {
	uploads, err := c.storage.ListIncompleteUploads(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to list incomplete uploads: %w", err)
	}

	var aborted int
	var errs []error
	for _, upload := range uploads {
		if !upload.Initiated.Before(startedBefore) {
			continue
		}
		if err := c.storage.AbortMultipartUpload(ctx, upload.Key, upload.UploadID); err != nil {
			c.logger.Error("failed to abort stale upload", "key", upload.Key, "uploadID", upload.UploadID, "error", err)
			errs = append(errs, err)
			continue
		}
		aborted++
	}

	c.logger.Info("stale uploads cleanup completed", "found", len(uploads), "aborted", aborted)
	return aborted, errors.Join(errs...)
}
