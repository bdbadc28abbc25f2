package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"photo-wall/internal/config"
	"photo-wall/internal/core/domain"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Adapter is an adapter for minio
type Adapter struct {
	client *minio.Client
	core   *minio.Core
	config config.MinioConfig
	logger *slog.Logger
}

// NewAdapter returns Adapter, creating the bucket when it does not exist yet
func NewAdapter(ctx context.Context, cfg config.MinioConfig, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	if cfg.PublicRead {
		if err := client.SetBucketPolicy(ctx, cfg.BucketName, publicReadPolicy(cfg.BucketName)); err != nil {
			return nil, fmt.Errorf("failed to set bucket policy: %w", err)
		}
	}

	core := minio.Core{Client: client}
	return &Adapter{client: client, config: cfg, core: &core, logger: logger}, nil
}

// PutObject writes an object in a single request
func (a *Adapter) PutObject(ctx context.Context, key string, r io.Reader, size int64, meta domain.ObjectMeta) error {
	opts := a.putOptions(meta)
	opts.DisableMultipart = true

	_, err := a.client.PutObject(ctx, a.config.BucketName, key, r, size, opts)
	if err != nil {
		return fmt.Errorf("failed to put object: %w", classify(err))
	}
	return nil
}

// InitMultipartUpload inits a multi part upload
func (a *Adapter) InitMultipartUpload(ctx context.Context, key string, meta domain.ObjectMeta) (string, error) {
	uploadID, err := a.core.NewMultipartUpload(ctx, a.config.BucketName, key, a.putOptions(meta))
	if err != nil {
		return "", fmt.Errorf("failed to init multipart upload: %w", classify(err))
	}
	return uploadID, nil
}

// UploadPart uploads one part of a multipart upload
func (a *Adapter) UploadPart(ctx context.Context, key string, uploadID string, partNumber int, r io.Reader, size int64) (domain.UploadPart, error) {
	part, err := a.core.PutObjectPart(ctx, a.config.BucketName, key, uploadID, partNumber, r, size, minio.PutObjectPartOptions{})
	if err != nil {
		return domain.UploadPart{}, fmt.Errorf("failed to upload part %d: %w", partNumber, classify(err))
	}
	return domain.UploadPart{
		PartNumber: part.PartNumber,
		ETag:       strings.Trim(part.ETag, "\""),
		Size:       size,
	}, nil
}

// CompleteMultipartUpload assembles the uploaded parts into the final object
func (a *Adapter) CompleteMultipartUpload(ctx context.Context, key string, uploadID string, parts []domain.UploadPart) error {
	sort.Slice(parts, func(i, j int) bool {
		return parts[i].PartNumber < parts[j].PartNumber
	})

	completeParts := make([]minio.CompletePart, 0, len(parts))
	for _, part := range parts {
		completeParts = append(completeParts, minio.CompletePart{
			PartNumber: part.PartNumber,
			ETag:       strings.Trim(part.ETag, "\""),
		})
	}

	_, err := a.core.CompleteMultipartUpload(ctx, a.config.BucketName, key, uploadID, completeParts, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to complete multipart upload: %w", classify(err))
	}
	return nil
}

// AbortMultipartUpload discards every part uploaded so far
func (a *Adapter) AbortMultipartUpload(ctx context.Context, key string, uploadID string) error {
	err := a.core.AbortMultipartUpload(ctx, a.config.BucketName, key, uploadID)
	if err != nil {
		return fmt.Errorf("failed to abort multipart upload: %w", err)
	}

	a.logger.Info("multipart upload aborted",
		slog.String("key", key),
		slog.String("uploadID", uploadID))

	return nil
}

// ListObjects lists every object under prefix
func (a *Adapter) ListObjects(ctx context.Context, prefix string) ([]domain.StoredObject, error) {
	var objects []domain.StoredObject
	for info := range a.client.ListObjects(ctx, a.config.BucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", info.Err)
		}
		objects = append(objects, toStoredObject(info))
	}
	return objects, nil
}

// GetObjectInfo retrieves obj info
func (a *Adapter) GetObjectInfo(ctx context.Context, key string) (*domain.StoredObject, error) {
	info, err := a.client.StatObject(ctx, a.config.BucketName, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", key, domain.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to get object info: %w", err)
	}
	obj := toStoredObject(info)
	return &obj, nil
}

// GetHeaderBytes reads at most the first n bytes of an object
func (a *Adapter) GetHeaderBytes(ctx context.Context, key string, n int64) ([]byte, error) {
	opts := minio.GetObjectOptions{}
	err := opts.SetRange(0, n-1)
	if err != nil {
		return nil, fmt.Errorf("failed to set range: %w", err)
	}

	object, err := a.client.GetObject(ctx, a.config.BucketName, key, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get partial object: %w", err)
	}
	defer object.Close()

	buffer := make([]byte, n)
	numRead, err := io.ReadFull(object, buffer)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", key, domain.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to read header bytes: %w", err)
	}

	return buffer[:numRead], nil
}

// DeleteObject deletes an object from storage
func (a *Adapter) DeleteObject(ctx context.Context, key string) error {
	err := a.client.RemoveObject(ctx, a.config.BucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	a.logger.Info("object deleted",
		slog.String("key", key),
		slog.String("bucket", a.config.BucketName))

	return nil
}

// ObjectURL composes the public URL of key, escaping every path segment
func (a *Adapter) ObjectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf("%s/%s/%s", a.config.PublicEndpoint(), url.PathEscape(a.config.BucketName), strings.Join(segments, "/"))
}

// ListIncompleteUploads returns the multipart uploads still open under prefix
func (a *Adapter) ListIncompleteUploads(ctx context.Context, prefix string) ([]domain.IncompleteUpload, error) {
	var uploads []domain.IncompleteUpload
	for info := range a.client.ListIncompleteUploads(ctx, a.config.BucketName, prefix, true) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list incomplete uploads: %w", classify(info.Err))
		}
		uploads = append(uploads, domain.IncompleteUpload{
			Key:       info.Key,
			UploadID:  info.UploadID,
			Initiated: info.Initiated,
		})
	}
	return uploads, nil
}

func (a *Adapter) putOptions(meta domain.ObjectMeta) minio.PutObjectOptions {
	opts := minio.PutObjectOptions{
		ContentType:        meta.ContentType,
		ContentDisposition: meta.ContentDisposition,
	}
	if a.config.ObjectACL != "" {
		opts.UserMetadata = map[string]string{"x-amz-acl": a.config.ObjectACL}
	}
	return opts
}

// publicReadPolicy allows anonymous reads of every object in bucket
func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

func toStoredObject(info minio.ObjectInfo) domain.StoredObject {
	return domain.StoredObject{
		Key:          info.Key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		ETag:         strings.Trim(info.ETag, "\""),
		LastModified: info.LastModified,
	}
}

// permanentCodes are S3 error codes no retry can recover from
var permanentCodes = map[string]bool{
	"AccessDenied":          true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"NoSuchBucket":          true,
	"InvalidBucketName":     true,
	"EntityTooLarge":        true,
}

func classify(err error) error {
	resp := minio.ToErrorResponse(err)
	if permanentCodes[resp.Code] {
		return fmt.Errorf("%w: %w", domain.ErrStoragePermanent, err)
	}
	return err
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
