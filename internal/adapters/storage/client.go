package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"sales_visits_backend/platform/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const backendMinIO = "minio"

// MinIOBackend implements Backend using MinIO or any S3-compatible service.
type MinIOBackend struct {
	client *minio.Client
}

// NewMinIOBackend creates a new MinIO storage backend.
func NewMinIOBackend(cfg config.MinIOConfig) (*MinIOBackend, error) {
	if cfg.GetMinIOEndpoint() == "" {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOBackend{client: client}, nil
}

// Name implements Backend.
func (b *MinIOBackend) Name() string { return backendMinIO }

// EnsureBucket creates the bucket if it doesn't exist.
func (b *MinIOBackend) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := b.client.BucketExists(ctx, bucket)
	if err != nil {
		return &BackendError{Backend: backendMinIO, Op: "bucket exists", Err: err}
	}

	if !exists {
		if err := b.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return &BackendError{Backend: backendMinIO, Op: "make bucket " + bucket, Err: err}
		}
	}

	return nil
}

// Put uploads an object from an io.Reader.
func (b *MinIOBackend) Put(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error {
	_, err := b.client.PutObject(ctx, bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return &BackendError{Backend: backendMinIO, Op: "put " + key, Err: err}
	}
	return nil
}

// Delete removes an object, reporting ErrObjectNotFound when it is absent.
// RemoveObject succeeds for missing keys, so existence is checked first.
func (b *MinIOBackend) Delete(ctx context.Context, bucket, key string) error {
	exists, err := b.Exists(ctx, bucket, key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrObjectNotFound
	}

	if err := b.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return &BackendError{Backend: backendMinIO, Op: "remove " + key, Err: err}
	}
	return nil
}

// Exists implements Backend.
func (b *MinIOBackend) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := b.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" {
		return false, nil
	}
	return false, &BackendError{Backend: backendMinIO, Op: "stat " + key, Err: err}
}

// SignGetURL creates a presigned URL for downloading a file.
func (b *MinIOBackend) SignGetURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	presigned, err := b.client.PresignedGetObject(ctx, bucket, key, expiry, make(url.Values))
	if err != nil {
		return "", &BackendError{Backend: backendMinIO, Op: "presign " + key, Err: err}
	}
	return presigned.String(), nil
}
