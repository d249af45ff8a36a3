// Package storage provides the object storage gateway for evidence files.
// Vendor SDKs sit behind Backend; Gateway adds upload preconditions, content
// classification, naming and URL fallback on top.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"sales_visits_backend/platform/config"
)

// Backend is a vendor-specific object store.
type Backend interface {
	// Name identifies the backend in logs ("minio", "gcs").
	Name() string
	// EnsureBucket creates the bucket if it doesn't exist.
	EnsureBucket(ctx context.Context, bucket string) error
	// Put stores the object under key.
	Put(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes the object. Deleting a missing object returns ErrObjectNotFound.
	Delete(ctx context.Context, bucket, key string) error
	// Exists reports whether the object is present.
	Exists(ctx context.Context, bucket, key string) (bool, error)
	// SignGetURL returns a time-limited download URL.
	SignGetURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// ErrObjectNotFound is returned by backends when an object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Precondition errors returned by Gateway.Upload before the backend is called.
var (
	ErrEmptyFile    = errors.New("no file provided or file is empty")
	ErrMissingName  = errors.New("file name is required")
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")
)

// BackendError wraps a vendor SDK failure.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// UploadError carries the user-facing message of a failed upload.
type UploadError struct {
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	return e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// OpenBackend builds the backend selected by STORAGE_BACKEND. It returns
// (nil, nil) when storage is disabled.
func OpenBackend(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.GetStorageBackend() {
	case config.StorageBackendMinIO:
		return NewMinIOBackend(cfg)
	case config.StorageBackendGCS:
		return NewGCSBackend(ctx, cfg)
	case config.StorageBackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.GetStorageBackend())
	}
}
